// Package fileutil holds small filesystem helpers shared by the downloader
// and the HTTP upload handler.
package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Digest describes bytes written by WriteAtomic.
type Digest struct {
	Size   int64
	SHA256 string
}

// WriteAtomic streams r into a temp file next to dst and renames it into
// place, so readers never observe a partial file. The temp file is removed on
// any failure.
func WriteAtomic(dst string, r io.Reader, mode os.FileMode) (Digest, error) {
	var digest Digest
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return digest, fmt.Errorf("ensure directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.part")
	if err != nil {
		return digest, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), r)
	if err != nil {
		_ = tmp.Close()
		return digest, fmt.Errorf("write %s: %w", dst, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return digest, fmt.Errorf("chmod %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		return digest, fmt.Errorf("close %s: %w", dst, err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return digest, fmt.Errorf("rename into %s: %w", dst, err)
	}
	tmpPath = ""

	digest.Size = written
	digest.SHA256 = hex.EncodeToString(hasher.Sum(nil))
	return digest, nil
}

// FindFirst returns the first existing regular file among base+ext for each
// ext in order.
func FindFirst(base string, exts ...string) (string, bool) {
	for _, ext := range exts {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}
