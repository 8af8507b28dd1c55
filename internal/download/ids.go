package download

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
)

var videoIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11}).*`)

const thumbnailFallbackTemplate = "https://img.youtube.com/vi/%s/0.jpg"

// VideoID extracts an 11 character YouTube video ID from url.
func VideoID(url string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ThumbnailFallbackURL returns the public YouTube thumbnail for url, or "" when
// url has no video ID.
func ThumbnailFallbackURL(url string) string {
	id, ok := VideoID(url)
	if !ok {
		return ""
	}
	return fmt.Sprintf(thumbnailFallbackTemplate, id)
}

// fileKey names the files downloaded for url.
func fileKey(url string) string {
	if id, ok := VideoID(url); ok {
		return id
	}
	sum := sha256.Sum256([]byte(url))
	return "url-" + hex.EncodeToString(sum[:8])
}
