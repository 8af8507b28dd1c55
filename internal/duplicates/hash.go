package duplicates

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"image"

	"vidcheck/internal/frames"
)

// HashBucketDetector groups frames with identical grayscale pixels anywhere in
// the sequence. Each later member of a bucket is paired with the bucket's
// first frame and scored 1.0.
type HashBucketDetector struct{}

// Detect implements Detector.
func (HashBucketDetector) Detect(ctx context.Context, seq frames.SampledSequence) (Report, error) {
	report := Report{TotalFrames: len(seq.Frames), Strategy: StrategyHash, Pairs: []Pair{}}
	first := make(map[string]int, len(seq.Frames))
	for _, f := range seq.Frames {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		key := FrameHash(frames.Grayscale(f.Image))
		if pos, ok := first[key]; ok {
			report.Pairs = append(report.Pairs, Pair{PositionA: pos, PositionB: f.Position, Score: 1.0})
			continue
		}
		first[key] = f.Position
	}
	return report, nil
}

// FrameHash returns the hex SHA-256 of the frame's dimensions and pixel rows.
func FrameHash(img *image.Gray) string {
	b := img.Bounds()
	h := sha256.New()
	var dims [8]byte
	binary.BigEndian.PutUint32(dims[:4], uint32(b.Dx()))
	binary.BigEndian.PutUint32(dims[4:], uint32(b.Dy()))
	h.Write(dims[:])
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		h.Write(img.Pix[off : off+b.Dx()])
	}
	return hex.EncodeToString(h.Sum(nil))
}
