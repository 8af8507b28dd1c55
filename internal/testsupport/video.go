package testsupport

import (
	"context"
	"errors"
	"image"
	"io"
	"math/rand/v2"
	"sync"

	"vidcheck/internal/frames"
)

// NoiseFrame returns a deterministic grayscale frame filled with pseudo-random
// pixels. Different seeds give frames with near-zero structural similarity.
func NoiseFrame(width, height int, seed uint64) *image.Gray {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.IntN(256))
	}
	return img
}

// StaticSegmentVideo builds fps*seconds frames of changing noise, except that
// every frame in [staticStart, staticEnd) repeats one fixed picture.
func StaticSegmentVideo(width, height, fps, seconds, staticStart, staticEnd int) []image.Image {
	total := fps * seconds
	still := NoiseFrame(width, height, 1_000_000)
	out := make([]image.Image, total)
	for i := range out {
		if i >= staticStart && i < staticEnd {
			out[i] = still
			continue
		}
		out[i] = NoiseFrame(width, height, uint64(i)+1)
	}
	return out
}

// MemoryVideo serves an in-memory frame list through frames.Opener. Each Open
// returns an independent decoder.
type MemoryVideo struct {
	Frames []image.Image
	// FailAt makes Next fail when it reaches this position; negative disables.
	FailAt  int
	FailErr error
	OpenErr error

	mu    sync.Mutex
	opens int
	hints []frames.Hint
}

// NewMemoryVideo wraps frames with failure injection disabled.
func NewMemoryVideo(imgs []image.Image) *MemoryVideo {
	return &MemoryVideo{Frames: imgs, FailAt: -1}
}

// Open implements frames.Opener.
func (v *MemoryVideo) Open(_ context.Context, _ string, hint frames.Hint) (frames.Decoder, error) {
	v.mu.Lock()
	v.opens++
	v.hints = append(v.hints, hint)
	v.mu.Unlock()
	if v.OpenErr != nil {
		return nil, v.OpenErr
	}
	return &memoryDecoder{video: v}, nil
}

// Opens reports how many decoders were created.
func (v *MemoryVideo) Opens() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.opens
}

// Hints returns the hints passed to each Open call.
func (v *MemoryVideo) Hints() []frames.Hint {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]frames.Hint(nil), v.hints...)
}

type memoryDecoder struct {
	video  *MemoryVideo
	next   int
	closed bool
}

func (d *memoryDecoder) Next() (frames.Frame, error) {
	if d.closed {
		return frames.Frame{}, errors.New("decoder closed")
	}
	if d.video.FailAt >= 0 && d.next == d.video.FailAt {
		err := d.video.FailErr
		if err == nil {
			err = errors.New("corrupt packet")
		}
		return frames.Frame{}, err
	}
	if d.next >= len(d.video.Frames) {
		return frames.Frame{}, io.EOF
	}
	f := frames.Frame{Position: d.next, Image: d.video.Frames[d.next]}
	d.next++
	return f, nil
}

func (d *memoryDecoder) Close() error {
	d.closed = true
	return nil
}
