package frames

import (
	"context"
	"image"
)

// Frame is one decoded picture and its index in the decoded stream.
type Frame struct {
	Position int
	Image    image.Image
}

// SampledSequence is the ordered result of a sampling pass. Positions are
// strictly increasing and len(Frames) never exceeds Max.
type SampledSequence struct {
	Frames    []Frame
	Stride    int
	Max       int
	Exhausted bool
}

// Positions returns the decoded-stream positions of the sampled frames.
func (s SampledSequence) Positions() []int {
	out := make([]int, len(s.Frames))
	for i, f := range s.Frames {
		out[i] = f.Position
	}
	return out
}

// Hint lets a decoder skip work the sampler would discard anyway. Decoders may
// ignore it; the sampler enforces stride and max itself.
type Hint struct {
	Stride int
	Max    int
	// Gray requests single-channel frames.
	Gray bool
	// Width downscales frames preserving aspect ratio. Zero keeps the source size.
	Width int
}

// Decoder yields frames in stream order. Next returns io.EOF at end of stream.
// A Decoder is single-pass and not safe for concurrent use.
type Decoder interface {
	Next() (Frame, error)
	Close() error
}

// Opener creates an independent Decoder for a media file.
type Opener interface {
	Open(ctx context.Context, path string, hint Hint) (Decoder, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, path string, hint Hint) (Decoder, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, path string, hint Hint) (Decoder, error) {
	return f(ctx, path, hint)
}
