// Package frames decodes video into sampled frame sequences.
//
// A Sampler walks a Decoder strictly forward and keeps frame p only when
// p mod stride is zero, stopping at a configured maximum. Positions refer to
// the decoded stream, so sequences sampled at different strides from the same
// file can be correlated. FFmpegOpener is the production decoder; tests plug
// in in-memory decoders through the same Opener interface.
package frames
