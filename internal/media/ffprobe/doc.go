// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The frame sampler uses it to learn the decoded frame geometry before it
// reads raw frames from ffmpeg, and the pipeline uses it to check that an
// uploaded file carries a video stream at all.
package ffprobe
