// Package textutil normalizes evidence text and sanitizes file names.
//
// Normalize is the single cleanup pass applied to every evidence stream
// (transcripts, captions and recognised frame text) before it reaches the
// prompt. It is idempotent, which keeps verdict cache keys stable when text
// is normalized more than once along the pipeline.
package textutil
