// Package subtitles turns timed-caption files into plain evidence text.
//
// Normalize drops cue indices, timing lines and blanks from SRT or WebVTT
// content and joins the remaining caption lines with single spaces, keeping
// their order and repetitions. ReadFile does the same for a file on disk and
// Stats summarises the cue timings for reporting.
package subtitles
