// Package pipeline runs one evidence check from input to verdict.
//
// A run moves through IDLE, SAMPLING, the concurrent DUPLICATE_SCAN and
// TEXT_EXTRACTION branches, NORMALIZING, AGGREGATING and
// AWAITING_VERIFICATION before ending in DONE or FAILED. Only an unreadable
// source (during SAMPLING) or a verification capability error (during
// AWAITING_VERIFICATION) fails a run; every other stage degrades to empty
// output and logs a warning.
//
// The Runner talks to the outside world only through Capabilities. Live wires
// the real downloader, decoder, OCR engine, transcriber and oracle; tests pass
// a fake.
package pipeline
