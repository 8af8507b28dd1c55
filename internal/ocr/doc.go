// Package ocr recognises on-screen text in sampled video frames.
//
// Engine abstracts a single-image recogniser; TesseractEngine drives the
// tesseract CLI. Extractor fans frames out to an Engine with bounded
// concurrency and reassembles the results in frame order, so a frame that
// fails to recognise costs only its own text.
package ocr
