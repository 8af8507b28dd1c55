// Package language normalizes language codes and detects the language of
// evidence text.
//
// Codes arrive in several shapes: ISO 639-1 from the detector and trigger
// file, ISO 639-2 for tesseract, and BCP 47 tags from subtitle file names.
// Everything is reduced to ISO 639-1 here so callers compare like with like.
package language
