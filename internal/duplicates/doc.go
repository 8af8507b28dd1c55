// Package duplicates finds near-identical frames in a sampled sequence.
//
// The SSIM detector compares each frame with its successor and reports pairs
// whose mean structural similarity exceeds a threshold; runs of static video
// therefore surface as chains of adjacent pairs. The hash detector instead
// groups byte-identical frames anywhere in the sequence.
package duplicates
