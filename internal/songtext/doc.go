// Package songtext provides text canonicalization and similarity scoring for
// artist/title strings.
//
// Normalize produces the canonical comparison form used on both sides of
// request matching: at request creation time and when a track is detected.
// Similarity scores two already-normalized strings in [0, 1] using Levenshtein
// edit distance.
//
// Both operations are pure and deterministic; Normalize is idempotent.
package songtext
