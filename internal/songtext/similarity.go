package songtext

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Similarity scores two strings in [0, 1] where 1 means identical, using
// normalized Levenshtein edit distance. The score is symmetric. Both inputs
// empty yields 1; exactly one empty yields 0.
//
// Callers are expected to pass Normalize output; Similarity itself performs
// no canonicalization.
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return strutil.Similarity(a, b, metrics.NewLevenshtein())
}
