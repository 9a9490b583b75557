package songtext_test

import (
	"testing"

	"encore/internal/songtext"
)

func TestSimilarityEdgeCases(t *testing.T) {
	if got := songtext.Similarity("", ""); got != 1.0 {
		t.Fatalf("Similarity(\"\", \"\") = %v, want 1.0", got)
	}
	if got := songtext.Similarity("", "x"); got != 0.0 {
		t.Fatalf("Similarity(\"\", \"x\") = %v, want 0.0", got)
	}
	if got := songtext.Similarity("x", ""); got != 0.0 {
		t.Fatalf("Similarity(\"x\", \"\") = %v, want 0.0", got)
	}
}

func TestSimilarityIdentity(t *testing.T) {
	for _, s := range []string{"a", "hotline bling", "beyonce"} {
		if got := songtext.Similarity(s, s); got != 1.0 {
			t.Errorf("Similarity(%q, %q) = %v, want 1.0", s, s, got)
		}
	}
}

func TestSimilarityIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"hotline bling", "hotline blingg"},
		{"drake", "drakke"},
		{"beyonce", "beyince"},
	}
	for _, pair := range pairs {
		ab := songtext.Similarity(pair[0], pair[1])
		ba := songtext.Similarity(pair[1], pair[0])
		if ab != ba {
			t.Errorf("Similarity not symmetric for %q/%q: %v != %v", pair[0], pair[1], ab, ba)
		}
	}
}

func TestSimilarityToleratesSmallEdits(t *testing.T) {
	// One edit across a 13-character string stays above the match threshold.
	got := songtext.Similarity("hotline bling", "hotline blingg")
	if got < 0.85 {
		t.Fatalf("similarity too low for near-identical titles: %v", got)
	}

	unrelated := songtext.Similarity("hotline bling", "bohemian rhapsody")
	if unrelated >= 0.85 {
		t.Fatalf("unrelated titles scored too high: %v", unrelated)
	}
}

func TestNormalizeThenSimilarityHandlesFeaturing(t *testing.T) {
	a := songtext.Normalize("Beyoncé (feat. JAY-Z)")
	b := songtext.Normalize("beyonce")
	if got := songtext.Similarity(a, b); got < 0.85 {
		t.Fatalf("expected feat-stripped names to match, got %v", got)
	}
}
