package songtext_test

import (
	"testing"

	"encore/internal/songtext"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t ", ""},
		{"lowercases", "Hotline Bling", "hotline bling"},
		{"strips punctuation", "P!nk", "p nk"},
		{"collapses whitespace", "Drake    -  Hotline   Bling", "drake hotline bling"},
		{"strips parenthetical", "One Dance (Radio Edit)", "one dance"},
		{"strips bracketed", "Starboy [Remastered 2020]", "starboy"},
		{"removes feat clause", "Beyoncé (feat. JAY-Z)", "beyonce"},
		{"removes ft token", "Work ft Rihanna", "work"},
		{"removes featuring token", "Sicko Mode featuring Drake", "sicko mode"},
		{"folds diacritics", "Beyoncé", "beyonce"},
		{"keeps digits", "22 Taylor's Version", "22 taylor s version"},
		{"slash becomes separator", "AC/DC", "ac dc"},
		{"feat behind punctuation", "Umbrella -ft. JAY-Z", "umbrella"},
		{"feat behind slash", "Work/ft Rihanna", "work"},
		{"feat embedded in dots", "de.feat.ed", "de"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := songtext.Normalize(tc.input); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Beyoncé (feat. JAY-Z)",
		"Drake - Hotline Bling",
		"Sicko Mode featuring Drake",
		"  Weird --- Input!!! [Live] ",
		"P!nk",
		"Umbrella -ft. JAY-Z",
		"de.feat.ed",
		"Work/ft Rihanna",
	}
	for _, input := range inputs {
		once := songtext.Normalize(input)
		twice := songtext.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}
