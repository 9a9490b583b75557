// Package matching scores detected tracks against active crowd requests.
package matching

import (
	"encore/internal/detect"
	"encore/internal/requests"
	"encore/internal/songtext"
)

// DefaultThreshold is the minimum per-field similarity a candidate must reach
// on both artist and title to be considered a match.
const DefaultThreshold = 0.85

// Result describes the winning candidate for a detected track.
type Result struct {
	Request     *requests.Request
	ArtistScore float64
	TitleScore  float64
	Score       float64
}

// Matcher selects the best request for a detected track using fuzzy
// similarity on normalized artist and title.
type Matcher struct {
	threshold float64
}

// New builds a matcher. Thresholds outside (0, 1] fall back to the default.
func New(threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Match returns the best candidate above threshold, or nil when nothing
// qualifies. Both artist and title must independently clear the threshold;
// survivors rank by the mean of the two scores. Ties keep the earliest
// candidate in the slice, so callers passing creation-ordered requests get
// first-seen-wins behavior. The function performs no I/O.
func (m *Matcher) Match(track detect.Track, candidates []*requests.Request) *Result {
	artist := songtext.Normalize(track.Artist)
	title := songtext.Normalize(track.Title)
	if artist == "" && title == "" {
		return nil
	}

	var best *Result
	for _, candidate := range candidates {
		if candidate == nil || candidate.NormalizedArtist == "" || candidate.NormalizedTitle == "" {
			continue
		}

		artistScore := songtext.Similarity(artist, candidate.NormalizedArtist)
		if artistScore < m.threshold {
			continue
		}
		titleScore := songtext.Similarity(title, candidate.NormalizedTitle)
		if titleScore < m.threshold {
			continue
		}

		score := (artistScore + titleScore) / 2
		if best == nil || score > best.Score {
			best = &Result{
				Request:     candidate,
				ArtistScore: artistScore,
				TitleScore:  titleScore,
				Score:       score,
			}
		}
	}
	return best
}
