package detect

import (
	"context"
	"strings"
	"sync"
	"time"

	"encore/internal/songtext"
)

// Track is one detected now-playing entry. Artist and title carry the raw
// extracted strings; normalization happens downstream in the matcher.
type Track struct {
	Artist     string
	Title      string
	DetectedAt time.Time
	Source     string
}

// Key returns the case-insensitive identity of the track used for duplicate
// suppression.
func (t Track) Key() string {
	return songtext.Normalize(t.Artist) + "\x00" + songtext.Normalize(t.Title)
}

// String renders the track for logging.
func (t Track) String() string {
	artist := strings.TrimSpace(t.Artist)
	if artist == "" {
		return strings.TrimSpace(t.Title)
	}
	return artist + " - " + strings.TrimSpace(t.Title)
}

// TrackHandler receives each newly detected track. Handlers must not block;
// sources invoke them inline from their poll or event loop.
type TrackHandler func(Track)

// Source is the common capability of all track watchers.
type Source interface {
	// Start begins watching. The source stops when ctx is canceled or Stop
	// is called.
	Start(ctx context.Context) error
	Stop()
}

// deduper suppresses re-emission of the same (artist, title) pair within a
// rolling window. Keys compare normalized forms so trivial casing or
// punctuation churn in the source does not re-trigger the pipeline.
type deduper struct {
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	lastKey string
	lastAt  time.Time
}

func newDeduper(window time.Duration) *deduper {
	return &deduper{window: window, now: time.Now}
}

// Allow reports whether the track should be emitted and records it as the
// last seen entry when allowed.
func (d *deduper) Allow(track Track) bool {
	key := track.Key()
	if key == "\x00" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if key == d.lastKey && now.Sub(d.lastAt) < d.window {
		return false
	}
	d.lastKey = key
	d.lastAt = now
	return true
}
