package requests

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a crowd request.
type Status string

const (
	StatusNew          Status = "new"
	StatusAcknowledged Status = "acknowledged"
	StatusPaid         Status = "paid"
	StatusPlaying      Status = "playing"
	StatusPlayed       Status = "played"
	StatusRejected     Status = "rejected"
)

var allStatuses = []Status{
	StatusNew,
	StatusAcknowledged,
	StatusPaid,
	StatusPlaying,
	StatusPlayed,
	StatusRejected,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// activeStatuses are the statuses eligible for track matching. A playing
// request stays eligible so a failed notification gets retried when the same
// track is detected again.
var activeStatuses = []Status{
	StatusNew,
	StatusAcknowledged,
	StatusPaid,
	StatusPlaying,
}

// Request is a crowd song request persisted in SQLite.
type Request struct {
	ID               string
	OrgID            string
	SongArtist       string
	SongTitle        string
	NormalizedArtist string
	NormalizedTitle  string
	Status           Status
	NotificationSent bool
	RequesterName    string
	RequesterPhone   string
	RequesterEmail   string
	PlayedAt         *time.Time
	PlayHistoryID    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PlayHistory records one detected track. It is created once per detection
// and, when a match succeeds, linked to the fulfilled request. The link is
// immutable once set.
type PlayHistory struct {
	ID               string
	OrgID            string
	Artist           string
	Title            string
	NormalizedArtist string
	NormalizedTitle  string
	Source           string
	PlayedAt         time.Time
	MatchedRequestID string
	CreatedAt        time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ActiveStatuses returns the statuses eligible for matching.
func ActiveStatuses() []Status {
	cp := make([]Status, len(activeStatuses))
	copy(cp, activeStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsActive reports whether the request is eligible for matching.
func (r Request) IsActive() bool {
	for _, status := range activeStatuses {
		if r.Status == status {
			return true
		}
	}
	return false
}
