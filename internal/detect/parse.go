package detect

import (
	"encoding/json"
	"regexp"
	"strings"
)

// parseStrategy attempts to extract (artist, title) from raw now-playing
// content. Strategies are tried in order; the first success wins.
type parseStrategy func(content string) (artist, title string, ok bool)

var fileStrategies = []parseStrategy{
	parseDashDelimited,
	parseTitleByArtist,
	parseJSONPayload,
	parseTwoLine,
}

// ParseNowPlaying extracts a track from the raw content of a now-playing
// file. It returns false when no strategy recognizes the content.
func ParseNowPlaying(content string) (artist, title string, ok bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", "", false
	}
	for _, strategy := range fileStrategies {
		if artist, title, ok = strategy(trimmed); ok {
			return artist, title, true
		}
	}
	return "", "", false
}

// dashSeparators covers the hyphen plus en and em dashes that DJ software
// emits between artist and title.
var dashSeparator = regexp.MustCompile(`\s+[-\x{2013}\x{2014}]\s+`)

func parseDashDelimited(content string) (string, string, bool) {
	line := firstLine(content)
	loc := dashSeparator.FindStringIndex(line)
	if loc == nil {
		return "", "", false
	}
	artist := strings.TrimSpace(line[:loc[0]])
	title := strings.TrimSpace(line[loc[1]:])
	if artist == "" || title == "" {
		return "", "", false
	}
	return artist, title, true
}

var byClause = regexp.MustCompile(`(?i)^(.+?)\s+by\s+(.+)$`)

func parseTitleByArtist(content string) (string, string, bool) {
	line := firstLine(content)
	groups := byClause.FindStringSubmatch(line)
	if groups == nil {
		return "", "", false
	}
	title := strings.TrimSpace(groups[1])
	artist := strings.TrimSpace(groups[2])
	if artist == "" || title == "" {
		return "", "", false
	}
	return artist, title, true
}

func parseJSONPayload(content string) (string, string, bool) {
	if !strings.HasPrefix(content, "{") {
		return "", "", false
	}
	var payload struct {
		Artist string `json:"artist"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return "", "", false
	}
	artist := strings.TrimSpace(payload.Artist)
	title := strings.TrimSpace(payload.Title)
	if artist == "" || title == "" {
		return "", "", false
	}
	return artist, title, true
}

// parseTwoLine treats line one as the artist and line two as the title.
func parseTwoLine(content string) (string, string, bool) {
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return "", "", false
	}
	artist := strings.TrimSpace(lines[0])
	title := strings.TrimSpace(lines[1])
	if artist == "" || title == "" {
		return "", "", false
	}
	return artist, title, true
}

func firstLine(content string) string {
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		return strings.TrimSpace(content[:idx])
	}
	return content
}
