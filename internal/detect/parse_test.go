package detect

import "testing"

func TestParseNowPlayingFormats(t *testing.T) {
	cases := []struct {
		name    string
		content string
		artist  string
		title   string
		ok      bool
	}{
		{name: "dash", content: "Drake - Hotline Bling", artist: "Drake", title: "Hotline Bling", ok: true},
		{name: "en dash", content: "Drake – Hotline Bling", artist: "Drake", title: "Hotline Bling", ok: true},
		{name: "em dash", content: "Drake — Hotline Bling", artist: "Drake", title: "Hotline Bling", ok: true},
		{name: "dash with trailing newline", content: "Drake - Hotline Bling\n", artist: "Drake", title: "Hotline Bling", ok: true},
		{name: "title by artist", content: "Hotline Bling by Drake", artist: "Drake", title: "Hotline Bling", ok: true},
		{name: "json", content: `{"artist":"Drake","title":"Hotline Bling"}`, artist: "Drake", title: "Hotline Bling", ok: true},
		{name: "two line", content: "Drake\nHotline Bling", artist: "Drake", title: "Hotline Bling", ok: true},
		{name: "hyphenated title survives", content: "Jay-Z - 99 Problems", artist: "Jay-Z", title: "99 Problems", ok: true},
		{name: "empty", content: "", ok: false},
		{name: "whitespace only", content: "   \n  ", ok: false},
		{name: "single token", content: "Intermission", ok: false},
		{name: "json missing title", content: `{"artist":"Drake"}`, ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			artist, title, ok := ParseNowPlaying(tc.content)
			if ok != tc.ok {
				t.Fatalf("ParseNowPlaying(%q) ok = %v, want %v", tc.content, ok, tc.ok)
			}
			if !tc.ok {
				return
			}
			if artist != tc.artist || title != tc.title {
				t.Fatalf("ParseNowPlaying(%q) = (%q, %q), want (%q, %q)", tc.content, artist, title, tc.artist, tc.title)
			}
		})
	}
}

func TestParseNowPlayingPrefersDashOverBy(t *testing.T) {
	// A line containing both separators resolves via the dash strategy first.
	artist, title, ok := ParseNowPlaying("Stand by Me - Ben E. King")
	if !ok {
		t.Fatal("expected a parse")
	}
	if artist != "Stand by Me" || title != "Ben E. King" {
		t.Fatalf("unexpected parse: (%q, %q)", artist, title)
	}
}

func TestParsePlaylistPageTagged(t *testing.T) {
	body := `<html><body>
        <div class="entry">
            <span class="track-artist">Drake</span>
            <span class="track-title">Hotline Bling</span>
        </div>
    </body></html>`

	artist, title, ok := parsePlaylistPage(body)
	if !ok {
		t.Fatal("expected tagged parse to succeed")
	}
	if artist != "Drake" || title != "Hotline Bling" {
		t.Fatalf("unexpected parse: (%q, %q)", artist, title)
	}
}

func TestParsePlaylistPageTimeAgoFallback(t *testing.T) {
	body := `<html><body>
        <ul>
            <li>3 minutes ago Drake &#8211; Hotline Bling</li>
            <li>12 minutes ago Queen &#8211; Bohemian Rhapsody</li>
        </ul>
    </body></html>`

	artist, title, ok := parsePlaylistPage(body)
	if !ok {
		t.Fatal("expected time-ago parse to succeed")
	}
	if artist != "Drake" || title != "Hotline Bling" {
		t.Fatalf("unexpected parse: (%q, %q)", artist, title)
	}
}

func TestParsePlaylistPageNoEntry(t *testing.T) {
	if _, _, ok := parsePlaylistPage("<html><body>No playlist yet</body></html>"); ok {
		t.Fatal("expected no parse from empty page")
	}
}
