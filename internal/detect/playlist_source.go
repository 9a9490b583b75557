package detect

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"encore/internal/config"
	"encore/internal/logging"
)

const maxPlaylistBody = 1 << 20

// PlaylistSource polls a performer's public live playlist page and extracts
// the most recent entry. Missing pages and unparseable responses are treated
// as "no new track", never as fatal errors.
type PlaylistSource struct {
	url          string
	pollInterval time.Duration
	client       *http.Client
	limiter      *rate.Limiter
	logger       *slog.Logger
	handler      TrackHandler
	dedupe       *deduper

	mu      sync.Mutex
	running bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPlaylistSource builds a playlist poller from configuration. Returns nil
// when the source is disabled or missing a username.
func NewPlaylistSource(cfg *config.Config, logger *slog.Logger, handler TrackHandler) *PlaylistSource {
	if cfg == nil || !cfg.LivePlaylist.Enabled || handler == nil {
		return nil
	}
	username := strings.TrimSpace(cfg.LivePlaylist.Username)
	if username == "" {
		return nil
	}

	poll := time.Duration(cfg.LivePlaylist.PollIntervalMs) * time.Millisecond
	if poll <= 0 {
		poll = 5 * time.Second
	}
	window := time.Duration(cfg.LivePlaylist.DedupeWindowMs) * time.Millisecond
	if window <= 0 {
		window = 30 * time.Second
	}
	timeout := time.Duration(cfg.LivePlaylist.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	base := strings.TrimRight(cfg.LivePlaylist.BaseURL, "/")
	return &PlaylistSource{
		url:          fmt.Sprintf("%s/%s", base, username),
		pollInterval: poll,
		client:       &http.Client{Timeout: timeout},
		limiter:      rate.NewLimiter(rate.Every(time.Second), 1),
		logger:       logging.NewComponentLogger(logger, "playlist-source"),
		handler:      handler,
		dedupe:       newDeduper(window),
	}
}

// Start begins polling the playlist page.
func (s *PlaylistSource) Start(ctx context.Context) error {
	if s == nil {
		return errors.New("playlist source unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("playlist source already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.ctx = runCtx
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.loop()
	return nil
}

// Stop halts the poller and waits for the loop to exit.
func (s *PlaylistSource) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *PlaylistSource) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.poll()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.poll()
		}
	}
}

func (s *PlaylistSource) poll() {
	if err := s.limiter.Wait(s.ctx); err != nil {
		return
	}

	body, err := s.fetch()
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("fetch playlist page", logging.Error(err))
		}
		return
	}

	artist, title, ok := parsePlaylistPage(body)
	if !ok {
		if s.logger != nil {
			s.logger.Warn("no playlist entry recognized", logging.String("url", s.url))
		}
		return
	}

	track := Track{
		Artist:     artist,
		Title:      title,
		DetectedAt: time.Now().UTC(),
		Source:     "playlist",
	}
	if !s.dedupe.Allow(track) {
		return
	}

	if s.logger != nil {
		s.logger.Info("track detected",
			logging.String("artist", artist),
			logging.String("title", title),
			logging.String(logging.FieldSource, "playlist"))
	}
	s.handler(track)
}

func (s *PlaylistSource) fetch() (string, error) {
	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("playlist page returned %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistBody))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var (
	taggedArtist = regexp.MustCompile(`(?is)<[^>]*class="[^"]*artist[^"]*"[^>]*>\s*([^<]+?)\s*<`)
	taggedTitle  = regexp.MustCompile(`(?is)<[^>]*class="[^"]*title[^"]*"[^>]*>\s*([^<]+?)\s*<`)

	htmlTag = regexp.MustCompile(`<[^>]*>`)
	timeAgo = regexp.MustCompile(`(?im)(?:just now|moments ago|\d+\s*(?:sec(?:ond)?s?|min(?:ute)?s?|hours?|days?)\s+ago)\s*[:.\-]?\s*(.+?)\s+[-\x{2013}\x{2014}]\s+(.+?)\s*$`)
)

// parsePlaylistPage recovers the newest entry from the playlist HTML. Tagged
// artist/title blocks are preferred; a time-ago marker followed by
// "Artist - Title" is the fallback for unstyled pages.
func parsePlaylistPage(body string) (artist, title string, ok bool) {
	artistMatch := taggedArtist.FindStringSubmatch(body)
	titleMatch := taggedTitle.FindStringSubmatch(body)
	if artistMatch != nil && titleMatch != nil {
		artist = strings.TrimSpace(html.UnescapeString(artistMatch[1]))
		title = strings.TrimSpace(html.UnescapeString(titleMatch[1]))
		if artist != "" && title != "" {
			return artist, title, true
		}
	}

	text := html.UnescapeString(htmlTag.ReplaceAllString(body, " "))
	if groups := timeAgo.FindStringSubmatch(text); groups != nil {
		artist = strings.TrimSpace(groups[1])
		title = strings.TrimSpace(groups[2])
		if artist != "" && title != "" {
			return artist, title, true
		}
	}

	return "", "", false
}
