package detect

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"encore/internal/config"
	"encore/internal/logging"
)

// FileSource watches a now-playing text file that DJ software rewrites with
// the current track. Writes are debounced by a settle period so a partially
// written file is never parsed, and the directory (not the file) is watched
// so atomic rename-replace writes keep working.
type FileSource struct {
	path         string
	settle       time.Duration
	pollInterval time.Duration
	logger       *slog.Logger
	handler      TrackHandler
	dedupe       *deduper

	mu      sync.Mutex
	running bool
	lastRaw string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFileSource builds a file watcher from configuration. Returns nil when
// the source is disabled or has no path configured.
func NewFileSource(cfg *config.Config, logger *slog.Logger, handler TrackHandler) *FileSource {
	if cfg == nil || !cfg.FileSource.Enabled || handler == nil {
		return nil
	}
	path := cfg.FileSource.Path
	if path == "" {
		return nil
	}

	settle := time.Duration(cfg.FileSource.StabilityThresholdMs) * time.Millisecond
	if settle <= 0 {
		settle = 100 * time.Millisecond
	}
	poll := time.Duration(cfg.FileSource.PollIntervalMs) * time.Millisecond
	if poll <= 0 {
		poll = 5 * time.Second
	}
	window := time.Duration(cfg.FileSource.DedupeWindowMs) * time.Millisecond
	if window <= 0 {
		window = 5 * time.Second
	}

	return &FileSource{
		path:         path,
		settle:       settle,
		pollInterval: poll,
		logger:       logging.NewComponentLogger(logger, "file-source"),
		handler:      handler,
		dedupe:       newDeduper(window),
	}
}

// Start begins watching the configured file.
func (s *FileSource) Start(ctx context.Context) error {
	if s == nil {
		return errors.New("file source unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("file source already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.ctx = runCtx
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.loop()
	return nil
}

// Stop halts the watcher and waits for the loop to exit.
func (s *FileSource) Stop() {
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

func (s *FileSource) loop() {
	defer s.wg.Done()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		if s.logger != nil {
			s.logger.Error("create filesystem watcher", logging.Error(err))
		}
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	base := filepath.Base(s.path)
	if err := watcher.Add(dir); err != nil && s.logger != nil {
		s.logger.Warn("watch directory", logging.String("dir", dir), logging.Error(err))
	}

	// Pick up content that existed before the watch started.
	s.readAndEmit()

	var settle *time.Timer
	var settleC <-chan time.Time

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			if settle != nil {
				settle.Stop()
			}
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if settle == nil {
				settle = time.NewTimer(s.settle)
			} else {
				if !settle.Stop() {
					select {
					case <-settle.C:
					default:
					}
				}
				settle.Reset(s.settle)
			}
			settleC = settle.C
		case <-settleC:
			settleC = nil
			s.readAndEmit()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if s.logger != nil {
				s.logger.Warn("filesystem watch error", logging.Error(err))
			}
		case <-ticker.C:
			// The watch dies silently when the directory is removed and
			// recreated. Re-adding is idempotent and revives it.
			if err := watcher.Add(dir); err != nil && s.logger != nil {
				s.logger.Warn("rewatch directory", logging.String("dir", dir), logging.Error(err))
			}
			s.readAndEmit()
		}
	}
}

// readAndEmit reads the file, skips unchanged raw content, parses it, and
// hands a deduplicated track to the handler. Read failures are transient
// during atomic replaces, so they log and wait for the next event.
func (s *FileSource) readAndEmit() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if s.logger != nil {
			if errors.Is(err, os.ErrNotExist) {
				// Momentarily absent mid rename-replace; the create event or
				// the next poll tick retries.
				s.logger.Debug("now-playing file absent", logging.String("path", s.path))
			} else {
				s.logger.Warn("read now-playing file", logging.Error(err))
			}
		}
		return
	}

	content := string(data)
	s.mu.Lock()
	unchanged := content == s.lastRaw
	if !unchanged {
		s.lastRaw = content
	}
	s.mu.Unlock()
	if unchanged {
		return
	}

	artist, title, ok := ParseNowPlaying(content)
	if !ok {
		if s.logger != nil {
			s.logger.Warn("unrecognized now-playing content", logging.Int("bytes", len(content)))
		}
		return
	}

	track := Track{
		Artist:     artist,
		Title:      title,
		DetectedAt: time.Now().UTC(),
		Source:     "file",
	}
	if !s.dedupe.Allow(track) {
		return
	}

	if s.logger != nil {
		s.logger.Info("track detected",
			logging.String("artist", artist),
			logging.String("title", title),
			logging.String(logging.FieldSource, "file"))
	}
	s.handler(track)
}
