// Package pipeline executes the per-track unit of work: record the play,
// match it against active requests, transition the matched request, and
// notify the requester.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"encore/internal/config"
	"encore/internal/detect"
	"encore/internal/logging"
	"encore/internal/matching"
	"encore/internal/notify"
	"encore/internal/requests"
)

const defaultQueueSize = 16

// Pipeline consumes detected tracks from a buffered queue so a slow store or
// gateway call never stalls a watcher's event loop.
type Pipeline struct {
	orgID      string
	store      *requests.Store
	matcher    *matching.Matcher
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
	tracks     chan detect.Track

	mu      sync.Mutex
	running bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a pipeline from configuration and its collaborators.
func New(cfg *config.Config, store *requests.Store, dispatcher *notify.Dispatcher, logger *slog.Logger) *Pipeline {
	if cfg == nil || store == nil {
		return nil
	}

	size := cfg.Pipeline.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}

	return &Pipeline{
		orgID:      cfg.Performer.OrgID,
		store:      store,
		matcher:    matching.New(cfg.Matching.Threshold),
		dispatcher: dispatcher,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
		tracks:     make(chan detect.Track, size),
	}
}

// Submit enqueues a detected track. It never blocks; when the queue is full
// the track is dropped with a warning, since a fresher detection will follow.
func (p *Pipeline) Submit(track detect.Track) {
	if p == nil {
		return
	}
	select {
	case p.tracks <- track:
	default:
		if p.logger != nil {
			p.logger.Warn("pipeline queue full, dropping track",
				logging.String("artist", track.Artist),
				logging.String("title", track.Title))
		}
	}
}

// Start launches the worker.
func (p *Pipeline) Start(ctx context.Context) error {
	if p == nil {
		return errors.New("pipeline unavailable")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return errors.New("pipeline already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.ctx = runCtx
	p.cancel = cancel
	p.running = true

	p.wg.Add(1)
	go p.loop()
	return nil
}

// Stop halts the worker after queued and in-flight tracks finish.
func (p *Pipeline) Stop() {
	if p == nil {
		return
	}
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.running = false
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

func (p *Pipeline) loop() {
	defer p.wg.Done()

	// Each track runs detached from the run context so cancellation during a
	// unit of work cannot leave the store and the gateways disagreeing about
	// whether a notification went out. The store and HTTP clients carry their
	// own timeouts, so shutdown stays bounded.
	workCtx := context.WithoutCancel(p.ctx)

	for {
		select {
		case <-p.ctx.Done():
			p.drain(workCtx)
			return
		case track := <-p.tracks:
			p.handle(workCtx, track)
		}
	}
}

// drain finishes tracks already accepted by Submit before Stop returns.
func (p *Pipeline) drain(ctx context.Context) {
	for {
		select {
		case track := <-p.tracks:
			p.handle(ctx, track)
		default:
			return
		}
	}
}

// handle runs one detected track through the full pipeline. Bookkeeping
// failures (play history, state transition) are logged and skipped over so a
// real-time cue is never silently lost to a secondary write error.
func (p *Pipeline) handle(ctx context.Context, track detect.Track) {
	logger := p.logger
	if logger != nil {
		logger = logger.With(
			logging.String("artist", track.Artist),
			logging.String("title", track.Title),
			logging.String(logging.FieldSource, track.Source))
	}

	var playID string
	play, err := p.store.RecordPlay(ctx, p.orgID, track.Artist, track.Title, track.Source, track.DetectedAt)
	if err != nil {
		if logger != nil {
			logger.Warn("record play history", logging.Error(err))
		}
	} else {
		playID = play.ID
	}

	candidates, err := p.store.ActiveRequests(ctx, p.orgID)
	if err != nil {
		if logger != nil {
			logger.Error("load active requests", logging.Error(err))
		}
		return
	}

	result := p.matcher.Match(track, candidates)
	if result == nil {
		if logger != nil {
			logger.Debug("no matching request")
		}
		return
	}
	matched := result.Request
	if logger != nil {
		logger.Info("request matched",
			logging.String(logging.FieldRequestID, matched.ID),
			logging.Float64("score", result.Score))
	}

	if err := p.store.MarkPlaying(ctx, matched.ID, p.orgID, track.DetectedAt, playID); err != nil {
		if logger != nil {
			logger.Warn("mark request playing", logging.Error(err))
		}
	}
	if playID != "" {
		if err := p.store.LinkMatchedRequest(ctx, playID, matched.ID); err != nil {
			if logger != nil {
				logger.Warn("link play history", logging.Error(err))
			}
		}
	}

	if p.dispatcher == nil {
		return
	}
	if _, err := p.dispatcher.Notify(ctx, matched); err != nil {
		if logger != nil {
			logger.Warn("notify requester", logging.Error(err))
		}
	}
}
