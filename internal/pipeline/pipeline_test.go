package pipeline_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"encore/internal/detect"
	"encore/internal/logging"
	"encore/internal/notify"
	"encore/internal/pipeline"
	"encore/internal/requests"
	"encore/internal/testsupport"
)

func smsServer(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(server.Close)
	return server
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestPipelineMatchesTransitionsAndNotifiesOnce(t *testing.T) {
	var smsCalls atomic.Int64
	server := smsServer(t, &smsCalls)

	cfg := testsupport.NewConfig(t)
	cfg.SMS.Enabled = true
	cfg.SMS.AccountSID = "AC123"
	cfg.SMS.AuthToken = "secret"
	cfg.SMS.FromNumber = "+15550009999"
	cfg.SMS.BaseURL = server.URL

	store := testsupport.MustOpenStore(t, cfg)
	req := testsupport.NewRequest(t, store, requests.NewRequest{
		OrgID:          cfg.Performer.OrgID,
		SongArtist:     "drake",
		SongTitle:      "hotline bling",
		RequesterPhone: "+15550001111",
	})

	dispatcher := notify.NewDispatcher(cfg, store, logging.NewNop())
	p := pipeline.New(cfg, store, dispatcher, logging.NewNop())
	if p == nil {
		t.Fatal("expected pipeline to be constructed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	track := detect.Track{Artist: "Drake", Title: "Hotline Bling", DetectedAt: time.Now().UTC(), Source: "file"}
	p.Submit(track)

	waitFor(t, "request to be notified", func() bool {
		current, err := store.GetRequest(ctx, req.ID)
		return err == nil && current != nil && current.NotificationSent
	})

	current, err := store.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if current.Status != requests.StatusPlaying {
		t.Fatalf("expected playing, got %q", current.Status)
	}
	if current.PlayHistoryID == "" {
		t.Fatal("expected play history linkage")
	}
	if got := smsCalls.Load(); got != 1 {
		t.Fatalf("expected exactly one sms, got %d", got)
	}

	play, err := store.GetPlay(ctx, current.PlayHistoryID)
	if err != nil {
		t.Fatalf("GetPlay: %v", err)
	}
	if play == nil || play.MatchedRequestID != req.ID {
		t.Fatalf("play history not linked back: %#v", play)
	}

	// A looped track re-matches but never re-notifies.
	p.Submit(track)
	waitFor(t, "second track to drain", func() bool {
		plays, err := store.RecentPlays(ctx, cfg.Performer.OrgID, 10)
		return err == nil && len(plays) == 2
	})
	if got := smsCalls.Load(); got != 1 {
		t.Fatalf("repeat match must not re-notify, got %d sms calls", got)
	}
}

// A track accepted just before Stop still runs to completion: the play is
// recorded, the request transitions, and the notification both sends and is
// persisted as sent, so a restart cannot re-send it.
func TestPipelineStopCompletesAcceptedWork(t *testing.T) {
	var smsCalls atomic.Int64
	server := smsServer(t, &smsCalls)

	cfg := testsupport.NewConfig(t)
	cfg.SMS.Enabled = true
	cfg.SMS.AccountSID = "AC123"
	cfg.SMS.AuthToken = "secret"
	cfg.SMS.FromNumber = "+15550009999"
	cfg.SMS.BaseURL = server.URL

	store := testsupport.MustOpenStore(t, cfg)
	req := testsupport.NewRequest(t, store, requests.NewRequest{
		OrgID:          cfg.Performer.OrgID,
		SongArtist:     "drake",
		SongTitle:      "hotline bling",
		RequesterPhone: "+15550001111",
	})

	dispatcher := notify.NewDispatcher(cfg, store, logging.NewNop())
	p := pipeline.New(cfg, store, dispatcher, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	p.Submit(detect.Track{Artist: "Drake", Title: "Hotline Bling", DetectedAt: time.Now().UTC(), Source: "file"})
	p.Stop()

	current, err := store.GetRequest(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if current.Status != requests.StatusPlaying {
		t.Fatalf("expected playing after shutdown, got %q", current.Status)
	}
	if !current.NotificationSent {
		t.Fatal("notification flag must be persisted before Stop returns")
	}
	if got := smsCalls.Load(); got != 1 {
		t.Fatalf("expected exactly one sms, got %d", got)
	}

	plays, err := store.RecentPlays(context.Background(), cfg.Performer.OrgID, 5)
	if err != nil {
		t.Fatalf("RecentPlays: %v", err)
	}
	if len(plays) != 1 || plays[0].MatchedRequestID != req.ID {
		t.Fatalf("play history not completed before shutdown: %#v", plays)
	}
}

func TestPipelineRecordsPlayWithoutMatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	p := pipeline.New(cfg, store, nil, logging.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	p.Submit(detect.Track{Artist: "Unknown", Title: "Instrumental", DetectedAt: time.Now().UTC(), Source: "playlist"})

	waitFor(t, "play history row", func() bool {
		plays, err := store.RecentPlays(ctx, cfg.Performer.OrgID, 5)
		return err == nil && len(plays) == 1
	})

	plays, err := store.RecentPlays(ctx, cfg.Performer.OrgID, 5)
	if err != nil {
		t.Fatalf("RecentPlays: %v", err)
	}
	if plays[0].MatchedRequestID != "" {
		t.Fatalf("unmatched play must not link a request: %#v", plays[0])
	}
}

// End-to-end: file write to SMS delivery, with duplicate suppression.
func TestPipelineEndToEndFromFileSource(t *testing.T) {
	var smsCalls atomic.Int64
	server := smsServer(t, &smsCalls)

	cfg := testsupport.NewConfig(t)
	cfg.FileSource.Enabled = true
	cfg.FileSource.StabilityThresholdMs = 20
	cfg.FileSource.DedupeWindowMs = 5000
	cfg.SMS.Enabled = true
	cfg.SMS.AccountSID = "AC123"
	cfg.SMS.AuthToken = "secret"
	cfg.SMS.FromNumber = "+15550009999"
	cfg.SMS.BaseURL = server.URL

	store := testsupport.MustOpenStore(t, cfg)
	req := testsupport.NewRequest(t, store, requests.NewRequest{
		OrgID:          cfg.Performer.OrgID,
		SongArtist:     "drake",
		SongTitle:      "hotline bling",
		RequesterPhone: "+15550001111",
	})

	dispatcher := notify.NewDispatcher(cfg, store, logging.NewNop())
	p := pipeline.New(cfg, store, dispatcher, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("start pipeline: %v", err)
	}
	defer p.Stop()

	source := detect.NewFileSource(cfg, logging.NewNop(), p.Submit)
	if err := source.Start(ctx); err != nil {
		t.Fatalf("start file source: %v", err)
	}
	defer source.Stop()

	if err := os.WriteFile(cfg.FileSource.Path, []byte("Drake - Hotline Bling"), 0o644); err != nil {
		t.Fatalf("write now-playing file: %v", err)
	}

	waitFor(t, "request to be notified", func() bool {
		current, err := store.GetRequest(ctx, req.ID)
		return err == nil && current != nil && current.NotificationSent && current.Status == requests.StatusPlaying
	})
	if got := smsCalls.Load(); got != 1 {
		t.Fatalf("expected exactly one sms, got %d", got)
	}

	// An identical rewrite within the dedupe window produces no new event.
	if err := os.WriteFile(cfg.FileSource.Path, []byte("Drake - Hotline Bling"), 0o644); err != nil {
		t.Fatalf("rewrite now-playing file: %v", err)
	}
	time.Sleep(300 * time.Millisecond)

	plays, err := store.RecentPlays(ctx, cfg.Performer.OrgID, 10)
	if err != nil {
		t.Fatalf("RecentPlays: %v", err)
	}
	if len(plays) != 1 {
		t.Fatalf("duplicate write should not record a second play, got %d", len(plays))
	}
	if got := smsCalls.Load(); got != 1 {
		t.Fatalf("duplicate write should not re-notify, got %d", got)
	}
}
