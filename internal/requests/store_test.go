package requests_test

import (
	"context"
	"testing"
	"time"

	"encore/internal/requests"
	"encore/internal/testsupport"
)

func TestCreateRequestComputesNormalizedFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	req, err := store.CreateRequest(ctx, requests.NewRequest{
		OrgID:          "org-1",
		SongArtist:     "Beyoncé (feat. JAY-Z)",
		SongTitle:      "Crazy In Love [Remastered]",
		RequesterPhone: "+15550001111",
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if req.ID == "" {
		t.Fatal("expected request ID to be assigned")
	}
	if req.Status != requests.StatusNew {
		t.Fatalf("expected status new, got %q", req.Status)
	}
	if req.NormalizedArtist != "beyonce" {
		t.Fatalf("unexpected normalized artist: %q", req.NormalizedArtist)
	}
	if req.NormalizedTitle != "crazy in love" {
		t.Fatalf("unexpected normalized title: %q", req.NormalizedTitle)
	}
	if req.NotificationSent {
		t.Fatal("expected notification_sent to start false")
	}
}

func TestCreateRequestRequiresOrgAndTitle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := store.CreateRequest(ctx, requests.NewRequest{SongTitle: "Song"}); err == nil {
		t.Fatal("expected error for missing org id")
	}
	if _, err := store.CreateRequest(ctx, requests.NewRequest{OrgID: "org-1"}); err == nil {
		t.Fatal("expected error for missing song title")
	}
}

func TestActiveRequestsScopedToOrg(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	mine := testsupport.NewRequest(t, store, requests.NewRequest{OrgID: "org-1", SongArtist: "Drake", SongTitle: "Hotline Bling"})
	testsupport.NewRequest(t, store, requests.NewRequest{OrgID: "org-2", SongArtist: "Queen", SongTitle: "Bohemian Rhapsody"})

	rejected := testsupport.NewRequest(t, store, requests.NewRequest{OrgID: "org-1", SongArtist: "Oasis", SongTitle: "Wonderwall"})
	if err := store.UpdateStatus(ctx, rejected.ID, requests.StatusRejected); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	active, err := store.ActiveRequests(ctx, "org-1")
	if err != nil {
		t.Fatalf("ActiveRequests: %v", err)
	}
	if len(active) != 1 || active[0].ID != mine.ID {
		t.Fatalf("unexpected active set: %#v", active)
	}
}

func TestMarkPlayingEnforcesSingleActive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.NewRequest(t, store, requests.NewRequest{OrgID: "org-1", SongArtist: "Drake", SongTitle: "Hotline Bling"})
	second := testsupport.NewRequest(t, store, requests.NewRequest{OrgID: "org-1", SongArtist: "Queen", SongTitle: "Bohemian Rhapsody"})
	other := testsupport.NewRequest(t, store, requests.NewRequest{OrgID: "org-2", SongArtist: "Adele", SongTitle: "Hello"})

	detectedAt := time.Date(2026, 8, 28, 21, 30, 0, 0, time.UTC)
	if err := store.MarkPlaying(ctx, first.ID, "org-1", detectedAt, "play-1"); err != nil {
		t.Fatalf("MarkPlaying(first): %v", err)
	}
	if err := store.MarkPlaying(ctx, second.ID, "org-1", detectedAt.Add(3*time.Minute), "play-2"); err != nil {
		t.Fatalf("MarkPlaying(second): %v", err)
	}

	firstAfter, err := store.GetRequest(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetRequest(first): %v", err)
	}
	if firstAfter.Status != requests.StatusPlayed {
		t.Fatalf("expected first request played, got %q", firstAfter.Status)
	}

	secondAfter, err := store.GetRequest(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetRequest(second): %v", err)
	}
	if secondAfter.Status != requests.StatusPlaying {
		t.Fatalf("expected second request playing, got %q", secondAfter.Status)
	}
	if secondAfter.PlayedAt == nil || !secondAfter.PlayedAt.Equal(detectedAt.Add(3*time.Minute)) {
		t.Fatalf("unexpected playedAt: %v", secondAfter.PlayedAt)
	}
	if secondAfter.PlayHistoryID != "play-2" {
		t.Fatalf("unexpected play history link: %q", secondAfter.PlayHistoryID)
	}

	// A different organization's playing request is untouched.
	if err := store.MarkPlaying(ctx, other.ID, "org-2", detectedAt, "play-3"); err != nil {
		t.Fatalf("MarkPlaying(other): %v", err)
	}
	secondAgain, err := store.GetRequest(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetRequest(second again): %v", err)
	}
	if secondAgain.Status != requests.StatusPlaying {
		t.Fatalf("cross-org transition clobbered playing request: %q", secondAgain.Status)
	}

	playing, err := store.ListRequests(ctx, "org-1", requests.StatusPlaying)
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(playing) != 1 {
		t.Fatalf("expected exactly one playing request, got %d", len(playing))
	}
}

func TestMarkNotifiedClaimsOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	req := testsupport.NewRequest(t, store, requests.NewRequest{OrgID: "org-1", SongArtist: "Drake", SongTitle: "Hotline Bling"})

	claimed, err := store.MarkNotified(ctx, req.ID)
	if err != nil {
		t.Fatalf("MarkNotified: %v", err)
	}
	if !claimed {
		t.Fatal("expected first claim to succeed")
	}

	claimed, err = store.MarkNotified(ctx, req.ID)
	if err != nil {
		t.Fatalf("MarkNotified (second): %v", err)
	}
	if claimed {
		t.Fatal("expected second claim to be a no-op")
	}

	after, err := store.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if !after.NotificationSent {
		t.Fatal("expected notification_sent to be true")
	}
}

func TestPlayHistoryLinkIsImmutable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	play, err := store.RecordPlay(ctx, "org-1", "Drake", "Hotline Bling", "file", time.Now().UTC())
	if err != nil {
		t.Fatalf("RecordPlay: %v", err)
	}
	if play.NormalizedArtist != "drake" || play.NormalizedTitle != "hotline bling" {
		t.Fatalf("unexpected normalized fields: %q / %q", play.NormalizedArtist, play.NormalizedTitle)
	}

	if err := store.LinkMatchedRequest(ctx, play.ID, "req-1"); err != nil {
		t.Fatalf("LinkMatchedRequest: %v", err)
	}
	if err := store.LinkMatchedRequest(ctx, play.ID, "req-2"); err != nil {
		t.Fatalf("LinkMatchedRequest (second): %v", err)
	}

	after, err := store.GetPlay(ctx, play.ID)
	if err != nil {
		t.Fatalf("GetPlay: %v", err)
	}
	if after.MatchedRequestID != "req-1" {
		t.Fatalf("expected link to stay req-1, got %q", after.MatchedRequestID)
	}
}

func TestRecentPlaysNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	base := time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC)
	for i, title := range []string{"One", "Two", "Three"} {
		if _, err := store.RecordPlay(ctx, "org-1", "Artist", title, "file", base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("RecordPlay(%s): %v", title, err)
		}
	}

	plays, err := store.RecentPlays(ctx, "org-1", 2)
	if err != nil {
		t.Fatalf("RecentPlays: %v", err)
	}
	if len(plays) != 2 {
		t.Fatalf("expected 2 plays, got %d", len(plays))
	}
	if plays[0].Title != "Three" || plays[1].Title != "Two" {
		t.Fatalf("unexpected order: %s, %s", plays[0].Title, plays[1].Title)
	}
}
