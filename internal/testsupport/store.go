package testsupport

import (
	"context"
	"testing"

	"encore/internal/config"
	"encore/internal/requests"
)

// MustOpenStore opens a requests.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *requests.Store {
	t.Helper()

	store, err := requests.Open(cfg)
	if err != nil {
		t.Fatalf("requests.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRequest creates a crowd request for tests using the provided store.
func NewRequest(t testing.TB, store *requests.Store, intake requests.NewRequest) *requests.Request {
	t.Helper()

	req, err := store.CreateRequest(context.Background(), intake)
	if err != nil {
		t.Fatalf("store.CreateRequest: %v", err)
	}
	return req
}
