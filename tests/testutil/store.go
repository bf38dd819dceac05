package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/postium/postium/internal/source/synth"
	"github.com/postium/postium/internal/store"
)

// Seed is the fixed seed used by test stores so every test sees the
// same generated mailboxes.
const Seed = 42

// NewTestStore creates a store backed by a deterministic synthetic
// source and loads all of its accounts.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()

	s := store.New(synth.New(Seed), DiscardLogger())
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("initializing test store: %v", err)
	}
	return s
}

// DiscardLogger returns a logger that drops everything, keeping test
// output readable.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
