package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumpchainsearch/jumpchain-server/internal/store"
	"github.com/jumpchainsearch/jumpchain-server/internal/store/sqlite"
)

func newTestCount(t *testing.T) (*DocumentCountService, store.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := sqlite.Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return NewDocumentCountService(st, logger), st
}

func TestDocumentCount_CachesWithinTTL(t *testing.T) {
	svc, st := newTestCount(t)
	ctx := context.Background()

	seedDocument(t, st, "doc-1", "gdrive-1")

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// A new document is invisible until the TTL lapses or Refresh is
	// called: that staleness is the documented contract.
	seedDocument(t, st, "doc-2", "gdrive-2")
	n, err = svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDocumentCount_TTLExpiry(t *testing.T) {
	svc, st := newTestCount(t)
	ctx := context.Background()

	seedDocument(t, st, "doc-1", "gdrive-1")

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	seedDocument(t, st, "doc-2", "gdrive-2")

	// Advance the clock past the TTL.
	svc.now = func() time.Time { return time.Now().Add(countTTL + time.Second) }
	n, err = svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDocumentCount_ServesStaleOnFailure(t *testing.T) {
	svc, st := newTestCount(t)
	ctx := context.Background()

	seedDocument(t, st, "doc-1", "gdrive-1")
	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Break the store; a forced refresh falls back to the stale value.
	require.NoError(t, st.Close())
	n, err = svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
