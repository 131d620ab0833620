package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jumpchainsearch/jumpchain-server/internal/store"
)

// countTTL is how long a cached document count is considered fresh.
// The count feeds dashboards and the health endpoint, where thirty
// seconds of staleness is acceptable.
const countTTL = 30 * time.Second

// DocumentCountService caches the total document count so hot read
// paths do not issue a COUNT(*) per request.
type DocumentCountService struct {
	store  store.Store
	logger *slog.Logger

	mu        sync.Mutex
	count     int
	refreshed time.Time

	// now is swappable for TTL tests.
	now func() time.Time
}

// NewDocumentCountService creates a new document count service.
func NewDocumentCountService(st store.Store, logger *slog.Logger) *DocumentCountService {
	return &DocumentCountService{
		store:  st,
		logger: logger,
		now:    time.Now,
	}
}

// Count returns the cached document count, refreshing it when stale.
func (s *DocumentCountService) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.refreshed.IsZero() && s.now().Sub(s.refreshed) < countTTL {
		return s.count, nil
	}
	return s.refreshLocked(ctx)
}

// Refresh forces a re-count, regardless of TTL. Call after bulk
// mutations like a catalog re-scan.
func (s *DocumentCountService) Refresh(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *DocumentCountService) refreshLocked(ctx context.Context) (int, error) {
	n, err := s.store.CountDocuments(ctx)
	if err != nil {
		// Serve the stale count if we have one; the caller prefers an
		// approximate number over an error.
		if !s.refreshed.IsZero() {
			s.logger.Warn("document count refresh failed, serving stale value",
				"stale_count", s.count, "error", err)
			return s.count, nil
		}
		return 0, err
	}
	s.count = n
	s.refreshed = s.now()
	return n, nil
}
