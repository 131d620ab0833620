package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
)

// IncrementViewCount bumps a document's view counter, creating the row
// on first view.
func (s *Store) IncrementViewCount(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO document_views (document_id, view_count, last_viewed_at)
		VALUES (?, 1, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			view_count = view_count + 1,
			last_viewed_at = excluded.last_viewed_at`,
		documentID, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// GetViewCount returns the view record for a document. A document that
// was never viewed yields a zero count, not an error.
func (s *Store) GetViewCount(ctx context.Context, documentID string) (*domain.DocumentViewCount, error) {
	var v domain.DocumentViewCount
	var lastViewed string
	err := s.db.QueryRowContext(ctx, `
		SELECT document_id, view_count, last_viewed_at
		FROM document_views WHERE document_id = ?`, documentID).
		Scan(&v.DocumentID, &v.ViewCount, &lastViewed)
	if err == sql.ErrNoRows {
		return &domain.DocumentViewCount{DocumentID: documentID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get view count: %w", err)
	}
	if v.LastViewedAt, err = parseTime(lastViewed); err != nil {
		return nil, fmt.Errorf("parse last_viewed_at: %w", err)
	}
	return &v, nil
}
