package sqlite

import (
	"context"
	"fmt"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
)

// UpsertUserOverride records a user's personal tag decision, replacing
// any previous decision for the same tag on the same document.
func (s *Store) UpsertUserOverride(ctx context.Context, o *domain.UserTagOverride) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_tag_overrides (id, user_id, document_id, tag_name, tag_category, added, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, document_id, tag_name) DO UPDATE SET
			tag_category = excluded.tag_category,
			added = excluded.added,
			created_at = excluded.created_at`,
		o.ID, o.UserID, o.DocumentID, o.TagName, string(o.TagCategory), o.Added, formatTime(o.CreatedAt))
	if err != nil {
		return fmt.Errorf("upsert override: %w", err)
	}
	return nil
}

// ListUserOverrides returns a user's overrides, optionally restricted
// to one document.
func (s *Store) ListUserOverrides(ctx context.Context, userID, documentID string) ([]domain.UserTagOverride, error) {
	query := `SELECT id, user_id, document_id, tag_name, tag_category, added, created_at
		FROM user_tag_overrides WHERE user_id = ?`
	args := []any{userID}
	if documentID != "" {
		query += ` AND document_id = ?`
		args = append(args, documentID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	var out []domain.UserTagOverride
	for rows.Next() {
		var o domain.UserTagOverride
		var createdAt string
		if err := rows.Scan(&o.ID, &o.UserID, &o.DocumentID, &o.TagName, &o.TagCategory, &o.Added, &createdAt); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		if o.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
