package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
	"github.com/jumpchainsearch/jumpchain-server/internal/errors"
	"github.com/jumpchainsearch/jumpchain-server/internal/id"
)

// attachTags loads tags for the given documents in one query.
func (s *Store) attachTags(ctx context.Context, docs []*domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Document, len(docs))
	placeholders := make([]byte, 0, len(docs)*2)
	args := make([]any, len(docs))
	for i, d := range docs {
		byID[d.ID] = d
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args[i] = d.ID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, name, category, created_at
		FROM document_tags
		WHERE document_id IN (`+string(placeholders)+`)
		ORDER BY document_id, name`, args...)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.DocumentTag
		var createdAt string
		if err := rows.Scan(&t.ID, &t.DocumentID, &t.Name, &t.Category, &createdAt); err != nil {
			return fmt.Errorf("scan tag: %w", err)
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return fmt.Errorf("parse tag created_at: %w", err)
		}
		if d, ok := byID[t.DocumentID]; ok {
			d.Tags = append(d.Tags, t)
		}
	}
	return rows.Err()
}

// AddTag attaches a tag to a document. Fails with ErrAlreadyExists if
// the document already carries a tag with that name.
func (s *Store) AddTag(ctx context.Context, tag *domain.DocumentTag) error {
	if !tag.Category.Valid() {
		return errors.Validationf("invalid tag category %q", tag.Category)
	}
	if tag.ID == "" {
		generated, err := id.Generate(id.PrefixTag)
		if err != nil {
			return fmt.Errorf("generate tag id: %w", err)
		}
		tag.ID = generated
	}
	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO document_tags (id, document_id, name, category, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		tag.ID, tag.DocumentID, tag.Name, string(tag.Category), formatTime(tag.CreatedAt))
	if isUniqueViolation(err) {
		return errors.AlreadyExists("tag already present on document").WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

// AddTagIfAbsent inserts the tag only when the document does not
// already carry it. Returns whether a row was actually inserted.
func (s *Store) AddTagIfAbsent(ctx context.Context, documentID, name string, category domain.TagCategory) (bool, error) {
	err := s.AddTag(ctx, &domain.DocumentTag{
		DocumentID: documentID,
		Name:       name,
		Category:   category,
	})
	if errors.Is(err, errors.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RemoveTag deletes a tag by (document, name). Returns whether a row
// was actually removed.
func (s *Store) RemoveTag(ctx context.Context, documentID, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM document_tags WHERE document_id = ? AND name = ?`, documentID, name)
	if err != nil {
		return false, fmt.Errorf("delete tag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListTagNames returns distinct tag names, optionally restricted to a
// category.
func (s *Store) ListTagNames(ctx context.Context, category *domain.TagCategory) ([]string, error) {
	query := `SELECT DISTINCT name FROM document_tags`
	var args []any
	if category != nil {
		query += ` WHERE category = ?`
		args = append(args, string(*category))
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tag names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan tag name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// DeleteTagsByCategory wipes every tag in a category. Used by bulk
// regeneration before recomputing derived tags.
func (s *Store) DeleteTagsByCategory(ctx context.Context, category domain.TagCategory) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM document_tags WHERE category = ?`, string(category))
	if err != nil {
		return 0, fmt.Errorf("delete tags by category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
