package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jumpchainsearch/jumpchain-server/internal/store"
)

// bm25 column weights: name, folder_path, tags, extracted_text. Title
// hits matter most, body hits least, mirroring the in-process ranker.
const bm25Weights = `bm25(documents_fts, 10.0, 5.0, 3.0, 1.0)`

// SearchFTS runs a ranked full-text query. Results are ordered
// ascending by the bm25 rank, lower meaning more relevant; callers
// must preserve that direction.
func (s *Store) SearchFTS(ctx context.Context, match string, limit, offset int) ([]store.FTSHit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, `+bm25Weights+` AS rank
		FROM documents_fts f
		JOIN documents d ON d.rowid = f.rowid
		WHERE documents_fts MATCH ?
		ORDER BY rank
		LIMIT ? OFFSET ?`, match, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("fts search %q: %w", match, err)
	}
	defer rows.Close()

	var hits []store.FTSHit
	for rows.Next() {
		var h store.FTSHit
		if err := rows.Scan(&h.DocumentID, &h.Rank); err != nil {
			return nil, fmt.Errorf("scan fts hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// CountFTS returns the total number of matches ignoring pagination.
func (s *Store) CountFTS(ctx context.Context, match string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents_fts WHERE documents_fts MATCH ?`, match).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("fts count %q: %w", match, err)
	}
	return n, nil
}

// RebuildFTS repopulates the index from the primary tables. Needed
// after restoring a database or bulk-loading outside the triggers.
// The table is contentless, so rebuild means delete-all plus a full
// re-insert rather than the 'rebuild' command.
func (s *Store) RebuildFTS(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents_fts(documents_fts) VALUES('delete-all')`); err != nil {
			return fmt.Errorf("fts delete-all: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents_fts(rowid, name, folder_path, tags, extracted_text)
			SELECT
				d.rowid,
				d.name,
				d.folder_path,
				COALESCE((SELECT GROUP_CONCAT(t.name, ' ') FROM document_tags t WHERE t.document_id = d.id), ''),
				d.extracted_text
			FROM documents d`)
		if err != nil {
			return fmt.Errorf("fts repopulate: %w", err)
		}
		return nil
	})
}

// OptimizeFTS merges the index's b-trees into a single segment.
func (s *Store) OptimizeFTS(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents_fts(documents_fts) VALUES('optimize')`); err != nil {
		return fmt.Errorf("fts optimize: %w", err)
	}
	return nil
}
