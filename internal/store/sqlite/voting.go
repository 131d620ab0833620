package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
	"github.com/jumpchainsearch/jumpchain-server/internal/errors"
	"github.com/jumpchainsearch/jumpchain-server/internal/id"
)

// CreateSuggestion stores a new pending tag suggestion.
func (s *Store) CreateSuggestion(ctx context.Context, sug *domain.TagSuggestion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tag_suggestions (id, document_id, tag_name, tag_category,
			suggested_by, reason, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sug.ID, sug.DocumentID, sug.TagName, string(sug.TagCategory),
		sug.SuggestedBy, sug.Reason, string(sug.Status), formatTime(sug.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert suggestion: %w", err)
	}
	return nil
}

// GetSuggestion returns a suggestion with its votes.
func (s *Store) GetSuggestion(ctx context.Context, sid string) (*domain.TagSuggestion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, tag_name, tag_category, suggested_by, reason, status, created_at, resolved_at
		FROM tag_suggestions WHERE id = ?`, sid)
	sug, err := scanSuggestion(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("suggestion %s not found", sid)
	}
	if err != nil {
		return nil, fmt.Errorf("get suggestion: %w", err)
	}
	if sug.Votes, err = s.ListVotes(ctx, domain.TargetSuggestion, sug.ID); err != nil {
		return nil, err
	}
	return sug, nil
}

// CreateRemovalRequest stores a new pending tag removal request.
func (s *Store) CreateRemovalRequest(ctx context.Context, r *domain.TagRemovalRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tag_removal_requests (id, document_id, tag_name, tag_category,
			requested_by, reason, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.DocumentID, r.TagName, string(r.TagCategory),
		r.RequestedBy, r.Reason, string(r.Status), formatTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert removal request: %w", err)
	}
	return nil
}

// GetRemovalRequest returns a removal request with its votes.
func (s *Store) GetRemovalRequest(ctx context.Context, rid string) (*domain.TagRemovalRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, tag_name, tag_category, requested_by, reason, status, created_at, resolved_at
		FROM tag_removal_requests WHERE id = ?`, rid)
	req, err := scanRemoval(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("removal request %s not found", rid)
	}
	if err != nil {
		return nil, fmt.Errorf("get removal request: %w", err)
	}
	if req.Votes, err = s.ListVotes(ctx, domain.TargetRemoval, req.ID); err != nil {
		return nil, err
	}
	return req, nil
}

// ListPendingSuggestions returns pending suggestions, optionally for a
// single document. Votes are attached.
func (s *Store) ListPendingSuggestions(ctx context.Context, documentID string) ([]*domain.TagSuggestion, error) {
	query := `SELECT id, document_id, tag_name, tag_category, suggested_by, reason, status, created_at, resolved_at
		FROM tag_suggestions WHERE status = ?`
	args := []any{string(domain.StatusPending)}
	if documentID != "" {
		query += ` AND document_id = ?`
		args = append(args, documentID)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending suggestions: %w", err)
	}
	defer rows.Close()

	var out []*domain.TagSuggestion
	for rows.Next() {
		sug, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		out = append(out, sug)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, sug := range out {
		if sug.Votes, err = s.ListVotes(ctx, domain.TargetSuggestion, sug.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ListPendingRemovals returns pending removal requests, optionally for
// a single document. Votes are attached.
func (s *Store) ListPendingRemovals(ctx context.Context, documentID string) ([]*domain.TagRemovalRequest, error) {
	query := `SELECT id, document_id, tag_name, tag_category, requested_by, reason, status, created_at, resolved_at
		FROM tag_removal_requests WHERE status = ?`
	args := []any{string(domain.StatusPending)}
	if documentID != "" {
		query += ` AND document_id = ?`
		args = append(args, documentID)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending removals: %w", err)
	}
	defer rows.Close()

	var out []*domain.TagRemovalRequest
	for rows.Next() {
		req, err := scanRemoval(rows)
		if err != nil {
			return nil, fmt.Errorf("scan removal: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, req := range out {
		if req.Votes, err = s.ListVotes(ctx, domain.TargetRemoval, req.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpsertVote records a vote, replacing the user's previous vote on the
// same target if one exists. Re-voting resets the weight and
// timestamp. Returns whether a new row was created.
func (s *Store) UpsertVote(ctx context.Context, v *domain.TagVote) (bool, error) {
	if v.ID == "" {
		generated, err := id.Generate(id.PrefixVote)
		if err != nil {
			return false, fmt.Errorf("generate vote id: %w", err)
		}
		v.ID = generated
	}

	// The UPDATE branch keeps the existing row's id, so the returned
	// id tells us which branch ran.
	var storedID string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tag_votes (id, target_kind, target_id, user_id, in_favor, weight, cast_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(target_kind, target_id, user_id) DO UPDATE SET
			in_favor = excluded.in_favor,
			weight = excluded.weight,
			cast_at = excluded.cast_at
		RETURNING id`,
		v.ID, string(v.TargetKind), v.TargetID, v.UserID, v.InFavor, v.Weight, formatTime(v.CastAt)).
		Scan(&storedID)
	if err != nil {
		return false, fmt.Errorf("upsert vote: %w", err)
	}
	created := storedID == v.ID
	if !created {
		v.ID = storedID
	}
	return created, nil
}

// ListVotes returns all votes for a target in cast order.
func (s *Store) ListVotes(ctx context.Context, kind domain.VoteTargetKind, targetID string) ([]domain.TagVote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, target_kind, target_id, user_id, in_favor, weight, cast_at
		FROM tag_votes WHERE target_kind = ? AND target_id = ?
		ORDER BY cast_at`, string(kind), targetID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.TagVote
	for rows.Next() {
		var v domain.TagVote
		var castAt string
		if err := rows.Scan(&v.ID, &v.TargetKind, &v.TargetID, &v.UserID, &v.InFavor, &v.Weight, &castAt); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		if v.CastAt, err = parseTime(castAt); err != nil {
			return nil, fmt.Errorf("parse cast_at: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// ResolveSuggestion transitions a pending suggestion and, on approval,
// applies the tag and activates the approved rule, all in one
// transaction. The status guard makes concurrent evaluations safe:
// only the caller that wins the conditional UPDATE performs the
// mutation. Returns false when the suggestion was already resolved.
func (s *Store) ResolveSuggestion(ctx context.Context, sid string, approve bool, rule *domain.ApprovedTagRule) (bool, error) {
	newStatus := domain.StatusRejected
	if approve {
		newStatus = domain.StatusApplied
	}

	won := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE tag_suggestions SET status = ?, resolved_at = ?
			WHERE id = ? AND status = ?`,
			string(newStatus), formatTime(time.Now()), sid, string(domain.StatusPending))
		if err != nil {
			return fmt.Errorf("transition suggestion: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return nil // already resolved by a concurrent evaluation
		}
		won = true
		if !approve {
			return nil
		}

		var docID, tagName, tagCategory string
		err = tx.QueryRowContext(ctx,
			`SELECT document_id, tag_name, tag_category FROM tag_suggestions WHERE id = ?`, sid).
			Scan(&docID, &tagName, &tagCategory)
		if err != nil {
			return fmt.Errorf("read suggestion: %w", err)
		}

		if err := addTagIfAbsentTx(ctx, tx, docID, tagName, domain.TagCategory(tagCategory)); err != nil {
			return err
		}
		if rule != nil {
			if err := upsertRuleTx(ctx, tx, rule); err != nil {
				return err
			}
		}
		return nil
	})
	return won, err
}

// ResolveRemoval is the removal-request counterpart of
// ResolveSuggestion: on approval the tag is deleted and the Remove
// rule activated, atomically with the status transition.
func (s *Store) ResolveRemoval(ctx context.Context, rid string, approve bool, rule *domain.ApprovedTagRule) (bool, error) {
	newStatus := domain.StatusRejected
	if approve {
		newStatus = domain.StatusRemoved
	}

	won := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE tag_removal_requests SET status = ?, resolved_at = ?
			WHERE id = ? AND status = ?`,
			string(newStatus), formatTime(time.Now()), rid, string(domain.StatusPending))
		if err != nil {
			return fmt.Errorf("transition removal: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return nil
		}
		won = true
		if !approve {
			return nil
		}

		var docID, tagName string
		err = tx.QueryRowContext(ctx,
			`SELECT document_id, tag_name FROM tag_removal_requests WHERE id = ?`, rid).
			Scan(&docID, &tagName)
		if err != nil {
			return fmt.Errorf("read removal: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM document_tags WHERE document_id = ? AND name = ?`, docID, tagName); err != nil {
			return fmt.Errorf("delete tag: %w", err)
		}
		if rule != nil {
			if err := upsertRuleTx(ctx, tx, rule); err != nil {
				return err
			}
		}
		return nil
	})
	return won, err
}

func addTagIfAbsentTx(ctx context.Context, tx *sql.Tx, docID, name string, category domain.TagCategory) error {
	tagID, err := id.Generate(id.PrefixTag)
	if err != nil {
		return fmt.Errorf("generate tag id: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO document_tags (id, document_id, name, category, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(document_id, name) DO NOTHING`,
		tagID, docID, name, string(category), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("apply tag: %w", err)
	}
	return nil
}

func upsertRuleTx(ctx context.Context, tx *sql.Tx, rule *domain.ApprovedTagRule) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO approved_tag_rules (id, drive_file_id, tag_name, tag_category, rule_type,
			active, source, votes_in_favor, votes_against, created_at, last_applied_at, times_applied)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(drive_file_id, tag_name, rule_type) DO UPDATE SET
			active = 1,
			votes_in_favor = excluded.votes_in_favor,
			votes_against = excluded.votes_against`,
		rule.ID, rule.DriveFileID, rule.TagName, string(rule.TagCategory), string(rule.RuleType),
		rule.Active, rule.Source, rule.VotesInFavor, rule.VotesAgainst,
		formatTime(rule.CreatedAt), formatNullableTime(rule.LastAppliedAt), rule.TimesApplied)
	if err != nil {
		return fmt.Errorf("upsert rule: %w", err)
	}
	return nil
}

func scanSuggestion(row scanner) (*domain.TagSuggestion, error) {
	var sug domain.TagSuggestion
	var createdAt string
	var resolvedAt sql.NullString
	err := row.Scan(&sug.ID, &sug.DocumentID, &sug.TagName, &sug.TagCategory,
		&sug.SuggestedBy, &sug.Reason, &sug.Status, &createdAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	if sug.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if sug.ResolvedAt, err = parseNullableTime(resolvedAt); err != nil {
		return nil, fmt.Errorf("parse resolved_at: %w", err)
	}
	return &sug, nil
}

func scanRemoval(row scanner) (*domain.TagRemovalRequest, error) {
	var req domain.TagRemovalRequest
	var createdAt string
	var resolvedAt sql.NullString
	err := row.Scan(&req.ID, &req.DocumentID, &req.TagName, &req.TagCategory,
		&req.RequestedBy, &req.Reason, &req.Status, &createdAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	if req.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if req.ResolvedAt, err = parseNullableTime(resolvedAt); err != nil {
		return nil, fmt.Errorf("parse resolved_at: %w", err)
	}
	return &req, nil
}
