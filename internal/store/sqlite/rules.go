package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
	"github.com/jumpchainsearch/jumpchain-server/internal/errors"
)

const ruleColumns = `id, drive_file_id, tag_name, tag_category, rule_type, active, source,
	votes_in_favor, votes_against, created_at, last_applied_at, times_applied`

// CreateRule inserts an approved tag rule, or reactivates the existing
// rule for the same (drive file, tag, type) key.
func (s *Store) CreateRule(ctx context.Context, rule *domain.ApprovedTagRule) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return upsertRuleTx(ctx, tx, rule)
	})
}

// GetRule returns a rule by ID.
func (s *Store) GetRule(ctx context.Context, rid string) (*domain.ApprovedTagRule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM approved_tag_rules WHERE id = ?`, rid)
	rule, err := scanRule(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("rule %s not found", rid)
	}
	if err != nil {
		return nil, fmt.Errorf("get rule: %w", err)
	}
	return rule, nil
}

// ListRules returns rules, optionally restricted to active ones and to
// a tag category.
func (s *Store) ListRules(ctx context.Context, activeOnly bool, category *domain.TagCategory) ([]*domain.ApprovedTagRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM approved_tag_rules WHERE 1=1`
	var args []any
	if activeOnly {
		query += ` AND active = 1`
	}
	if category != nil {
		query += ` AND tag_category = ?`
		args = append(args, string(*category))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rules []*domain.ApprovedTagRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// SetRuleActive toggles a rule without deleting its history.
func (s *Store) SetRuleActive(ctx context.Context, rid string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE approved_tag_rules SET active = ? WHERE id = ?`, active, rid)
	if err != nil {
		return fmt.Errorf("set rule active: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return errors.NotFoundf("rule %s not found", rid)
	}
	return nil
}

// DeleteRule removes a rule that has never been applied. Applied rules
// are part of the tagging audit trail and can only be deactivated.
func (s *Store) DeleteRule(ctx context.Context, rid string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var timesApplied int
		err := tx.QueryRowContext(ctx,
			`SELECT times_applied FROM approved_tag_rules WHERE id = ?`, rid).Scan(&timesApplied)
		if err == sql.ErrNoRows {
			return errors.NotFoundf("rule %s not found", rid)
		}
		if err != nil {
			return fmt.Errorf("read rule: %w", err)
		}
		if timesApplied > 0 {
			return errors.Conflictf("rule %s has been applied %d times; deactivate it instead", rid, timesApplied)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM approved_tag_rules WHERE id = ?`, rid); err != nil {
			return fmt.Errorf("delete rule: %w", err)
		}
		return nil
	})
}

// MarkRuleApplied bumps the application counter and timestamp after a
// replay run touched the rule.
func (s *Store) MarkRuleApplied(ctx context.Context, rid string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE approved_tag_rules
		SET times_applied = times_applied + 1, last_applied_at = ?
		WHERE id = ?`, formatTime(at), rid)
	if err != nil {
		return fmt.Errorf("mark rule applied: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return errors.NotFoundf("rule %s not found", rid)
	}
	return nil
}

func scanRule(row scanner) (*domain.ApprovedTagRule, error) {
	var rule domain.ApprovedTagRule
	var createdAt string
	var lastApplied sql.NullString
	err := row.Scan(&rule.ID, &rule.DriveFileID, &rule.TagName, &rule.TagCategory,
		&rule.RuleType, &rule.Active, &rule.Source,
		&rule.VotesInFavor, &rule.VotesAgainst, &createdAt, &lastApplied, &rule.TimesApplied)
	if err != nil {
		return nil, err
	}
	if rule.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if rule.LastAppliedAt, err = parseNullableTime(lastApplied); err != nil {
		return nil, fmt.Errorf("parse last_applied_at: %w", err)
	}
	return &rule, nil
}
