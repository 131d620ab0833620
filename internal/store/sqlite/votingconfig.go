package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
)

// GetVotingConfig returns the singleton voting configuration, seeding
// the defaults on first access.
func (s *Store) GetVotingConfig(ctx context.Context) (*domain.VotingConfiguration, error) {
	cfg, err := s.readVotingConfig(ctx)
	if err == nil {
		return cfg, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("get voting config: %w", err)
	}

	defaults := domain.DefaultVotingConfiguration()
	defaults.UpdatedAt = time.Now()
	if err := s.UpdateVotingConfig(ctx, &defaults); err != nil {
		return nil, err
	}
	return &defaults, nil
}

func (s *Store) readVotingConfig(ctx context.Context) (*domain.VotingConfiguration, error) {
	var cfg domain.VotingConfiguration
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT minimum_votes_required, maximum_votes_required, required_agreement_percentage,
			scale_by_popularity, popularity_scale_factor,
			vote_decay_start_days, vote_decay_rate_per_day,
			auto_apply_enabled, updated_at
		FROM voting_config WHERE id = 1`).Scan(
		&cfg.MinimumVotesRequired, &cfg.MaximumVotesRequired, &cfg.RequiredAgreementPercentage,
		&cfg.ScaleByPopularity, &cfg.PopularityScaleFactor,
		&cfg.VoteDecayStartDays, &cfg.VoteDecayRatePerDay,
		&cfg.AutoApplyEnabled, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if cfg.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &cfg, nil
}

// UpdateVotingConfig replaces the singleton row.
func (s *Store) UpdateVotingConfig(ctx context.Context, cfg *domain.VotingConfiguration) error {
	cfg.UpdatedAt = time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO voting_config (id, minimum_votes_required, maximum_votes_required,
			required_agreement_percentage, scale_by_popularity, popularity_scale_factor,
			vote_decay_start_days, vote_decay_rate_per_day, auto_apply_enabled, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			minimum_votes_required = excluded.minimum_votes_required,
			maximum_votes_required = excluded.maximum_votes_required,
			required_agreement_percentage = excluded.required_agreement_percentage,
			scale_by_popularity = excluded.scale_by_popularity,
			popularity_scale_factor = excluded.popularity_scale_factor,
			vote_decay_start_days = excluded.vote_decay_start_days,
			vote_decay_rate_per_day = excluded.vote_decay_rate_per_day,
			auto_apply_enabled = excluded.auto_apply_enabled,
			updated_at = excluded.updated_at`,
		cfg.MinimumVotesRequired, cfg.MaximumVotesRequired, cfg.RequiredAgreementPercentage,
		cfg.ScaleByPopularity, cfg.PopularityScaleFactor,
		cfg.VoteDecayStartDays, cfg.VoteDecayRatePerDay,
		cfg.AutoApplyEnabled, formatTime(cfg.UpdatedAt))
	if err != nil {
		return fmt.Errorf("update voting config: %w", err)
	}
	return nil
}
