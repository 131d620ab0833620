package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
	"github.com/jumpchainsearch/jumpchain-server/internal/errors"
	"github.com/jumpchainsearch/jumpchain-server/internal/id"
	"github.com/jumpchainsearch/jumpchain-server/internal/store"
)

// TagRuleService replays approved tag rules over the catalog. Rules
// are the durable record of community decisions; replaying them after
// a bulk tag regeneration is what makes those decisions survive a
// wipe-and-recompute of derived tags.
type TagRuleService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTagRuleService creates a new tag rule service.
func NewTagRuleService(st store.Store, logger *slog.Logger) *TagRuleService {
	return &TagRuleService{store: st, logger: logger}
}

// ApplyApprovedRules replays every active rule, optionally restricted
// to a tag category. Each run gets a UUID for log correlation. The
// routine is idempotent: Add inserts only when absent, Remove deletes
// only when present, and the applied counters reflect actual
// mutations. Missing documents are counted and skipped, never fatal.
func (s *TagRuleService) ApplyApprovedRules(ctx context.Context, category *domain.TagCategory) (*domain.RuleApplicationReport, error) {
	report := &domain.RuleApplicationReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := s.logger.With("run_id", report.RunID)

	rules, err := s.store.ListRules(ctx, true, category)
	if err != nil {
		return nil, err
	}
	report.TotalRules = len(rules)
	log.Info("applying approved rules", "total", report.TotalRules)

	for _, rule := range rules {
		doc, err := s.store.GetDocumentByDriveFileID(ctx, rule.DriveFileID)
		if errors.Is(err, errors.ErrNotFound) {
			report.DocumentsNotFound++
			log.Debug("rule target missing from catalog",
				"rule", rule.ID, "drive_file_id", rule.DriveFileID)
			continue
		}
		if err != nil {
			return nil, err
		}

		switch rule.RuleType {
		case domain.RuleAdd:
			added, err := s.store.AddTagIfAbsent(ctx, doc.ID, rule.TagName, rule.TagCategory)
			if err != nil {
				return nil, err
			}
			if added {
				report.AdditionsApplied++
			}
		case domain.RuleRemove:
			removed, err := s.store.RemoveTag(ctx, doc.ID, rule.TagName)
			if err != nil {
				return nil, err
			}
			if removed {
				report.RemovalsApplied++
			}
		default:
			log.Warn("skipping rule with unknown type", "rule", rule.ID, "type", rule.RuleType)
			continue
		}

		// Mark the run even when the mutation was a no-op; the audit
		// trail records every replay.
		if err := s.store.MarkRuleApplied(ctx, rule.ID, time.Now()); err != nil {
			return nil, err
		}
	}

	report.FinishedAt = time.Now()
	log.Info("rule application complete",
		"total", report.TotalRules,
		"additions", report.AdditionsApplied,
		"removals", report.RemovalsApplied,
		"missing_documents", report.DocumentsNotFound,
		"duration", report.FinishedAt.Sub(report.StartedAt))
	return report, nil
}

// ListRules returns rules for the admin surface.
func (s *TagRuleService) ListRules(ctx context.Context, activeOnly bool, category *domain.TagCategory) ([]*domain.ApprovedTagRule, error) {
	return s.store.ListRules(ctx, activeOnly, category)
}

// CreateRuleInput is the payload for a manually created rule.
type CreateRuleInput struct {
	DriveFileID string
	TagName     string
	TagCategory domain.TagCategory
	RuleType    domain.RuleType
}

// CreateRule records an admin-authored rule directly, bypassing the
// voting workflow.
func (s *TagRuleService) CreateRule(ctx context.Context, in CreateRuleInput) (*domain.ApprovedTagRule, error) {
	if in.DriveFileID == "" || in.TagName == "" {
		return nil, errors.Validation("drive file id and tag name are required")
	}
	if !in.TagCategory.Valid() {
		return nil, errors.Validationf("invalid tag category %q", in.TagCategory)
	}
	if !in.RuleType.Valid() {
		return nil, errors.Validationf("invalid rule type %q", in.RuleType)
	}

	rule := &domain.ApprovedTagRule{
		ID:          id.MustGenerate(id.PrefixRule),
		DriveFileID: in.DriveFileID,
		TagName:     in.TagName,
		TagCategory: in.TagCategory,
		RuleType:    in.RuleType,
		Active:      true,
		Source:      "admin",
		CreatedAt:   time.Now(),
	}
	if err := s.store.CreateRule(ctx, rule); err != nil {
		return nil, err
	}
	s.logger.Info("rule created", "rule", rule.ID,
		"drive_file_id", in.DriveFileID, "tag", in.TagName, "type", in.RuleType)
	return rule, nil
}

// ToggleRule flips a rule's active flag.
func (s *TagRuleService) ToggleRule(ctx context.Context, ruleID string) (*domain.ApprovedTagRule, error) {
	rule, err := s.store.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetRuleActive(ctx, ruleID, !rule.Active); err != nil {
		return nil, err
	}
	rule.Active = !rule.Active
	s.logger.Info("rule toggled", "rule", ruleID, "active", rule.Active)
	return rule, nil
}

// DeleteRule removes a never-applied rule. Rules that have been
// applied are part of the audit trail; the store rejects deleting them
// and they can only be deactivated.
func (s *TagRuleService) DeleteRule(ctx context.Context, ruleID string) error {
	if err := s.store.DeleteRule(ctx, ruleID); err != nil {
		return err
	}
	s.logger.Info("rule deleted", "rule", ruleID)
	return nil
}
