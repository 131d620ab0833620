package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
	"github.com/jumpchainsearch/jumpchain-server/internal/errors"
	"github.com/jumpchainsearch/jumpchain-server/internal/id"
	"github.com/jumpchainsearch/jumpchain-server/internal/store"
	"github.com/jumpchainsearch/jumpchain-server/internal/validation"
)

// VotingService runs the community tag voting workflow: suggestions,
// removal requests, votes, and the consensus tally that turns enough
// agreement into applied tags and durable rules.
type VotingService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger

	// now is swappable for decay tests.
	now func() time.Time
}

// NewVotingService creates a new voting service.
func NewVotingService(st store.Store, validator *validation.Validator, logger *slog.Logger) *VotingService {
	return &VotingService{
		store:     st,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// SuggestTagInput is the payload for a new tag suggestion.
type SuggestTagInput struct {
	DocumentID  string             `validate:"required"`
	TagName     string             `validate:"required,min=1,max=80"`
	TagCategory domain.TagCategory `validate:"required"`
	UserID      string             `validate:"required"`
	Reason      string             `validate:"max=500"`
}

// SuggestTag opens a suggestion for adding a tag to a document. The
// suggester automatically votes in favor and gets a personal override
// so their own view reflects the tag immediately.
func (s *VotingService) SuggestTag(ctx context.Context, in SuggestTagInput) (*domain.TagSuggestion, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if !in.TagCategory.Valid() {
		return nil, errors.Validationf("invalid tag category %q", in.TagCategory)
	}

	doc, err := s.store.GetDocument(ctx, in.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc.HasTag(in.TagName) {
		return nil, errors.Conflictf("document already carries tag %q", in.TagName)
	}

	sug := &domain.TagSuggestion{
		ID:          id.MustGenerate(id.PrefixSuggestion),
		DocumentID:  in.DocumentID,
		TagName:     in.TagName,
		TagCategory: in.TagCategory,
		SuggestedBy: in.UserID,
		Reason:      in.Reason,
		Status:      domain.StatusPending,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateSuggestion(ctx, sug); err != nil {
		return nil, err
	}

	// The suggester's own vote and instant-UX override.
	if _, err := s.CastVote(ctx, domain.TargetSuggestion, sug.ID, in.UserID, true); err != nil {
		return nil, err
	}
	override := &domain.UserTagOverride{
		ID:          id.MustGenerate(id.PrefixOverride),
		UserID:      in.UserID,
		DocumentID:  in.DocumentID,
		TagName:     in.TagName,
		TagCategory: in.TagCategory,
		Added:       true,
		CreatedAt:   s.now(),
	}
	if err := s.store.UpsertUserOverride(ctx, override); err != nil {
		s.logger.Warn("failed to record user override", "suggestion", sug.ID, "error", err)
	}

	s.logger.Info("tag suggested", "suggestion", sug.ID,
		"document", in.DocumentID, "tag", in.TagName, "user", in.UserID)
	return sug, nil
}

// RequestRemovalInput is the payload for a new tag removal request.
type RequestRemovalInput struct {
	DocumentID string `validate:"required"`
	TagName    string `validate:"required,min=1,max=80"`
	UserID     string `validate:"required"`
	Reason     string `validate:"max=500"`
}

// RequestRemoval opens a removal request for an existing tag. The
// requester automatically votes in favor and the tag is hidden from
// their personal view right away.
func (s *VotingService) RequestRemoval(ctx context.Context, in RequestRemovalInput) (*domain.TagRemovalRequest, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	doc, err := s.store.GetDocument(ctx, in.DocumentID)
	if err != nil {
		return nil, err
	}
	var category domain.TagCategory
	found := false
	for _, t := range doc.Tags {
		if t.Name == in.TagName {
			category = t.Category
			found = true
			break
		}
	}
	if !found {
		return nil, errors.NotFoundf("document does not carry tag %q", in.TagName)
	}

	req := &domain.TagRemovalRequest{
		ID:          id.MustGenerate(id.PrefixRemoval),
		DocumentID:  in.DocumentID,
		TagName:     in.TagName,
		TagCategory: category,
		RequestedBy: in.UserID,
		Reason:      in.Reason,
		Status:      domain.StatusPending,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateRemovalRequest(ctx, req); err != nil {
		return nil, err
	}

	if _, err := s.CastVote(ctx, domain.TargetRemoval, req.ID, in.UserID, true); err != nil {
		return nil, err
	}
	override := &domain.UserTagOverride{
		ID:          id.MustGenerate(id.PrefixOverride),
		UserID:      in.UserID,
		DocumentID:  in.DocumentID,
		TagName:     in.TagName,
		TagCategory: category,
		Added:       false,
		CreatedAt:   s.now(),
	}
	if err := s.store.UpsertUserOverride(ctx, override); err != nil {
		s.logger.Warn("failed to record user override", "removal", req.ID, "error", err)
	}

	s.logger.Info("tag removal requested", "removal", req.ID,
		"document", in.DocumentID, "tag", in.TagName, "user", in.UserID)
	return req, nil
}

// CastVote records a vote on a pending target and immediately
// re-evaluates consensus. A user voting again replaces their earlier
// vote, resetting its weight and timestamp.
func (s *VotingService) CastVote(ctx context.Context, kind domain.VoteTargetKind, targetID, userID string, inFavor bool) (*domain.ConsensusResult, error) {
	if userID == "" {
		return nil, errors.Validation("user id is required")
	}

	status, _, err := s.targetState(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}
	if status != domain.StatusPending {
		return nil, errors.Conflictf("voting on %s %s is closed (status %s)", kind, targetID, status)
	}

	vote := &domain.TagVote{
		TargetKind: kind,
		TargetID:   targetID,
		UserID:     userID,
		InFavor:    inFavor,
		Weight:     1.0,
		CastAt:     s.now(),
	}
	created, err := s.store.UpsertVote(ctx, vote)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("vote recorded", "target_kind", kind, "target", targetID,
		"user", userID, "in_favor", inFavor, "new", created)

	return s.EvaluateConsensus(ctx, kind, targetID)
}

// EvaluateConsensus tallies a target's votes against the current
// configuration. When consensus is reached and auto-apply is enabled,
// the mutation, status transition, and rule creation happen in one
// guarded transaction, so concurrent evaluations apply at most once.
func (s *VotingService) EvaluateConsensus(ctx context.Context, kind domain.VoteTargetKind, targetID string) (*domain.ConsensusResult, error) {
	cfg, err := s.store.GetVotingConfig(ctx)
	if err != nil {
		return nil, err
	}
	status, documentID, err := s.targetState(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}
	if status != domain.StatusPending {
		return nil, errors.Conflictf("%s %s is not pending", kind, targetID)
	}

	views, err := s.store.GetViewCount(ctx, documentID)
	if err != nil {
		return nil, err
	}
	votes, err := s.store.ListVotes(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}

	result := tally(*cfg, kind, targetID, votes, views.ViewCount, s.now())

	if !cfg.AutoApplyEnabled {
		return &result, nil
	}
	switch {
	case result.Reached:
		if err := s.resolve(ctx, kind, targetID, true, &result); err != nil {
			return nil, err
		}
	case result.AgainstReached:
		if err := s.resolve(ctx, kind, targetID, false, nil); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

// tally computes one consensus evaluation. Zero total weight never
// reaches consensus.
func tally(cfg domain.VotingConfiguration, kind domain.VoteTargetKind, targetID string, votes []domain.TagVote, viewCount int, now time.Time) domain.ConsensusResult {
	result := domain.ConsensusResult{
		TargetKind: kind,
		TargetID:   targetID,
		Threshold:  cfg.EffectiveThreshold(viewCount),
	}
	for _, v := range votes {
		w := cfg.EffectiveWeight(v, now)
		result.TotalWeight += w
		if v.InFavor {
			result.InFavorWeight += w
		}
	}
	if result.TotalWeight <= 0 {
		return result
	}
	result.AgreementPct = result.InFavorWeight / result.TotalWeight * 100
	met := result.TotalWeight >= result.Threshold
	result.Reached = met && result.AgreementPct >= cfg.RequiredAgreementPercentage
	result.AgainstReached = met && (100-result.AgreementPct) >= cfg.RequiredAgreementPercentage
	return result
}

// resolve transitions a target. On approval the applied rule records
// the winning tallies for audit.
func (s *VotingService) resolve(ctx context.Context, kind domain.VoteTargetKind, targetID string, approve bool, result *domain.ConsensusResult) error {
	var rule *domain.ApprovedTagRule
	if approve {
		var err error
		rule, err = s.buildRule(ctx, kind, targetID, "consensus", result)
		if err != nil {
			return err
		}
	}

	var won bool
	var err error
	switch kind {
	case domain.TargetSuggestion:
		won, err = s.store.ResolveSuggestion(ctx, targetID, approve, rule)
	case domain.TargetRemoval:
		won, err = s.store.ResolveRemoval(ctx, targetID, approve, rule)
	default:
		return errors.Validationf("unknown vote target kind %q", kind)
	}
	if err != nil {
		return err
	}
	if won {
		s.logger.Info("consensus resolved", "target_kind", kind,
			"target", targetID, "approved", approve)
	}
	return nil
}

// buildRule assembles the durable rule for an approved target.
func (s *VotingService) buildRule(ctx context.Context, kind domain.VoteTargetKind, targetID, source string, result *domain.ConsensusResult) (*domain.ApprovedTagRule, error) {
	rule := &domain.ApprovedTagRule{
		ID:        id.MustGenerate(id.PrefixRule),
		Active:    true,
		Source:    source,
		CreatedAt: s.now(),
	}
	if result != nil {
		rule.VotesInFavor = result.InFavorWeight
		rule.VotesAgainst = result.TotalWeight - result.InFavorWeight
	}

	var documentID string
	switch kind {
	case domain.TargetSuggestion:
		sug, err := s.store.GetSuggestion(ctx, targetID)
		if err != nil {
			return nil, err
		}
		documentID = sug.DocumentID
		rule.TagName = sug.TagName
		rule.TagCategory = sug.TagCategory
		rule.RuleType = domain.RuleAdd
	case domain.TargetRemoval:
		req, err := s.store.GetRemovalRequest(ctx, targetID)
		if err != nil {
			return nil, err
		}
		documentID = req.DocumentID
		rule.TagName = req.TagName
		rule.TagCategory = req.TagCategory
		rule.RuleType = domain.RuleRemove
	default:
		return nil, errors.Validationf("unknown vote target kind %q", kind)
	}

	// Rules are keyed on the stable external file id so they survive
	// re-scans.
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	rule.DriveFileID = doc.DriveFileID
	return rule, nil
}

// targetState returns the current status and document of a votable
// target.
func (s *VotingService) targetState(ctx context.Context, kind domain.VoteTargetKind, targetID string) (domain.VotingStatus, string, error) {
	switch kind {
	case domain.TargetSuggestion:
		sug, err := s.store.GetSuggestion(ctx, targetID)
		if err != nil {
			return "", "", err
		}
		return sug.Status, sug.DocumentID, nil
	case domain.TargetRemoval:
		req, err := s.store.GetRemovalRequest(ctx, targetID)
		if err != nil {
			return "", "", err
		}
		return req.Status, req.DocumentID, nil
	default:
		return "", "", errors.Validationf("unknown vote target kind %q", kind)
	}
}

// PendingItems groups a document's open voting targets.
type PendingItems struct {
	Suggestions []*domain.TagSuggestion     `json:"suggestions"`
	Removals    []*domain.TagRemovalRequest `json:"removals"`
}

// ListPending returns the open suggestions and removal requests,
// optionally restricted to one document.
func (s *VotingService) ListPending(ctx context.Context, documentID string) (*PendingItems, error) {
	suggestions, err := s.store.ListPendingSuggestions(ctx, documentID)
	if err != nil {
		return nil, err
	}
	removals, err := s.store.ListPendingRemovals(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return &PendingItems{Suggestions: suggestions, Removals: removals}, nil
}

// SweepReport summarizes one check-thresholds pass over all pending
// targets.
type SweepReport struct {
	Evaluated int `json:"evaluated"`
	Applied   int `json:"applied"`
	Rejected  int `json:"rejected"`
}

// CheckAllThresholds re-evaluates every pending target. Intended for
// periodic admin sweeps so decay and threshold changes take effect
// without waiting for the next vote.
func (s *VotingService) CheckAllThresholds(ctx context.Context) (*SweepReport, error) {
	pending, err := s.ListPending(ctx, "")
	if err != nil {
		return nil, err
	}

	report := &SweepReport{}
	eval := func(kind domain.VoteTargetKind, targetID string) {
		result, err := s.EvaluateConsensus(ctx, kind, targetID)
		if err != nil {
			// A concurrent resolution is fine; anything else is logged
			// and the sweep continues.
			if !errors.Is(err, errors.ErrConflict) {
				s.logger.Warn("threshold check failed",
					"target_kind", kind, "target", targetID, "error", err)
			}
			return
		}
		report.Evaluated++
		if result.Reached {
			report.Applied++
		} else if result.AgainstReached {
			report.Rejected++
		}
	}
	for _, sug := range pending.Suggestions {
		eval(domain.TargetSuggestion, sug.ID)
	}
	for _, req := range pending.Removals {
		eval(domain.TargetRemoval, req.ID)
	}

	s.logger.Info("threshold sweep complete", "evaluated", report.Evaluated,
		"applied", report.Applied, "rejected", report.Rejected)
	return report, nil
}

// AdminResolveSuggestion applies or rejects a suggestion by admin
// decision, bypassing the consensus thresholds.
func (s *VotingService) AdminResolveSuggestion(ctx context.Context, suggestionID string, approve bool) error {
	return s.adminResolve(ctx, domain.TargetSuggestion, suggestionID, approve)
}

// AdminResolveRemoval applies or rejects a removal request by admin
// decision, bypassing the consensus thresholds.
func (s *VotingService) AdminResolveRemoval(ctx context.Context, removalID string, approve bool) error {
	return s.adminResolve(ctx, domain.TargetRemoval, removalID, approve)
}

func (s *VotingService) adminResolve(ctx context.Context, kind domain.VoteTargetKind, targetID string, approve bool) error {
	status, _, err := s.targetState(ctx, kind, targetID)
	if err != nil {
		return err
	}
	if status != domain.StatusPending {
		return errors.Conflictf("%s %s is not pending", kind, targetID)
	}

	var rule *domain.ApprovedTagRule
	if approve {
		rule, err = s.buildRule(ctx, kind, targetID, "admin", nil)
		if err != nil {
			return err
		}
	}

	var won bool
	switch kind {
	case domain.TargetSuggestion:
		won, err = s.store.ResolveSuggestion(ctx, targetID, approve, rule)
	case domain.TargetRemoval:
		won, err = s.store.ResolveRemoval(ctx, targetID, approve, rule)
	}
	if err != nil {
		return err
	}
	if !won {
		return errors.Conflictf("%s %s was already resolved", kind, targetID)
	}
	s.logger.Info("admin decision", "target_kind", kind,
		"target", targetID, "approved", approve)
	return nil
}

// GetConfig returns the current voting configuration.
func (s *VotingService) GetConfig(ctx context.Context) (*domain.VotingConfiguration, error) {
	return s.store.GetVotingConfig(ctx)
}

// UpdateConfig validates and stores new consensus tunables.
func (s *VotingService) UpdateConfig(ctx context.Context, cfg *domain.VotingConfiguration) error {
	if err := s.validator.Validate(cfg); err != nil {
		return err
	}
	if cfg.MaximumVotesRequired < cfg.MinimumVotesRequired {
		return errors.Validation("maximum votes required must be at least the minimum")
	}
	if err := s.store.UpdateVotingConfig(ctx, cfg); err != nil {
		return err
	}
	s.logger.Info("voting configuration updated",
		"min_votes", cfg.MinimumVotesRequired,
		"agreement_pct", cfg.RequiredAgreementPercentage,
		"auto_apply", cfg.AutoApplyEnabled)
	return nil
}
