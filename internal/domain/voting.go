package domain

import "time"

// VotingStatus is the lifecycle state of a tag suggestion or removal
// request. Pending is initial; Applied, Removed, and Rejected are
// terminal.
type VotingStatus string

const (
	StatusPending  VotingStatus = "Pending"
	StatusApproved VotingStatus = "Approved"
	StatusRejected VotingStatus = "Rejected"
	StatusApplied  VotingStatus = "Applied"
	StatusRemoved  VotingStatus = "Removed"
)

// Terminal reports whether no further transitions are allowed.
func (s VotingStatus) Terminal() bool {
	return s == StatusApplied || s == StatusRemoved || s == StatusRejected
}

// VoteTargetKind distinguishes the two votable proposal types.
type VoteTargetKind string

const (
	TargetSuggestion VoteTargetKind = "suggestion"
	TargetRemoval    VoteTargetKind = "removal"
)

// TagSuggestion proposes adding a tag to a document. Votes accumulate
// until the tally engine reaches consensus or an admin decides.
type TagSuggestion struct {
	ID          string       `json:"id"`
	DocumentID  string       `json:"document_id"`
	TagName     string       `json:"tag_name"`
	TagCategory TagCategory  `json:"tag_category"`
	SuggestedBy string       `json:"suggested_by"`
	Reason      string       `json:"reason,omitempty"`
	Status      VotingStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	ResolvedAt  *time.Time   `json:"resolved_at,omitempty"`

	Votes []TagVote `json:"votes,omitempty"`
}

// TagRemovalRequest proposes removing an existing tag from a document.
type TagRemovalRequest struct {
	ID          string       `json:"id"`
	DocumentID  string       `json:"document_id"`
	TagName     string       `json:"tag_name"`
	TagCategory TagCategory  `json:"tag_category"`
	RequestedBy string       `json:"requested_by"`
	Reason      string       `json:"reason,omitempty"`
	Status      VotingStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	ResolvedAt  *time.Time   `json:"resolved_at,omitempty"`

	Votes []TagVote `json:"votes,omitempty"`
}

// TagVote is one user's vote on a suggestion or removal request. At
// most one vote per (user, target); re-voting updates the existing row.
type TagVote struct {
	ID         string         `json:"id"`
	TargetKind VoteTargetKind `json:"target_kind"`
	TargetID   string         `json:"target_id"`
	UserID     string         `json:"user_id"`
	InFavor    bool           `json:"in_favor"`
	Weight     float64        `json:"weight"`
	CastAt     time.Time      `json:"cast_at"`
}

// VotingConfiguration is the singleton set of consensus tunables, read
// by the tally engine on every evaluation and mutable through the
// admin API.
type VotingConfiguration struct {
	MinimumVotesRequired        int       `json:"minimum_votes_required" validate:"gte=1"`
	MaximumVotesRequired        int       `json:"maximum_votes_required" validate:"gte=1"`
	RequiredAgreementPercentage float64   `json:"required_agreement_percentage" validate:"gt=0,lte=100"`
	ScaleByPopularity           bool      `json:"scale_by_popularity"`
	PopularityScaleFactor       float64   `json:"popularity_scale_factor" validate:"gte=0"`
	VoteDecayStartDays          int       `json:"vote_decay_start_days" validate:"gte=0"`
	VoteDecayRatePerDay         float64   `json:"vote_decay_rate_per_day" validate:"gte=0"`
	AutoApplyEnabled            bool      `json:"auto_apply_enabled"`
	UpdatedAt                   time.Time `json:"updated_at"`
}

// DefaultVotingConfiguration returns the consensus tunables used until
// an admin changes them.
func DefaultVotingConfiguration() VotingConfiguration {
	return VotingConfiguration{
		MinimumVotesRequired:        50,
		MaximumVotesRequired:        200,
		RequiredAgreementPercentage: 70.0,
		ScaleByPopularity:           true,
		PopularityScaleFactor:       0.05,
		VoteDecayStartDays:          90,
		VoteDecayRatePerDay:         0.01,
		AutoApplyEnabled:            true,
	}
}

// EffectiveThreshold computes the minimum total vote weight a target
// needs before consensus can be evaluated, scaling by document
// popularity when enabled.
func (c VotingConfiguration) EffectiveThreshold(viewCount int) float64 {
	base := float64(c.MinimumVotesRequired)
	if !c.ScaleByPopularity || viewCount <= 0 {
		return base
	}
	scaled := float64(int(float64(viewCount) * c.PopularityScaleFactor))
	if scaled > float64(c.MaximumVotesRequired) {
		scaled = float64(c.MaximumVotesRequired)
	}
	if scaled < base {
		return base
	}
	return scaled
}

// EffectiveWeight applies linear time decay to a vote's stored weight.
// Decay starts VoteDecayStartDays after the vote was cast and reduces
// the weight by VoteDecayRatePerDay per day, floored at zero.
func (c VotingConfiguration) EffectiveWeight(v TagVote, now time.Time) float64 {
	days := now.Sub(v.CastAt).Hours() / 24
	overdue := days - float64(c.VoteDecayStartDays)
	if overdue <= 0 {
		return v.Weight
	}
	w := v.Weight - overdue*c.VoteDecayRatePerDay
	if w < 0 {
		return 0
	}
	return w
}

// ConsensusResult reports one tally evaluation.
type ConsensusResult struct {
	TargetKind     VoteTargetKind `json:"target_kind"`
	TargetID       string         `json:"target_id"`
	TotalWeight    float64        `json:"total_weight"`
	InFavorWeight  float64        `json:"in_favor_weight"`
	AgreementPct   float64        `json:"agreement_pct"`
	Threshold      float64        `json:"threshold"`
	Reached        bool           `json:"reached"`
	AgainstReached bool           `json:"against_reached"`
}

// UserTagOverride records a user's personal tag decision made when
// suggesting or voting, so their own view reflects the change before
// consensus lands.
type UserTagOverride struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	DocumentID  string      `json:"document_id"`
	TagName     string      `json:"tag_name"`
	TagCategory TagCategory `json:"tag_category"`
	Added       bool        `json:"added"` // false means hidden/removed
	CreatedAt   time.Time   `json:"created_at"`
}
