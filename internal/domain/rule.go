package domain

import "time"

// RuleType says what an approved rule does when replayed.
type RuleType string

const (
	RuleAdd    RuleType = "Add"
	RuleRemove RuleType = "Remove"
)

// Valid reports whether the rule type is known.
func (r RuleType) Valid() bool {
	return r == RuleAdd || r == RuleRemove
}

// ApprovedTagRule is a durable record of a community- or
// admin-approved tag mutation. Rules are keyed on the document's
// stable drive file id so they survive re-scans, and are replayed
// after every bulk tag regeneration. Rules are never hard-deleted once
// applied, only deactivated.
type ApprovedTagRule struct {
	ID            string      `json:"id"`
	DriveFileID   string      `json:"drive_file_id"`
	TagName       string      `json:"tag_name"`
	TagCategory   TagCategory `json:"tag_category"`
	RuleType      RuleType    `json:"rule_type"`
	Active        bool        `json:"active"`
	Source        string      `json:"source"` // "consensus" or "admin"
	VotesInFavor  float64     `json:"votes_in_favor"`
	VotesAgainst  float64     `json:"votes_against"`
	CreatedAt     time.Time   `json:"created_at"`
	LastAppliedAt *time.Time  `json:"last_applied_at,omitempty"`
	TimesApplied  int         `json:"times_applied"`
}

// RuleApplicationReport summarizes one applyApprovedRules run.
type RuleApplicationReport struct {
	RunID             string    `json:"run_id"`
	TotalRules        int       `json:"total_rules"`
	AdditionsApplied  int       `json:"additions_applied"`
	RemovalsApplied   int       `json:"removals_applied"`
	DocumentsNotFound int       `json:"documents_not_found"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
}
