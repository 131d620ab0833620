package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
	"github.com/jumpchainsearch/jumpchain-server/internal/service"
)

func (s *Server) registerRuleRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRules",
		Method:      http.MethodGet,
		Path:        "/api/v1/rules",
		Summary:     "List rules",
		Description: "Returns approved tag rules, optionally restricted to active rules or one category",
		Tags:        []string{"Rules"},
	}, s.handleListRules)

	huma.Register(s.api, huma.Operation{
		OperationID: "createRule",
		Method:      http.MethodPost,
		Path:        "/api/v1/rules",
		Summary:     "Create rule",
		Description: "Records an admin-authored rule directly, bypassing the voting workflow",
		Tags:        []string{"Rules"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateRule)

	huma.Register(s.api, huma.Operation{
		OperationID: "applyRules",
		Method:      http.MethodPost,
		Path:        "/api/v1/rules/apply",
		Summary:     "Apply rules",
		Description: "Replays all active rules against the current catalog",
		Tags:        []string{"Rules"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleApplyRules)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleRule",
		Method:      http.MethodPost,
		Path:        "/api/v1/rules/{id}/toggle",
		Summary:     "Toggle rule",
		Description: "Flips a rule between active and inactive",
		Tags:        []string{"Rules"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleRule)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteRule",
		Method:      http.MethodDelete,
		Path:        "/api/v1/rules/{id}",
		Summary:     "Delete rule",
		Description: "Deletes a rule that has never been applied",
		Tags:        []string{"Rules"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteRule)
}

// === DTOs ===

// RuleResponse contains an approved tag rule in API responses.
type RuleResponse struct {
	ID            string     `json:"id" doc:"Rule ID"`
	DriveFileID   string     `json:"drive_file_id" doc:"Stable external file ID the rule targets"`
	TagName       string     `json:"tag_name" doc:"Tag name the rule manages"`
	TagCategory   string     `json:"tag_category" doc:"Category of the tag"`
	RuleType      string     `json:"rule_type" doc:"Add or Remove"`
	Active        bool       `json:"active" doc:"Whether the rule is replayed"`
	Source        string     `json:"source" doc:"consensus or admin"`
	VotesInFavor  float64    `json:"votes_in_favor" doc:"Weighted votes in favor at approval"`
	VotesAgainst  float64    `json:"votes_against" doc:"Weighted votes against at approval"`
	CreatedAt     time.Time  `json:"created_at" doc:"Creation time"`
	LastAppliedAt *time.Time `json:"last_applied_at,omitempty" doc:"Time of the most recent application"`
	TimesApplied  int        `json:"times_applied" doc:"How many runs have applied this rule"`
}

func toRuleResponse(rule *domain.ApprovedTagRule) RuleResponse {
	return RuleResponse{
		ID:            rule.ID,
		DriveFileID:   rule.DriveFileID,
		TagName:       rule.TagName,
		TagCategory:   string(rule.TagCategory),
		RuleType:      string(rule.RuleType),
		Active:        rule.Active,
		Source:        rule.Source,
		VotesInFavor:  rule.VotesInFavor,
		VotesAgainst:  rule.VotesAgainst,
		CreatedAt:     rule.CreatedAt,
		LastAppliedAt: rule.LastAppliedAt,
		TimesApplied:  rule.TimesApplied,
	}
}

// ListRulesInput contains parameters for listing rules.
type ListRulesInput struct {
	Active   bool   `query:"active" doc:"Only return active rules"`
	Category string `query:"category" doc:"Restrict to one tag category"`
}

// ListRulesResponse contains a list of rules.
type ListRulesResponse struct {
	Rules []RuleResponse `json:"rules" doc:"Approved tag rules"`
}

// ListRulesOutput wraps the list rules response for Huma.
type ListRulesOutput struct {
	Body ListRulesResponse
}

// CreateRuleRequest is the request body for creating a rule.
type CreateRuleRequest struct {
	DriveFileID string `json:"drive_file_id" validate:"required" doc:"Stable external file ID"`
	TagName     string `json:"tag_name" validate:"required,min=1,max=80" doc:"Tag name"`
	TagCategory string `json:"tag_category" validate:"required" doc:"Tag category"`
	RuleType    string `json:"rule_type" enum:"Add,Remove" doc:"Add or Remove"`
}

// CreateRuleInput wraps the create rule request for Huma.
type CreateRuleInput struct {
	Authorization string `header:"Authorization" doc:"Bearer admin token"`
	Body          CreateRuleRequest
}

// RuleOutput wraps the rule response for Huma.
type RuleOutput struct {
	Body RuleResponse
}

// ApplyRulesInput contains parameters for a rule replay run.
type ApplyRulesInput struct {
	Authorization string `header:"Authorization" doc:"Bearer admin token"`
	Category      string `query:"category" doc:"Restrict the run to one tag category"`
}

// RuleReportOutput wraps the rule application report for Huma.
type RuleReportOutput struct {
	Body domain.RuleApplicationReport
}

// RuleIDInput contains parameters addressing one rule.
type RuleIDInput struct {
	Authorization string `header:"Authorization" doc:"Bearer admin token"`
	ID            string `path:"id" doc:"Rule ID"`
}

// === Handlers ===

func (s *Server) handleListRules(ctx context.Context, input *ListRulesInput) (*ListRulesOutput, error) {
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	rules, err := s.services.Rule.ListRules(ctx, input.Active, category)
	if err != nil {
		return nil, err
	}

	resp := make([]RuleResponse, len(rules))
	for i, rule := range rules {
		resp[i] = toRuleResponse(rule)
	}
	return &ListRulesOutput{Body: ListRulesResponse{Rules: resp}}, nil
}

func (s *Server) handleCreateRule(ctx context.Context, input *CreateRuleInput) (*RuleOutput, error) {
	if err := s.requireAdmin(input.Authorization); err != nil {
		return nil, err
	}

	rule, err := s.services.Rule.CreateRule(ctx, service.CreateRuleInput{
		DriveFileID: input.Body.DriveFileID,
		TagName:     input.Body.TagName,
		TagCategory: domain.TagCategory(input.Body.TagCategory),
		RuleType:    domain.RuleType(input.Body.RuleType),
	})
	if err != nil {
		return nil, err
	}
	return &RuleOutput{Body: toRuleResponse(rule)}, nil
}

func (s *Server) handleApplyRules(ctx context.Context, input *ApplyRulesInput) (*RuleReportOutput, error) {
	if err := s.requireAdmin(input.Authorization); err != nil {
		return nil, err
	}

	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	report, err := s.services.Rule.ApplyApprovedRules(ctx, category)
	if err != nil {
		return nil, err
	}
	return &RuleReportOutput{Body: *report}, nil
}

func (s *Server) handleToggleRule(ctx context.Context, input *RuleIDInput) (*RuleOutput, error) {
	if err := s.requireAdmin(input.Authorization); err != nil {
		return nil, err
	}

	rule, err := s.services.Rule.ToggleRule(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &RuleOutput{Body: toRuleResponse(rule)}, nil
}

func (s *Server) handleDeleteRule(ctx context.Context, input *RuleIDInput) (*MessageOutput, error) {
	if err := s.requireAdmin(input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Rule.DeleteRule(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Rule deleted"}}, nil
}
