package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
	"github.com/jumpchainsearch/jumpchain-server/internal/service"
)

func (s *Server) registerVotingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "suggestTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/voting/suggestions",
		Summary:     "Suggest tag",
		Description: "Opens a tag suggestion for a document. The suggester automatically votes in favor",
		Tags:        []string{"Voting"},
	}, s.handleSuggestTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "requestTagRemoval",
		Method:      http.MethodPost,
		Path:        "/api/v1/voting/removals",
		Summary:     "Request tag removal",
		Description: "Opens a removal request for an existing tag on a document",
		Tags:        []string{"Voting"},
	}, s.handleRequestRemoval)

	huma.Register(s.api, huma.Operation{
		OperationID: "castVote",
		Method:      http.MethodPost,
		Path:        "/api/v1/voting/votes",
		Summary:     "Cast vote",
		Description: "Casts or updates a vote on a pending suggestion or removal and re-evaluates consensus",
		Tags:        []string{"Voting"},
	}, s.handleCastVote)

	huma.Register(s.api, huma.Operation{
		OperationID: "listDocumentPending",
		Method:      http.MethodGet,
		Path:        "/api/v1/voting/documents/{id}/pending",
		Summary:     "List pending items for document",
		Description: "Returns the open suggestions and removal requests for one document",
		Tags:        []string{"Voting"},
	}, s.handleListDocumentPending)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAllPending",
		Method:      http.MethodGet,
		Path:        "/api/v1/voting/pending",
		Summary:     "List all pending items",
		Description: "Returns every open suggestion and removal request",
		Tags:        []string{"Voting"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListAllPending)

	huma.Register(s.api, huma.Operation{
		OperationID: "getVotingConfig",
		Method:      http.MethodGet,
		Path:        "/api/v1/voting/config",
		Summary:     "Get voting configuration",
		Description: "Returns the consensus engine configuration",
		Tags:        []string{"Voting"},
	}, s.handleGetVotingConfig)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateVotingConfig",
		Method:      http.MethodPut,
		Path:        "/api/v1/voting/config",
		Summary:     "Update voting configuration",
		Description: "Replaces the consensus engine configuration",
		Tags:        []string{"Voting"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateVotingConfig)

	huma.Register(s.api, huma.Operation{
		OperationID: "checkThresholds",
		Method:      http.MethodPost,
		Path:        "/api/v1/voting/check-thresholds",
		Summary:     "Check all thresholds",
		Description: "Re-evaluates every pending target against the current configuration",
		Tags:        []string{"Voting"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCheckThresholds)

	huma.Register(s.api, huma.Operation{
		OperationID: "approveSuggestion",
		Method:      http.MethodPost,
		Path:        "/api/v1/voting/suggestions/{id}/approve",
		Summary:     "Approve suggestion",
		Description: "Applies a pending suggestion by admin decision",
		Tags:        []string{"Voting"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleApproveSuggestion)

	huma.Register(s.api, huma.Operation{
		OperationID: "rejectSuggestion",
		Method:      http.MethodPost,
		Path:        "/api/v1/voting/suggestions/{id}/reject",
		Summary:     "Reject suggestion",
		Description: "Rejects a pending suggestion by admin decision",
		Tags:        []string{"Voting"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRejectSuggestion)

	huma.Register(s.api, huma.Operation{
		OperationID: "approveRemoval",
		Method:      http.MethodPost,
		Path:        "/api/v1/voting/removals/{id}/approve",
		Summary:     "Approve removal",
		Description: "Applies a pending removal request by admin decision",
		Tags:        []string{"Voting"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleApproveRemoval)

	huma.Register(s.api, huma.Operation{
		OperationID: "rejectRemoval",
		Method:      http.MethodPost,
		Path:        "/api/v1/voting/removals/{id}/reject",
		Summary:     "Reject removal",
		Description: "Rejects a pending removal request by admin decision",
		Tags:        []string{"Voting"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRejectRemoval)
}

// === DTOs ===

// VoteResponse contains one vote in API responses.
type VoteResponse struct {
	UserID  string    `json:"user_id" doc:"Voter identifier"`
	InFavor bool      `json:"in_favor" doc:"Whether the vote supports the change"`
	Weight  float64   `json:"weight" doc:"Base vote weight before decay"`
	CastAt  time.Time `json:"cast_at" doc:"Time the vote was cast or last updated"`
}

// SuggestionResponse contains a tag suggestion in API responses.
type SuggestionResponse struct {
	ID          string         `json:"id" doc:"Suggestion ID"`
	DocumentID  string         `json:"document_id" doc:"Target document ID"`
	TagName     string         `json:"tag_name" doc:"Suggested tag name"`
	TagCategory string         `json:"tag_category" doc:"Suggested tag category"`
	SuggestedBy string         `json:"suggested_by" doc:"User who opened the suggestion"`
	Reason      string         `json:"reason,omitempty" doc:"Optional justification"`
	Status      string         `json:"status" doc:"Suggestion status"`
	CreatedAt   time.Time      `json:"created_at" doc:"Creation time"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty" doc:"Resolution time"`
	Votes       []VoteResponse `json:"votes" doc:"Votes cast on this suggestion"`
}

// RemovalResponse contains a tag removal request in API responses.
type RemovalResponse struct {
	ID          string         `json:"id" doc:"Removal request ID"`
	DocumentID  string         `json:"document_id" doc:"Target document ID"`
	TagName     string         `json:"tag_name" doc:"Tag name to remove"`
	TagCategory string         `json:"tag_category" doc:"Category of the tag"`
	RequestedBy string         `json:"requested_by" doc:"User who opened the request"`
	Reason      string         `json:"reason,omitempty" doc:"Optional justification"`
	Status      string         `json:"status" doc:"Request status"`
	CreatedAt   time.Time      `json:"created_at" doc:"Creation time"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty" doc:"Resolution time"`
	Votes       []VoteResponse `json:"votes" doc:"Votes cast on this request"`
}

func toVoteResponses(votes []domain.TagVote) []VoteResponse {
	out := make([]VoteResponse, len(votes))
	for i, v := range votes {
		out[i] = VoteResponse{
			UserID:  v.UserID,
			InFavor: v.InFavor,
			Weight:  v.Weight,
			CastAt:  v.CastAt,
		}
	}
	return out
}

func toSuggestionResponse(sug *domain.TagSuggestion) SuggestionResponse {
	return SuggestionResponse{
		ID:          sug.ID,
		DocumentID:  sug.DocumentID,
		TagName:     sug.TagName,
		TagCategory: string(sug.TagCategory),
		SuggestedBy: sug.SuggestedBy,
		Reason:      sug.Reason,
		Status:      string(sug.Status),
		CreatedAt:   sug.CreatedAt,
		ResolvedAt:  sug.ResolvedAt,
		Votes:       toVoteResponses(sug.Votes),
	}
}

func toRemovalResponse(rem *domain.TagRemovalRequest) RemovalResponse {
	return RemovalResponse{
		ID:          rem.ID,
		DocumentID:  rem.DocumentID,
		TagName:     rem.TagName,
		TagCategory: string(rem.TagCategory),
		RequestedBy: rem.RequestedBy,
		Reason:      rem.Reason,
		Status:      string(rem.Status),
		CreatedAt:   rem.CreatedAt,
		ResolvedAt:  rem.ResolvedAt,
		Votes:       toVoteResponses(rem.Votes),
	}
}

// SuggestTagRequest is the request body for opening a suggestion.
type SuggestTagRequest struct {
	DocumentID  string `json:"document_id" validate:"required" doc:"Target document ID"`
	TagName     string `json:"tag_name" validate:"required,min=1,max=80" doc:"Suggested tag name"`
	TagCategory string `json:"tag_category" validate:"required" doc:"Suggested tag category"`
	Reason      string `json:"reason,omitempty" validate:"max=500" doc:"Optional justification"`
}

// SuggestTagInput wraps the suggest tag request for Huma.
type SuggestTagInput struct {
	UserID string `header:"X-User-ID" doc:"Caller identifier"`
	Body   SuggestTagRequest
}

// SuggestionOutput wraps the suggestion response for Huma.
type SuggestionOutput struct {
	Body SuggestionResponse
}

// RequestRemovalRequest is the request body for opening a removal request.
type RequestRemovalRequest struct {
	DocumentID string `json:"document_id" validate:"required" doc:"Target document ID"`
	TagName    string `json:"tag_name" validate:"required,min=1,max=80" doc:"Tag name to remove"`
	Reason     string `json:"reason,omitempty" validate:"max=500" doc:"Optional justification"`
}

// RequestRemovalInput wraps the removal request for Huma.
type RequestRemovalInput struct {
	UserID string `header:"X-User-ID" doc:"Caller identifier"`
	Body   RequestRemovalRequest
}

// RemovalOutput wraps the removal response for Huma.
type RemovalOutput struct {
	Body RemovalResponse
}

// CastVoteRequest is the request body for casting a vote.
type CastVoteRequest struct {
	TargetKind string `json:"target_kind" enum:"suggestion,removal" doc:"What the vote targets"`
	TargetID   string `json:"target_id" validate:"required" doc:"Suggestion or removal request ID"`
	InFavor    bool   `json:"in_favor" doc:"Whether the vote supports the change"`
}

// CastVoteInput wraps the cast vote request for Huma.
type CastVoteInput struct {
	UserID string `header:"X-User-ID" doc:"Caller identifier"`
	Body   CastVoteRequest
}

// ConsensusOutput wraps the consensus evaluation result for Huma.
type ConsensusOutput struct {
	Body domain.ConsensusResult
}

// PendingResponse contains the open suggestions and removal requests.
type PendingResponse struct {
	Suggestions []SuggestionResponse `json:"suggestions" doc:"Open tag suggestions"`
	Removals    []RemovalResponse    `json:"removals" doc:"Open removal requests"`
}

// PendingOutput wraps the pending response for Huma.
type PendingOutput struct {
	Body PendingResponse
}

// DocumentPendingInput contains parameters for per-document pending items.
type DocumentPendingInput struct {
	ID string `path:"id" doc:"Document ID"`
}

// AdminPendingInput contains parameters for the admin pending listing.
type AdminPendingInput struct {
	Authorization string `header:"Authorization" doc:"Bearer admin token"`
}

// VotingConfigOutput wraps the voting configuration for Huma.
type VotingConfigOutput struct {
	Body domain.VotingConfiguration
}

// UpdateVotingConfigInput wraps the config replacement for Huma.
type UpdateVotingConfigInput struct {
	Authorization string `header:"Authorization" doc:"Bearer admin token"`
	Body          domain.VotingConfiguration
}

// SweepOutput wraps the threshold sweep report for Huma.
type SweepOutput struct {
	Body service.SweepReport
}

// AdminResolveInput contains parameters for an admin decision.
type AdminResolveInput struct {
	Authorization string `header:"Authorization" doc:"Bearer admin token"`
	ID            string `path:"id" doc:"Suggestion or removal request ID"`
}

// MessageResponse is a simple success message response.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleSuggestTag(ctx context.Context, input *SuggestTagInput) (*SuggestionOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.allowVote(userID); err != nil {
		return nil, err
	}

	sug, err := s.services.Voting.SuggestTag(ctx, service.SuggestTagInput{
		DocumentID:  input.Body.DocumentID,
		TagName:     input.Body.TagName,
		TagCategory: domain.TagCategory(input.Body.TagCategory),
		UserID:      userID,
		Reason:      input.Body.Reason,
	})
	if err != nil {
		return nil, err
	}

	return &SuggestionOutput{Body: toSuggestionResponse(sug)}, nil
}

func (s *Server) handleRequestRemoval(ctx context.Context, input *RequestRemovalInput) (*RemovalOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.allowVote(userID); err != nil {
		return nil, err
	}

	rem, err := s.services.Voting.RequestRemoval(ctx, service.RequestRemovalInput{
		DocumentID: input.Body.DocumentID,
		TagName:    input.Body.TagName,
		UserID:     userID,
		Reason:     input.Body.Reason,
	})
	if err != nil {
		return nil, err
	}

	return &RemovalOutput{Body: toRemovalResponse(rem)}, nil
}

func (s *Server) handleCastVote(ctx context.Context, input *CastVoteInput) (*ConsensusOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.allowVote(userID); err != nil {
		return nil, err
	}

	kind := domain.VoteTargetKind(input.Body.TargetKind)
	if kind != domain.TargetSuggestion && kind != domain.TargetRemoval {
		return nil, huma.Error422UnprocessableEntity("Unknown vote target kind: " + input.Body.TargetKind)
	}

	result, err := s.services.Voting.CastVote(ctx, kind, input.Body.TargetID, userID, input.Body.InFavor)
	if err != nil {
		return nil, err
	}

	return &ConsensusOutput{Body: *result}, nil
}

func (s *Server) handleListDocumentPending(ctx context.Context, input *DocumentPendingInput) (*PendingOutput, error) {
	pending, err := s.services.Voting.ListPending(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &PendingOutput{Body: toPendingResponse(pending)}, nil
}

func (s *Server) handleListAllPending(ctx context.Context, input *AdminPendingInput) (*PendingOutput, error) {
	if err := s.requireAdmin(input.Authorization); err != nil {
		return nil, err
	}

	pending, err := s.services.Voting.ListPending(ctx, "")
	if err != nil {
		return nil, err
	}
	return &PendingOutput{Body: toPendingResponse(pending)}, nil
}

func toPendingResponse(pending *service.PendingItems) PendingResponse {
	suggestions := make([]SuggestionResponse, len(pending.Suggestions))
	for i, sug := range pending.Suggestions {
		suggestions[i] = toSuggestionResponse(sug)
	}
	removals := make([]RemovalResponse, len(pending.Removals))
	for i, rem := range pending.Removals {
		removals[i] = toRemovalResponse(rem)
	}
	return PendingResponse{Suggestions: suggestions, Removals: removals}
}

func (s *Server) handleGetVotingConfig(ctx context.Context, _ *struct{}) (*VotingConfigOutput, error) {
	cfg, err := s.services.Voting.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &VotingConfigOutput{Body: *cfg}, nil
}

func (s *Server) handleUpdateVotingConfig(ctx context.Context, input *UpdateVotingConfigInput) (*VotingConfigOutput, error) {
	if err := s.requireAdmin(input.Authorization); err != nil {
		return nil, err
	}

	cfg := input.Body
	if err := s.services.Voting.UpdateConfig(ctx, &cfg); err != nil {
		return nil, err
	}

	updated, err := s.services.Voting.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &VotingConfigOutput{Body: *updated}, nil
}

func (s *Server) handleCheckThresholds(ctx context.Context, input *AdminPendingInput) (*SweepOutput, error) {
	if err := s.requireAdmin(input.Authorization); err != nil {
		return nil, err
	}

	report, err := s.services.Voting.CheckAllThresholds(ctx)
	if err != nil {
		return nil, err
	}
	return &SweepOutput{Body: *report}, nil
}

func (s *Server) handleApproveSuggestion(ctx context.Context, input *AdminResolveInput) (*MessageOutput, error) {
	return s.adminResolveSuggestion(ctx, input, true, "Suggestion approved and applied")
}

func (s *Server) handleRejectSuggestion(ctx context.Context, input *AdminResolveInput) (*MessageOutput, error) {
	return s.adminResolveSuggestion(ctx, input, false, "Suggestion rejected")
}

func (s *Server) adminResolveSuggestion(ctx context.Context, input *AdminResolveInput, approve bool, msg string) (*MessageOutput, error) {
	if err := s.requireAdmin(input.Authorization); err != nil {
		return nil, err
	}
	if err := s.services.Voting.AdminResolveSuggestion(ctx, input.ID, approve); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: msg}}, nil
}

func (s *Server) handleApproveRemoval(ctx context.Context, input *AdminResolveInput) (*MessageOutput, error) {
	return s.adminResolveRemoval(ctx, input, true, "Removal approved and applied")
}

func (s *Server) handleRejectRemoval(ctx context.Context, input *AdminResolveInput) (*MessageOutput, error) {
	return s.adminResolveRemoval(ctx, input, false, "Removal rejected")
}

func (s *Server) adminResolveRemoval(ctx context.Context, input *AdminResolveInput, approve bool, msg string) (*MessageOutput, error) {
	if err := s.requireAdmin(input.Authorization); err != nil {
		return nil, err
	}
	if err := s.services.Voting.AdminResolveRemoval(ctx, input.ID, approve); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: msg}}, nil
}
