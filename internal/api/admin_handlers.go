package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jumpchainsearch/jumpchain-server/internal/service"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "regenerateTags",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/regenerate-tags",
		Summary:     "Regenerate tags",
		Description: "Wipes derived tags, recomputes them from the keyword tables, and replays approved rules",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRegenerateTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDocumentCount",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/document-count",
		Summary:     "Get document count",
		Description: "Returns the cached catalog size",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDocumentCount)
}

// AdminInput contains the admin token header.
type AdminInput struct {
	Authorization string `header:"Authorization" doc:"Bearer admin token"`
}

// RegenerationOutput wraps the regeneration report for Huma.
type RegenerationOutput struct {
	Body service.RegenerationReport
}

// DocumentCountResponse contains the catalog size.
type DocumentCountResponse struct {
	Count int `json:"count" doc:"Number of documents in the catalog"`
}

// DocumentCountOutput wraps the document count response for Huma.
type DocumentCountOutput struct {
	Body DocumentCountResponse
}

func (s *Server) handleRegenerateTags(ctx context.Context, input *AdminInput) (*RegenerationOutput, error) {
	if err := s.requireAdmin(input.Authorization); err != nil {
		return nil, err
	}

	report, err := s.services.Tag.RegenerateAll(ctx)
	if err != nil {
		return nil, err
	}
	return &RegenerationOutput{Body: *report}, nil
}

func (s *Server) handleDocumentCount(ctx context.Context, input *AdminInput) (*DocumentCountOutput, error) {
	if err := s.requireAdmin(input.Authorization); err != nil {
		return nil, err
	}

	count, err := s.services.Count.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &DocumentCountOutput{Body: DocumentCountResponse{Count: count}}, nil
}
