package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns the distinct tag names in the catalog, optionally restricted to one category",
		Tags:        []string{"Tags"},
	}, s.handleListTags)
}

// ListTagsInput contains parameters for listing tags.
type ListTagsInput struct {
	Category string `query:"category" doc:"Restrict to one tag category"`
}

// TagNamesResponse contains distinct tag names.
type TagNamesResponse struct {
	Tags []string `json:"tags" doc:"Distinct tag names, sorted"`
}

// TagNamesOutput wraps the tag names response for Huma.
type TagNamesOutput struct {
	Body TagNamesResponse
}

func (s *Server) handleListTags(ctx context.Context, input *ListTagsInput) (*TagNamesOutput, error) {
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.ListTagNames(ctx, category)
	if err != nil {
		return nil, err
	}

	return &TagNamesOutput{Body: TagNamesResponse{Tags: tags}}, nil
}

// parseCategory converts an optional category query parameter to a
// filter. Empty means no filter.
func parseCategory(raw string) (*domain.TagCategory, error) {
	if raw == "" {
		return nil, nil
	}
	category := domain.TagCategory(raw)
	if !category.Valid() {
		return nil, huma.Error422UnprocessableEntity("Unknown tag category: " + raw)
	}
	return &category, nil
}
