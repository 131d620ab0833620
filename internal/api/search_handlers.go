package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jumpchainsearch/jumpchain-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchDocuments",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search documents",
		Description: "Full-text search over the document catalog with optional drive and tag filters",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput contains search query parameters.
type SearchInput struct {
	Query    string `query:"q" doc:"Search query. Supports quoted phrases and -exclusions"`
	Drive    string `query:"drive" doc:"Restrict results to one source drive"`
	Tag      string `query:"tag" doc:"Restrict results to documents carrying this tag"`
	Page     int    `query:"page" minimum:"0" doc:"Page number, 1-based"`
	PageSize int    `query:"page_size" minimum:"0" maximum:"1000" doc:"Items per page"`
}

// SearchResponse contains one page of search results.
type SearchResponse struct {
	Items      []DocumentResponse `json:"items" doc:"Matching documents, best first"`
	Page       int                `json:"page" doc:"Current page number"`
	PageSize   int                `json:"page_size" doc:"Items per page"`
	TotalItems int                `json:"total_items" doc:"Total matches across all pages"`
	TotalPages int                `json:"total_pages" doc:"Total page count"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	page := s.services.Search.Search(ctx, service.SearchParams{
		Query:    input.Query,
		Drive:    input.Drive,
		Tag:      input.Tag,
		Page:     input.Page,
		PageSize: input.PageSize,
	})

	items := make([]DocumentResponse, len(page.Items))
	for i, doc := range page.Items {
		items[i] = toDocumentResponse(doc)
	}

	return &SearchOutput{
		Body: SearchResponse{
			Items:      items,
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalItems: page.TotalItems,
			TotalPages: page.TotalPages,
		},
	}, nil
}
