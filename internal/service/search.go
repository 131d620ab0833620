package service

import (
	"context"
	"log/slog"

	"github.com/jumpchainsearch/jumpchain-server/internal/config"
	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
	"github.com/jumpchainsearch/jumpchain-server/internal/search"
	"github.com/jumpchainsearch/jumpchain-server/internal/store"
)

// ftsCandidateLimit caps how many FTS hits are pulled per search. Deep
// pagination past this point falls back to the scan path.
const ftsCandidateLimit = 1000

// SearchParams are the inputs to one search request.
type SearchParams struct {
	Query string
	Drive string
	Tag   string
	Page  int
	// PageSize of 0 means the configured default.
	PageSize int
}

// SearchService orchestrates search over the document catalog. It
// prefers the FTS index and falls back to an in-process substring scan
// when the index path cannot serve the request.
//
// The service is fail-soft: storage or query failures surface as an
// empty page plus a logged diagnostic, never as an error. A public
// search box that says "no results" is better than one that says 500.
type SearchService struct {
	store  store.Store
	cfg    config.SearchConfig
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(st store.Store, cfg config.SearchConfig, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:  st,
		cfg:    cfg,
		logger: logger,
	}
}

// Search runs a query and returns a ranked page of documents.
// Filters apply before ranking; pagination applies after, so the top
// results are never cut off before scoring.
func (s *SearchService) Search(ctx context.Context, params SearchParams) *store.Page[*domain.Document] {
	page := store.PageParams{Page: params.Page, PageSize: params.PageSize}
	page.Normalize(s.cfg.DefaultPageSize, s.cfg.MaxPageSize)

	raw := params.Query
	if len(raw) > s.cfg.MaxQueryLength {
		raw = raw[:s.cfg.MaxQueryLength]
	}
	parsed := search.Parse(raw)

	filtered := params.Drive != "" || params.Tag != ""

	var result *store.Page[*domain.Document]
	var err error
	switch {
	case parsed.Empty() && !filtered:
		result, err = s.store.ListDocuments(ctx, page)
	case parsed.Empty():
		result, err = s.browseFiltered(ctx, params, page)
	case len(parsed.AllPositive()) == 0:
		// NOT is a binary operator in FTS5, so an exclusion-only query
		// has no index form. The scan ranker applies exclusions itself.
		result, err = s.searchScan(ctx, params, parsed, page)
	case !filtered && page.Offset() < ftsCandidateLimit:
		result, err = s.searchFTS(ctx, parsed, page)
		if err != nil {
			s.logger.Warn("fts search failed, falling back to scan",
				"query", raw, "error", err)
			result, err = s.searchScan(ctx, params, parsed, page)
		}
	default:
		result, err = s.searchScan(ctx, params, parsed, page)
	}
	if err != nil {
		s.logger.Error("search failed", "query", raw,
			"drive", params.Drive, "tag", params.Tag, "error", err)
		return store.NewPage([]*domain.Document{}, page, 0)
	}
	return result
}

// searchFTS serves an unfiltered query from the FTS index, ranked by
// bm25. The index orders candidates before the limit applies, so
// pagination happens after scoring.
func (s *SearchService) searchFTS(ctx context.Context, parsed search.ParsedQuery, page store.PageParams) (*store.Page[*domain.Document], error) {
	match := search.BuildFTSQuery(parsed)

	total, err := s.store.CountFTS(ctx, match)
	if err != nil {
		return nil, err
	}
	hits, err := s.store.SearchFTS(ctx, match, page.PageSize, page.Offset())
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.DocumentID
	}
	docs, err := s.store.GetDocumentsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return store.NewPage(docs, page, total), nil
}

// searchScan loads the filtered candidate set with bodies, scores it
// with the in-process ranker, and paginates the scored list.
func (s *SearchService) searchScan(ctx context.Context, params SearchParams, parsed search.ParsedQuery, page store.PageParams) (*store.Page[*domain.Document], error) {
	docs, err := s.store.FilterDocuments(ctx, store.DocumentFilter{
		SourceDrive: params.Drive,
		TagName:     params.Tag,
		IncludeBody: true,
	})
	if err != nil {
		return nil, err
	}

	scored := search.Rank(docs, parsed)
	ranked := make([]*domain.Document, len(scored))
	for i, sd := range scored {
		ranked[i] = sd.Document
	}
	items, total := paginate(ranked, page)
	return store.NewPage(items, page, total), nil
}

// browseFiltered pages through a filtered set with no query, most
// recently modified first.
func (s *SearchService) browseFiltered(ctx context.Context, params SearchParams, page store.PageParams) (*store.Page[*domain.Document], error) {
	docs, err := s.store.FilterDocuments(ctx, store.DocumentFilter{
		SourceDrive: params.Drive,
		TagName:     params.Tag,
	})
	if err != nil {
		return nil, err
	}
	items, total := paginate(docs, page)
	return store.NewPage(items, page, total), nil
}

func paginate[T any](items []T, page store.PageParams) ([]T, int) {
	total := len(items)
	start := page.Offset()
	if start >= total {
		return []T{}, total
	}
	end := start + page.PageSize
	if end > total {
		end = total
	}
	return items[start:end], total
}
