package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
	"github.com/jumpchainsearch/jumpchain-server/internal/format"
	"github.com/jumpchainsearch/jumpchain-server/internal/keywords"
	"github.com/jumpchainsearch/jumpchain-server/internal/store"
)

// TagService derives catalog tags from document metadata and the
// keyword tables. Derived tags are disposable: a regeneration wipes
// and recomputes them, then replays approved rules so community
// decisions survive.
type TagService struct {
	store    store.Store
	keywords *keywords.Store
	rules    *TagRuleService
	logger   *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(st store.Store, kw *keywords.Store, rules *TagRuleService, logger *slog.Logger) *TagService {
	return &TagService{
		store:    st,
		keywords: kw,
		rules:    rules,
		logger:   logger,
	}
}

// RegenerationReport summarizes one bulk tag regeneration.
type RegenerationReport struct {
	Documents   int                           `json:"documents"`
	TagsRemoved int                           `json:"tags_removed"`
	TagsAdded   int                           `json:"tags_added"`
	Rules       *domain.RuleApplicationReport `json:"rules"`
	StartedAt   time.Time                     `json:"started_at"`
	FinishedAt  time.Time                     `json:"finished_at"`
}

// RegenerateAll wipes every derived tag category, recomputes tags for
// all documents from the current keyword tables, and replays approved
// rules on top. User-facing and drive tags are untouched.
func (s *TagService) RegenerateAll(ctx context.Context) (*RegenerationReport, error) {
	report := &RegenerationReport{StartedAt: time.Now()}
	s.logger.Info("starting tag regeneration")

	for _, category := range domain.AllTagCategories {
		if !category.Derived() {
			continue
		}
		n, err := s.store.DeleteTagsByCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		report.TagsRemoved += n
	}
	s.logger.Info("derived tags wiped", "removed", report.TagsRemoved)

	docs, err := s.store.FilterDocuments(ctx, store.DocumentFilter{IncludeBody: true})
	if err != nil {
		return nil, err
	}
	report.Documents = len(docs)

	matcher := s.keywords.Matcher()
	for _, doc := range docs {
		added, err := s.tagDocument(ctx, doc, matcher)
		if err != nil {
			return nil, err
		}
		report.TagsAdded += added
	}
	s.logger.Info("derived tags recomputed",
		"documents", report.Documents, "added", report.TagsAdded)

	// Community decisions go back on top of the fresh derived set.
	rules, err := s.rules.ApplyApprovedRules(ctx, nil)
	if err != nil {
		return nil, err
	}
	report.Rules = rules

	report.FinishedAt = time.Now()
	s.logger.Info("tag regeneration complete",
		"duration", report.FinishedAt.Sub(report.StartedAt))
	return report, nil
}

// TagDocument recomputes derived tags for a single document, used when
// one document changes without a full regeneration.
func (s *TagService) TagDocument(ctx context.Context, documentID string) (int, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}
	return s.tagDocument(ctx, doc, s.keywords.Matcher())
}

func (s *TagService) tagDocument(ctx context.Context, doc *domain.Document, matcher *keywords.Matcher) (int, error) {
	added := 0
	add := func(name string, category domain.TagCategory) error {
		if name == "" {
			return nil
		}
		ok, err := s.store.AddTagIfAbsent(ctx, doc.ID, name, category)
		if err != nil {
			return err
		}
		if ok {
			added++
		}
		return nil
	}

	// Keyword tables match against the visible metadata, not the body:
	// body text mentions too many franchises in passing.
	haystack := doc.Name + " " + doc.FolderPath
	for _, genre := range matcher.MatchGenres(haystack) {
		if err := add(genre, domain.CategoryGenre); err != nil {
			return added, err
		}
	}
	for _, series := range matcher.MatchSeries(haystack) {
		if err := add(series, domain.CategorySeries); err != nil {
			return added, err
		}
	}

	if err := add(formatTag(doc.FileFormat), domain.CategoryFormat); err != nil {
		return added, err
	}
	if err := add(sizeTag(doc.SizeBytes), domain.CategorySize); err != nil {
		return added, err
	}
	if doc.ExtractedText != "" {
		analysis := format.Analyze(doc.ExtractedText)
		if analysis.Type != format.Unknown {
			if err := add(string(analysis.Type), domain.CategoryContentType); err != nil {
				return added, err
			}
		}
		if err := add("Extracted", domain.CategoryExtraction); err != nil {
			return added, err
		}
	}
	return added, nil
}

func formatTag(fileFormat string) string {
	switch strings.ToLower(fileFormat) {
	case "":
		return ""
	case "pdf":
		return "PDF"
	case "doc", "docx":
		return "Word"
	case "txt", "md":
		return "Text"
	default:
		return strings.ToUpper(fileFormat)
	}
}

func sizeTag(sizeBytes int64) string {
	const mb = 1 << 20
	switch {
	case sizeBytes <= 0:
		return ""
	case sizeBytes < 1*mb:
		return "Small"
	case sizeBytes < 10*mb:
		return "Medium"
	default:
		return "Large"
	}
}

// ListTagNames returns the distinct tag names in the catalog.
func (s *TagService) ListTagNames(ctx context.Context, category *domain.TagCategory) ([]string, error) {
	return s.store.ListTagNames(ctx, category)
}
