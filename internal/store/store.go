// Package store defines the persistence interface for the JumpChain
// search server.
package store

import (
	"context"
	"time"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error

	// Documents
	CreateDocument(ctx context.Context, doc *domain.Document) error
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
	GetDocumentByDriveFileID(ctx context.Context, driveFileID string) (*domain.Document, error)
	UpdateDocument(ctx context.Context, doc *domain.Document) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, params PageParams) (*Page[*domain.Document], error)
	GetDocumentsByIDs(ctx context.Context, ids []string) ([]*domain.Document, error)
	FilterDocuments(ctx context.Context, filter DocumentFilter) ([]*domain.Document, error)
	CountDocuments(ctx context.Context) (int, error)
	ListDrives(ctx context.Context) ([]string, error)

	// Tags
	AddTag(ctx context.Context, tag *domain.DocumentTag) error
	AddTagIfAbsent(ctx context.Context, documentID, name string, category domain.TagCategory) (bool, error)
	RemoveTag(ctx context.Context, documentID, name string) (bool, error)
	ListTagNames(ctx context.Context, category *domain.TagCategory) ([]string, error)
	DeleteTagsByCategory(ctx context.Context, category domain.TagCategory) (int, error)

	// Full-text index
	SearchFTS(ctx context.Context, match string, limit, offset int) ([]FTSHit, error)
	CountFTS(ctx context.Context, match string) (int, error)
	RebuildFTS(ctx context.Context) error
	OptimizeFTS(ctx context.Context) error

	// View tracking
	IncrementViewCount(ctx context.Context, documentID string) error
	GetViewCount(ctx context.Context, documentID string) (*domain.DocumentViewCount, error)

	// Voting
	CreateSuggestion(ctx context.Context, s *domain.TagSuggestion) error
	GetSuggestion(ctx context.Context, id string) (*domain.TagSuggestion, error)
	CreateRemovalRequest(ctx context.Context, r *domain.TagRemovalRequest) error
	GetRemovalRequest(ctx context.Context, id string) (*domain.TagRemovalRequest, error)
	ListPendingSuggestions(ctx context.Context, documentID string) ([]*domain.TagSuggestion, error)
	ListPendingRemovals(ctx context.Context, documentID string) ([]*domain.TagRemovalRequest, error)
	UpsertVote(ctx context.Context, v *domain.TagVote) (created bool, err error)
	ListVotes(ctx context.Context, kind domain.VoteTargetKind, targetID string) ([]domain.TagVote, error)

	// Consensus resolution. Both methods run in a single transaction
	// guarded on the target still being Pending, so concurrent
	// evaluations cannot double-apply. The returned bool reports
	// whether this call performed the transition.
	ResolveSuggestion(ctx context.Context, id string, approve bool, rule *domain.ApprovedTagRule) (bool, error)
	ResolveRemoval(ctx context.Context, id string, approve bool, rule *domain.ApprovedTagRule) (bool, error)

	// Voting configuration (singleton)
	GetVotingConfig(ctx context.Context) (*domain.VotingConfiguration, error)
	UpdateVotingConfig(ctx context.Context, cfg *domain.VotingConfiguration) error

	// Approved tag rules
	CreateRule(ctx context.Context, rule *domain.ApprovedTagRule) error
	GetRule(ctx context.Context, id string) (*domain.ApprovedTagRule, error)
	ListRules(ctx context.Context, activeOnly bool, category *domain.TagCategory) ([]*domain.ApprovedTagRule, error)
	SetRuleActive(ctx context.Context, id string, active bool) error
	DeleteRule(ctx context.Context, id string) error
	MarkRuleApplied(ctx context.Context, id string, at time.Time) error

	// User tag overrides
	UpsertUserOverride(ctx context.Context, o *domain.UserTagOverride) error
	ListUserOverrides(ctx context.Context, userID, documentID string) ([]domain.UserTagOverride, error)
}

// FTSHit is one row from a ranked full-text query. Rank follows the
// engine's convention: lower means more relevant.
type FTSHit struct {
	DocumentID string
	Rank       float64
}

// DocumentFilter narrows document list operations. Zero values mean
// no constraint. Documents are returned with tags populated;
// IncludeBody controls whether extracted text is loaded too.
type DocumentFilter struct {
	SourceDrive string
	TagName     string
	IncludeBody bool
}

// PageParams is 1-based page/size pagination.
type PageParams struct {
	Page     int
	PageSize int
}

// Normalize clamps the parameters to sane values.
func (p *PageParams) Normalize(defaultSize, maxSize int) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultSize
	}
	if p.PageSize > maxSize {
		p.PageSize = maxSize
	}
}

// Offset converts the page number to a row offset.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is one page of results with totals for pager rendering.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPage assembles a page, computing the page count.
func NewPage[T any](items []T, params PageParams, total int) *Page[T] {
	totalPages := 0
	if params.PageSize > 0 {
		totalPages = (total + params.PageSize - 1) / params.PageSize
	}
	return &Page[T]{
		Items:      items,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
