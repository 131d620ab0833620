package service

import (
	"context"
	"log/slog"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
	"github.com/jumpchainsearch/jumpchain-server/internal/format"
	"github.com/jumpchainsearch/jumpchain-server/internal/store"
)

// DocumentService serves document reads for the HTTP surface: detail
// lookups, view tracking, and purchasable extraction from the stored
// body text.
type DocumentService struct {
	store  store.Store
	logger *slog.Logger
}

// NewDocumentService creates a new document service.
func NewDocumentService(st store.Store, logger *slog.Logger) *DocumentService {
	return &DocumentService{store: st, logger: logger}
}

// Get returns a document with its tags.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.store.GetDocument(ctx, documentID)
}

// TrackView bumps the document's view counter. View counts feed the
// popularity scaling of voting thresholds, so a failed increment is a
// real error, not best-effort.
func (s *DocumentService) TrackView(ctx context.Context, documentID string) (*domain.DocumentViewCount, error) {
	if _, err := s.store.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	if err := s.store.IncrementViewCount(ctx, documentID); err != nil {
		return nil, err
	}
	return s.store.GetViewCount(ctx, documentID)
}

// PurchasableListing is the parsed purchasable view of one document.
type PurchasableListing struct {
	Analysis     format.Analysis      `json:"analysis"`
	Purchasables []format.Purchasable `json:"purchasables"`
}

// Purchasables classifies the document's text layout and parses the
// purchasable entries with the matching strategy.
func (s *DocumentService) Purchasables(ctx context.Context, documentID string) (*PurchasableListing, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	analysis, purchasables := format.ParsePurchasables(doc.ExtractedText)
	s.logger.Debug("parsed purchasables", "document", documentID,
		"format", analysis.Type, "count", len(purchasables))
	return &PurchasableListing{Analysis: analysis, Purchasables: purchasables}, nil
}

// ListDrives returns the distinct source drives in the catalog.
func (s *DocumentService) ListDrives(ctx context.Context) ([]string, error) {
	return s.store.ListDrives(ctx)
}
