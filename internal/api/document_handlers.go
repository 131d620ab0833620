package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
	"github.com/jumpchainsearch/jumpchain-server/internal/format"
)

func (s *Server) registerDocumentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDocument",
		Method:      http.MethodGet,
		Path:        "/api/v1/documents/{id}",
		Summary:     "Get document",
		Description: "Returns a document by ID with its tags",
		Tags:        []string{"Documents"},
	}, s.handleGetDocument)

	huma.Register(s.api, huma.Operation{
		OperationID: "trackDocumentView",
		Method:      http.MethodPost,
		Path:        "/api/v1/documents/{id}/view",
		Summary:     "Track document view",
		Description: "Increments the document's view counter",
		Tags:        []string{"Documents"},
	}, s.handleTrackView)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDocumentPurchasables",
		Method:      http.MethodGet,
		Path:        "/api/v1/documents/{id}/purchasables",
		Summary:     "Get document purchasables",
		Description: "Classifies the document text and parses priced entries",
		Tags:        []string{"Documents"},
	}, s.handleGetPurchasables)

	huma.Register(s.api, huma.Operation{
		OperationID: "listDrives",
		Method:      http.MethodGet,
		Path:        "/api/v1/drives",
		Summary:     "List drives",
		Description: "Returns the distinct source drives in the catalog",
		Tags:        []string{"Documents"},
	}, s.handleListDrives)
}

// === DTOs ===

// TagResponse contains one document tag in API responses.
type TagResponse struct {
	Name     string `json:"name" doc:"Tag name"`
	Category string `json:"category" doc:"Tag category"`
}

// DocumentResponse contains document data in API responses. The
// extracted body text is never included.
type DocumentResponse struct {
	ID           string        `json:"id" doc:"Document ID"`
	DriveFileID  string        `json:"drive_file_id" doc:"Stable external file ID"`
	Name         string        `json:"name" doc:"Document name"`
	FolderPath   string        `json:"folder_path" doc:"Folder path on the source drive"`
	Description  string        `json:"description,omitempty" doc:"Document description"`
	SourceDrive  string        `json:"source_drive" doc:"Source drive label"`
	SizeBytes    int64         `json:"size_bytes" doc:"File size in bytes"`
	FileFormat   string        `json:"file_format" doc:"File extension"`
	HasThumbnail bool          `json:"has_thumbnail" doc:"Whether a thumbnail exists"`
	WebViewURL   string        `json:"web_view_url,omitempty" doc:"Browser view URL"`
	DownloadURL  string        `json:"download_url,omitempty" doc:"Direct download URL"`
	CreatedAt    time.Time     `json:"created_at" doc:"Creation time"`
	UpdatedAt    time.Time     `json:"updated_at" doc:"Last update time"`
	Tags         []TagResponse `json:"tags" doc:"Tags on this document"`
}

func toDocumentResponse(doc *domain.Document) DocumentResponse {
	tags := make([]TagResponse, len(doc.Tags))
	for i, t := range doc.Tags {
		tags[i] = TagResponse{Name: t.Name, Category: string(t.Category)}
	}
	return DocumentResponse{
		ID:           doc.ID,
		DriveFileID:  doc.DriveFileID,
		Name:         doc.Name,
		FolderPath:   doc.FolderPath,
		Description:  doc.Description,
		SourceDrive:  doc.SourceDrive,
		SizeBytes:    doc.SizeBytes,
		FileFormat:   doc.FileFormat,
		HasThumbnail: doc.HasThumbnail,
		WebViewURL:   doc.WebViewURL,
		DownloadURL:  doc.DownloadURL,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
		Tags:         tags,
	}
}

// GetDocumentInput contains parameters for getting a document.
type GetDocumentInput struct {
	ID string `path:"id" doc:"Document ID"`
}

// DocumentOutput wraps the document response for Huma.
type DocumentOutput struct {
	Body DocumentResponse
}

// ViewCountResponse contains view tracking data.
type ViewCountResponse struct {
	DocumentID   string    `json:"document_id" doc:"Document ID"`
	ViewCount    int       `json:"view_count" doc:"Total recorded views"`
	LastViewedAt time.Time `json:"last_viewed_at" doc:"Time of the most recent view"`
}

// ViewCountOutput wraps the view count response for Huma.
type ViewCountOutput struct {
	Body ViewCountResponse
}

// PurchasableResponse contains one parsed purchasable entry.
type PurchasableResponse struct {
	Name        string `json:"name" doc:"Entry name"`
	Category    string `json:"category" doc:"Entry category"`
	Description string `json:"description,omitempty" doc:"Entry description"`
	CostCP      int    `json:"cost_cp" doc:"Cost in choice points"`
	LineNumber  int    `json:"line_number" doc:"Source line number"`
}

// PurchasablesResponse contains classifier output and parsed entries.
type PurchasablesResponse struct {
	Analysis     format.Analysis       `json:"analysis" doc:"Text layout classification"`
	Purchasables []PurchasableResponse `json:"purchasables" doc:"Parsed priced entries"`
}

// PurchasablesOutput wraps the purchasables response for Huma.
type PurchasablesOutput struct {
	Body PurchasablesResponse
}

// DrivesResponse contains the available source drives.
type DrivesResponse struct {
	Drives []string `json:"drives" doc:"Distinct source drive labels"`
}

// DrivesOutput wraps the drives response for Huma.
type DrivesOutput struct {
	Body DrivesResponse
}

// === Handlers ===

func (s *Server) handleGetDocument(ctx context.Context, input *GetDocumentInput) (*DocumentOutput, error) {
	doc, err := s.services.Document.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &DocumentOutput{Body: toDocumentResponse(doc)}, nil
}

func (s *Server) handleTrackView(ctx context.Context, input *GetDocumentInput) (*ViewCountOutput, error) {
	vc, err := s.services.Document.TrackView(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ViewCountOutput{
		Body: ViewCountResponse{
			DocumentID:   vc.DocumentID,
			ViewCount:    vc.ViewCount,
			LastViewedAt: vc.LastViewedAt,
		},
	}, nil
}

func (s *Server) handleGetPurchasables(ctx context.Context, input *GetDocumentInput) (*PurchasablesOutput, error) {
	listing, err := s.services.Document.Purchasables(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	entries := make([]PurchasableResponse, len(listing.Purchasables))
	for i, p := range listing.Purchasables {
		entries[i] = PurchasableResponse{
			Name:        p.Name,
			Category:    p.Category,
			Description: p.Description,
			CostCP:      p.CostCP,
			LineNumber:  p.LineNumber,
		}
	}

	return &PurchasablesOutput{
		Body: PurchasablesResponse{
			Analysis:     listing.Analysis,
			Purchasables: entries,
		},
	}, nil
}

func (s *Server) handleListDrives(ctx context.Context, _ *struct{}) (*DrivesOutput, error) {
	drives, err := s.services.Document.ListDrives(ctx)
	if err != nil {
		return nil, err
	}
	return &DrivesOutput{Body: DrivesResponse{Drives: drives}}, nil
}
