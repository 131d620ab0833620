// Package domain defines the core entities of the document catalog:
// documents, tags, votes, and the rules that preserve community tag
// decisions across regenerations.
package domain

import "time"

// Document is a cataloged file discovered in a source drive. Body text
// and derived tags are repopulated on re-scan; the DriveFileID is the
// stable identity that survives renames and moves.
type Document struct {
	ID            string    `json:"id"`
	DriveFileID   string    `json:"drive_file_id"` // Stable external file id
	Name          string    `json:"name"`
	FolderPath    string    `json:"folder_path"`
	Description   string    `json:"description"`
	ExtractedText string    `json:"-"` // Large; never serialized in listings
	SourceDrive   string    `json:"source_drive"`
	SizeBytes     int64     `json:"size_bytes"`
	FileFormat    string    `json:"file_format"`
	HasThumbnail  bool      `json:"has_thumbnail"`
	WebViewURL    string    `json:"web_view_url,omitempty"`
	DownloadURL   string    `json:"download_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Tags is populated by the store on reads that request it.
	Tags []DocumentTag `json:"tags,omitempty"`
}

// Touch updates the UpdatedAt timestamp.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now()
}

// HasTag reports whether the document carries a tag with the given name.
// Tag names are compared exactly; uniqueness is per (document, name).
func (d *Document) HasTag(name string) bool {
	for _, t := range d.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// TagNames returns the document's tag names in stored order.
func (d *Document) TagNames() []string {
	names := make([]string, len(d.Tags))
	for i, t := range d.Tags {
		names[i] = t.Name
	}
	return names
}

// DocumentTag is a (name, category) pair attached to exactly one
// document. (DocumentID, Name) is unique.
type DocumentTag struct {
	ID         string      `json:"id"`
	DocumentID string      `json:"document_id"`
	Name       string      `json:"name"`
	Category   TagCategory `json:"category"`
	CreatedAt  time.Time   `json:"created_at"`
}

// DocumentViewCount tracks how often a document has been viewed. The
// vote tally engine uses it to scale consensus thresholds by
// popularity.
type DocumentViewCount struct {
	DocumentID   string    `json:"document_id"`
	ViewCount    int       `json:"view_count"`
	LastViewedAt time.Time `json:"last_viewed_at"`
}
