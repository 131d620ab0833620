package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
	"github.com/jumpchainsearch/jumpchain-server/internal/errors"
	"github.com/jumpchainsearch/jumpchain-server/internal/id"
	"github.com/jumpchainsearch/jumpchain-server/internal/store"
)

const documentColumns = `id, drive_file_id, name, folder_path, description, extracted_text,
	source_drive, size_bytes, file_format, has_thumbnail, web_view_url, download_url,
	created_at, updated_at`

// documentColumnsNoBody omits extracted_text for listing queries where
// loading megabytes of body text per row is wasteful.
const documentColumnsNoBody = `id, drive_file_id, name, folder_path, description, '',
	source_drive, size_bytes, file_format, has_thumbnail, web_view_url, download_url,
	created_at, updated_at`

// Alias-qualified variants for queries that join document_tags, where
// bare column names are ambiguous.
const documentColumnsQualified = `d.id, d.drive_file_id, d.name, d.folder_path, d.description, d.extracted_text,
	d.source_drive, d.size_bytes, d.file_format, d.has_thumbnail, d.web_view_url, d.download_url,
	d.created_at, d.updated_at`

const documentColumnsNoBodyQualified = `d.id, d.drive_file_id, d.name, d.folder_path, d.description, '',
	d.source_drive, d.size_bytes, d.file_format, d.has_thumbnail, d.web_view_url, d.download_url,
	d.created_at, d.updated_at`

func scanDocument(row scanner) (*domain.Document, error) {
	var d domain.Document
	var createdAt, updatedAt string
	err := row.Scan(
		&d.ID, &d.DriveFileID, &d.Name, &d.FolderPath, &d.Description, &d.ExtractedText,
		&d.SourceDrive, &d.SizeBytes, &d.FileFormat, &d.HasThumbnail, &d.WebViewURL, &d.DownloadURL,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &d, nil
}

// CreateDocument inserts a document, generating an ID when the caller
// left it empty. The FTS index picks it up via the insert trigger.
func (s *Store) CreateDocument(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		generated, err := id.Generate(id.PrefixDocument)
		if err != nil {
			return fmt.Errorf("generate document id: %w", err)
		}
		doc.ID = generated
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, drive_file_id, name, folder_path, description, extracted_text,
			source_drive, size_bytes, file_format, has_thumbnail, web_view_url, download_url,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.DriveFileID, doc.Name, doc.FolderPath, doc.Description, doc.ExtractedText,
		doc.SourceDrive, doc.SizeBytes, doc.FileFormat, doc.HasThumbnail, doc.WebViewURL, doc.DownloadURL,
		formatTime(doc.CreatedAt), formatTime(doc.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return errors.AlreadyExists("document already exists").WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetDocument returns a document with its tags and body text.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return s.getDocumentBy(ctx, "id", id)
}

// GetDocumentByDriveFileID resolves a document by its stable external
// file id, the key approved rules are stored under.
func (s *Store) GetDocumentByDriveFileID(ctx context.Context, driveFileID string) (*domain.Document, error) {
	return s.getDocumentBy(ctx, "drive_file_id", driveFileID)
}

func (s *Store) getDocumentBy(ctx context.Context, column, value string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE `+column+` = ?`, value)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("document %s not found", value)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if err := s.attachTags(ctx, []*domain.Document{doc}); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateDocument rewrites all mutable columns. The update trigger
// refreshes the FTS row.
func (s *Store) UpdateDocument(ctx context.Context, doc *domain.Document) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET name = ?, folder_path = ?, description = ?, extracted_text = ?,
			source_drive = ?, size_bytes = ?, file_format = ?, has_thumbnail = ?,
			web_view_url = ?, download_url = ?, updated_at = ?
		WHERE id = ?`,
		doc.Name, doc.FolderPath, doc.Description, doc.ExtractedText,
		doc.SourceDrive, doc.SizeBytes, doc.FileFormat, doc.HasThumbnail,
		doc.WebViewURL, doc.DownloadURL, formatTime(doc.UpdatedAt),
		doc.ID,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return errors.NotFoundf("document %s not found", doc.ID)
	}
	return nil
}

// DeleteDocument removes a document; tags cascade and the FTS row is
// dropped by trigger.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return errors.NotFoundf("document %s not found", id)
	}
	return nil
}

// ListDocuments pages documents by most recently modified first. Body
// text is not loaded.
func (s *Store) ListDocuments(ctx context.Context, params store.PageParams) (*store.Page[*domain.Document], error) {
	total, err := s.CountDocuments(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+documentColumnsNoBody+` FROM documents
		ORDER BY updated_at DESC, id
		LIMIT ? OFFSET ?`, params.PageSize, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs, err := collectDocuments(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, docs); err != nil {
		return nil, err
	}
	return store.NewPage(docs, params, total), nil
}

// GetDocumentsByIDs loads the given documents (tags included, no
// body), preserving the order of ids.
func (s *Store) GetDocumentsByIDs(ctx context.Context, ids []string) ([]*domain.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]byte, 0, len(ids)*2)
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumnsNoBody+` FROM documents WHERE id IN (`+string(placeholders)+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get documents by ids: %w", err)
	}
	defer rows.Close()

	docs, err := collectDocuments(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, docs); err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	ordered := make([]*domain.Document, 0, len(docs))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			ordered = append(ordered, d)
		}
	}
	return ordered, nil
}

// FilterDocuments returns documents matching the filter, tags
// attached. Used by the substring search path, so the body can be
// included.
func (s *Store) FilterDocuments(ctx context.Context, filter store.DocumentFilter) ([]*domain.Document, error) {
	cols := documentColumnsNoBodyQualified
	if filter.IncludeBody {
		cols = documentColumnsQualified
	}

	query := `SELECT ` + cols + ` FROM documents d`
	var args []any
	var where []string

	if filter.TagName != "" {
		query += ` JOIN document_tags t ON t.document_id = d.id`
		where = append(where, `t.name = ?`)
		args = append(args, filter.TagName)
	}
	if filter.SourceDrive != "" {
		where = append(where, `d.source_drive = ?`)
		args = append(args, filter.SourceDrive)
	}
	if len(where) > 0 {
		query += ` WHERE ` + where[0]
		for _, w := range where[1:] {
			query += ` AND ` + w
		}
	}
	query += ` ORDER BY d.updated_at DESC, d.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter documents: %w", err)
	}
	defer rows.Close()

	docs, err := collectDocuments(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// CountDocuments returns the total document count.
func (s *Store) CountDocuments(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// ListDrives returns the distinct source drives in the catalog.
func (s *Store) ListDrives(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT source_drive FROM documents WHERE source_drive != '' ORDER BY source_drive`)
	if err != nil {
		return nil, fmt.Errorf("list drives: %w", err)
	}
	defer rows.Close()

	var drives []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan drive: %w", err)
		}
		drives = append(drives, d)
	}
	return drives, rows.Err()
}

func collectDocuments(rows *sql.Rows) ([]*domain.Document, error) {
	var docs []*domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
