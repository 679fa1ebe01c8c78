package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"kalem/internal/models"
)

// AttachmentStore manages uploaded file metadata. The files themselves
// live in S3-compatible object storage.
type AttachmentStore struct {
	db *sql.DB
}

// NewAttachmentStore returns a new AttachmentStore.
func NewAttachmentStore(db *sql.DB) *AttachmentStore {
	return &AttachmentStore{db: db}
}

const attachmentColumns = `id, filename, original_name, content_type,
	size_bytes, bucket, s3_key, uploader_id, created_at`

// scanAttachment scans a row into an Attachment struct.
func scanAttachment(scanner interface{ Scan(...any) error }) (*models.Attachment, error) {
	var a models.Attachment
	err := scanner.Scan(
		&a.ID, &a.Filename, &a.OriginalName, &a.ContentType,
		&a.SizeBytes, &a.Bucket, &a.S3Key, &a.UploaderID, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create records metadata for an uploaded file and returns it.
func (s *AttachmentStore) Create(a *models.Attachment) (*models.Attachment, error) {
	row := s.db.QueryRow(`
		INSERT INTO attachments (filename, original_name, content_type,
			size_bytes, bucket, s3_key, uploader_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+attachmentColumns,
		a.Filename, a.OriginalName, a.ContentType,
		a.SizeBytes, a.Bucket, a.S3Key, a.UploaderID,
	)
	result, err := scanAttachment(row)
	if err != nil {
		return nil, fmt.Errorf("create attachment: %w", err)
	}
	return result, nil
}

// FindByID retrieves an attachment by ID. Returns nil if not found.
func (s *AttachmentStore) FindByID(id uuid.UUID) (*models.Attachment, error) {
	row := s.db.QueryRow(`SELECT `+attachmentColumns+` FROM attachments WHERE id = $1`, id)
	a, err := scanAttachment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find attachment by id: %w", err)
	}
	return a, nil
}

// List returns all attachments, newest first.
func (s *AttachmentStore) List() ([]models.Attachment, error) {
	rows, err := s.db.Query(`SELECT ` + attachmentColumns + ` FROM attachments ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var items []models.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// Delete removes an attachment record by ID.
func (s *AttachmentStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM attachments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return nil
}
