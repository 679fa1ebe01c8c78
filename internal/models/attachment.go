package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment represents an uploaded file (typically a book or paper PDF)
// stored in S3-compatible object storage. Metadata lives in PostgreSQL;
// the file itself lives in the bucket. Publications reference the stored
// object through their pdf_file field.
type Attachment struct {
	ID           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Bucket       string    `json:"bucket"`
	S3Key        string    `json:"s3_key"`
	UploaderID   uuid.UUID `json:"uploader_id"`
	CreatedAt    time.Time `json:"created_at"`
}
