package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"kalem/internal/apperr"
	"kalem/internal/middleware"
	"kalem/internal/models"
	"kalem/internal/storage"
	"kalem/internal/store"
)

// maxUploadBytes caps PDF uploads at 50 MiB.
const maxUploadBytes = 50 << 20

// Uploads handles PDF uploads to object storage. The stored key goes
// into a publication's pdf_file field by the admin client.
type Uploads struct {
	storage     *storage.Client
	attachments *store.AttachmentStore
}

// NewUploads creates a new Uploads handler group. storage may be nil
// when no object storage is configured; uploads then fail cleanly.
func NewUploads(storage *storage.Client, attachments *store.AttachmentStore) *Uploads {
	return &Uploads{storage: storage, attachments: attachments}
}

// UploadPDF stores a PDF in the bucket and records its metadata. The
// response carries the storage key and public URL.
func (h *Uploads) UploadPDF(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, &apperr.Error{
			Code:    apperr.CodeInternal,
			Message: "file storage is not configured",
			Status:  http.StatusServiceUnavailable,
		})
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, apperr.Unauthorized())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, apperr.Validation("upload too large or malformed (max 50 MiB)"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperr.ValidationField("file", "file field is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "application/pdf" || !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		writeError(w, apperr.ValidationField("file", "only PDF files are accepted"))
		return
	}

	// Random object key keeps uploads from clobbering each other.
	key := "pdfs/" + uuid.NewString() + ".pdf"
	if err := h.storage.Upload(r.Context(), key, contentType, file, header.Size); err != nil {
		writeError(w, fmt.Errorf("upload pdf: %w", err))
		return
	}

	att, err := h.attachments.Create(&models.Attachment{
		Filename:     filepath.Base(key),
		OriginalName: header.Filename,
		ContentType:  contentType,
		SizeBytes:    header.Size,
		Bucket:       h.storage.Bucket(),
		S3Key:        key,
		UploaderID:   sess.UserID,
	})
	if err != nil {
		writeError(w, fmt.Errorf("record attachment: %w", err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"attachment": att,
		"url":        h.storage.FileURL(key),
	})
}

// List returns all recorded attachments.
func (h *Uploads) List(w http.ResponseWriter, r *http.Request) {
	atts, err := h.attachments.List()
	if err != nil {
		writeError(w, fmt.Errorf("list attachments: %w", err))
		return
	}
	if atts == nil {
		atts = []models.Attachment{}
	}
	writeJSON(w, http.StatusOK, atts)
}

// DownloadURL returns a short-lived presigned URL for an attachment, for
// buckets that are not publicly readable.
func (h *Uploads) DownloadURL(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, &apperr.Error{
			Code:    apperr.CodeInternal,
			Message: "file storage is not configured",
			Status:  http.StatusServiceUnavailable,
		})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperr.NotFound("attachment"))
		return
	}
	att, err := h.attachments.FindByID(id)
	if err != nil {
		writeError(w, fmt.Errorf("find attachment: %w", err))
		return
	}
	if att == nil {
		writeError(w, apperr.NotFound("attachment"))
		return
	}

	url, err := h.storage.PresignGet(r.Context(), att.S3Key, 15*time.Minute)
	if err != nil {
		writeError(w, fmt.Errorf("presign attachment: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Delete removes an attachment record and its stored object.
func (h *Uploads) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperr.NotFound("attachment"))
		return
	}

	att, err := h.attachments.FindByID(id)
	if err != nil {
		writeError(w, fmt.Errorf("find attachment: %w", err))
		return
	}
	if att == nil {
		writeError(w, apperr.NotFound("attachment"))
		return
	}

	if r.Header.Get(confirmDeleteHeader) != att.ID.String() {
		writeError(w, apperr.Validation(confirmDeleteHeader+" header must match the attachment id"))
		return
	}

	if h.storage != nil {
		if err := h.storage.Delete(r.Context(), att.S3Key); err != nil {
			writeError(w, fmt.Errorf("delete stored object: %w", err))
			return
		}
	}
	if err := h.attachments.Delete(att.ID); err != nil {
		writeError(w, fmt.Errorf("delete attachment: %w", err))
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
