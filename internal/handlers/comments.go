package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"kalem/internal/apperr"
	"kalem/internal/middleware"
	"kalem/internal/models"
	"kalem/internal/store"
)

// Comments groups the comment HTTP handlers. Anyone can read approved
// threads and leave a comment on a published publication that allows
// them; moderation is admin-only.
type Comments struct {
	comments *store.CommentStore
	pubs     *store.PublicationStore
}

// NewComments creates a new Comments handler group.
func NewComments(comments *store.CommentStore, pubs *store.PublicationStore) *Comments {
	return &Comments{comments: comments, pubs: pubs}
}

type commentInput struct {
	Content       string     `json:"content"`
	ParentID      *uuid.UUID `json:"parent_id"`
	AuthorName    *string    `json:"author_name"`
	AuthorEmail   *string    `json:"author_email"`
	AuthorWebsite *string    `json:"author_website"`
}

type commentModeration struct {
	Status models.CommentStatus `json:"status"`
}

// ListForPublication returns a publication's comment thread nested by
// parent. Everyone sees approved comments only; an admin asking with
// ?includeUnapproved=true also gets the pending and rejected entries.
func (h *Comments) ListForPublication(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	isAdmin := sess != nil && sess.IsAdmin()

	pub, err := h.findPublication(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if pub == nil || (!pub.IsPublished() && !isAdmin) {
		writeError(w, apperr.NotFound("publication"))
		return
	}

	includeUnapproved := false
	if raw := r.URL.Query().Get("includeUnapproved"); raw != "" && isAdmin {
		includeUnapproved, err = strconv.ParseBool(raw)
		if err != nil {
			writeError(w, apperr.ValidationField("includeUnapproved", "must be true or false"))
			return
		}
	}

	thread, err := h.comments.ListForPublication(pub.ID, includeUnapproved)
	if err != nil {
		writeError(w, fmt.Errorf("list comments: %w", err))
		return
	}
	if thread == nil {
		thread = []models.Comment{}
	}
	writeJSON(w, http.StatusOK, thread)
}

// Create adds a comment to a published publication. Logged-in users
// comment under their account; guests must supply an author name. New
// comments always enter the moderation queue as pending.
func (h *Comments) Create(w http.ResponseWriter, r *http.Request) {
	pub, err := h.findPublication(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if pub == nil || !pub.IsPublished() {
		writeError(w, apperr.NotFound("publication"))
		return
	}
	if !pub.AllowComments {
		writeError(w, apperr.Forbidden("comments are disabled for this publication"))
		return
	}

	var in commentInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	isGuest := sess == nil

	if err := validateComment(in.Content, in.AuthorName, in.AuthorEmail, isGuest); err != nil {
		writeError(w, err)
		return
	}

	if in.ParentID != nil {
		parent, err := h.comments.FindByID(*in.ParentID)
		if err != nil {
			writeError(w, fmt.Errorf("find parent comment: %w", err))
			return
		}
		if parent == nil || parent.PublicationID != pub.ID {
			writeError(w, apperr.ValidationField("parent_id", "parent comment does not exist on this publication"))
			return
		}
	}

	c := &models.Comment{
		PublicationID: pub.ID,
		ParentID:      in.ParentID,
		Content:       strings.TrimSpace(in.Content),
	}
	if isGuest {
		c.AuthorName = in.AuthorName
		c.AuthorEmail = in.AuthorEmail
		c.AuthorWebsite = in.AuthorWebsite
	} else {
		c.UserID = &sess.UserID
		name := sess.Name
		c.AuthorName = &name
	}

	created, err := h.comments.Create(c)
	if err != nil {
		writeError(w, fmt.Errorf("create comment: %w", err))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Moderate sets a comment's moderation status to approved or rejected.
func (h *Comments) Moderate(w http.ResponseWriter, r *http.Request) {
	c, err := h.findComment(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var in commentModeration
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.Status != models.CommentApproved && in.Status != models.CommentRejected {
		writeError(w, apperr.ValidationField("status", "status must be approved or rejected"))
		return
	}

	if err := h.comments.SetStatus(c.ID, in.Status); err != nil {
		writeError(w, fmt.Errorf("moderate comment: %w", err))
		return
	}

	c.Status = in.Status
	writeJSON(w, http.StatusOK, c)
}

// Delete removes a comment. Direct replies survive and are promoted to
// top level by the schema's SET NULL on the parent reference.
func (h *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	c, err := h.findComment(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if r.Header.Get(confirmDeleteHeader) != c.ID.String() {
		writeError(w, apperr.Validation(confirmDeleteHeader+" header must match the comment id"))
		return
	}

	if err := h.comments.Delete(c.ID); err != nil {
		writeError(w, fmt.Errorf("delete comment: %w", err))
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// PendingCount returns the size of the moderation queue.
func (h *Comments) PendingCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.comments.CountPending()
	if err != nil {
		writeError(w, fmt.Errorf("count pending comments: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"pending": count})
}

func (h *Comments) findPublication(r *http.Request) (*models.Publication, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, apperr.NotFound("publication")
	}
	pub, err := h.pubs.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("find publication: %w", err)
	}
	return pub, nil
}

func (h *Comments) findComment(r *http.Request) (*models.Comment, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, apperr.NotFound("comment")
	}
	c, err := h.comments.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	if c == nil {
		return nil, apperr.NotFound("comment")
	}
	return c, nil
}
