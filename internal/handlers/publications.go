package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"kalem/internal/apperr"
	"kalem/internal/cache"
	"kalem/internal/markdown"
	"kalem/internal/middleware"
	"kalem/internal/models"
	"kalem/internal/slug"
	"kalem/internal/store"
)

// confirmDeleteHeader must echo the resource id on DELETE requests. It
// keeps a stray client retry from wiping a record and its comment thread.
const confirmDeleteHeader = "X-Confirm-Delete"

// Publications serves one publication kind. The router mounts one
// instance per kind, so /books and /articles share every code path while
// keeping their own URL space and subtype column.
type Publications struct {
	kind       models.PublicationKind
	pubs       *store.PublicationStore
	categories *store.CategoryStore
	listings   *cache.ListingCache
}

// NewPublications creates the handler group for a single publication kind.
func NewPublications(kind models.PublicationKind, pubs *store.PublicationStore, categories *store.CategoryStore, listings *cache.ListingCache) *Publications {
	return &Publications{kind: kind, pubs: pubs, categories: categories, listings: listings}
}

type publicationInput struct {
	Title         string                     `json:"title"`
	Subtitle      *string                    `json:"subtitle"`
	Content       string                     `json:"content"`
	Tags          []string                   `json:"tags"`
	AllowComments *bool                      `json:"allow_comments"`
	IsFeatured    *bool                      `json:"is_featured"`
	CategoryID    *uuid.UUID                 `json:"category_id"`
	Book          *models.BookFields         `json:"book"`
	Paper         *models.PaperFields        `json:"paper"`
	Media         *models.MediaFields        `json:"media"`
	CreativeWork  *models.CreativeWorkFields `json:"creative_work"`
	Article       *models.ArticleFields      `json:"article"`
}

// apply copies the input onto p, leaving status, counters, and slug alone.
func (in *publicationInput) apply(p *models.Publication) {
	p.Title = strings.TrimSpace(in.Title)
	p.Subtitle = in.Subtitle
	p.Content = in.Content
	p.Tags = in.Tags
	if in.AllowComments != nil {
		p.AllowComments = *in.AllowComments
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	p.CategoryID = in.CategoryID
	p.Book = in.Book
	p.Paper = in.Paper
	p.Media = in.Media
	p.CreativeWork = in.CreativeWork
	p.Article = in.Article
}

// Create adds a publication of this handler's kind. New publications
// always start as drafts regardless of input.
func (h *Publications) Create(w http.ResponseWriter, r *http.Request) {
	var in publicationInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	p := &models.Publication{
		Kind:          h.kind,
		Status:        models.StatusDraft,
		AllowComments: true,
	}
	in.apply(p)
	refreshDerived(p)

	if err := validatePublication(p); err != nil {
		writeError(w, err)
		return
	}
	if err := h.checkCategory(p.CategoryID); err != nil {
		writeError(w, err)
		return
	}

	sl, err := h.uniqueSlug(p.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	p.Slug = sl

	created, err := h.pubs.Create(p)
	if err != nil {
		writeError(w, fmt.Errorf("create %s: %w", h.kind, err))
		return
	}

	h.listings.InvalidateKind(r.Context(), string(h.kind))
	writeJSON(w, http.StatusCreated, created)
}

// Update modifies a publication's fields. The status is untouched; the
// publish and archive endpoints are the only way to move it.
func (h *Publications) Update(w http.ResponseWriter, r *http.Request) {
	p, err := h.findForAdmin(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var in publicationInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	likeCount := int64(0)
	if p.Article != nil {
		likeCount = p.Article.LikeCount
	}

	in.apply(p)
	if p.Article != nil {
		p.Article.LikeCount = likeCount
	}
	refreshDerived(p)

	if err := validatePublication(p); err != nil {
		writeError(w, err)
		return
	}
	if err := h.checkCategory(p.CategoryID); err != nil {
		writeError(w, err)
		return
	}

	if err := h.pubs.Update(p); err != nil {
		writeError(w, fmt.Errorf("update %s: %w", h.kind, err))
		return
	}

	h.listings.InvalidateKind(r.Context(), string(h.kind))
	writeJSON(w, http.StatusOK, p)
}

// Get returns a single publication by id or slug. Drafts and archived
// publications are only visible to admins; everyone else gets a 404, as
// if the record did not exist. A public read of a published record
// increments the view counter.
func (h *Publications) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.findByRef(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	isAdmin := sess != nil && sess.IsAdmin()

	if p == nil || p.Kind != h.kind || (!p.IsPublished() && !isAdmin) {
		writeError(w, apperr.NotFound(string(h.kind)))
		return
	}

	if p.IsPublished() && !isAdmin {
		if err := h.pubs.IncrementViewCount(p.ID); err != nil {
			writeError(w, fmt.Errorf("increment view count: %w", err))
			return
		}
		p.ViewCount++
	}

	html, err := markdown.ToHTML(p.Content)
	if err != nil {
		writeError(w, fmt.Errorf("render content: %w", err))
		return
	}
	p.ContentHTML = html

	writeJSON(w, http.StatusOK, p)
}

// List returns a page of publications of this kind, newest first.
// Anonymous callers only ever see published records and are served from
// the listing cache; admins can filter by any status and bypass the
// cache so drafts show up immediately after a write.
func (h *Publications) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	isAdmin := sess != nil && sess.IsAdmin()

	f, err := h.parseFilter(r, isAdmin)
	if err != nil {
		writeError(w, err)
		return
	}

	cacheKey := ""
	if !isAdmin {
		cacheKey = cache.Key(string(h.kind), r.URL.Query().Encode())
		if body, ok := h.listings.Get(r.Context(), cacheKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(body)
			return
		}
	}

	items, total, err := h.pubs.List(f)
	if err != nil {
		writeError(w, fmt.Errorf("list %s: %w", h.kind, err))
		return
	}
	if items == nil {
		items = []models.Publication{}
	}

	body, err := json.Marshal(pageEnvelope{Data: items, Total: total, Page: f.Page, Limit: f.Limit})
	if err != nil {
		writeError(w, fmt.Errorf("encode listing: %w", err))
		return
	}

	if cacheKey != "" {
		h.listings.Set(r.Context(), cacheKey, body)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Publish moves a draft to published. The publication must have a title
// and its primary content; the transition must be legal for its current
// status.
func (h *Publications) Publish(w http.ResponseWriter, r *http.Request) {
	p, err := h.findForAdmin(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if blocker := p.PublishBlocker(); blocker != "" {
		writeError(w, apperr.IncompletePublication(blocker))
		return
	}
	if !p.Status.CanTransitionTo(models.StatusPublished) {
		writeError(w, apperr.Conflict(fmt.Sprintf("cannot publish a %s publication", p.Status)))
		return
	}

	changed, err := h.pubs.SetStatus(p.ID, models.StatusPublished, models.StatusDraft)
	if err != nil {
		writeError(w, fmt.Errorf("publish %s: %w", h.kind, err))
		return
	}
	if !changed {
		writeError(w, apperr.Conflict("publication status changed concurrently"))
		return
	}

	p.Status = models.StatusPublished
	h.listings.InvalidateKind(r.Context(), string(h.kind))
	writeJSON(w, http.StatusOK, p)
}

// Archive retires a draft or published publication. Archived is terminal.
func (h *Publications) Archive(w http.ResponseWriter, r *http.Request) {
	p, err := h.findForAdmin(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if !p.Status.CanTransitionTo(models.StatusArchived) {
		writeError(w, apperr.Conflict(fmt.Sprintf("cannot archive a %s publication", p.Status)))
		return
	}

	changed, err := h.pubs.SetStatus(p.ID, models.StatusArchived, models.StatusDraft, models.StatusPublished)
	if err != nil {
		writeError(w, fmt.Errorf("archive %s: %w", h.kind, err))
		return
	}
	if !changed {
		writeError(w, apperr.Conflict("publication status changed concurrently"))
		return
	}

	p.Status = models.StatusArchived
	h.listings.InvalidateKind(r.Context(), string(h.kind))
	writeJSON(w, http.StatusOK, p)
}

// Like increments an article's like counter. Anonymous, no dedup; only
// published articles accept likes.
func (h *Publications) Like(w http.ResponseWriter, r *http.Request) {
	p, err := h.findByRef(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if p == nil || p.Kind != models.KindArticle || !p.IsPublished() {
		writeError(w, apperr.NotFound("article"))
		return
	}

	ok, err := h.pubs.IncrementLikeCount(p.ID)
	if err != nil {
		writeError(w, fmt.Errorf("like article: %w", err))
		return
	}
	if !ok {
		writeError(w, apperr.NotFound("article"))
		return
	}

	p.Article.LikeCount++
	writeJSON(w, http.StatusOK, map[string]int64{"like_count": p.Article.LikeCount})
}

// Delete removes a publication and, through the schema, its comments.
// The client must echo the id in the confirmation header.
func (h *Publications) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := h.findForAdmin(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if r.Header.Get(confirmDeleteHeader) != p.ID.String() {
		writeError(w, apperr.Validation(confirmDeleteHeader+" header must match the publication id"))
		return
	}

	if err := h.pubs.Delete(p.ID); err != nil {
		writeError(w, fmt.Errorf("delete %s: %w", h.kind, err))
		return
	}

	h.listings.InvalidateKind(r.Context(), string(h.kind))
	writeJSON(w, http.StatusNoContent, nil)
}

// findByRef resolves a publication by UUID or slug.
func (h *Publications) findByRef(ref string) (*models.Publication, error) {
	if id, err := uuid.Parse(ref); err == nil {
		p, err := h.pubs.FindByID(id)
		if err != nil {
			return nil, fmt.Errorf("find %s: %w", h.kind, err)
		}
		return p, nil
	}
	p, err := h.pubs.FindBySlug(ref)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", h.kind, err)
	}
	return p, nil
}

// findForAdmin resolves the {id} route param to a publication of this
// kind regardless of status. Used by the admin-only write endpoints.
func (h *Publications) findForAdmin(r *http.Request) (*models.Publication, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, apperr.NotFound(string(h.kind))
	}
	p, err := h.pubs.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", h.kind, err)
	}
	if p == nil || p.Kind != h.kind {
		return nil, apperr.NotFound(string(h.kind))
	}
	return p, nil
}

// subtypeParam is the query key for each kind's discriminator, matching
// the field name the payload carries on the wire.
func subtypeParam(kind models.PublicationKind) string {
	switch kind {
	case models.KindBook:
		return "bookType"
	case models.KindPaper:
		return "paperType"
	case models.KindMediaPublication:
		return "mediaType"
	case models.KindCreativeWork:
		return "workType"
	default:
		return "type"
	}
}

// firstParam returns the first non-empty value among the given keys.
func firstParam(q url.Values, keys ...string) string {
	for _, key := range keys {
		if v := q.Get(key); v != "" {
			return v
		}
	}
	return ""
}

// parseFilter builds the store filter from the query string. Anonymous
// callers are pinned to published records. The per-kind discriminator
// key (bookType, paperType, mediaType, workType, type) and the generic
// subtype alias both select a subtype.
func (h *Publications) parseFilter(r *http.Request, isAdmin bool) (store.Filter, error) {
	q := r.URL.Query()

	f := store.Filter{
		Kind:    h.kind,
		Status:  models.StatusPublished,
		Subtype: firstParam(q, subtypeParam(h.kind), "subtype"),
		Search:  firstParam(q, "search", "q"),
		Page:    1,
		Limit:   store.DefaultPageSize,
	}

	if isAdmin {
		switch status := models.PublicationStatus(q.Get("status")); {
		case status == "":
			f.Status = ""
		case status.Valid():
			f.Status = status
		default:
			return f, apperr.ValidationField("status", "unknown status")
		}
	}

	if raw := firstParam(q, "categoryId", "category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, apperr.ValidationField("categoryId", "invalid category id")
		}
		f.CategoryID = &id
	}
	if raw := q.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return f, apperr.ValidationField("featured", "must be true or false")
		}
		f.Featured = &featured
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return f, apperr.ValidationField("page", "must be a positive integer")
		}
		f.Page = page
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return f, apperr.ValidationField("limit", "must be a positive integer")
		}
		if limit > store.MaxPageSize {
			limit = store.MaxPageSize
		}
		f.Limit = limit
	}

	return f, nil
}

// checkCategory verifies the referenced category exists.
func (h *Publications) checkCategory(id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	cat, err := h.categories.FindByID(*id)
	if err != nil {
		return fmt.Errorf("find category: %w", err)
	}
	if cat == nil {
		return apperr.ValidationField("category_id", "category does not exist")
	}
	return nil
}

// uniqueSlug derives a slug from the title, suffixing a short random
// fragment when the plain slug is already taken.
func (h *Publications) uniqueSlug(title string) (string, error) {
	base := slug.Generate(title)
	existing, err := h.pubs.FindBySlug(base)
	if err != nil {
		return "", fmt.Errorf("check slug: %w", err)
	}
	if existing == nil {
		return base, nil
	}
	return base + "-" + uuid.NewString()[:8], nil
}

// refreshDerived recomputes fields that are never edited directly. Essay
// reading stats come from the content; other creative works carry none.
func refreshDerived(p *models.Publication) {
	if p.CreativeWork == nil {
		return
	}
	if p.CreativeWork.WorkType == models.WorkEssay {
		wc, rt := models.ComputeReadingStats(p.Content)
		p.CreativeWork.WordCount = &wc
		p.CreativeWork.ReadingTime = &rt
	} else {
		p.CreativeWork.WordCount = nil
		p.CreativeWork.ReadingTime = nil
	}
}
