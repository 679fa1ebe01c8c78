package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"kalem/internal/apperr"
	"kalem/internal/models"
	"kalem/internal/slug"
	"kalem/internal/store"
)

// Categories groups the taxonomy HTTP handlers. Reads are public, writes
// are admin-only (enforced by middleware in the router).
type Categories struct {
	categories *store.CategoryStore
}

// NewCategories creates a new Categories handler group.
func NewCategories(categories *store.CategoryStore) *Categories {
	return &Categories{categories: categories}
}

type categoryInput struct {
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	CategoryType models.CategoryType `json:"category_type"`
	ParentID     *uuid.UUID          `json:"parent_id"`
}

// List returns all categories as nested trees grouped under the three
// fixed type buckets, with per-node publication counts. With ?flat=1 the
// same ordering comes back as a flat list with Depth set, which admin
// clients use for parent pickers.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	var (
		cats []models.Category
		err  error
	)
	if r.URL.Query().Get("flat") != "" {
		cats, err = h.categories.FlatTree()
	} else {
		cats, err = h.categories.Tree()
	}
	if err != nil {
		writeError(w, fmt.Errorf("list categories: %w", err))
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

// Get returns a single category by id.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperr.NotFound("category"))
		return
	}

	cat, err := h.categories.FindByID(id)
	if err != nil {
		writeError(w, fmt.Errorf("find category: %w", err))
		return
	}
	if cat == nil {
		writeError(w, apperr.NotFound("category"))
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// Create adds a category. A parent, when given, must exist and belong to
// the same category type.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := validateCategory(in.Name, in.CategoryType); err != nil {
		writeError(w, err)
		return
	}
	if err := h.checkParent(in.ParentID, in.CategoryType); err != nil {
		writeError(w, err)
		return
	}

	cat, err := h.categories.Create(&models.Category{
		Name:         strings.TrimSpace(in.Name),
		Slug:         slug.Generate(in.Name),
		Description:  in.Description,
		CategoryType: in.CategoryType,
		ParentID:     in.ParentID,
	})
	if err != nil {
		writeError(w, fmt.Errorf("create category: %w", err))
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

// Update modifies a category's name, description, and parent. The
// category type is fixed at creation and cannot change.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperr.NotFound("category"))
		return
	}

	cat, err := h.categories.FindByID(id)
	if err != nil {
		writeError(w, fmt.Errorf("find category: %w", err))
		return
	}
	if cat == nil {
		writeError(w, apperr.NotFound("category"))
		return
	}

	var in categoryInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.CategoryType != "" && in.CategoryType != cat.CategoryType {
		writeError(w, apperr.ValidationField("category_type", "category type cannot be changed"))
		return
	}
	if err := validateCategory(in.Name, cat.CategoryType); err != nil {
		writeError(w, err)
		return
	}
	if in.ParentID != nil && *in.ParentID == cat.ID {
		writeError(w, apperr.InvalidHierarchy("a category cannot be its own parent"))
		return
	}
	if err := h.checkParent(in.ParentID, cat.CategoryType); err != nil {
		writeError(w, err)
		return
	}

	cat.Name = strings.TrimSpace(in.Name)
	cat.Slug = slug.Generate(in.Name)
	cat.Description = in.Description
	cat.ParentID = in.ParentID

	if err := h.categories.Update(cat); err != nil {
		writeError(w, fmt.Errorf("update category: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// Delete removes a category. Deletion is refused while children or
// publications still reference it.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apperr.NotFound("category"))
		return
	}

	cat, err := h.categories.FindByID(id)
	if err != nil {
		writeError(w, fmt.Errorf("find category: %w", err))
		return
	}
	if cat == nil {
		writeError(w, apperr.NotFound("category"))
		return
	}

	if r.Header.Get(confirmDeleteHeader) != cat.ID.String() {
		writeError(w, apperr.Validation(confirmDeleteHeader+" header must match the category id"))
		return
	}

	hasChildren, err := h.categories.HasChildren(id)
	if err != nil {
		writeError(w, fmt.Errorf("check children: %w", err))
		return
	}
	if hasChildren {
		writeError(w, apperr.Conflict("category still has child categories"))
		return
	}

	count, err := h.categories.PublicationCount(id)
	if err != nil {
		writeError(w, fmt.Errorf("count publications: %w", err))
		return
	}
	if count > 0 {
		writeError(w, apperr.Conflict("category still has publications assigned"))
		return
	}

	if err := h.categories.Delete(id); err != nil {
		writeError(w, fmt.Errorf("delete category: %w", err))
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// checkParent verifies the parent exists and shares the category type.
func (h *Categories) checkParent(parentID *uuid.UUID, categoryType models.CategoryType) error {
	if parentID == nil {
		return nil
	}
	parent, err := h.categories.FindByID(*parentID)
	if err != nil {
		return fmt.Errorf("find parent category: %w", err)
	}
	if parent == nil {
		return apperr.InvalidHierarchy("parent category does not exist")
	}
	if parent.CategoryType != categoryType {
		return apperr.InvalidHierarchy("parent category belongs to a different category type")
	}
	return nil
}
