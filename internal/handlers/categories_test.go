package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kalem/internal/apperr"
	"kalem/internal/models"
)

func TestCategoryHierarchyTypeRule(t *testing.T) {
	env := newTestEnv(t)
	cleanCategories(t, env.DB, "handler-cat")
	t.Cleanup(func() { cleanCategories(t, env.DB, "handler-cat") })

	admin := adminSession()

	// Create a printed-publications root.
	req := postJSON(t, "/categories", map[string]any{
		"name":          "Handler Cat Root",
		"category_type": "printed_publications",
	})
	req = req.WithContext(ctxWithSession(req.Context(), admin))
	rec := httptest.NewRecorder()
	env.Categories.Create(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create root status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var root models.Category
	json.NewDecoder(rec.Body).Decode(&root)

	// A child of a different type is an invalid hierarchy.
	req = postJSON(t, "/categories", map[string]any{
		"name":          "Handler Cat Mismatch",
		"category_type": "audio_video_publications",
		"parent_id":     root.ID,
	})
	req = req.WithContext(ctxWithSession(req.Context(), admin))
	rec = httptest.NewRecorder()
	env.Categories.Create(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("mismatched child status = %d, want 400", rec.Code)
	}
	if ae := decodeErr(t, rec); ae.Code != apperr.CodeInvalidHierarchy {
		t.Errorf("error code = %s, want INVALID_HIERARCHY", ae.Code)
	}

	// Same type nests fine.
	req = postJSON(t, "/categories", map[string]any{
		"name":          "Handler Cat Child",
		"category_type": "printed_publications",
		"parent_id":     root.ID,
	})
	req = req.WithContext(ctxWithSession(req.Context(), admin))
	rec = httptest.NewRecorder()
	env.Categories.Create(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("matching child status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var child models.Category
	json.NewDecoder(rec.Body).Decode(&child)

	// Deleting without echoing the id in the confirmation header is refused
	// before any other check runs.
	req = httptest.NewRequest(http.MethodDelete, "/categories/"+child.ID.String(), nil)
	req = req.WithContext(ctxWithSession(req.Context(), admin))
	req = withChiURLParam(req, "id", child.ID.String())
	rec = httptest.NewRecorder()
	env.Categories.Delete(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("delete without confirmation status = %d, want 400", rec.Code)
	}

	// Deleting a category with children is refused.
	req = httptest.NewRequest(http.MethodDelete, "/categories/"+root.ID.String(), nil)
	req.Header.Set(confirmDeleteHeader, root.ID.String())
	req = req.WithContext(ctxWithSession(req.Context(), admin))
	req = withChiURLParam(req, "id", root.ID.String())
	rec = httptest.NewRecorder()
	env.Categories.Delete(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete with children status = %d, want 409", rec.Code)
	}

	// Leaf categories delete cleanly once confirmed.
	req = httptest.NewRequest(http.MethodDelete, "/categories/"+child.ID.String(), nil)
	req.Header.Set(confirmDeleteHeader, child.ID.String())
	req = req.WithContext(ctxWithSession(req.Context(), admin))
	req = withChiURLParam(req, "id", child.ID.String())
	rec = httptest.NewRecorder()
	env.Categories.Delete(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete leaf status = %d, want 204", rec.Code)
	}
}

func TestCategoryTypeImmutable(t *testing.T) {
	env := newTestEnv(t)
	cleanCategories(t, env.DB, "handler-immutable")
	t.Cleanup(func() { cleanCategories(t, env.DB, "handler-immutable") })

	admin := adminSession()

	req := postJSON(t, "/categories", map[string]any{
		"name":          "Handler Immutable",
		"category_type": "social_artistic_publications",
	})
	req = req.WithContext(ctxWithSession(req.Context(), admin))
	rec := httptest.NewRecorder()
	env.Categories.Create(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var cat models.Category
	json.NewDecoder(rec.Body).Decode(&cat)

	req = httptest.NewRequest(http.MethodPatch, "/categories/"+cat.ID.String(),
		bytes.NewReader(mustJSON(t, map[string]any{
			"name":          "Handler Immutable",
			"category_type": "printed_publications",
		})))
	req = req.WithContext(ctxWithSession(req.Context(), admin))
	req = withChiURLParam(req, "id", cat.ID.String())
	rec = httptest.NewRecorder()
	env.Categories.Update(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("type change status = %d, want 400", rec.Code)
	}
}
