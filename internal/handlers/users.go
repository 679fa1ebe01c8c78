package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"kalem/internal/apperr"
	"kalem/internal/models"
	"kalem/internal/store"
)

// Users groups the admin account-management handlers.
type Users struct {
	users *store.UserStore
}

// NewUsers creates a new Users handler group.
func NewUsers(users *store.UserStore) *Users {
	return &Users{users: users}
}

type userCreateInput struct {
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      models.Role `json:"role"`
}

type userUpdateInput struct {
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Role      *models.Role `json:"role"`
	IsActive  *bool        `json:"is_active"`
}

// List returns all accounts.
func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		writeError(w, fmt.Errorf("list users: %w", err))
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// Get returns a single account by id.
func (h *Users) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.findUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Create adds an account with the given role. The email must be unused.
func (h *Users) Create(w http.ResponseWriter, r *http.Request) {
	var in userCreateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateUser(in.Email, in.Password, in.FirstName, true); err != nil {
		writeError(w, err)
		return
	}
	if !in.Role.Valid() {
		writeError(w, apperr.ValidationField("role", "unknown role"))
		return
	}

	existing, err := h.users.FindByEmail(in.Email)
	if err != nil {
		writeError(w, fmt.Errorf("check email: %w", err))
		return
	}
	if existing != nil {
		writeError(w, apperr.Conflict("email is already registered"))
		return
	}

	u, err := h.users.Create(in.Email, in.Password, in.FirstName, in.LastName, in.Role)
	if err != nil {
		writeError(w, fmt.Errorf("create user: %w", err))
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// Update modifies an account's profile, role, and active flag.
func (h *Users) Update(w http.ResponseWriter, r *http.Request) {
	u, err := h.findUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var in userUpdateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			writeError(w, apperr.ValidationField("role", "unknown role"))
			return
		}
		u.Role = *in.Role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if err := validateUser(u.Email, "", u.FirstName, false); err != nil {
		writeError(w, err)
		return
	}

	if err := h.users.Update(u); err != nil {
		writeError(w, fmt.Errorf("update user: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Delete removes an account. The account's comments survive with the
// author reference cleared by the schema.
func (h *Users) Delete(w http.ResponseWriter, r *http.Request) {
	u, err := h.findUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if r.Header.Get(confirmDeleteHeader) != u.ID.String() {
		writeError(w, apperr.Validation(confirmDeleteHeader+" header must match the user id"))
		return
	}

	if err := h.users.Delete(u.ID); err != nil {
		writeError(w, fmt.Errorf("delete user: %w", err))
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// ResetTOTP clears an account's second factor so it can be set up again.
func (h *Users) ResetTOTP(w http.ResponseWriter, r *http.Request) {
	u, err := h.findUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.users.ResetTOTP(u.ID); err != nil {
		writeError(w, fmt.Errorf("reset totp: %w", err))
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Users) findUser(r *http.Request) (*models.User, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, apperr.NotFound("user")
	}
	u, err := h.users.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user")
	}
	return u, nil
}
