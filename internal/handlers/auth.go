package handlers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"kalem/internal/apperr"
	"kalem/internal/middleware"
	"kalem/internal/models"
	"kalem/internal/session"
	"kalem/internal/store"
)

// totpIssuer is the account issuer shown in authenticator apps.
const totpIssuer = "Kalem"

// Auth groups the authentication handlers: registration, login with an
// optional TOTP second factor, logout, and 2FA enrollment.
type Auth struct {
	sessions *session.Store
	users    *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, users *store.UserStore) *Auth {
	return &Auth{sessions: sessions, users: users}
}

type registerInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
}

type totpVerifyInput struct {
	Code string `json:"code"`
}

// Register creates a regular user account and opens a session for it.
// Self-registration never grants the admin role.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateUser(in.Email, in.Password, in.FirstName, true); err != nil {
		writeError(w, err)
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

	u, err := h.users.Create(in.Email, in.Password, in.FirstName, in.LastName, models.RoleUser)
	if err != nil {
		writeError(w, fmt.Errorf("create user: %w", err))
		return
	}

	if err := h.openSession(w, r, u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// Login verifies credentials and opens a session. Accounts with TOTP
// enabled must send a valid code in the same request; the response never
// reveals which of the three factors failed.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	u, err := h.users.FindByEmail(strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		writeError(w, fmt.Errorf("login lookup: %w", err))
		return
	}
	if u == nil || !u.IsActive || !h.users.CheckPassword(u, in.Password) {
		writeError(w, apperr.Unauthorized())
		return
	}
	if u.TOTPEnabled {
		if u.TOTPSecret == nil || !totp.Validate(in.TOTPCode, *u.TOTPSecret) {
			writeError(w, apperr.Unauthorized())
			return
		}
	}

	if err := h.openSession(w, r, u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Logout destroys the current session.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		writeError(w, fmt.Errorf("destroy session: %w", err))
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Me returns the account behind the current session.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, apperr.Unauthorized())
		return
	}

	u, err := h.users.FindByID(sess.UserID)
	if err != nil {
		writeError(w, fmt.Errorf("find user: %w", err))
		return
	}
	if u == nil {
		writeError(w, apperr.Unauthorized())
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// TOTPSetup generates a fresh TOTP secret for the current account and
// returns the otpauth URL plus a QR code PNG, base64-encoded for inline
// display. The factor stays disabled until TOTPVerify confirms a code.
func (h *Auth) TOTPSetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, apperr.Unauthorized())
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		writeError(w, fmt.Errorf("generate totp key: %w", err))
		return
	}

	if err := h.users.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		writeError(w, fmt.Errorf("save totp secret: %w", err))
		return
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		writeError(w, fmt.Errorf("encode qr code: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"secret": key.Secret(),
		"url":    key.URL(),
		"qr_png": base64.StdEncoding.EncodeToString(png),
	})
}

// TOTPVerify confirms a code against the pending secret and enables the
// second factor for the account.
func (h *Auth) TOTPVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, apperr.Unauthorized())
		return
	}

	var in totpVerifyInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	u, err := h.users.FindByID(sess.UserID)
	if err != nil {
		writeError(w, fmt.Errorf("find user: %w", err))
		return
	}
	if u == nil || u.TOTPSecret == nil {
		writeError(w, apperr.Validation("no pending TOTP setup"))
		return
	}

	if !totp.Validate(in.Code, *u.TOTPSecret) {
		writeError(w, apperr.ValidationField("code", "invalid TOTP code"))
		return
	}

	if err := h.users.EnableTOTP(u.ID); err != nil {
		writeError(w, fmt.Errorf("enable totp: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"totp_enabled": true})
}

func (h *Auth) openSession(w http.ResponseWriter, r *http.Request, u *models.User) error {
	// Drop any existing session before opening a new one.
	_ = h.sessions.Destroy(r.Context(), w, r)

	_, err := h.sessions.Create(r.Context(), w, &session.Data{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.FullName(),
		Role:      string(u.Role),
		CreatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}
