package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"kalem/internal/apperr"
)

// maxBodyBytes caps JSON request bodies. Publication content can be long
// form, so the cap is generous.
const maxBodyBytes = 2 << 20 // 2 MiB

// errorEnvelope is the wire shape every failed request responds with.
type errorEnvelope struct {
	Error *apperr.Error `json:"error"`
}

// pageEnvelope is the wire shape of paginated list responses.
type pageEnvelope struct {
	Data  any `json:"data"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// writeJSON encodes v to the response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError maps an error to the JSON error envelope. apperr values keep
// their code and status; everything else becomes an opaque 500 so internal
// details never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		slog.Error("request failed", "error", err)
		ae = apperr.Internal()
	}
	writeJSON(w, ae.Status, errorEnvelope{Error: ae})
}

// decodeJSON decodes the request body into dst, rejecting unknown fields
// and oversized bodies with a validation error.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation(fmt.Sprintf("invalid request body: %v", err))
	}
	// A second document in the body means the client sent garbage.
	if dec.More() {
		return apperr.Validation("invalid request body: trailing data")
	}
	_, _ = io.Copy(io.Discard, body)
	return nil
}
