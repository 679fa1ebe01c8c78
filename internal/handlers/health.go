package handlers

import (
	"database/sql"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// Health reports liveness of the process and its backing services.
type Health struct {
	db     *sql.DB
	valkey *redis.Client
}

// NewHealth creates a new Health handler.
func NewHealth(db *sql.DB, valkey *redis.Client) *Health {
	return &Health{db: db, valkey: valkey}
}

// Check pings PostgreSQL and Valkey and reports per-service status. The
// endpoint returns 503 when either backend is unreachable so load
// balancers stop routing to the instance.
func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	services := map[string]string{"postgres": "ok", "valkey": "ok"}

	if err := h.db.PingContext(r.Context()); err != nil {
		services["postgres"] = "unreachable"
		status = http.StatusServiceUnavailable
	}
	if err := h.valkey.Ping(r.Context()).Err(); err != nil {
		services["valkey"] = "unreachable"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status":   http.StatusText(status),
		"services": services,
	})
}
