// Package router sets up all HTTP routes and middleware chains for the
// Kalem API. Public reads sit next to admin-only writes in each resource
// group; authentication and role checks are layered per group.
package router

import (
	"github.com/go-chi/chi/v5"

	"kalem/internal/handlers"
	"kalem/internal/middleware"
	"kalem/internal/session"
)

// Handlers bundles the handler groups the router wires up.
type Handlers struct {
	Auth          *handlers.Auth
	Categories    *handlers.Categories
	Comments      *handlers.Comments
	Users         *handlers.Users
	Uploads       *handlers.Uploads
	Health        *handlers.Health
	Articles      *handlers.Publications
	Books         *handlers.Publications
	Papers        *handlers.Publications
	Media         *handlers.Publications
	CreativeWorks *handlers.Publications
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. loginLimiter guards the credential
// endpoints; commentLimiter guards anonymous comment submission.
func New(sessions *session.Store, secure bool, h Handlers, loginLimiter, commentLimiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CSRF(secure))
	r.Use(middleware.LoadSession(sessions))

	// Health check: no auth.
	r.Get("/healthz", h.Health.Check)

	// Authentication.
	r.Route("/auth", func(r chi.Router) {
		r.With(loginLimiter.Middleware).Post("/register", h.Auth.Register)
		r.With(loginLimiter.Middleware).Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", h.Auth.Me)
			r.Post("/2fa/setup", h.Auth.TOTPSetup)
			r.Post("/2fa/verify", h.Auth.TOTPVerify)
		})
	})

	// Taxonomy: reads are public, writes are admin-only.
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.Categories.List)
		r.Get("/{id}", h.Categories.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth, middleware.RequireAdmin)
			r.Post("/", h.Categories.Create)
			r.Patch("/{id}", h.Categories.Update)
			r.Delete("/{id}", h.Categories.Delete)
		})
	})

	// One route group per publication kind, sharing the handler code.
	// Likes only exist for articles.
	mountPublications(r, "/articles", h.Articles, func(r chi.Router) {
		r.Post("/{id}/like", h.Articles.Like)
	})
	mountPublications(r, "/books", h.Books, nil)
	mountPublications(r, "/papers", h.Papers, nil)
	mountPublications(r, "/media-publications", h.Media, nil)
	mountPublications(r, "/creative-works", h.CreativeWorks, nil)

	// Comment threads hang off the publication id regardless of kind.
	r.Route("/publications/{id}/comments", func(r chi.Router) {
		r.Get("/", h.Comments.ListForPublication)
		r.With(commentLimiter.Middleware).Post("/", h.Comments.Create)
	})

	// Comment moderation.
	r.Route("/comments", func(r chi.Router) {
		r.Use(middleware.RequireAuth, middleware.RequireAdmin)
		r.Get("/pending-count", h.Comments.PendingCount)
		r.Patch("/{id}", h.Comments.Moderate)
		r.Delete("/{id}", h.Comments.Delete)
	})

	// Account management.
	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequireAuth, middleware.RequireAdmin)
		r.Get("/", h.Users.List)
		r.Post("/", h.Users.Create)
		r.Get("/{id}", h.Users.Get)
		r.Patch("/{id}", h.Users.Update)
		r.Delete("/{id}", h.Users.Delete)
		r.Post("/{id}/reset-2fa", h.Users.ResetTOTP)
	})

	// PDF uploads to object storage.
	r.Route("/uploads", func(r chi.Router) {
		r.Use(middleware.RequireAuth, middleware.RequireAdmin)
		r.Get("/", h.Uploads.List)
		r.Post("/pdf", h.Uploads.UploadPDF)
		r.Get("/{id}/url", h.Uploads.DownloadURL)
		r.Delete("/{id}", h.Uploads.Delete)
	})

	return r
}

// mountPublications wires the shared publication routes for one kind.
// extra, when non-nil, adds kind-specific public routes to the group.
func mountPublications(r chi.Router, path string, h *handlers.Publications, extra func(chi.Router)) {
	r.Route(path, func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		if extra != nil {
			extra(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth, middleware.RequireAdmin)
			r.Post("/", h.Create)
			r.Patch("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Post("/{id}/publish", h.Publish)
			r.Post("/{id}/archive", h.Archive)
		})
	})
}
