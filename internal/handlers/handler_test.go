// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"kalem/internal/cache"
	"kalem/internal/database"
	"kalem/internal/middleware"
	"kalem/internal/models"
	"kalem/internal/session"
	"kalem/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "kalem")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "kalem")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test session and cache keys.
		for _, pattern := range []string{"session:*", "listing:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB               *sql.DB
	Valkey           *redis.Client
	Sessions         *session.Store
	Listings         *cache.ListingCache
	UserStore        *store.UserStore
	CategoryStore    *store.CategoryStore
	PublicationStore *store.PublicationStore
	CommentStore     *store.CommentStore
	Auth             *Auth
	Categories       *Categories
	Comments         *Comments
	Users            *Users
	Articles         *Publications
	Books            *Publications
	CreativeWorks    *Publications
}

// newTestEnv creates a complete test environment with handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	listings := cache.NewListingCache(vk, 1*time.Minute)
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	publicationStore := store.NewPublicationStore(db)
	commentStore := store.NewCommentStore(db)

	return &testEnv{
		DB:               db,
		Valkey:           vk,
		Sessions:         sessions,
		Listings:         listings,
		UserStore:        userStore,
		CategoryStore:    categoryStore,
		PublicationStore: publicationStore,
		CommentStore:     commentStore,
		Auth:             NewAuth(sessions, userStore),
		Categories:       NewCategories(categoryStore),
		Comments:         NewComments(commentStore, publicationStore),
		Users:            NewUsers(userStore),
		Articles:         NewPublications(models.KindArticle, publicationStore, categoryStore, listings),
		Books:            NewPublications(models.KindBook, publicationStore, categoryStore, listings),
		CreativeWorks:    NewPublications(models.KindCreativeWork, publicationStore, categoryStore, listings),
	}
}

// adminSession returns session data with the admin role.
func adminSession() *session.Data {
	return &session.Data{
		UserID:    uuid.New(),
		Email:     "admin@test.local",
		Name:      "Test Admin",
		Role:      "admin",
		CreatedAt: time.Now(),
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// cleanPublications removes test publications by slug prefix.
func cleanPublications(t *testing.T, db *sql.DB, prefix string) {
	t.Helper()
	db.Exec("DELETE FROM publications WHERE slug LIKE $1", prefix+"%")
}

// cleanCategories removes test categories by slug prefix.
func cleanCategories(t *testing.T, db *sql.DB, prefix string) {
	t.Helper()
	db.Exec("DELETE FROM categories WHERE slug LIKE $1", prefix+"%")
}

// cleanUsers removes test users by email.
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}
