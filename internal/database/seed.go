package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin account and one root category per category type. It is a no-op
// if any users already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, first_name, last_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
	`, "admin@kalem.local", string(hash), "Site", "Admin", "admin")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	roots := []struct {
		name, slug, categoryType string
	}{
		{"Printed Publications", "printed-publications", "printed_publications"},
		{"Audio & Video Publications", "audio-video-publications", "audio_video_publications"},
		{"Social & Artistic Publications", "social-artistic-publications", "social_artistic_publications"},
	}
	for _, root := range roots {
		_, err := db.Exec(`
			INSERT INTO categories (name, slug, category_type)
			VALUES ($1, $2, $3)
			ON CONFLICT (slug) DO NOTHING
		`, root.name, root.slug, root.categoryType)
		if err != nil {
			return fmt.Errorf("seed insert category %s: %w", root.slug, err)
		}
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@kalem.local",
		"password", "admin",
	)

	return nil
}
