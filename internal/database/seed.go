package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data.
// It creates a default admin user and one sample published post if no
// users exist yet. The admin will be prompted to set up 2FA on first
// login (totp_enabled = false).
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// Insert default admin user. 2FA is not enabled — they must set it up
	// on first login.
	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, totp_enabled)
		VALUES ($1, $2, $3, $4)
	`, "admin@agririse.local", string(hash), "Admin", false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	// A sample published post so the public feed is not empty on a fresh
	// development database.
	_, err = db.Exec(`
		INSERT INTO posts (title, slug, excerpt, content, content_format, category, is_published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW())
	`,
		"Welcome to AgriRise",
		"welcome-to-agririse",
		"First update from the AgriRise team.",
		"# Welcome\n\nThis is a sample post created by the development seed.",
		"markdown",
		"update",
	)
	if err != nil {
		return fmt.Errorf("seed insert sample post: %w", err)
	}

	slog.Info("database seeded with default admin user and sample post",
		"email", "admin@agririse.local",
		"password", "admin",
	)

	return nil
}
