package config

import (
	"testing"
	"time"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("MONGO_URL", "mongodb://localhost:27017")
	t.Setenv("SESSION_SECRET", "test-session-secret-32bytes-long!")
}

func TestLoad_AllRequiredVarsSet_ReturnsConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.MongoURL != "mongodb://localhost:27017" {
		t.Errorf("MongoURL = %q, want %q", cfg.MongoURL, "mongodb://localhost:27017")
	}
	if cfg.SessionSecret != "test-session-secret-32bytes-long!" {
		t.Errorf("SessionSecret = %q, want %q", cfg.SessionSecret, "test-session-secret-32bytes-long!")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Document store defaults
	if cfg.DatabaseName != "blog-system" {
		t.Errorf("DatabaseName = %q, want %q", cfg.DatabaseName, "blog-system")
	}
	if cfg.PostsCollection != "posts" {
		t.Errorf("PostsCollection = %q, want %q", cfg.PostsCollection, "posts")
	}
	if cfg.AuthorsCollection != "authors" {
		t.Errorf("AuthorsCollection = %q, want %q", cfg.AuthorsCollection, "authors")
	}
	if cfg.SequencesCollection != "sequences" {
		t.Errorf("SequencesCollection = %q, want %q", cfg.SequencesCollection, "sequences")
	}
	if cfg.SessionsCollection != "sessions" {
		t.Errorf("SessionsCollection = %q, want %q", cfg.SessionsCollection, "sessions")
	}

	// Session defaults
	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want %d", cfg.SessionMaxAge, 86400)
	}

	// Upload and view defaults
	if cfg.UploadDir != "uploads" {
		t.Errorf("UploadDir = %q, want %q", cfg.UploadDir, "uploads")
	}
	if cfg.TemplatesDir != "web/templates" {
		t.Errorf("TemplatesDir = %q, want %q", cfg.TemplatesDir, "web/templates")
	}
	if cfg.StaticDir != "web/static" {
		t.Errorf("StaticDir = %q, want %q", cfg.StaticDir, "web/static")
	}

	// Rate limit defaults
	if cfg.RateLimitLogin != 10 {
		t.Errorf("RateLimitLogin = %d, want %d", cfg.RateLimitLogin, 10)
	}

	// Worker defaults
	if cfg.CleanupInterval != 24*time.Hour {
		t.Errorf("CleanupInterval = %v, want %v", cfg.CleanupInterval, 24*time.Hour)
	}

	// Server defaults
	if cfg.ServerPort != "3000" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "3000")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnvVars(t)

	t.Setenv("DATABASE_NAME", "blog-staging")
	t.Setenv("POSTS_COLLECTION", "blog_posts")
	t.Setenv("SESSION_MAX_AGE", "3600")
	t.Setenv("UPLOAD_DIR", "/data/uploads")
	t.Setenv("TEMPLATES_DIR", "/srv/templates")
	t.Setenv("RATE_LIMIT_LOGIN", "5")
	t.Setenv("CLEANUP_INTERVAL", "6h")
	t.Setenv("SERVER_PORT", "8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.DatabaseName != "blog-staging" {
		t.Errorf("DatabaseName = %q, want %q", cfg.DatabaseName, "blog-staging")
	}
	if cfg.PostsCollection != "blog_posts" {
		t.Errorf("PostsCollection = %q, want %q", cfg.PostsCollection, "blog_posts")
	}
	if cfg.SessionMaxAge != 3600 {
		t.Errorf("SessionMaxAge = %d, want %d", cfg.SessionMaxAge, 3600)
	}
	if cfg.UploadDir != "/data/uploads" {
		t.Errorf("UploadDir = %q, want %q", cfg.UploadDir, "/data/uploads")
	}
	if cfg.TemplatesDir != "/srv/templates" {
		t.Errorf("TemplatesDir = %q, want %q", cfg.TemplatesDir, "/srv/templates")
	}
	if cfg.RateLimitLogin != 5 {
		t.Errorf("RateLimitLogin = %d, want %d", cfg.RateLimitLogin, 5)
	}
	if cfg.CleanupInterval != 6*time.Hour {
		t.Errorf("CleanupInterval = %v, want %v", cfg.CleanupInterval, 6*time.Hour)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
}

func TestLoad_InvalidNumericValue_FallsBackToDefault(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("SESSION_MAX_AGE", "not-a-number")
	t.Setenv("CLEANUP_INTERVAL", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want default %d", cfg.SessionMaxAge, 86400)
	}
	if cfg.CleanupInterval != 24*time.Hour {
		t.Errorf("CleanupInterval = %v, want default %v", cfg.CleanupInterval, 24*time.Hour)
	}
}

func TestLoad_MissingMongoURL_ReturnsError(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("MONGO_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing MONGO_URL, got nil")
	}
}

func TestLoad_MissingSessionSecret_ReturnsError(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing SESSION_SECRET, got nil")
	}
}
