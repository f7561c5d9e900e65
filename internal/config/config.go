// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Document store
	MongoURL     string
	DatabaseName string

	// Collection names
	PostsCollection     string
	AuthorsCollection   string
	SequencesCollection string
	SessionsCollection  string

	// Session
	SessionSecret string
	SessionMaxAge int // seconds

	// Upload
	UploadDir string

	// Views
	TemplatesDir string
	StaticDir    string

	// Rate Limit
	RateLimitLogin int // req/min/IP

	// Worker
	CleanupInterval time.Duration

	// Server
	ServerPort string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.MongoURL = os.Getenv("MONGO_URL")
	if cfg.MongoURL == "" {
		missing = append(missing, "MONGO_URL")
	}

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.DatabaseName = getEnvString("DATABASE_NAME", "blog-system")
	cfg.PostsCollection = getEnvString("POSTS_COLLECTION", "posts")
	cfg.AuthorsCollection = getEnvString("AUTHORS_COLLECTION", "authors")
	cfg.SequencesCollection = getEnvString("SEQUENCES_COLLECTION", "sequences")
	cfg.SessionsCollection = getEnvString("SESSIONS_COLLECTION", "sessions")
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.UploadDir = getEnvString("UPLOAD_DIR", "uploads")
	cfg.TemplatesDir = getEnvString("TEMPLATES_DIR", "web/templates")
	cfg.StaticDir = getEnvString("STATIC_DIR", "web/static")
	cfg.RateLimitLogin = getEnvInt("RATE_LIMIT_LOGIN", 10)
	cfg.CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", 24*time.Hour)
	cfg.ServerPort = getEnvString("SERVER_PORT", "3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
