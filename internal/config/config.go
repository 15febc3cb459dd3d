package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs from the environment. A .env
// file in the working directory is loaded first, so local development
// doesn't require exporting variables by hand.
type Config struct {
	Port           string
	DBPath         string
	JWTSecret      string
	JWTResetSecret string

	// Redis is optional; when RedisAddr is empty the server runs
	// without a cache.
	RedisAddr string
	RedisPass string
	RedisDB   int

	// GitHub OAuth is optional; sign-in with GitHub is only mounted
	// when both client values are set.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	IsProd bool
}

// Load reads configuration from the environment, applying defaults for
// everything that has a sensible one. Secrets have no defaults: missing
// secrets are an error so the server never starts with a guessable key.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               envOr("PORT", "8080"),
		DBPath:             envOr("DB_PATH", "travelmate.db"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTResetSecret:     os.Getenv("JWT_RESET_SECRET"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPass:          os.Getenv("REDIS_PASS"),
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  os.Getenv("GITHUB_CALLBACK_URL"),
		IsProd:             os.Getenv("IS_PROD") == "true",
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", db, err)
		}
		cfg.RedisDB = n
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.JWTResetSecret == "" {
		return nil, fmt.Errorf("JWT_RESET_SECRET is required")
	}

	return cfg, nil
}

// GitHubEnabled reports whether enough OAuth configuration is present to
// mount the GitHub sign-in routes.
func (c *Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
