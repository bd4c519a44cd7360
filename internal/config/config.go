package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port        string
	DatabaseDSN string
	SecretKey   string
	BaseURL     string
	Env         string

	// SMTP settings for password reset mail. Empty MailUsername leaves the
	// transport unconfigured; reset requests then fail loudly rather than
	// silently dropping the email.
	MailServer   string
	MailPort     string
	MailUsername string
	MailPassword string
	MailSender   string

	// PicturesDir is where uploaded profile pictures land.
	PicturesDir string
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "file:blog.db")
	cfg.SecretKey = getEnv("SECRET_KEY", "devsessionsecret")
	cfg.BaseURL = getEnv("BASE_URL", "http://localhost:"+cfg.Port)
	cfg.Env = getEnv("APP_ENV", "development")
	cfg.MailServer = getEnv("MAIL_SERVER", "smtp.googlemail.com")
	cfg.MailPort = getEnv("MAIL_PORT", "587")
	cfg.MailUsername = os.Getenv("EMAIL_USER")
	cfg.MailPassword = os.Getenv("EMAIL_PASS")
	cfg.MailSender = getEnv("MAIL_SENDER", "noreply@demo.com")
	cfg.PicturesDir = getEnv("PICTURES_DIR", "static/profile_pics")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseBool reads an env var as bool with default.
func ParseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}
