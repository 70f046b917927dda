// Package config loads server configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries every runtime setting. All fields come from FAMGROCER_
// environment variables; optional integrations (push, email, backups)
// stay disabled when their variables are empty.
type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	PushSubscriber  string

	PostmarkToken string
	EmailFrom     string

	S3Endpoint  string
	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
}

// Load reads .env if present, then the environment. A missing .env is
// not an error; deployments set real variables.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:      getenv("FAMGROCER_PORT", "8080"),
		DBPath:    getenv("FAMGROCER_DB_PATH", "famgrocer.db"),
		LogLevel:  getenv("FAMGROCER_LOG_LEVEL", "info"),
		LogFormat: getenv("FAMGROCER_LOG_FORMAT", "text"),

		VAPIDPublicKey:  os.Getenv("FAMGROCER_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("FAMGROCER_VAPID_PRIVATE_KEY"),
		PushSubscriber:  os.Getenv("FAMGROCER_PUSH_SUBSCRIBER"),

		PostmarkToken: os.Getenv("FAMGROCER_POSTMARK_TOKEN"),
		EmailFrom:     getenv("FAMGROCER_EMAIL_FROM", "noreply@famgrocer.app"),

		S3Endpoint:  os.Getenv("FAMGROCER_S3_ENDPOINT"),
		S3Bucket:    os.Getenv("FAMGROCER_S3_BUCKET"),
		S3Region:    getenv("FAMGROCER_S3_REGION", "auto"),
		S3AccessKey: os.Getenv("FAMGROCER_S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("FAMGROCER_S3_SECRET_KEY"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
