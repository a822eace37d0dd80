package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr     string
	PostgresDSN    string
	MongoURI       string
	RedisAddr      string
	RabbitURL      string
	JWTSecret      string
	AccessTokenTTL time.Duration
	UploadDir      string
	EventCacheTTL  time.Duration
	ReminderAfter  time.Duration
	OTLPEndpoint   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:     envOr("LISTEN_ADDR", ":8080"),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		MongoURI:       os.Getenv("MONGO_URI"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RabbitURL:      os.Getenv("RABBIT_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: durationOr("ACCESS_TOKEN_TTL", 24*time.Hour),
		UploadDir:      envOr("UPLOAD_DIR", "uploads"),
		EventCacheTTL:  durationOr("EVENT_CACHE_TTL", time.Minute),
		ReminderAfter:  durationOr("REMINDER_AFTER", 24*time.Hour),
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, _ := time.ParseDuration(os.Getenv(key))
	if d == 0 {
		return fallback
	}
	return d
}
