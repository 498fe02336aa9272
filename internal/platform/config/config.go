package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. Everything comes from the
// environment so main stays lean and deployments stay declarative.
type Server struct {
	Addr          string
	PostgresDSN   string
	RedisURL      string
	KafkaBrokers  []string
	KafkaTopic    string
	OpenAIKey     string
	OpenAIModel   string
	JWTSigningKey string
	CatalogTTL    time.Duration
}

// FromEnv builds a Server config from environment variables.
// Empty PostgresDSN / RedisURL / KafkaBrokers mean the corresponding backend
// is not configured and the in-memory fallback is used.
func FromEnv() Server {
	addr := os.Getenv("TRIALMATCH_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	var brokers []string
	if raw := os.Getenv("TRIALMATCH_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	topic := os.Getenv("TRIALMATCH_KAFKA_TOPIC")
	if topic == "" {
		topic = "trialmatch.audit"
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	ttl := 5 * time.Minute
	if raw := os.Getenv("TRIALMATCH_CATALOG_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			ttl = parsed
		}
	}

	return Server{
		Addr:          addr,
		PostgresDSN:   os.Getenv("TRIALMATCH_POSTGRES_DSN"),
		RedisURL:      os.Getenv("TRIALMATCH_REDIS_URL"),
		KafkaBrokers:  brokers,
		KafkaTopic:    topic,
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   model,
		JWTSigningKey: os.Getenv("TRIALMATCH_JWT_SIGNING_KEY"),
		CatalogTTL:    ttl,
	}
}
