package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process-level configuration. Everything the feature
// modules need is injected from here; no feature package reads the
// environment on its own.
type Server struct {
	Addr string

	// Routing controls hostname classification and tenant resolution.
	Routing Routing

	// Identity controls token minting and the auth cookie.
	Identity Identity

	AdminToken string

	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig

	LogLevel string
}

// Routing configures the edge routing layer.
type Routing struct {
	// SubdomainRouting gates tenant resolution entirely. Defaults to
	// enabled; only an explicit falsy value disables it.
	SubdomainRouting bool

	// ReservedLabels are first labels that never resolve to a tenant.
	ReservedLabels []string

	// InternalSuffixes mark hosting-provider infrastructure hostnames
	// (deploy previews and the like) that bypass tenant resolution.
	InternalSuffixes []string

	// APIBaseURL is the origin of the hospital/doctor lookup endpoints.
	APIBaseURL string

	// LookupTimeout bounds each individual tenant lookup call.
	LookupTimeout time.Duration
}

// Identity configures token issuance and the shared auth cookie.
type Identity struct {
	JWTSigningKey string
	TokenTTL      time.Duration
	Issuer        string
}

// RedisConfig holds connection settings for the session store.
// An empty URL means Redis is not configured and the in-memory store is used.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig holds connection settings for the directory store.
// An empty URL means the in-memory directory is used.
type PostgresConfig struct {
	URL string
}

// KafkaConfig holds settings for the audit event publisher.
// No brokers means audit events stay on the in-process sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays
// lean. A local .env file is honored when present.
func FromEnv() Server {
	_ = godotenv.Load()

	addr := os.Getenv("CAREPORT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	apiBase := os.Getenv("CAREPORT_API_BASE_URL")
	if apiBase == "" {
		apiBase = "http://localhost:8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		adminToken = "dev-admin-token"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	kafkaTopic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if kafkaTopic == "" {
		kafkaTopic = "careport.audit"
	}

	return Server{
		Addr: addr,
		Routing: Routing{
			SubdomainRouting: envFlagEnabled("SUBDOMAIN_ROUTING_ENABLED"),
			ReservedLabels:   envList("CAREPORT_RESERVED_LABELS", []string{"www", "careport", "app"}),
			InternalSuffixes: envList("CAREPORT_INTERNAL_SUFFIXES", []string{".vercel.app"}),
			APIBaseURL:       apiBase,
			LookupTimeout:    envDuration("CAREPORT_LOOKUP_TIMEOUT", 3*time.Second),
		},
		Identity: Identity{
			JWTSigningKey: jwtSigningKey,
			TokenTTL:      envDuration("CAREPORT_TOKEN_TTL", 24*time.Hour),
			Issuer:        "careport",
		},
		AdminToken: adminToken,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Kafka: KafkaConfig{
			Brokers: envList("KAFKA_BROKERS", nil),
			Topic:   kafkaTopic,
		},
		LogLevel: logLevel,
	}
}

// envFlagEnabled treats the flag as on unless the variable is explicitly
// set to a disabling value.
func envFlagEnabled(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "false", "0", "off", "no", "disabled":
		return false
	default:
		return true
	}
}

func envList(name string, def []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func envDuration(name string, def time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
