package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds runtime configuration parsed from environment variables.
// Empty DSNs and addresses disable the matching collaborator.
type Config struct {
	HTTPAddr        string
	DBConnString    string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	MongoURI      string
	MongoDatabase string

	RedisAddr  string
	RedisQRTTL time.Duration

	AIBaseURL string
	AIAPIKey  string
	AIModel   string
	AITimeout time.Duration

	TaxRate        decimal.Decimal
	LocalTimezone  string
	SessionIdleTTL time.Duration

	MirrorQueueSize  int
	MirrorMaxRetries int
}

// Load reads an optional .env file and then builds Config from the environment.
// Variables already set in the environment win over the file.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() Config {
	return Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		DBConnString:    envOrDefault("DB_DSN", ""),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		CORSOrigins:     envList("CORS_ORIGINS", []string{"*"}),

		MongoURI:      envOrDefault("MONGO_URI", ""),
		MongoDatabase: envOrDefault("MONGO_DATABASE", "shopping_matrix"),

		RedisAddr:  envOrDefault("REDIS_ADDR", ""),
		RedisQRTTL: envDuration("REDIS_QR_TTL_SECONDS", 24*time.Hour),

		AIBaseURL: envOrDefault("AI_BASE_URL", "https://openrouter.ai/api/v1"),
		AIAPIKey:  envOrDefault("AI_API_KEY", ""),
		AIModel:   envOrDefault("AI_MODEL", "openai/gpt-4o-mini"),
		AITimeout: envDuration("AI_TIMEOUT_SECONDS", 30*time.Second),

		TaxRate:        envDecimal("TAX_RATE", decimal.RequireFromString("0.18")),
		LocalTimezone:  envOrDefault("LOCAL_TIMEZONE", "Local"),
		SessionIdleTTL: envDuration("SESSION_IDLE_TTL_SECONDS", 2*time.Hour),

		MirrorQueueSize:  envInt("MIRROR_QUEUE_SIZE", 256),
		MirrorMaxRetries: envInt("MIRROR_MAX_RETRIES", 5),
	}
}

// Location resolves LocalTimezone, falling back to the host zone.
func (c Config) Location() *time.Location {
	if c.LocalTimezone == "" || c.LocalTimezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.LocalTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func envDecimal(key string, def decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		d, err := decimal.NewFromString(v)
		if err == nil && !d.IsNegative() {
			return d
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
