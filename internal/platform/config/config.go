package config

import (
	"os"
	"strconv"
	"time"

	pstrings "ahliwaris/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	LogLevel    string
	DatabaseURL string
	Redis       RedisConfig
	Kafka       KafkaConfig
	Letterhead  Letterhead
	// DocumentCacheTTL bounds how long an assembled letter stays cached.
	DocumentCacheTTL time.Duration
	// BatchLimit caps concurrent assembly in a batch request; 0 means GOMAXPROCS.
	BatchLimit int
	RateLimit  RateLimitConfig
	// OpsReadSampleRate is the fraction of lookup and render ops events kept.
	OpsReadSampleRate float64
}

// RateLimitConfig sets per-IP budgets. Counters live in Redis when it is
// configured and in process memory otherwise.
type RateLimitConfig struct {
	Disabled   bool
	IssueLimit int
	ReadLimit  int
	Window     time.Duration
}

// RedisConfig holds connection settings. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds broker settings. No brokers disables the audit relay.
type KafkaConfig struct {
	Brokers       []string
	ConsumerGroup string
	RelayInterval time.Duration
}

// Letterhead names the signing place and the officials attesting each letter.
type Letterhead struct {
	SignPlace        string
	VillageName      string
	VillageHeadName  string
	DistrictName     string
	DistrictHeadName string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:        getEnv("AHLIWARIS_ADDR", ":8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:       pstrings.SplitList(os.Getenv("KAFKA_BROKERS")),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "ahliwaris-audit"),
			RelayInterval: getDuration("OUTBOX_RELAY_INTERVAL", time.Second),
		},
		Letterhead: Letterhead{
			SignPlace:        os.Getenv("SIGN_PLACE"),
			VillageName:      os.Getenv("VILLAGE_NAME"),
			VillageHeadName:  os.Getenv("VILLAGE_HEAD_NAME"),
			DistrictName:     os.Getenv("DISTRICT_NAME"),
			DistrictHeadName: os.Getenv("DISTRICT_HEAD_NAME"),
		},
		DocumentCacheTTL: getDuration("DOCUMENT_CACHE_TTL", 30*time.Minute),
		BatchLimit:       getInt("BATCH_LIMIT", 0),
		RateLimit: RateLimitConfig{
			Disabled:   getBool("RATE_LIMIT_DISABLED", false),
			IssueLimit: getInt("RATE_LIMIT_ISSUE", 30),
			ReadLimit:  getInt("RATE_LIMIT_READ", 300),
			Window:     getDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		OpsReadSampleRate: getFloat("OPS_READ_SAMPLE_RATE", 1),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}
