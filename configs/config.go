package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver  string
	DBSource  string
	Port      string
	JWTSecret string
	JWTTTL    time.Duration

	// RabbitMQ; empty URL disables event publishing/consuming.
	RabbitURL     string
	ScoreExchange string
	ScoreQueue    string

	// Trust score formula (tunable without redeploying ranking logic).
	WeightCompletion float64
	WeightOnTime     float64
	WeightRating     float64
	WeightResponse   float64
	MinReviews       int

	// Metrics aggregation.
	MaxWindowDays    int
	GraceMinutes     int
	ResponseTimeout  int     // days before a system default review is created
	DefaultSatisfact float64 // 0..1, maps to the default review rating

	// Score cache.
	CacheTTLSingle    time.Duration
	CacheTTLDashboard time.Duration
	CacheSize         int

	// Background refresh.
	RefreshInterval time.Duration
	RefreshPause    time.Duration // pause between couriers so bulk refresh cannot starve requests

	UpgradeURL string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}

	return &Config{
		DBDriver:  getEnv("DB_DRIVER", "sqlite"),
		DBSource:  getEnv("DB_SOURCE", "performile.db"),
		Port:      getEnv("PORT", "8000"),
		JWTSecret: getEnv("JWT_SECRET", "changeme"),
		JWTTTL:    time.Duration(24) * time.Hour,

		RabbitURL:     os.Getenv("RABBITMQ_URL"),
		ScoreExchange: getEnv("SCORE_EXCHANGE", "performile.scores"),
		ScoreQueue:    getEnv("SCORE_QUEUE", "performile.score-refresh"),

		WeightCompletion: getEnvFloat("TRUST_WEIGHT_COMPLETION", 0.35),
		WeightOnTime:     getEnvFloat("TRUST_WEIGHT_ONTIME", 0.30),
		WeightRating:     getEnvFloat("TRUST_WEIGHT_RATING", 0.20),
		WeightResponse:   getEnvFloat("TRUST_WEIGHT_RESPONSE", 0.15),
		MinReviews:       getEnvInt("TRUST_MIN_REVIEWS", 5),

		MaxWindowDays:    getEnvInt("METRICS_MAX_WINDOW_DAYS", 730),
		GraceMinutes:     getEnvInt("ONTIME_GRACE_MINUTES", 0),
		ResponseTimeout:  getEnvInt("REVIEW_RESPONSE_TIMEOUT_DAYS", 14),
		DefaultSatisfact: getEnvFloat("REVIEW_DEFAULT_SATISFACTION", 0.70),

		CacheTTLSingle:    getEnvDuration("SCORE_TTL_SINGLE", 10*time.Minute),
		CacheTTLDashboard: getEnvDuration("SCORE_TTL_DASHBOARD", 15*time.Minute),
		CacheSize:         getEnvInt("SCORE_CACHE_SIZE", 4096),

		RefreshInterval: getEnvDuration("SCORE_REFRESH_INTERVAL", 1*time.Hour),
		RefreshPause:    getEnvDuration("SCORE_REFRESH_PAUSE", 50*time.Millisecond),

		UpgradeURL: getEnv("UPGRADE_URL", "https://performile.com/upgrade"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
