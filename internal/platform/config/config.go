package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr string

	PostgresURL string
	Redis       RedisConfig
	Kafka       KafkaConfig

	Similarity SimilarityConfig
	Extraction ExtractionConfig
	Formation  FormationConfig
}

// RedisConfig carries connection settings for the shared Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig carries broker addresses and the audit topic.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// SimilarityConfig points at the embedding inference service.
type SimilarityConfig struct {
	URL     string
	Model   string
	Timeout time.Duration
}

// ExtractionConfig points at the profile extraction provider.
type ExtractionConfig struct {
	URL     string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// FormationConfig holds the tunable scoring thresholds for team formation.
type FormationConfig struct {
	MaxTeamSize      int
	MaxTeamNumber    int
	MinCategoryScore float64
	MinTimezoneScore float64

	PerfectMatchThreshold float64
	PerfectMatchBonus     float64
	MidMatchThresholdLow  float64
	MidMatchThresholdHigh float64
	MidMatchIncrement     float64
	MidMatchCap           float64
}

// DefaultFormation returns the formation thresholds used when no environment
// overrides are present.
func DefaultFormation() FormationConfig {
	return FormationConfig{
		MaxTeamSize:           12,
		MaxTeamNumber:         100,
		MinCategoryScore:      0.1,
		MinTimezoneScore:      0.55,
		PerfectMatchThreshold: 0.95,
		PerfectMatchBonus:     0.25,
		MidMatchThresholdLow:  0.4,
		MidMatchThresholdHigh: 0.6,
		MidMatchIncrement:     0.01,
		MidMatchCap:           0.05,
	}
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("COHORT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	formation := DefaultFormation()
	formation.MaxTeamSize = envInt("COHORT_MAX_TEAM_SIZE", formation.MaxTeamSize)
	formation.MinCategoryScore = envFloat("COHORT_MIN_CATEGORY_SCORE", formation.MinCategoryScore)
	formation.MinTimezoneScore = envFloat("COHORT_MIN_TIMEZONE_SCORE", formation.MinTimezoneScore)
	formation.PerfectMatchThreshold = envFloat("COHORT_PERFECT_MATCH_THRESHOLD", formation.PerfectMatchThreshold)
	formation.PerfectMatchBonus = envFloat("COHORT_PERFECT_MATCH_BONUS", formation.PerfectMatchBonus)
	formation.MidMatchThresholdLow = envFloat("COHORT_MID_MATCH_THRESHOLD_LOW", formation.MidMatchThresholdLow)
	formation.MidMatchThresholdHigh = envFloat("COHORT_MID_MATCH_THRESHOLD_HIGH", formation.MidMatchThresholdHigh)
	formation.MidMatchIncrement = envFloat("COHORT_MID_MATCH_BONUS_INCREMENT", formation.MidMatchIncrement)
	formation.MidMatchCap = envFloat("COHORT_MID_MATCH_BONUS_CAP", formation.MidMatchCap)

	return Server{
		Addr:        addr,
		PostgresURL: os.Getenv("COHORT_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("COHORT_REDIS_URL"),
			PoolSize:     envInt("COHORT_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("COHORT_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("COHORT_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("COHORT_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("COHORT_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    splitNonEmpty(os.Getenv("COHORT_KAFKA_BROKERS")),
			AuditTopic: envString("COHORT_KAFKA_AUDIT_TOPIC", "cohort.audit"),
		},
		Similarity: SimilarityConfig{
			URL:     os.Getenv("COHORT_SIMILARITY_URL"),
			Model:   envString("COHORT_SIMILARITY_MODEL", "all-MiniLM-L6-v2"),
			Timeout: envDuration("COHORT_SIMILARITY_TIMEOUT", 30*time.Second),
		},
		Extraction: ExtractionConfig{
			URL:     os.Getenv("COHORT_EXTRACTION_URL"),
			Model:   envString("COHORT_EXTRACTION_MODEL", ""),
			APIKey:  os.Getenv("COHORT_EXTRACTION_API_KEY"),
			Timeout: envDuration("COHORT_EXTRACTION_TIMEOUT", 30*time.Second),
		},
		Formation: formation,
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
