package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	Enabled  bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Enabled  bool
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
}

type ModelConfig struct {
	WeightPath string
	CurveDir   string
}

type Config struct {
	HTTPPort    int
	LogLevel    string
	LogFormat   string
	DB          DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Model       ModelConfig
	ServiceName string
}

// Load reads the environment. Infrastructure backends default to disabled
// so the analysis pipeline runs with no external services at all.
func Load() Config {
	return Config{
		HTTPPort:  getEnvInt("HTTP_PORT", 8090),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "credora"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "credora_analysis"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Enabled:  getEnvBool("DB_ENABLED", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("REDIS_TTL", 24*time.Hour),
			Enabled:  getEnvBool("REDIS_ENABLED", false),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Enabled: getEnvBool("KAFKA_ENABLED", false),
		},
		Model: ModelConfig{
			WeightPath: getEnv("MODEL_WEIGHT_PATH", "data/approval_model.gob"),
			CurveDir:   getEnv("MODEL_CURVE_DIR", ""),
		},
		ServiceName: "credit-analysis",
	}
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
