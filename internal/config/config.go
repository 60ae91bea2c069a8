package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Sheets   SheetsConfig
	Kafka    KafkaConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	// URL is a SQLite file DSN by default; postgres:// DSNs switch dialect.
	URL string
}

type SessionConfig struct {
	// Secret signs the session cookie.
	Secret string
	// Store selects the backing store: "memory" or "redis".
	Store     string
	RedisAddr string
	// TTL is the sliding expiry window, refreshed on every request.
	TTL time.Duration
}

type SheetsConfig struct {
	Enabled bool
	// SpreadsheetID identifies the spreadsheet; SheetName is the tab holding
	// the mirrored rows.
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", "file:transactions.db"),
		},
		Session: SessionConfig{
			Secret:    getEnv("SESSION_SECRET", "your_secret_key"),
			Store:     getEnv("SESSION_STORE", "memory"),
			RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
			TTL:       time.Duration(getEnvInt("SESSION_TTL_HOURS", 6)) * time.Hour,
		},
		Sheets: SheetsConfig{
			Enabled:         getEnvBool("SHEETS_ENABLED", true),
			SpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
			SheetName:       getEnv("SHEET_NAME", "Carnival_Transactions"),
			CredentialsFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", "service_account.json"),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "carnival-transactions"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
