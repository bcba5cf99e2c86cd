package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Ollama         OllamaConfig
	Categorization CategorizationConfig
	Observability  ObservabilityConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// OllamaConfig configures the external inference endpoint used as the last
// categorization strategy.
type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// CategorizationConfig carries the fixed category ids used by the smart
// pattern table. They are passed explicitly into the categorizer instead of
// being read from ambient state inside the matching logic.
type CategorizationConfig struct {
	BillPaymentCategoryID    string
	RefundCategoryID         string
	CashWithdrawalCategoryID string
	RuleCacheRefreshSpec     string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "finlytics-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Ollama: OllamaConfig{
			BaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Model:   getEnv("OLLAMA_MODEL", "llama3"),
			Timeout: time.Duration(getEnvAsInt("OLLAMA_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Categorization: CategorizationConfig{
			BillPaymentCategoryID:    getEnv("CATEGORY_ID_BILL_PAYMENT", "sys-cc-bill-payment"),
			RefundCategoryID:         getEnv("CATEGORY_ID_REFUND", "sys-refund"),
			CashWithdrawalCategoryID: getEnv("CATEGORY_ID_CASH_WITHDRAWAL", "sys-cash-withdrawal"),
			RuleCacheRefreshSpec:     getEnv("RULE_CACHE_REFRESH_SPEC", "*/15 * * * *"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
