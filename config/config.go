package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type EngineConfig struct {
	// Browser
	Headless          bool
	NavigationTimeout time.Duration
	SettleDelay       time.Duration

	// Proxy manager
	ProxyProviderURL      string
	ProxyProviderAPIKey   string
	ProxyCountry          string
	ProxyFailureThreshold int
	ProxyMaxPoolSize      int

	// Vision model
	GeminiAPIKey string
	GeminiModel  string

	// Retry processor
	RetryCeiling   int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	SweepInterval  time.Duration
	SweepBatchSize int

	// External collaborators
	LedgerURL       string
	NotificationURL string
}

type AppConfig struct {
	Port        string
	Database    DatabaseConfig
	Engine      EngineConfig
	JWTSecret   string
	Environment string
}

func GetDatabaseConfig() DatabaseConfig {
	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	password := getEnv("DB_PASSWORD", "")

	if password == "" {
		fmt.Println("⚠️  Warning: DB_PASSWORD environment variable is not set.")
	}

	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     port,
		User:     getEnv("DB_USER", "postgres"),
		Password: password,
		DBName:   getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func GetEngineConfig() EngineConfig {
	return EngineConfig{
		Headless:          getEnvBool("BROWSER_HEADLESS", true),
		NavigationTimeout: getEnvDuration("NAVIGATION_TIMEOUT", 30*time.Second),
		SettleDelay:       getEnvDuration("SUBMIT_SETTLE_DELAY", 3*time.Second),

		ProxyProviderURL:      getEnv("PROXY_PROVIDER_URL", ""),
		ProxyProviderAPIKey:   getEnv("PROXY_PROVIDER_API_KEY", ""),
		ProxyCountry:          getEnv("PROXY_COUNTRY", "US"),
		ProxyFailureThreshold: getEnvInt("PROXY_FAILURE_THRESHOLD", 3),
		ProxyMaxPoolSize:      getEnvInt("PROXY_MAX_POOL_SIZE", 5),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-pro"),

		RetryCeiling:   getEnvInt("RETRY_CEILING", 3),
		RetryBaseDelay: getEnvDuration("RETRY_BASE_DELAY", 30*time.Minute),
		RetryMaxDelay:  getEnvDuration("RETRY_MAX_DELAY", 24*time.Hour),
		SweepInterval:  getEnvDuration("RETRY_SWEEP_INTERVAL", 5*time.Minute),
		SweepBatchSize: getEnvInt("RETRY_SWEEP_BATCH", 10),

		LedgerURL:       getEnv("LEDGER_URL", ""),
		NotificationURL: getEnv("NOTIFICATION_URL", ""),
	}
}

func GetAppConfig() AppConfig {
	return AppConfig{
		Port:        getEnv("PORT", "8081"),
		Database:    GetDatabaseConfig(),
		Engine:      GetEngineConfig(),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
