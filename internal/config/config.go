package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Mode        string
	Environment string
	HTTPAddr    string

	DefaultOrgID int64

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	NotificationWebhookURL string

	Logger LoggerConfig

	Bootstrap BootstrapConfig
}

type LoggerConfig struct {
	Level string
}

type BootstrapConfig struct {
	EnsureDefaultOrg bool
	SeedCatalog      bool
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	return Config{
		AppName:     getEnv("APP_NAME", "armora"),
		AppVersion:  getEnv("APP_VERSION", "dev"),
		Mode:        getEnv("APP_MODE", "debug"),
		Environment: getEnv("APP_ENV", "development"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),

		DefaultOrgID: getEnvInt64("DEFAULT_ORG_ID", 0),

		DBType:            getEnv("DB_TYPE", "sqlite"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", "armora"),
		DBUser:            getEnv("DB_USER", "armora"),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		DBMaxIdleConn:     getEnvInt("DB_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getEnvInt("DB_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getEnvInt("DB_CONN_MAX_IDLE_TIME", 60),

		NotificationWebhookURL: getEnv("NOTIFICATION_WEBHOOK_URL", ""),

		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},

		Bootstrap: BootstrapConfig{
			EnsureDefaultOrg: getEnvBool("BOOTSTRAP_ENSURE_DEFAULT_ORG", true),
			SeedCatalog:      getEnvBool("BOOTSTRAP_SEED_CATALOG", true),
		},
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt64(key string, fallback int64) int64 {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
