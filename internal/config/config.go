package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Inventory   InventoryConfig
	Storage     StorageConfig
	Catalog     CatalogConfig
	CORSOrigins []string
	LogLevel    string
}

type InventoryConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

type StorageConfig struct {
	// Backend selects the session KV implementation: file, redis or postgres.
	Backend  string
	StateDir string
	Redis    RedisConfig
	Database DatabaseConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CatalogConfig struct {
	PageSize      int
	AdminPageSize int
	CacheSeconds  int
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("STORAGE_BACKEND", "file")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Inventory: InventoryConfig{
			BaseURL:        getEnvOrViper("INVENTORY_BASE_URL", ""),
			TimeoutSeconds: getIntOrViper("INVENTORY_TIMEOUT_SECONDS", 30),
		},
		Storage: StorageConfig{
			Backend:  getEnvOrViper("STORAGE_BACKEND", "file"),
			StateDir: getEnvOrViper("STORAGE_STATE_DIR", ".storefront"),
			Redis: RedisConfig{
				Addr:     getEnvOrViper("REDIS_ADDR", "localhost:6379"),
				Password: getEnvOrViper("REDIS_PASSWORD", ""),
				DB:       getIntOrViper("REDIS_DB", 0),
			},
			Database: DatabaseConfig{
				Host:     getEnvOrViper("DB_HOST", "localhost"),
				Port:     getEnvOrViper("DB_PORT", "5432"),
				User:     getEnvOrViper("DB_USER", "postgres"),
				Password: getEnvOrViper("DB_PASSWORD", "postgres"),
				DBName:   getEnvOrViper("DB_NAME", "storefront"),
				SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
			},
		},
		Catalog: CatalogConfig{
			PageSize:      getIntOrViper("CATALOG_PAGE_SIZE", 9),
			AdminPageSize: getIntOrViper("CATALOG_ADMIN_PAGE_SIZE", 10),
			CacheSeconds:  getIntOrViper("CATALOG_CACHE_SECONDS", 15),
		},
		CORSOrigins: []string{getEnvOrViper("CORS_ORIGIN", "*")},
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if cfg.Inventory.BaseURL == "" {
		return nil, fmt.Errorf("INVENTORY_BASE_URL is required")
	}
	switch cfg.Storage.Backend {
	case "file", "redis", "postgres":
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Storage.Backend)
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getIntOrViper(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return defaultValue
}
