package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the environment-derived settings shared by the CLIs.
type Config struct {
	Environment string
	LogLevel    string

	Brokerage struct {
		Name        string
		AccountType string
		// Leverage overrides the model default when > 0.
		Leverage float64
	}

	Data struct {
		Dir string
		// Timezone name for raw data files, e.g. "America/New_York" or "UTC".
		DataTimezone     string
		ExchangeTimezone string
	}

	Bybit struct {
		APIKey     string
		APISecret  string
		Testnet    bool
		RefreshTTL time.Duration
	}

	Monitoring struct {
		MetricsPort int
		Enabled     bool
	}
}

// Load reads configuration from the environment, with a best-effort .env
// file load first. Missing keys fall back to defaults.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	cfg.Brokerage.Name = getEnv("BROKERAGE_NAME", "default")
	cfg.Brokerage.AccountType = getEnv("ACCOUNT_TYPE", "margin")
	cfg.Brokerage.Leverage = getEnvFloat("LEVERAGE_OVERRIDE", 0)

	cfg.Data.Dir = getEnv("DATA_DIR", "data")
	cfg.Data.DataTimezone = getEnv("DATA_TIMEZONE", "UTC")
	cfg.Data.ExchangeTimezone = getEnv("EXCHANGE_TIMEZONE", "UTC")

	cfg.Bybit.APIKey = getEnv("BYBIT_API_KEY", "")
	cfg.Bybit.APISecret = getEnv("BYBIT_API_SECRET", "")
	cfg.Bybit.Testnet = getEnvBool("BYBIT_TESTNET", true)
	cfg.Bybit.RefreshTTL = getEnvDuration("BYBIT_REFRESH_TTL", time.Hour)

	cfg.Monitoring.MetricsPort = getEnvInt("METRICS_PORT", 9100)
	cfg.Monitoring.Enabled = getEnvBool("METRICS_ENABLED", false)

	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
