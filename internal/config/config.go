package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит все настройки приложения
type Config struct {
	Telegram TelegramConfig
	Crypto   CryptoConfig
	Database DatabaseConfig
	ConfigID string
	Timezone string
	LogLevel string
}

type TelegramConfig struct {
	BotToken    string
	LogChatID   int64
	AlertChatID int64
}

type CryptoConfig struct {
	APIKey         string
	APISecret      string
	BaseURL        string
	TradingEnabled bool
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Load загружает конфигурацию из .env файла
func Load() (*Config, error) {
	// Загружаем .env файл (если есть)
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	logChatID, err := strconv.ParseInt(getEnv("TELEGRAM_LOG_CHAT_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_LOG_CHAT_ID: %w", err)
	}

	alertChatID, err := strconv.ParseInt(getEnv("TELEGRAM_ALERT_CHAT_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALERT_CHAT_ID: %w", err)
	}

	tradingEnabled, err := strconv.ParseBool(getEnv("TRADING_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRADING_ENABLED: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxOpenConns, err := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}

	maxIdleConns, err := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	config := &Config{
		Telegram: TelegramConfig{
			BotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
			LogChatID:   logChatID,
			AlertChatID: alertChatID,
		},
		Crypto: CryptoConfig{
			APIKey:         getEnv("CRYPTO_API_KEY", ""),
			APISecret:      getEnv("CRYPTO_API_SECRET", ""),
			BaseURL:        getEnv("CRYPTO_BASE_URL", "https://api.crypto.com/v2/"),
			TradingEnabled: tradingEnabled,
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            dbPort,
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			DBName:          getEnv("DB_NAME", "crypto_analyser"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    maxOpenConns,
			MaxIdleConns:    maxIdleConns,
			ConnMaxLifetime: connMaxLifetime,
		},
		ConfigID: getEnv("CONFIGURATION_ID", ""),
		Timezone: getEnv("TIMEZONE", "Pacific/Auckland"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate проверяет обязательные поля конфигурации
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.Telegram.LogChatID == 0 {
		return fmt.Errorf("TELEGRAM_LOG_CHAT_ID is required")
	}
	if c.Crypto.APIKey == "" {
		return fmt.Errorf("CRYPTO_API_KEY is required")
	}
	if c.Crypto.APISecret == "" {
		return fmt.Errorf("CRYPTO_API_SECRET is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.ConfigID == "" {
		return fmt.Errorf("CONFIGURATION_ID is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
