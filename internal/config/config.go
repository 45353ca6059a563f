package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Sniper/models"
)

// Config holds all application configuration.
type Config struct {
	BridgeURL      string
	RequestTimeout int // seconds
	RequestsPerSec int

	Symbols      []string
	Timeframe    models.Timeframe
	PollInterval int // seconds
	CandleCount  int

	EnableSniper      bool
	EnableSmartSniper bool
	EnableSmartMoney  bool

	RiskPerTrade  float64
	RiskAllTrades float64
	DailyRisk     float64

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	TelegramToken  string
	TelegramChatID int64

	SummarySchedule string // cron spec for the daily report
	LogLevel        string
}

// Load initializes configuration from environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &Config{
		BridgeURL:      getEnvWithDefault("BRIDGE_URL", "http://localhost:8787"),
		RequestTimeout: getEnvIntWithDefault("REQUEST_TIMEOUT", 30),
		RequestsPerSec: getEnvIntWithDefault("REQUESTS_PER_SEC", 5),

		Symbols:      splitSymbols(getEnvWithDefault("SYMBOLS", "EURUSD")),
		Timeframe:    models.Timeframe(getEnvIntWithDefault("TIMEFRAME", int(models.M15))),
		PollInterval: getEnvIntWithDefault("POLL_INTERVAL", 60),
		CandleCount:  getEnvIntWithDefault("CANDLE_COUNT", 200),

		EnableSniper:      getEnvBoolWithDefault("ENABLE_SNIPER", false),
		EnableSmartSniper: getEnvBoolWithDefault("ENABLE_SMART_SNIPER", false),
		EnableSmartMoney:  getEnvBoolWithDefault("ENABLE_SMART_MONEY", false),

		RiskPerTrade:  getEnvFloatWithDefault("RISK_PER_TRADE", 1.0),
		RiskAllTrades: getEnvFloatWithDefault("RISK_ALL_TRADES", 5.0),
		DailyRisk:     getEnvFloatWithDefault("DAILY_RISK", 10.0),

		DBHost:     getEnvWithDefault("DB_HOST", "localhost"),
		DBPort:     getEnvWithDefault("DB_PORT", "5432"),
		DBUser:     getEnvWithDefault("DB_USER", "sniper"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnvWithDefault("DB_NAME", "sniper"),
		DBSSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),

		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0),

		SummarySchedule: getEnvWithDefault("SUMMARY_SCHEDULE", "0 21 * * *"),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
