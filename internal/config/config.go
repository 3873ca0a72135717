package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the planner service.
type Config struct {
	HTTPAddr       string
	DatabaseURL    string
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	TickInterval   time.Duration
	TelegramToken  string
	TelegramChatID int64
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:      strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		GeminiAPIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:   strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		GeminiBaseURL: strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")),
		TickInterval:  parseTickInterval(strings.TrimSpace(os.Getenv("TICK_INTERVAL_SECONDS"))),
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "aether_planner.db"
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = "gemini-3-flash-preview"
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = 10 * time.Second
	}

	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("TELEGRAM_CHAT_ID must be an integer: %w", err)
		}
		cfg.TelegramChatID = chatID
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return cfg, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	if cfg.GeminiAPIKey == "" {
		return cfg, fmt.Errorf("GEMINI_API_KEY is required")
	}

	return cfg, nil
}

func parseTickInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
