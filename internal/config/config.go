package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultDatabasePath = "data/meal-prep.db"
	DefaultCatalogPath  = "data/recipes.json"
	DefaultRecipeTag    = "recipe"
	DefaultPort         = "8080"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string
	CatalogPath  string
	LogLevel     string
	LogFormat    string

	// PlanSeed makes plan generation reproducible when set.
	PlanSeed *uint64

	// Ghost Config (optional; needed for sync and publishing)
	GhostURL        string
	GhostContentKey string
	GhostAdminKey   string
	GhostRecipeTag  string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
	Port                   string
}

// LoadDotEnv loads variables from a .env file when one exists. Variables
// already set in the environment win.
func LoadDotEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		DatabasePath:       getEnv("DATABASE_PATH", DefaultDatabasePath),
		CatalogPath:        getEnv("CATALOG_PATH", DefaultCatalogPath),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
		GhostURL:           strings.TrimRight(os.Getenv("GHOST_API_URL"), "/"),
		GhostContentKey:    os.Getenv("GHOST_CONTENT_API_KEY"),
		GhostAdminKey:      os.Getenv("GHOST_ADMIN_API_KEY"),
		GhostRecipeTag:     getEnv("GHOST_RECIPE_TAG", DefaultRecipeTag),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
		Port:               getEnv("PORT", DefaultPort),
	}

	if raw := os.Getenv("PLAN_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid PLAN_SEED %q: %w", raw, err)
		}
		cfg.PlanSeed = &seed
	}

	if raw := os.Getenv("TELEGRAM_ALLOWED_USER_IDS"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", part, err)
			}
			cfg.TelegramAllowedUserIDs = append(cfg.TelegramAllowedUserIDs, id)
		}
	}

	if raw := os.Getenv("ADMIN_TELEGRAM_ID"); raw != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID %q: %w", raw, err)
		}
		cfg.AdminTelegramID = id
	}

	return cfg, nil
}

// RequireGhost checks the settings needed to talk to Ghost.
func (c *Config) RequireGhost() error {
	if c.GhostURL == "" {
		return fmt.Errorf("GHOST_API_URL environment variable not set")
	}
	if c.GhostContentKey == "" {
		return fmt.Errorf("GHOST_CONTENT_API_KEY environment variable not set")
	}
	return nil
}

// RequireGhostAdmin checks the settings needed to publish to Ghost.
func (c *Config) RequireGhostAdmin() error {
	if err := c.RequireGhost(); err != nil {
		return err
	}
	if c.GhostAdminKey == "" {
		return fmt.Errorf("GHOST_ADMIN_API_KEY environment variable not set")
	}
	return nil
}

// RequireTelegram checks the settings needed to run the bot.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

// IsAllowedUser reports whether a Telegram user may use the bot. An empty
// allow list admits everyone; the admin is always admitted.
func (c *Config) IsAllowedUser(id int64) bool {
	if c.AdminTelegramID != 0 && id == c.AdminTelegramID {
		return true
	}
	if len(c.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, allowed := range c.TelegramAllowedUserIDs {
		if allowed == id {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
