// Package config defines the configuration contract and handles loading and
// validating environment configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// Canonical environment variable keys.
	KeyTelegramToken = "TELEGRAM_TOKEN"
	KeyAppEnv        = "APP_ENV"
	KeyLogLevel      = "LOG_LEVEL"
	KeyHTTPPort      = "HTTP_PORT"
	KeyBotMode       = "BOT_MODE"
	KeyPhotoPath     = "PHOTO_PATH"

	// Allowed environment values.
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// Allowed update delivery modes.
	ModePolling = "polling"
	ModeWebhook = "webhook"

	// Defaults for optional settings.
	DefaultAppEnv    = EnvProduction
	DefaultLogLevel  = "info"
	DefaultHTTPPort  = 8080
	DefaultBotMode   = ModePolling
	DefaultPhotoPath = "assets/day.jpg"
)

// VarSpec describes a single configuration key.
type VarSpec struct {
	Key         string // environment variable name
	Example     string // human-friendly sample value
	Required    bool   // whether the bot must refuse to start without this value
	Default     string // default when unset (empty when required)
	Description string // what the variable controls
	Notes       string // extra guidance or policies
}

// Contract enumerates the authoritative configuration keys for the bot.
// .env loading is only permitted when APP_ENV=development; production must rely
// on environment variables supplied by the runtime.
var Contract = []VarSpec{
	{
		Key:         KeyTelegramToken,
		Example:     "123:ABC",
		Required:    true,
		Description: "Telegram Bot Token issued by BotFather.",
	},
	{
		Key:         KeyAppEnv,
		Example:     EnvDevelopment + " / " + EnvProduction,
		Default:     DefaultAppEnv,
		Description: "Runtime environment; controls log format and dotenv usage.",
		Notes:       "Load .env files only when APP_ENV=" + EnvDevelopment + ".",
	},
	{
		Key:         KeyLogLevel,
		Example:     DefaultLogLevel,
		Default:     DefaultLogLevel,
		Description: "Overrides default log level.",
	},
	{
		Key:         KeyHTTPPort,
		Example:     strconv.Itoa(DefaultHTTPPort),
		Default:     strconv.Itoa(DefaultHTTPPort),
		Description: "HTTP port for the webhook and health endpoints.",
	},
	{
		Key:         KeyBotMode,
		Example:     ModePolling + " / " + ModeWebhook,
		Default:     DefaultBotMode,
		Description: "Update delivery mode: long polling or HTTP webhook.",
	},
	{
		Key:         KeyPhotoPath,
		Example:     DefaultPhotoPath,
		Default:     DefaultPhotoPath,
		Description: "Path of the static image sent by the /photo command.",
	},
}

// Config mirrors resolved configuration values after loading.
type Config struct {
	TelegramToken string
	AppEnv        string
	LogLevel      string
	HTTPPort      int
	BotMode       string
	PhotoPath     string
}

// Load resolves configuration from the environment (with optional dotenv in development).
func Load() (Config, error) {
	appEnv, err := resolveAppEnv()
	if err != nil {
		return Config{}, err
	}

	if err := loadDotEnv(appEnv); err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:        firstNonEmpty(normalizeEnv(os.Getenv(KeyAppEnv)), appEnv),
		TelegramToken: strings.TrimSpace(os.Getenv(KeyTelegramToken)),
		LogLevel:      firstNonEmpty(strings.TrimSpace(os.Getenv(KeyLogLevel)), DefaultLogLevel),
		HTTPPort:      DefaultHTTPPort,
		BotMode:       firstNonEmpty(normalizeEnv(os.Getenv(KeyBotMode)), DefaultBotMode),
		PhotoPath:     firstNonEmpty(strings.TrimSpace(os.Getenv(KeyPhotoPath)), DefaultPhotoPath),
	}

	if err := validateAppEnv(cfg.AppEnv); err != nil {
		return Config{}, err
	}

	if err := validateBotMode(cfg.BotMode); err != nil {
		return Config{}, err
	}

	if cfg.TelegramToken == "" {
		return Config{}, fmt.Errorf("missing required environment variable(s): %s", KeyTelegramToken)
	}

	httpPortRaw := strings.TrimSpace(os.Getenv(KeyHTTPPort))
	if httpPortRaw != "" {
		port, parseErr := strconv.Atoi(httpPortRaw)
		if parseErr != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", KeyHTTPPort, parseErr)
		}
		if port <= 0 {
			return Config{}, fmt.Errorf("%s must be greater than 0", KeyHTTPPort)
		}
		cfg.HTTPPort = port
	}

	return cfg, nil
}

// IsDevelopment reports if APP_ENV is development.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// IsWebhook reports if updates are delivered via the HTTP webhook adapter.
func (c Config) IsWebhook() bool {
	return c.BotMode == ModeWebhook
}

// FormatRedacted renders the resolved configuration with the bot token masked,
// for the --config-only startup check.
func FormatRedacted(c Config) string {
	token := "(unset)"
	if c.TelegramToken != "" {
		token = "***"
	}

	lines := []string{
		fmt.Sprintf("%s=%s", KeyTelegramToken, token),
		fmt.Sprintf("%s=%s", KeyAppEnv, c.AppEnv),
		fmt.Sprintf("%s=%s", KeyLogLevel, c.LogLevel),
		fmt.Sprintf("%s=%d", KeyHTTPPort, c.HTTPPort),
		fmt.Sprintf("%s=%s", KeyBotMode, c.BotMode),
		fmt.Sprintf("%s=%s", KeyPhotoPath, c.PhotoPath),
	}

	return strings.Join(lines, "\n")
}

func resolveAppEnv() (string, error) {
	if explicit := normalizeEnv(os.Getenv(KeyAppEnv)); explicit != "" {
		return explicit, nil
	}

	dotEnvValues, err := godotenv.Read()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultAppEnv, nil
		}
		return "", fmt.Errorf("read .env: %w", err)
	}

	if envFromFile := normalizeEnv(dotEnvValues[KeyAppEnv]); envFromFile != "" {
		return envFromFile, nil
	}

	return DefaultAppEnv, nil
}

func loadDotEnv(appEnv string) error {
	if appEnv != EnvDevelopment {
		return nil
	}

	if err := godotenv.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}

func validateAppEnv(appEnv string) error {
	if appEnv == EnvDevelopment || appEnv == EnvProduction {
		return nil
	}

	return fmt.Errorf("invalid %s: must be %q or %q", KeyAppEnv, EnvDevelopment, EnvProduction)
}

func validateBotMode(mode string) error {
	if mode == ModePolling || mode == ModeWebhook {
		return nil
	}

	return fmt.Errorf("invalid %s: must be %q or %q", KeyBotMode, ModePolling, ModeWebhook)
}

func normalizeEnv(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func firstNonEmpty(values ...string) string {
	for _, val := range values {
		if strings.TrimSpace(val) != "" {
			return strings.TrimSpace(val)
		}
	}
	return ""
}
