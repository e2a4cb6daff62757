package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Meta     MetaConfig
	Webhook  WebhookConfig
}

type AppConfig struct {
	Version        string
	Port           string
	Debug          bool
	BasicAuth      []string
	BasePath       string
	TrustedProxies []string
	// RootDomain is the platform domain used to derive tenant subdomains
	// from the request host (e.g. acme.example.com -> "acme").
	RootDomain string
}

type DatabaseConfig struct {
	Driver string // "postgres" or "sqlite"
	DSN    string
}

// MetaConfig carries the provider (Meta Graph API) application settings.
// AppID/AppSecret/ConfigID may also live in the admin settings store; the
// environment values act as the bootstrap fallback.
type MetaConfig struct {
	BaseURL    string
	APIVersion string
	AppID      string
	AppSecret  string
	ConfigID   string
}

type WebhookConfig struct {
	VerifyToken string
	// SignatureSecret signs provider callbacks (X-Hub-Signature-256).
	// Defaults to the Meta app secret when unset.
	SignatureSecret string
}

// Global provides access to the loaded configuration.
var Global *Config

// LoadConfig loads configuration from a .env file (when present) and
// environment variables, environment taking precedence.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Version:        "v1.3.0",
			Port:           getEnv("APP_PORT", "3000"),
			Debug:          getEnvBool("APP_DEBUG", false),
			BasePath:       getEnv("APP_BASE_PATH", ""),
			RootDomain:     getEnv("APP_ROOT_DOMAIN", ""),
			BasicAuth:      splitEnv("APP_BASIC_AUTH"),
			TrustedProxies: splitEnv("APP_TRUSTED_PROXIES"),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			DSN:    getEnv("DB_DSN", "storages/wacoex.db"),
		},
		Meta: MetaConfig{
			BaseURL:    getEnv("META_BASE_URL", "https://graph.facebook.com"),
			APIVersion: getEnv("META_API_VERSION", "v23.0"),
			AppID:      getEnv("META_APP_ID", ""),
			AppSecret:  getEnv("META_APP_SECRET", ""),
			ConfigID:   getEnv("META_CONFIG_ID", ""),
		},
		Webhook: WebhookConfig{
			VerifyToken:     getEnv("WEBHOOK_VERIFY_TOKEN", ""),
			SignatureSecret: getEnv("WEBHOOK_SIGNATURE_SECRET", ""),
		},
	}

	if cfg.Webhook.SignatureSecret == "" {
		cfg.Webhook.SignatureSecret = cfg.Meta.AppSecret
	}

	Global = cfg
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return v == "on" || v == "yes"
	}
	return b
}

func splitEnv(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
