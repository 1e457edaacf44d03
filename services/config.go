package services

import (
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Webhook   WebhookConfig
	WebSocket WebSocketConfig
	Seed      SeedConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL          string
	Seed         bool
	LogLevel     string
	MaxIdleConns int
	MaxOpenConns int
}

type JWTConfig struct {
	Secret string
}

type StorageConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	Region     string
	DisableTLS bool
}

type WebhookConfig struct {
	// BaseURL is prefixed onto relative agent webhook paths at seed time.
	BaseURL string
	Timeout time.Duration
}

type WebSocketConfig struct {
	AllowedOrigins string
}

type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

// LoadConfig loads configuration from environment variables and config files
func LoadConfig() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.url", "")
	viper.SetDefault("database.seed", "true")
	viper.SetDefault("database.log_level", "silent")
	viper.SetDefault("database.max_idle_conns", "10")
	viper.SetDefault("database.max_open_conns", "100")
	viper.SetDefault("jwt.secret", "")
	viper.SetDefault("storage.endpoint", "")
	viper.SetDefault("storage.access_key", "")
	viper.SetDefault("storage.secret_key", "")
	viper.SetDefault("storage.bucket", "resumes")
	viper.SetDefault("storage.region", "us-east-1")
	viper.SetDefault("storage.disable_tls", "false")
	viper.SetDefault("webhook.base_url", "")
	viper.SetDefault("webhook.timeout_seconds", "30")
	viper.SetDefault("websocket.allowed_origins", "")
	viper.SetDefault("seed.admin_email", "")
	viper.SetDefault("seed.admin_password", "")

	// Map environment variables to config keys
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("database.seed", "DATABASE_SEED")
	viper.BindEnv("database.log_level", "DATABASE_LOG_LEVEL")
	viper.BindEnv("database.max_idle_conns", "DATABASE_MAX_IDLE_CONNS")
	viper.BindEnv("database.max_open_conns", "DATABASE_MAX_OPEN_CONNS")
	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	viper.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	viper.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	viper.BindEnv("storage.bucket", "STORAGE_BUCKET")
	viper.BindEnv("storage.region", "STORAGE_REGION")
	viper.BindEnv("storage.disable_tls", "STORAGE_DISABLE_TLS")
	viper.BindEnv("webhook.base_url", "WEBHOOK_BASE_URL")
	viper.BindEnv("webhook.timeout_seconds", "WEBHOOK_TIMEOUT_SECONDS")
	viper.BindEnv("websocket.allowed_origins", "WEBSOCKET_ALLOWED_ORIGINS")
	viper.BindEnv("seed.admin_email", "SEED_ADMIN_EMAIL")
	viper.BindEnv("seed.admin_password", "SEED_ADMIN_PASSWORD")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("Config file not found, using defaults and environment variables")
		} else {
			slog.Error("Error reading config file", "error", err)
		}
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
		},
		Database: DatabaseConfig{
			URL:          viper.GetString("database.url"),
			Seed:         viper.GetBool("database.seed"),
			LogLevel:     viper.GetString("database.log_level"),
			MaxIdleConns: viper.GetInt("database.max_idle_conns"),
			MaxOpenConns: viper.GetInt("database.max_open_conns"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("jwt.secret"),
		},
		Storage: StorageConfig{
			Endpoint:   viper.GetString("storage.endpoint"),
			AccessKey:  viper.GetString("storage.access_key"),
			SecretKey:  viper.GetString("storage.secret_key"),
			Bucket:     viper.GetString("storage.bucket"),
			Region:     viper.GetString("storage.region"),
			DisableTLS: viper.GetBool("storage.disable_tls"),
		},
		Webhook: WebhookConfig{
			BaseURL: viper.GetString("webhook.base_url"),
			Timeout: time.Duration(viper.GetInt("webhook.timeout_seconds")) * time.Second,
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins: viper.GetString("websocket.allowed_origins"),
		},
		Seed: SeedConfig{
			AdminEmail:    viper.GetString("seed.admin_email"),
			AdminPassword: viper.GetString("seed.admin_password"),
		},
	}
}
