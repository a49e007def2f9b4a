package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	APIBaseURL     string `mapstructure:"api_base_url"`
	DefaultUserID  string `mapstructure:"default_user_id"`
	PublishersFile string `mapstructure:"publishers_file"`

	RequestTimeoutSeconds  int64         `mapstructure:"request_timeout_seconds"`
	ResourceTimeoutSeconds int64         `mapstructure:"resource_timeout_seconds"`
	PublishTimeoutSeconds  int64         `mapstructure:"publish_timeout_seconds"`
	RequestTimeout         time.Duration `mapstructure:"-"`
	ResourceTimeout        time.Duration `mapstructure:"-"`
	PublishTimeout         time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "postboard")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_base_url", "https://jsonplaceholder.typicode.com")
	v.SetDefault("default_user_id", "1")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("request_timeout_seconds", 30)
	v.SetDefault("resource_timeout_seconds", 30)
	v.SetDefault("publish_timeout_seconds", 10)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("invalid api_base_url (must not be empty)")
	}
	cfg.DefaultUserID = strings.TrimSpace(cfg.DefaultUserID)

	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	if cfg.ResourceTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid resource_timeout_seconds (must be positive seconds)")
	}
	if cfg.PublishTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid publish_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	cfg.ResourceTimeout = time.Duration(cfg.ResourceTimeoutSeconds) * time.Second
	cfg.PublishTimeout = time.Duration(cfg.PublishTimeoutSeconds) * time.Second

	return &cfg, nil
}
