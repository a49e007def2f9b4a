package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://jsonplaceholder.typicode.com" {
		t.Fatalf("api_base_url = %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 30*time.Second || cfg.ResourceTimeout != 30*time.Second {
		t.Fatalf("timeouts = %v / %v", cfg.RequestTimeout, cfg.ResourceTimeout)
	}
	if cfg.DefaultUserID != "1" {
		t.Fatalf("default_user_id = %q", cfg.DefaultUserID)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://localhost:3000/ ")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:3000" {
		t.Fatalf("api_base_url not trimmed: %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("request timeout = %v", cfg.RequestTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
}

func TestLoadRejectsNonPositiveTimeouts(t *testing.T) {
	for _, key := range []string{"REQUEST_TIMEOUT_SECONDS", "RESOURCE_TIMEOUT_SECONDS", "PUBLISH_TIMEOUT_SECONDS"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "0")
			if _, err := load(viper.New()); err == nil {
				t.Fatalf("expected error for %s=0", key)
			}
		})
	}
}
