package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServiceName != "pricing" || cfg.HTTP.Port != 8080 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Pricing.RiskFreeRate != 0.01 || cfg.Pricing.ValuationDate != "2023-03-16" {
		t.Fatalf("unexpected pricing defaults: %+v", cfg.Pricing)
	}
	today, err := cfg.Pricing.Today()
	if err != nil || !today.Equal(time.Date(2023, 3, 16, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Today() = %v, %v", today, err)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Fatalf("expected default port, got %d", cfg.HTTP.Port)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.toml")
	content := `
service_name = "pricing-test"

[http]
port = 9000

[pricing]
valuation_date = "2024-01-02"
risk_free_rate = 0.03
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("APP_PRICING_RISK_FREE_RATE", "0.05")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServiceName != "pricing-test" || cfg.HTTP.Port != 9000 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Pricing.ValuationDate != "2024-01-02" {
		t.Fatalf("valuation date = %q", cfg.Pricing.ValuationDate)
	}
	if cfg.Pricing.RiskFreeRate != 0.05 {
		t.Fatalf("env override not applied, rate = %v", cfg.Pricing.RiskFreeRate)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			ServiceName: "pricing",
			HTTP:        HTTPConfig{Port: 8080},
			Pricing:     PricingConfig{ValuationDate: "2023-03-16", MaxUploadBytes: 1024},
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("base config should be valid: %v", err)
	}

	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"missing service name", func(c *Config) { c.ServiceName = "" }},
		{"bad port", func(c *Config) { c.HTTP.Port = 70000 }},
		{"bad valuation date", func(c *Config) { c.Pricing.ValuationDate = "16/03/2023" }},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Topic = "t" }},
		{"rate limit without qps", func(c *Config) { c.RateLimit.Enabled = true }},
		{"zero upload limit", func(c *Config) { c.Pricing.MaxUploadBytes = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mod(c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestTodayEmptyUsesCurrentDate(t *testing.T) {
	today, err := PricingConfig{}.Today()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if today.Hour() != 0 || today.Location() != time.UTC {
		t.Fatalf("expected midnight UTC, got %v", today)
	}
}
