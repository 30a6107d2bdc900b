package config

import (
	"testing"
	"time"

	"signup-e2e/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigFromViper_Defaults(t *testing.T) {
	cfg, err := NewConfigFromViper(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "https://q-www.ninox.com", cfg.MustBaseURL())
	assert.Equal(t, entity.BrowserChrome, cfg.BrowserKind())
	assert.False(t, cfg.Headless)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, 5*time.Minute, cfg.CaseTimeout())
	assert.True(t, cfg.Retry.Enabled)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 2, cfg.EffectiveMaxRetries())
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 1920, cfg.Window.Width)
	assert.Equal(t, []string{"ninox.com"}, cfg.LocaleHosts)
	assert.Equal(t, []string{"email", "invalid", "format"}, cfg.EmailErrorTerms)
	assert.False(t, cfg.StrictSignup)
	assert.Contains(t, cfg.StrengthErrorTerms, "at least")
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		base    string
		want    string
		wantErr bool
	}{
		{"staging", "staging", "", "https://q-www.ninox.com", false},
		{"stage alias", "stage", "", "https://q-www.ninox.com", false},
		{"production", "production", "", "https://ninox.com", false},
		{"prod alias", "PROD", "", "https://ninox.com", false},
		{"explicit wins", "production", "http://localhost:8080/", "http://localhost:8080", false},
		{"unknown", "qa", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Environment:   tt.env,
				BaseURL:       tt.base,
				StagingURL:    "https://q-www.ninox.com",
				ProductionURL: "https://ninox.com/",
			}
			got, err := cfg.ResolveBaseURL()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownEnvironment)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewConfigFromViper_EnvironmentOverrides(t *testing.T) {
	t.Setenv("E2E_ENVIRONMENT", "prod")
	t.Setenv("E2E_BROWSER", "Firefox")
	t.Setenv("E2E_HEADLESS", "true")
	t.Setenv("E2E_TIMEOUT", "25")
	t.Setenv("E2E_MAX_RETRIES", "0")
	t.Setenv("E2E_RETRY_ENABLED", "false")
	t.Setenv("E2E_WORKERS", "4")
	t.Setenv("E2E_WINDOW_WIDTH", "1280")
	t.Setenv("E2E_EMAIL_DOMAIN", "qa.example.org")
	t.Setenv("E2E_PASSWORD_ERROR_TERMS", "Password, Too Short")
	t.Setenv("E2E_CASE_TIMEOUT", "90")

	cfg, err := NewConfigFromViper(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "https://ninox.com", cfg.MustBaseURL())
	assert.Equal(t, entity.BrowserFirefox, cfg.BrowserKind())
	assert.True(t, cfg.Headless)
	assert.Equal(t, 25*time.Second, cfg.Timeout())
	assert.Equal(t, 0, cfg.EffectiveMaxRetries())
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, "qa.example.org", cfg.Email.Domain)
	assert.Equal(t, []string{"password", "too short"}, cfg.PasswordErrorTerms)
	assert.Equal(t, 90*time.Second, cfg.CaseTimeout())
}

func TestEffectiveMaxRetries_DisabledRetry(t *testing.T) {
	cfg := Config{MaxRetries: 5}
	assert.Equal(t, 0, cfg.EffectiveMaxRetries())
	cfg.Retry.Enabled = true
	assert.Equal(t, 5, cfg.EffectiveMaxRetries())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := NewConfigFromViper(NewViper())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"bad browser", func(c *Config) { c.Browser = "safari" }, "unsupported browser"},
		{"zero timeout", func(c *Config) { c.TimeoutSecs = 0 }, "timeout must be positive"},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, "max_retries"},
		{"negative case timeout", func(c *Config) { c.CaseTimeoutSecs = -1 }, "case_timeout"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"bad window", func(c *Config) { c.Window.Height = 0 }, "window size"},
		{"relative base", func(c *Config) { c.BaseURL = "/sign-in" }, "absolute http(s) url"},
		{"ftp base", func(c *Config) { c.BaseURL = "ftp://example.com" }, "absolute http(s) url"},
		{"empty domain", func(c *Config) { c.Email.Domain = " " }, "email.domain"},
		{"unknown env", func(c *Config) { c.Environment = "qa" }, "unknown environment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
