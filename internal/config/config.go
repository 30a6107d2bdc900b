package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"signup-e2e/internal/domain/entity"

	"github.com/spf13/viper"
)

const EnvPrefix = "E2E"

var ErrUnknownEnvironment = errors.New("unknown environment")

type WindowConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type RetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type EmailConfig struct {
	Domain string `mapstructure:"domain"`
	Prefix string `mapstructure:"prefix"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
	Dir    string `mapstructure:"dir"`
}

type LoginConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type Config struct {
	Environment   string   `mapstructure:"environment"`
	BaseURL       string   `mapstructure:"base_url"`
	StagingURL    string   `mapstructure:"staging_url"`
	ProductionURL string   `mapstructure:"production_url"`
	LocaleHosts   []string `mapstructure:"locale_hosts"`
	Browser       string   `mapstructure:"browser"`
	BrowserBin    string   `mapstructure:"browser_bin"`
	// InstallBrowsers fetches the Playwright driver and Firefox before the first launch.
	InstallBrowsers bool `mapstructure:"install_browsers"`
	Headless        bool `mapstructure:"headless"`
	TimeoutSecs     int  `mapstructure:"timeout"`
	// CaseTimeoutSecs bounds one case attempt; 0 disables the bound.
	CaseTimeoutSecs int          `mapstructure:"case_timeout"`
	Window          WindowConfig `mapstructure:"window"`
	Retry           RetryConfig  `mapstructure:"retry"`
	MaxRetries      int          `mapstructure:"max_retries"`
	Workers         int          `mapstructure:"workers"`
	Email           EmailConfig  `mapstructure:"email"`
	Login           LoginConfig  `mapstructure:"login"`
	StrictSignup    bool         `mapstructure:"strict_signup"`

	EmailErrorTerms     []string `mapstructure:"email_error_terms"`
	PasswordErrorTerms  []string `mapstructure:"password_error_terms"`
	DuplicateErrorTerms []string `mapstructure:"duplicate_error_terms"`
	StrengthErrorTerms  []string `mapstructure:"strength_error_terms"`

	SelectorFile string    `mapstructure:"selector_file"`
	ArtifactDir  string    `mapstructure:"artifact_dir"`
	Log          LogConfig `mapstructure:"log"`
}

// SetDefaults registers every key so that environment variables and flags can override it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("environment", "staging")
	v.SetDefault("base_url", "")
	v.SetDefault("staging_url", "https://q-www.ninox.com")
	v.SetDefault("production_url", "https://ninox.com")
	v.SetDefault("locale_hosts", []string{"ninox.com"})

	v.SetDefault("browser", string(entity.BrowserChrome))
	v.SetDefault("browser_bin", "")
	v.SetDefault("install_browsers", false)
	v.SetDefault("headless", false)
	v.SetDefault("timeout", 10)
	v.SetDefault("case_timeout", 300)
	v.SetDefault("window.width", 1920)
	v.SetDefault("window.height", 1080)

	v.SetDefault("retry.enabled", true)
	v.SetDefault("max_retries", 2)
	v.SetDefault("workers", 1)

	v.SetDefault("email.domain", "example.com")
	v.SetDefault("email.prefix", "qa.automation")
	v.SetDefault("login.email", "")
	v.SetDefault("login.password", "")
	v.SetDefault("strict_signup", false)

	v.SetDefault("email_error_terms", []string{"email", "invalid", "format"})
	v.SetDefault("password_error_terms", []string{"password", "weak", "strong", "characters"})
	v.SetDefault("duplicate_error_terms", []string{"already", "exists", "registered"})
	v.SetDefault("strength_error_terms", []string{"weak", "strong", "short", "characters", "at least", "length"})

	v.SetDefault("selector_file", "")
	v.SetDefault("artifact_dir", "artifacts")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.dir", "")
}

// NewViper returns a viper instance with defaults and E2E_* environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.Browser = strings.ToLower(strings.TrimSpace(c.Browser))
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.LocaleHosts = cleanList(c.LocaleHosts)
	c.EmailErrorTerms = lowerList(c.EmailErrorTerms)
	c.PasswordErrorTerms = lowerList(c.PasswordErrorTerms)
	c.DuplicateErrorTerms = lowerList(c.DuplicateErrorTerms)
	c.StrengthErrorTerms = lowerList(c.StrengthErrorTerms)
}

func (c *Config) Validate() error {
	base, err := c.ResolveBaseURL()
	if err != nil {
		return err
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base url %q must be an absolute http(s) url", base)
	}

	switch entity.BrowserKind(c.Browser) {
	case entity.BrowserChrome, entity.BrowserFirefox:
	default:
		return fmt.Errorf("unsupported browser %q (want chrome or firefox)", c.Browser)
	}

	if c.TimeoutSecs <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.TimeoutSecs)
	}
	if c.CaseTimeoutSecs < 0 {
		return fmt.Errorf("case_timeout must not be negative, got %d", c.CaseTimeoutSecs)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if strings.TrimSpace(c.Email.Domain) == "" {
		return errors.New("email.domain is required")
	}
	if c.ArtifactDir == "" {
		return errors.New("artifact_dir is required")
	}
	return nil
}

// ResolveBaseURL applies the explicit base URL or maps the environment name, without a trailing slash.
func (c *Config) ResolveBaseURL() (string, error) {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/"), nil
	}
	switch strings.ToLower(c.Environment) {
	case "staging", "stage":
		return strings.TrimRight(c.StagingURL, "/"), nil
	case "production", "prod":
		return strings.TrimRight(c.ProductionURL, "/"), nil
	}
	return "", fmt.Errorf("%w %q: set base_url or use staging/production", ErrUnknownEnvironment, c.Environment)
}

// MustBaseURL is ResolveBaseURL for an already validated Config.
func (c *Config) MustBaseURL() string {
	base, err := c.ResolveBaseURL()
	if err != nil {
		panic(err)
	}
	return base
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

func (c *Config) CaseTimeout() time.Duration {
	return time.Duration(c.CaseTimeoutSecs) * time.Second
}

func (c *Config) BrowserKind() entity.BrowserKind {
	return entity.BrowserKind(c.Browser)
}

// EffectiveMaxRetries is the retry budget after the retry switch is applied.
func (c *Config) EffectiveMaxRetries() int {
	if !c.Retry.Enabled {
		return 0
	}
	return c.MaxRetries
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func lowerList(in []string) []string {
	out := cleanList(in)
	for i, s := range out {
		out[i] = strings.ToLower(s)
	}
	return out
}
