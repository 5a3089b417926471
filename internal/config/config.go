// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration. It is constructed once at
// startup and handed to each component by the caller; nothing reads viper (or
// any other ambient source) after this point.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Ebay    EbayConfig    `mapstructure:"ebay" yaml:"ebay"`
	Items   ItemsConfig   `mapstructure:"items" yaml:"items"`
	Pricing PricingConfig `mapstructure:"pricing" yaml:"pricing"`
	Flow    FlowConfig    `mapstructure:"flow" yaml:"flow"`
	Listing ListingConfig `mapstructure:"listing" yaml:"listing"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for the Chrome instance the automation session
// owns. UserDataDir and ProfileDirectory point the browser at a persistent
// profile so prior authentication (cookies) carries over between runs.
type BrowserConfig struct {
	UserAgent        string        `mapstructure:"user_agent" yaml:"user_agent"`
	UserDataDir      string        `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	ProfileDirectory string        `mapstructure:"profile_directory" yaml:"profile_directory"`
	BinaryLocation   string        `mapstructure:"binary_location" yaml:"binary_location"`
	Headless         bool          `mapstructure:"headless" yaml:"headless"`
	LaunchTimeout    time.Duration `mapstructure:"launch_timeout" yaml:"launch_timeout"`
}

// EbayConfig carries the marketplace credentials. The password is only ever
// read from the environment (LISTER_EBAY_PASSWORD), never from the file.
type EbayConfig struct {
	Email    string `mapstructure:"email" yaml:"email"`
	Password string `mapstructure:"password" yaml:"-"`
}

// ItemsConfig locates the folder of item photos to list.
type ItemsConfig struct {
	ImagePath string `mapstructure:"image_path" yaml:"image_path"`
}

// PricingConfig tunes the price-aggregation fan-out. The base URLs exist so
// tests can point the adapters at a local server.
type PricingConfig struct {
	RequestTimeout   time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	ElementWait      time.Duration `mapstructure:"element_wait" yaml:"element_wait"`
	EbayBaseURL      string        `mapstructure:"ebay_base_url" yaml:"ebay_base_url"`
	AmazonBaseURL    string        `mapstructure:"amazon_base_url" yaml:"amazon_base_url"`
	TCGPlayerBaseURL string        `mapstructure:"tcgplayer_base_url" yaml:"tcgplayer_base_url"`
}

// FlowConfig tunes the listing flow state machine.
type FlowConfig struct {
	SignInURL          string        `mapstructure:"signin_url" yaml:"signin_url"`
	PrelistURL         string        `mapstructure:"prelist_url" yaml:"prelist_url"`
	StepTimeout        time.Duration `mapstructure:"step_timeout" yaml:"step_timeout"`
	CaptchaProbeWait   time.Duration `mapstructure:"captcha_probe_wait" yaml:"captcha_probe_wait"`
	CaptchaResolveWait time.Duration `mapstructure:"captcha_resolve_wait" yaml:"captcha_resolve_wait"`
}

// ListingConfig configures the draft-listing API client.
type ListingConfig struct {
	APIDrafts   bool          `mapstructure:"api_drafts" yaml:"api_drafts"`
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint"`
	Token       string        `mapstructure:"token" yaml:"-"`
	Category    string        `mapstructure:"category" yaml:"category"`
	ConditionID string        `mapstructure:"condition_id" yaml:"condition_id"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "lister-cli")
	v.SetDefault("logger.log_file", "lister.log")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36")
	v.SetDefault("browser.profile_directory", "Default")
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.launch_timeout", "60s")

	// -- Pricing --
	v.SetDefault("pricing.request_timeout", "30s")
	v.SetDefault("pricing.element_wait", "10s")
	v.SetDefault("pricing.ebay_base_url", "https://www.ebay.com")
	v.SetDefault("pricing.amazon_base_url", "https://www.amazon.com")
	v.SetDefault("pricing.tcgplayer_base_url", "https://www.tcgplayer.com")

	// -- Flow --
	v.SetDefault("flow.signin_url", "https://signin.ebay.com/")
	v.SetDefault("flow.prelist_url", "https://www.ebay.com/sl/prelist")
	v.SetDefault("flow.step_timeout", "10s")
	v.SetDefault("flow.captcha_probe_wait", "10s")
	// Zero means "block until the operator resumes or aborts".
	v.SetDefault("flow.captcha_resolve_wait", "0s")

	// -- Listing API --
	v.SetDefault("listing.api_drafts", false)
	v.SetDefault("listing.endpoint", "https://api.ebay.com/ws/api.dll")
	v.SetDefault("listing.category", "Toys & Hobbies")
	v.SetDefault("listing.condition_id", "1000")
	v.SetDefault("listing.timeout", "30s")
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Bind environment variables for sensitive data.
	v.BindEnv("ebay.password", "LISTER_EBAY_PASSWORD")
	v.BindEnv("listing.token", "LISTER_API_TOKEN")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Unmarshal skips keys tagged out of the file; pick the secrets up directly.
	if cfg.Ebay.Password == "" {
		cfg.Ebay.Password = v.GetString("ebay.password")
	}
	if cfg.Listing.Token == "" {
		cfg.Listing.Token = v.GetString("listing.token")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// NewDefaultConfig returns a configuration populated with defaults only.
// Used by tests and as the base for the price command, which needs no
// credentials or browser profile.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Pricing.RequestTimeout <= 0 {
		return fmt.Errorf("pricing.request_timeout must be a positive duration")
	}
	if c.Pricing.ElementWait <= 0 {
		return fmt.Errorf("pricing.element_wait must be a positive duration")
	}
	if c.Flow.StepTimeout <= 0 {
		return fmt.Errorf("flow.step_timeout must be a positive duration")
	}
	if c.Flow.CaptchaProbeWait <= 0 {
		return fmt.Errorf("flow.captcha_probe_wait must be a positive duration")
	}
	if c.Browser.UserDataDir != "" {
		if _, err := os.Stat(c.Browser.UserDataDir); err != nil {
			return fmt.Errorf("browser.user_data_dir %q is not accessible: %w", c.Browser.UserDataDir, err)
		}
	}
	return nil
}

// ValidateForListing checks the fields the listing flow additionally requires.
// The price command deliberately skips these.
func (c *Config) ValidateForListing() error {
	if c.Ebay.Email == "" {
		return fmt.Errorf("ebay.email is required for the listing flow")
	}
	if c.Ebay.Password == "" {
		return fmt.Errorf("ebay password is required; set LISTER_EBAY_PASSWORD")
	}
	if c.Items.ImagePath == "" {
		return fmt.Errorf("items.image_path is required for the listing flow")
	}
	info, err := os.Stat(c.Items.ImagePath)
	if err != nil {
		return fmt.Errorf("items.image_path %q is not accessible: %w", c.Items.ImagePath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("items.image_path %q is not a directory", c.Items.ImagePath)
	}
	return nil
}
