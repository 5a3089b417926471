// File: internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "lister-cli", cfg.Logger.ServiceName)
	assert.Equal(t, 30*time.Second, cfg.Pricing.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.Pricing.ElementWait)
	assert.Equal(t, "https://www.ebay.com", cfg.Pricing.EbayBaseURL)
	assert.Equal(t, "https://signin.ebay.com/", cfg.Flow.SignInURL)
	assert.Equal(t, "https://www.ebay.com/sl/prelist", cfg.Flow.PrelistURL)
	// Zero resolve wait means the challenge blocks until the operator acts.
	assert.Equal(t, time.Duration(0), cfg.Flow.CaptchaResolveWait)
	assert.False(t, cfg.Browser.Headless)
	assert.False(t, cfg.Listing.APIDrafts)

	require.NoError(t, cfg.Validate())
}

func TestNewConfigFromViperReadsSecretsFromEnv(t *testing.T) {
	t.Setenv("LISTER_EBAY_PASSWORD", "hunter2")
	t.Setenv("LISTER_API_TOKEN", "sekret")

	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)

	require.NoError(t, err)
	assert.Equal(t, "hunter2", cfg.Ebay.Password)
	assert.Equal(t, "sekret", cfg.Listing.Token)
}

func TestNewConfigFromViperOverrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("flow.step_timeout", "5s")
	v.Set("pricing.ebay_base_url", "http://127.0.0.1:9999")

	cfg, err := NewConfigFromViper(v)

	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Flow.StepTimeout)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.Pricing.EbayBaseURL)
}

func TestNewConfigFromViperRejectsInvalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("pricing.request_timeout", "0s")

	_, err := NewConfigFromViper(v)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pricing.request_timeout")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero element wait", func(c *Config) { c.Pricing.ElementWait = 0 }, "pricing.element_wait"},
		{"negative step timeout", func(c *Config) { c.Flow.StepTimeout = -time.Second }, "flow.step_timeout"},
		{"zero probe wait", func(c *Config) { c.Flow.CaptchaProbeWait = 0 }, "flow.captcha_probe_wait"},
		{"missing profile dir", func(c *Config) { c.Browser.UserDataDir = "/does/not/exist" }, "browser.user_data_dir"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateAcceptsExistingProfileDir(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Browser.UserDataDir = t.TempDir()
	require.NoError(t, cfg.Validate())
}

func TestValidateForListing(t *testing.T) {
	imageDir := t.TempDir()
	valid := func() *Config {
		cfg := NewDefaultConfig()
		cfg.Ebay.Email = "seller@example.com"
		cfg.Ebay.Password = "hunter2"
		cfg.Items.ImagePath = imageDir
		return cfg
	}

	require.NoError(t, valid().ValidateForListing())

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing email", func(c *Config) { c.Ebay.Email = "" }, "ebay.email"},
		{"missing password", func(c *Config) { c.Ebay.Password = "" }, "LISTER_EBAY_PASSWORD"},
		{"missing image path", func(c *Config) { c.Items.ImagePath = "" }, "items.image_path"},
		{"nonexistent image path", func(c *Config) { c.Items.ImagePath = filepath.Join(imageDir, "nope") }, "not accessible"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.ValidateForListing()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateForListingRejectsFileAsImagePath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	cfg := NewDefaultConfig()
	cfg.Ebay.Email = "seller@example.com"
	cfg.Ebay.Password = "hunter2"
	cfg.Items.ImagePath = file

	err := cfg.ValidateForListing()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}
