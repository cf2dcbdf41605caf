// Package config loads server and engine settings.
//
// Values are resolved in order: built-in defaults, an optional TOML file,
// then environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultLogoPath is used as the branding logo when it exists and no logo
// was configured explicitly.
const DefaultLogoPath = "assets/logo.svg"

// Encoder names accepted by QR_ENCODER.
const (
	EncoderYeqown = "yeqown"
	EncoderZXing  = "zxing"
)

// Config holds every runtime setting.
type Config struct {
	Host     string        `toml:"host"`
	Port     int           `toml:"port"`
	BaseURL  string        `toml:"base_url"`
	QRSize   int           `toml:"qr_size"`
	LogoPath string        `toml:"logo"`
	Encoder  string        `toml:"encoder"`
	CacheDir string        `toml:"cache_dir"`
	CacheTTL time.Duration `toml:"cache_ttl"`
	RedisURL string        `toml:"redis_url"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Host:     "0.0.0.0",
		Port:     8080,
		BaseURL:  "http://localhost:8080",
		QRSize:   512,
		Encoder:  EncoderYeqown,
		CacheTTL: 24 * time.Hour,
	}
}

// Load builds the configuration. path may be empty to skip the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	logoSet := false

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parse config %s: unknown key %q", path, undecoded[0].String())
		}
		logoSet = md.IsDefined("logo")
	}

	set, err := applyEnv(cfg)
	if err != nil {
		return nil, err
	}
	logoSet = logoSet || set

	if !logoSet {
		if _, err := os.Stat(DefaultLogoPath); err == nil {
			cfg.LogoPath = DefaultLogoPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides cfg from the environment. It reports whether the logo
// was set explicitly, including to the empty string.
func applyEnv(cfg *Config) (bool, error) {
	if v, ok := os.LookupEnv("HOST"); ok {
		cfg.Host = v
	}
	if v, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return false, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v, ok := os.LookupEnv("BASE_URL"); ok {
		cfg.BaseURL = v
	}
	if v, ok := os.LookupEnv("QR_SIZE"); ok {
		size, err := strconv.Atoi(v)
		if err != nil {
			return false, fmt.Errorf("invalid QR_SIZE %q: %w", v, err)
		}
		cfg.QRSize = size
	}
	if v, ok := os.LookupEnv("QR_ENCODER"); ok {
		cfg.Encoder = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv("CACHE_DIR"); ok {
		cfg.CacheDir = v
	}
	if v, ok := os.LookupEnv("CACHE_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return false, fmt.Errorf("invalid CACHE_TTL %q: %w", v, err)
		}
		cfg.CacheTTL = ttl
	}
	if v, ok := os.LookupEnv("REDIS_URL"); ok {
		cfg.RedisURL = v
	}
	v, ok := os.LookupEnv("QR_BRANDING_LOGO")
	if ok {
		cfg.LogoPath = v
	}
	return ok, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be in 1-65535, got %d", c.Port))
	}
	if c.QRSize <= 0 {
		errs = append(errs, fmt.Errorf("qr size must be positive, got %d", c.QRSize))
	}
	if c.Encoder != EncoderYeqown && c.Encoder != EncoderZXing {
		errs = append(errs, fmt.Errorf("unknown encoder %q, want %s or %s", c.Encoder, EncoderYeqown, EncoderZXing))
	}
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base url must not be empty"))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("cache ttl must not be negative, got %s", c.CacheTTL))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
