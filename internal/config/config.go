package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultMaxUploadSize bounds the image accepted by the browser surface.
const DefaultMaxUploadSize = 10 << 20

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Backend BackendConfig `yaml:"backend"`
	Redis   RedisConfig   `yaml:"redis"`
	Auth    AuthConfig    `yaml:"auth"`
	CORS    CORSConfig    `yaml:"cors"`
	Upload  UploadConfig  `yaml:"upload"`

	// Models are offered in the model selector. Any value is forwarded as is.
	Models []string `yaml:"models"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// TrustedProxies may set X-Forwarded-For. Empty trusts no proxy.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type BackendConfig struct {
	BaseURL  string `yaml:"base_url"`
	Endpoint string `yaml:"endpoint"`
	// Timeout of zero leaves the request bounded only by the transport.
	Timeout time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	GuardTTL time.Duration `yaml:"guard_ttl"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Audience  string `yaml:"audience"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

type UploadConfig struct {
	MaxSize int64 `yaml:"max_size"`
}

// Default returns the configuration used when no file or env is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 15 * time.Second,
		},
		Backend: BackendConfig{
			BaseURL:  "http://localhost:8000",
			Endpoint: "/api/process",
		},
		Redis:  RedisConfig{GuardTTL: 10 * time.Minute},
		Upload: UploadConfig{MaxSize: DefaultMaxUploadSize},
		Models: []string{"google", "openai"},
	}
}

// Load reads an optional .env file, then the YAML file at path (skipped when
// path is empty or missing), then applies environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv("WIDGET_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	c.Server.Addr = getEnv("WIDGET_ADDR", c.Server.Addr)
	c.Backend.BaseURL = getEnv("BACKEND_URL", c.Backend.BaseURL)
	c.Backend.Endpoint = getEnv("BACKEND_ENDPOINT", c.Backend.Endpoint)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.Audience = getEnv("JWT_AUDIENCE", c.Auth.Audience)

	if v := os.Getenv("BACKEND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BACKEND_TIMEOUT %q: %w", v, err)
		}
		c.Backend.Timeout = d
	}
	if v := os.Getenv("UPLOAD_MAX_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid UPLOAD_MAX_SIZE %q: %w", v, err)
		}
		c.Upload.MaxSize = n
	}
	if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
		c.CORS.AllowOrigins = splitList(v)
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		c.Server.TrustedProxies = splitList(v)
	}
	if v := os.Getenv("WIDGET_MODELS"); v != "" {
		c.Models = splitList(v)
	}
	return nil
}

// Validate rejects configurations the widget cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return errors.New("backend.base_url is required")
	}
	if c.Backend.Timeout < 0 {
		return errors.New("backend.timeout must not be negative")
	}
	if c.Upload.MaxSize <= 0 {
		return errors.New("upload.max_size must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	return nil
}

// normalize replaces zero values left by the file or env with defaults.
func (c *Config) normalize() {
	if c.Upload.MaxSize <= 0 {
		c.Upload.MaxSize = DefaultMaxUploadSize
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
