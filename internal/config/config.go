package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"readTimeout"`
		WriteTimeout    time.Duration `yaml:"writeTimeout"`
		ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
		AllowedOrigins  []string      `yaml:"allowedOrigins"`

		// TrustProxy honours X-Forwarded-For / X-Real-IP; enable only behind a proxy
		TrustProxy bool `yaml:"trustProxy"`

		// APIKeys maps client name to key; empty disables auth
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"server"`

	Database struct {
		// Driver is one of sqlite, mysql, postgres
		Driver   string `yaml:"driver"`
		Path     string `yaml:"path"` // sqlite file
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Model struct {
		// Backend is one of huggingface, openai
		Backend     string        `yaml:"backend"`
		Name        string        `yaml:"name"`
		Fallback    string        `yaml:"fallback"`
		CacheDir    string        `yaml:"cacheDir"`
		BaseURL     string        `yaml:"baseURL"`
		HubURL      string        `yaml:"hubURL"`
		APIKey      string        `yaml:"apiKey"`
		Concurrent  bool          `yaml:"concurrent"`
		LoadTimeout time.Duration `yaml:"loadTimeout"`
	} `yaml:"model"`

	Analysis struct {
		MaxInputLength int   `yaml:"maxInputLength"`
		HistoryLimit   int   `yaml:"historyLimit"`
		MaxUploadBytes int64 `yaml:"maxUploadBytes"`
	} `yaml:"analysis"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Logging struct {
		// Mode is development (console) or production (JSON)
		Mode  string `yaml:"mode"`
		Level string `yaml:"level"`
	} `yaml:"logging"`

	RateLimit struct {
		Enabled bool    `yaml:"enabled"`
		Rate    float64 `yaml:"rate"` // tokens per second
		Burst   int     `yaml:"burst"`
	} `yaml:"ratelimit"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	var c Config
	c.Server.Port = 8080
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 180 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.AllowedOrigins = []string{"*"}

	c.Database.Driver = "sqlite"
	c.Database.Path = "data/contract_analytics.db"

	c.Model.Backend = "huggingface"
	c.Model.Name = "facebook/bart-large-cnn"
	c.Model.Fallback = "t5-small"
	c.Model.CacheDir = "./model_cache"
	c.Model.LoadTimeout = 60 * time.Second

	c.Analysis.MaxInputLength = 10000
	c.Analysis.HistoryLimit = 50
	c.Analysis.MaxUploadBytes = 5 << 20

	c.Logging.Mode = "development"
	c.Logging.Level = "info"

	c.RateLimit.Enabled = true
	c.RateLimit.Rate = 1
	c.RateLimit.Burst = 5
	return &c
}

// Load baca file config.yaml di atas default. File yang tidak ada berarti default saja.
// MODEL_NAME dan HF_TOKEN / OPENAI_API_KEY dari env menimpa isi file.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("MODEL_NAME")); v != "" {
		c.Model.Name = v
	}
	if c.Model.APIKey == "" {
		switch c.Model.Backend {
		case "openai":
			c.Model.APIKey = os.Getenv("OPENAI_API_KEY")
		case "huggingface":
			c.Model.APIKey = os.Getenv("HF_TOKEN")
		}
	}
}

// Validate rejects values the service cannot start with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Model.Backend {
	case "huggingface", "openai":
	default:
		return fmt.Errorf("unsupported model backend %q", c.Model.Backend)
	}
	switch c.Logging.Mode {
	case "development", "production":
	default:
		return fmt.Errorf("unsupported logging mode %q", c.Logging.Mode)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// ModelCandidates is the load order: primary then fallback
func (c *Config) ModelCandidates() []string {
	return []string{c.Model.Name, c.Model.Fallback}
}
