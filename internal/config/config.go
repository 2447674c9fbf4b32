package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither the flag nor CLINICDESK_CONFIG is set.
const DefaultPath = "configs/clinicdesk.yaml"

// EnvPath names the environment variable holding the config path.
const EnvPath = "CLINICDESK_CONFIG"

type Config struct {
	API struct {
		BaseURL        string  `yaml:"base_url"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		RateLimitRPS   float64 `yaml:"rate_limit_rps"`
		RateLimitBurst int     `yaml:"rate_limit_burst"`
	} `yaml:"api"`

	Cache struct {
		TTLMinutes int `yaml:"ttl_minutes"`
		Redis      struct {
			Address  string `yaml:"address"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Session struct {
		Path string `yaml:"path"`
	} `yaml:"session"`

	Poll struct {
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"poll"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Monitoring struct {
		HealthPort        int  `yaml:"health_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Export struct {
		Dir string `yaml:"dir"`
	} `yaml:"export"`
}

// ResolvePath picks the config path: explicit, then env, then default.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	return DefaultPath
}

// LoadEnv loads .env into the process environment when present.
func LoadEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// Load reads the YAML file at path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	path = ResolvePath(path)

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		// Support ${ENV_VAR} placeholders in YAML config.
		data = []byte(os.ExpandEnv(string(data)))
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = os.Getenv("CLINICDESK_API_URL")
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8080"
	}
	if cfg.Session.Path == "" {
		cfg.Session.Path = defaultSessionPath()
	}
	if cfg.Cache.Redis.Prefix == "" {
		cfg.Cache.Redis.Prefix = "clinicdesk"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "."
	}
	return &cfg, nil
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".clinicdesk", "session.json")
	}
	return filepath.Join(home, ".clinicdesk", "session.json")
}

func (c *Config) APITimeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

func (c *Config) PollInterval() time.Duration {
	if c.Poll.IntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}

// RateLimitBurst defaults to one request when a rate is set.
func (c *Config) RateLimitBurst() int {
	if c.API.RateLimitBurst <= 0 {
		return 1
	}
	return c.API.RateLimitBurst
}

// RedisEnabled reports whether a shared cache store is configured.
func (c *Config) RedisEnabled() bool {
	return c.Cache.Redis.Address != ""
}
