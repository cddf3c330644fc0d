// internal/config/config.go
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	custom_errors "github-repo-insights/internal/errors"
)

const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel string `mapstructure:"LOG_LEVEL"`

	GithubToken     string `mapstructure:"GITHUB_TOKEN"`
	GithubAPIBase   string `mapstructure:"GITHUB_API_BASE"`
	GithubUserAgent string `mapstructure:"GITHUB_USER_AGENT"`

	TargetLanguages    []string      `mapstructure:"TARGET_LANGUAGES"`
	TopN               int           `mapstructure:"TOP_N"`
	MaxDetailedCommits int           `mapstructure:"MAX_DETAILED_COMMITS"`
	MaxForks           int           `mapstructure:"MAX_FORKS"`
	FetchConcurrency   int           `mapstructure:"FETCH_CONCURRENCY"`
	CallTimeout        time.Duration `mapstructure:"CALL_TIMEOUT"`

	StoreBackend   string `mapstructure:"STORE_BACKEND"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	DBURL          string `mapstructure:"DB_URL"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`

	CloneDir              string   `mapstructure:"CLONE_DIR"`
	CloneBaseURL          string   `mapstructure:"CLONE_BASE_URL"`
	CloneDepth            int      `mapstructure:"CLONE_DEPTH"`
	CloneMinSourceRatio   float64  `mapstructure:"CLONE_MIN_SOURCE_RATIO"`
	CloneMaxDepth         int      `mapstructure:"CLONE_MAX_DEPTH"`
	CloneSourceExtensions []string `mapstructure:"CLONE_SOURCE_EXTENSIONS"`

	APIAddr string `mapstructure:"API_ADDR"`
}

var defaultSourceExtensions = []string{
	"java", "c", "cpp", "cc", "cxx", "h", "hpp", "rs",
	"cmake", "makefile", "gradle", "maven", "pom", "cargo",
	"toml", "xml", "properties", "yaml", "yml", "json", "sh", "bat",
}

// LoadConfig reads configuration from a .env file in the given directories
// (the working directory when none are given) and from environment
// variables, which take precedence.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GITHUB_TOKEN", "")
	v.SetDefault("GITHUB_API_BASE", "https://api.github.com/")
	v.SetDefault("GITHUB_USER_AGENT", "")
	v.SetDefault("TARGET_LANGUAGES", []string{"Java", "C", "C++", "Rust"})
	v.SetDefault("TOP_N", 10)
	v.SetDefault("MAX_DETAILED_COMMITS", 50)
	v.SetDefault("MAX_FORKS", 20)
	v.SetDefault("FETCH_CONCURRENCY", 5)
	v.SetDefault("CALL_TIMEOUT", "30s")
	v.SetDefault("STORE_BACKEND", BackendRedis)
	v.SetDefault("REDIS_URL", "redis://127.0.0.1:6379/0")
	v.SetDefault("DB_URL", "")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("CLONE_DIR", "./clones")
	v.SetDefault("CLONE_BASE_URL", "https://github.com")
	v.SetDefault("CLONE_DEPTH", 1)
	v.SetDefault("CLONE_MIN_SOURCE_RATIO", 0.1)
	v.SetDefault("CLONE_MAX_DEPTH", 0)
	v.SetDefault("CLONE_SOURCE_EXTENSIONS", defaultSourceExtensions)
	v.SetDefault("API_ADDR", "")

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	_ = v.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.TargetLanguages = cleanList(cfg.TargetLanguages)
	cfg.CloneSourceExtensions = cleanList(cfg.CloneSourceExtensions)
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and the fields required by the selected backend.
func (c *Config) Validate() error {
	switch {
	case len(c.TargetLanguages) == 0:
		return &custom_errors.ErrInvalidConfig{Field: "TARGET_LANGUAGES", Reason: "must contain at least one language"}
	case c.TopN < 1 || c.TopN > 100:
		return &custom_errors.ErrInvalidConfig{Field: "TOP_N", Reason: "must be between 1 and 100"}
	case c.MaxDetailedCommits < 0:
		return &custom_errors.ErrInvalidConfig{Field: "MAX_DETAILED_COMMITS", Reason: "must not be negative"}
	case c.MaxForks < 0:
		return &custom_errors.ErrInvalidConfig{Field: "MAX_FORKS", Reason: "must not be negative"}
	case c.FetchConcurrency < 1:
		return &custom_errors.ErrInvalidConfig{Field: "FETCH_CONCURRENCY", Reason: "must be at least 1"}
	case c.CallTimeout <= 0:
		return &custom_errors.ErrInvalidConfig{Field: "CALL_TIMEOUT", Reason: "must be positive"}
	case c.CloneDepth < 0:
		return &custom_errors.ErrInvalidConfig{Field: "CLONE_DEPTH", Reason: "must not be negative"}
	case c.CloneMinSourceRatio < 0 || c.CloneMinSourceRatio > 1:
		return &custom_errors.ErrInvalidConfig{Field: "CLONE_MIN_SOURCE_RATIO", Reason: "must be between 0 and 1"}
	case len(c.CloneSourceExtensions) == 0:
		return &custom_errors.ErrInvalidConfig{Field: "CLONE_SOURCE_EXTENSIONS", Reason: "must contain at least one extension"}
	}

	switch c.StoreBackend {
	case BackendRedis:
		if c.RedisURL == "" {
			return &custom_errors.ErrInvalidConfig{Field: "REDIS_URL", Reason: "is required for the redis backend"}
		}
	case BackendPostgres:
		if c.DBURL == "" {
			return &custom_errors.ErrInvalidConfig{Field: "DB_URL", Reason: "is required for the postgres backend"}
		}
	default:
		return &custom_errors.ErrInvalidConfig{Field: "STORE_BACKEND", Reason: "must be redis or postgres"}
	}
	return nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
