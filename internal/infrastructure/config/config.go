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

	"github.com/remaimber-it/interview-coach/internal/prompts"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration
	LogLevel        string
	AllowedOrigins  []string
	SecureCookies   bool

	Store StoreConfig

	// Idle sessions are removed after SessionTTL; the sweeper runs every CleanupInterval.
	SessionTTL      time.Duration
	CleanupInterval time.Duration

	LLM     LLMConfig
	Prompts prompts.System

	ResumeArchive ArchiveConfig
}

type StoreConfig struct {
	Driver string // "sqlite" or "memory"
	Path   string // sqlite database file
}

// LLMConfig selects the model provider.
type LLMConfig struct {
	Provider string // "groq", "openai" or "gemini"
	BaseURL  string // OpenAI-compatible endpoint; empty means the provider default
	Model    string
	APIKey   string
	Timeout  time.Duration

	// EvaluationWorkers bounds concurrent evaluation calls while a report is built.
	EvaluationWorkers int
}

// ArchiveConfig enables copying uploaded resumes to an S3-compatible bucket.
// Archiving is off when Bucket is empty.
type ArchiveConfig struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// MissingCredential describes why model calls cannot work, or returns ""
// when a credential is present. An OpenAI-compatible BaseURL without a key
// (a local server) counts as configured.
func (c LLMConfig) MissingCredential() string {
	if c.APIKey != "" {
		return ""
	}
	switch c.Provider {
	case "gemini":
		return "GEMINI_API_KEY is not set. Please configure it before using the app."
	case "openai":
		if c.BaseURL != "" {
			return ""
		}
		return "OPENAI_API_KEY is not set. Please configure it before using the app."
	default:
		if c.BaseURL != "" {
			return ""
		}
		return "GROQ_API_KEY is not set. Please configure it before using the app."
	}
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Server struct {
		Address         string   `yaml:"address"`
		ShutdownTimeout string   `yaml:"shutdown_timeout"`
		AllowedOrigins  []string `yaml:"allowed_origins"`
		SecureCookies   bool     `yaml:"secure_cookies"`
	} `yaml:"server"`
	LogLevel string `yaml:"log_level"`
	Store    struct {
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
	} `yaml:"store"`
	Sessions struct {
		TTL             string `yaml:"ttl"`
		CleanupInterval string `yaml:"cleanup_interval"`
	} `yaml:"sessions"`
	LLM struct {
		Provider string `yaml:"provider"`
		BaseURL  string `yaml:"base_url"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
		Timeout  string `yaml:"timeout"`

		EvaluationWorkers int `yaml:"evaluation_workers"`
	} `yaml:"llm"`
	Prompts       prompts.System `yaml:"prompts"`
	ResumeArchive ArchiveConfig  `yaml:"resume_archive"`
}

// Load reads the optional .env file, the optional YAML file at path
// (${VAR} references are expanded) and then environment overrides.
// An empty path skips the YAML file.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	var raw rawConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg := &Config{
		ServerAddress:  getenvDefault("SERVER_ADDRESS", firstNonEmpty(raw.Server.Address, ":8080")),
		LogLevel:       getenvDefault("LOG_LEVEL", firstNonEmpty(raw.LogLevel, "info")),
		AllowedOrigins: raw.Server.AllowedOrigins,
		SecureCookies:  raw.Server.SecureCookies,
		Store: StoreConfig{
			Driver: strings.ToLower(getenvDefault("STORE_DRIVER", firstNonEmpty(raw.Store.Driver, DriverSQLite))),
			Path:   getenvDefault("DB_PATH", firstNonEmpty(raw.Store.Path, "interview.db")),
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(getenvDefault("LLM_PROVIDER", firstNonEmpty(raw.LLM.Provider, "groq"))),
			BaseURL:  getenvDefault("LLM_BASE_URL", raw.LLM.BaseURL),
			Model:    getenvDefault("LLM_MODEL", raw.LLM.Model),
		},
		Prompts:       raw.Prompts,
		ResumeArchive: raw.ResumeArchive,
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("SECURE_COOKIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: SECURE_COOKIES=%q is not a boolean: %w", v, err)
		}
		cfg.SecureCookies = b
	}

	cfg.LLM.EvaluationWorkers = raw.LLM.EvaluationWorkers
	if v := os.Getenv("EVALUATION_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: EVALUATION_WORKERS=%q is not a number: %w", v, err)
		}
		cfg.LLM.EvaluationWorkers = n
	}
	if cfg.LLM.EvaluationWorkers == 0 {
		cfg.LLM.EvaluationWorkers = 1
	}

	cfg.LLM.APIKey = firstNonEmpty(os.Getenv("LLM_API_KEY"), providerKey(cfg.LLM.Provider), raw.LLM.APIKey)

	var err error
	if cfg.ShutdownTimeout, err = duration("SHUTDOWN_TIMEOUT", raw.Server.ShutdownTimeout, 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = duration("SESSION_TTL", raw.Sessions.TTL, 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CleanupInterval, err = duration("SESSION_CLEANUP_INTERVAL", raw.Sessions.CleanupInterval, 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.LLM.Timeout, err = duration("LLM_TIMEOUT", raw.LLM.Timeout, 120*time.Second); err != nil {
		return nil, err
	}

	a := &cfg.ResumeArchive
	a.Bucket = getenvDefault("RESUME_ARCHIVE_BUCKET", a.Bucket)
	a.Prefix = getenvDefault("RESUME_ARCHIVE_PREFIX", firstNonEmpty(a.Prefix, "resumes"))
	a.Region = getenvDefault("RESUME_ARCHIVE_REGION", a.Region)
	a.Endpoint = getenvDefault("RESUME_ARCHIVE_ENDPOINT", a.Endpoint)
	a.AccessKey = getenvDefault("RESUME_ARCHIVE_ACCESS_KEY", a.AccessKey)
	a.SecretKey = getenvDefault("RESUME_ARCHIVE_SECRET_KEY", a.SecretKey)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the sqlite driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}

	switch c.LLM.Provider {
	case "groq", "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}

	if c.LLM.EvaluationWorkers < 1 {
		errs = append(errs, fmt.Errorf("llm.evaluation_workers must be at least 1, got %d", c.LLM.EvaluationWorkers))
	}

	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("sessions.ttl must be positive"))
	}
	if c.CleanupInterval <= 0 {
		errs = append(errs, errors.New("sessions.cleanup_interval must be positive"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func providerKey(provider string) string {
	switch provider {
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	default:
		return os.Getenv("GROQ_API_KEY")
	}
}

// duration parses env var k, else the YAML value, else returns fallback.
func duration(k, yamlValue string, fallback time.Duration) (time.Duration, error) {
	v := getenvDefault(k, yamlValue)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a valid duration: %w", k, v, err)
	}
	return d, nil
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
