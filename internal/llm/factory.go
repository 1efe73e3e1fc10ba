package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// Config selects and parameterises a provider.
type Config struct {
	Provider string
	BaseURL  string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// New builds the gateway described by cfg. A missing credential is not an
// error: it yields an *Unconfigured gateway so the service can still start.
func New(ctx context.Context, cfg Config) (Gateway, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderGroq
	}

	switch provider {
	case ProviderGroq:
		if cfg.APIKey == "" && cfg.BaseURL == "" {
			return &Unconfigured{Reason: "GROQ_API_KEY is not set. Please configure it before using the app."}, nil
		}
		return newOpenAICompatible(cfg, DefaultGroqBaseURL, DefaultGroqModel), nil

	case ProviderOpenAI:
		if cfg.APIKey == "" && cfg.BaseURL == "" {
			return &Unconfigured{Reason: "OPENAI_API_KEY is not set. Please configure it before using the app."}, nil
		}
		return newOpenAICompatible(cfg, DefaultOpenAIBaseURL, DefaultOpenAIModel), nil

	case ProviderGemini:
		if cfg.APIKey == "" {
			return &Unconfigured{Reason: "GEMINI_API_KEY is not set. Please configure it before using the app."}, nil
		}
		model := cfg.Model
		if model == "" {
			model = DefaultGeminiModel
		}
		return NewGeminiClient(ctx, cfg.APIKey, model, cfg.BaseURL)

	default:
		return nil, &Error{Kind: KindConfig, Op: "new gateway", Err: fmt.Errorf("unknown provider %q", cfg.Provider)}
	}
}

// newOpenAICompatible fills the provider defaults for an empty BaseURL or Model.
func newOpenAICompatible(cfg Config, baseURL, model string) *OpenAIClient {
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	if cfg.Model != "" {
		model = cfg.Model
	}
	return NewOpenAIClient(baseURL, cfg.APIKey, model, &http.Client{Timeout: timeout(cfg)})
}

func timeout(cfg Config) time.Duration {
	if cfg.Timeout > 0 {
		return cfg.Timeout
	}
	return 120 * time.Second
}
