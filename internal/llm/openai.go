package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// DefaultGroqBaseURL is Groq's OpenAI-compatible endpoint.
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultGroqModel   = "llama-3.1-8b-instant"

	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAIClient calls an OpenAI-compatible /chat/completions endpoint
// (Groq, OpenAI, Ollama, LM Studio, vLLM).
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// Compile-time check: *OpenAIClient satisfies the Gateway interface.
var _ Gateway = (*OpenAIClient)(nil)

// NewOpenAIClient creates a client for baseURL, e.g. "https://api.groq.com/openai/v1".
func NewOpenAIClient(baseURL, apiKey, model string, httpClient *http.Client) *OpenAIClient {
	return &OpenAIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

func (c *OpenAIClient) Name() string {
	return "openai:" + c.model
}

// ============================================================================
// Wire types
// ============================================================================

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ============================================================================
// Gateway
// ============================================================================

const opChat = "chat completion"

// Generate sends one system+user exchange and returns the first choice.
func (c *OpenAIClient) Generate(ctx context.Context, r Request) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: r.System},
			{Role: "user", Content: r.User},
		},
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	})
	if err != nil {
		return "", &Error{Kind: KindAPI, Op: opChat, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindConfig, Op: opChat, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Kind: KindTransport, Op: opChat, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindTransport, Op: opChat, Err: fmt.Errorf("read response: %w", err)}
	}

	var chat chatResponse
	decodeErr := json.Unmarshal(raw, &chat)

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && chat.Error != nil && chat.Error.Message != "" {
			msg = chat.Error.Message
		}
		return "", &Error{Kind: KindAPI, Op: opChat, Err: fmt.Errorf("status %d: %s", resp.StatusCode, msg)}
	}
	if decodeErr != nil {
		return "", &Error{Kind: KindAPI, Op: opChat, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if chat.Error != nil {
		return "", &Error{Kind: KindAPI, Op: opChat, Err: fmt.Errorf("%s: %s", chat.Error.Type, chat.Error.Message)}
	}
	if len(chat.Choices) == 0 {
		return "", &Error{Kind: KindEmpty, Op: opChat, Err: fmt.Errorf("no choices returned")}
	}

	content := chat.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", &Error{Kind: KindEmpty, Op: opChat, Err: fmt.Errorf("empty content")}
	}
	return content, nil
}
