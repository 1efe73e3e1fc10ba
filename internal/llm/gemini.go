package llm

import (
	"context"
	"errors"
	"net"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient generates text through the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

var _ Gateway = (*GeminiClient)(nil)

// NewGeminiClient creates a Gemini API client. baseURL is only set in tests.
func NewGeminiClient(ctx context.Context, apiKey, model, baseURL string) (*GeminiClient, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, &Error{Kind: KindConfig, Op: "gemini client", Err: err}
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) Name() string {
	return "gemini:" + g.model
}

const opGemini = "gemini generate"

func (g *GeminiClient) Generate(ctx context.Context, r Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: r.System}}},
		Temperature:       genai.Ptr(float32(r.Temperature)),
	}
	if r.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(r.MaxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(r.User), cfg)
	if err != nil {
		return "", &Error{Kind: classify(err), Op: opGemini, Err: err}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &Error{Kind: KindEmpty, Op: opGemini, Err: errors.New("no text in response")}
	}
	return text, nil
}

// classify separates network and context failures from errors the API
// itself reported.
func classify(err error) Kind {
	var netErr net.Error
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return KindTransport
	}
	return KindAPI
}
