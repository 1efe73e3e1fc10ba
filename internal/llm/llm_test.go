package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestUnconfigured_FailsWithConfigKind(t *testing.T) {
	g := &Unconfigured{Reason: "GROQ_API_KEY is not set"}

	_, err := g.Generate(context.Background(), Request{User: "hi"})
	wantKind(t, err, KindConfig)

	if Ready(g) == nil {
		t.Error("Ready should report the configuration problem")
	}
}

func TestNew_MissingKeyIsUnconfigured(t *testing.T) {
	for _, provider := range []string{"", "groq", "openai", "gemini"} {
		g, err := New(context.Background(), Config{Provider: provider})
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", provider, err)
		}
		if _, ok := g.(*Unconfigured); !ok {
			t.Errorf("%q: got %T, want *Unconfigured", provider, g)
		}
	}
}

func TestNew_OpenAIDefaults(t *testing.T) {
	g, err := New(context.Background(), Config{Provider: "groq", APIKey: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, ok := g.(*OpenAIClient)
	if !ok {
		t.Fatalf("got %T, want *OpenAIClient", g)
	}
	if c.baseURL != DefaultGroqBaseURL || c.model != DefaultGroqModel {
		t.Errorf("baseURL=%q model=%q", c.baseURL, c.model)
	}
	if Ready(g) != nil {
		t.Error("configured gateway should be ready")
	}
}

func TestNew_OpenAIProviderDefaults(t *testing.T) {
	g, err := New(context.Background(), Config{Provider: "openai", APIKey: "sk-openai"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, ok := g.(*OpenAIClient)
	if !ok {
		t.Fatalf("got %T, want *OpenAIClient", g)
	}
	if c.baseURL != "https://api.openai.com/v1" || c.model != DefaultOpenAIModel {
		t.Errorf("baseURL=%q model=%q, want the OpenAI endpoint", c.baseURL, c.model)
	}
}

func TestNew_UnconfiguredNamesProviderKey(t *testing.T) {
	for provider, key := range map[string]string{
		"groq":   "GROQ_API_KEY",
		"openai": "OPENAI_API_KEY",
		"gemini": "GEMINI_API_KEY",
	} {
		g, err := New(context.Background(), Config{Provider: provider})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", provider, err)
		}
		if err := Ready(g); err == nil || !strings.Contains(err.Error(), key) {
			t.Errorf("%s: Ready = %v, want mention of %s", provider, err, key)
		}
	}
}

func TestNew_LocalEndpointWithoutKey(t *testing.T) {
	g, err := New(context.Background(), Config{Provider: "openai", BaseURL: "http://localhost:11434/v1", Model: "qwen3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := g.(*OpenAIClient); !ok {
		t.Errorf("got %T, want *OpenAIClient", g)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "carrier-pigeon", APIKey: "k"})
	wantKind(t, err, KindConfig)
}

func TestKindOf_Wrapped(t *testing.T) {
	inner := &Error{Kind: KindEmpty, Op: "x"}
	err := fmt.Errorf("generate question: %w", inner)

	kind, ok := KindOf(err)
	if !ok || kind != KindEmpty {
		t.Errorf("KindOf = %q, %v", kind, ok)
	}
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("plain errors have no kind")
	}
}
