// Package llm is the model gateway: one blocking call that turns a system
// prompt and a user prompt into generated text.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies gateway failures.
type Kind string

const (
	// KindConfig means the gateway is not usable at all (missing credential,
	// unknown provider). No request was sent.
	KindConfig Kind = "config"
	// KindTransport covers network failures, timeouts and cancellation.
	KindTransport Kind = "transport"
	// KindAPI is a non-success answer from the provider or an unreadable body.
	KindAPI Kind = "api"
	// KindEmpty is a successful call that produced no text.
	KindEmpty Kind = "empty"
)

// Error is the only error type Generate returns.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of a gateway error anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Request is a single-turn generation request.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Gateway sends a request to a chat model and returns the generated text.
// Errors are always *Error.
type Gateway interface {
	Generate(ctx context.Context, req Request) (string, error)
	// Name identifies provider and model in logs and the status endpoint.
	Name() string
}

// Ready returns nil when g can serve requests, or the configuration
// error every call would fail with.
func Ready(g Gateway) error {
	if u, ok := g.(*Unconfigured); ok {
		return u.err()
	}
	return nil
}
