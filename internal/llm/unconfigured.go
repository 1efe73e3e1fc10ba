package llm

import (
	"context"
	"errors"
)

// Unconfigured is the gateway used when no credential is available. The
// rest of the application keeps working; every model call fails with
// KindConfig without touching the network.
type Unconfigured struct {
	Reason string
}

var _ Gateway = (*Unconfigured)(nil)

func (u *Unconfigured) Generate(context.Context, Request) (string, error) {
	return "", u.err()
}

func (u *Unconfigured) Name() string {
	return "unconfigured"
}

func (u *Unconfigured) err() error {
	return &Error{Kind: KindConfig, Op: "generate", Err: errors.New(u.Reason)}
}
