package store

import (
	"context"
	"errors"
	"time"

	"github.com/remaimber-it/interview-coach/internal/domain/interview"
)

var (
	ErrNotFound = errors.New("not found")
)

// Store persists interview sessions between requests.
type Store interface {
	GetSession(ctx context.Context, id string) (*interview.Session, error)
	// SaveSession inserts or fully replaces the session and its records.
	SaveSession(ctx context.Context, s *interview.Session) error
	DeleteSession(ctx context.Context, id string) error
	// CleanupIdle removes sessions last updated before cutoff.
	CleanupIdle(ctx context.Context, cutoff time.Time) (int, error)
	Close() error
}

// cloneSession returns a copy that shares no mutable state with s.
func cloneSession(s *interview.Session) *interview.Session {
	c := *s
	if s.Records != nil {
		c.Records = make([]interview.Record, len(s.Records))
		copy(c.Records, s.Records)
	}
	return &c
}
