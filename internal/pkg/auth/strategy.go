package auth

import (
	"errors"
	"time"
)

// ErrInvalidToken is returned for malformed, tampered or expired tokens.
var ErrInvalidToken = errors.New("invalid auth token")

const defaultTTL = 24 * time.Hour

// Strategy issues and verifies bearer tokens carrying a user id.
type Strategy interface {
	IssueToken(userID int64) (string, error)
	ParseToken(token string) (int64, error)
	Name() string
}

// Options tune token strategies.
type Options struct {
	TTL time.Duration
	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

func (o Options) normalize() Options {
	if o.TTL <= 0 {
		o.TTL = defaultTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
