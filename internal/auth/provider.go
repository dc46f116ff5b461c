// Package auth resolves bearer tokens into authenticated users. Two
// providers exist: a local one that verifies signed JWTs, and a remote one
// that defers to an external identity service.
package auth

import (
	"context"
	"errors"

	"github.com/yourname/timesheet/internal"
)

// ErrInvalidToken is returned for any token the provider cannot verify.
var ErrInvalidToken = errors.New("auth: invalid token")

type Provider interface {
	Identify(ctx context.Context, token string) (*internal.User, error)
}
