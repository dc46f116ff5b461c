package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yourname/timesheet/internal"
)

type identityClaims struct {
	Email  string `json:"email"`
	Locale string `json:"locale,omitempty"`
	Offset int    `json:"tz_offset"`
	jwt.RegisteredClaims
}

// JWTProvider verifies HS256-signed tokens issued by the deployment itself.
// It is the provider for deployments without an external identity service.
type JWTProvider struct {
	secret []byte
	logger internal.Logger
}

func NewJWTProvider(secret string, logger internal.Logger) *JWTProvider {
	return &JWTProvider{secret: []byte(secret), logger: logger}
}

func (a *JWTProvider) Identify(_ context.Context, token string) (*internal.User, error) {
	claims := &identityClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		a.logger.Warnf("auth: token rejected: %v", err)
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		a.logger.Warnf("auth: token has no subject")
		return nil, ErrInvalidToken
	}
	return &internal.User{
		ID:     claims.Subject,
		Email:  claims.Email,
		Locale: claims.Locale,
		Offset: claims.Offset,
	}, nil
}

// IssueToken signs a token for the given user. Used by tests and by local
// tooling that needs a valid credential against a JWT deployment.
func IssueToken(secret string, user *internal.User) (string, error) {
	claims := identityClaims{
		Email:  user.Email,
		Locale: user.Locale,
		Offset: user.Offset,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: user.ID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

var _ Provider = (*JWTProvider)(nil)
