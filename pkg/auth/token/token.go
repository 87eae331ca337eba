// Package token issues and verifies the signed bearer tokens that carry
// a user's identity between login and subsequent requests. Tokens are
// HMAC-SHA256 JWTs; possession of a valid token is proof of identity,
// with no per-request storage lookup.
package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/messagely/messagely/pkg/auth"
	"github.com/messagely/messagely/pkg/debug"
)

// ErrInvalidToken is returned by Verify for any token that does not
// check out: bad signature, wrong algorithm, malformed, expired, or
// missing the username claim. Callers never learn which.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload. Username is the only application claim.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service issues and verifies tokens with a shared secret.
type Service struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewService creates a token service. maxAge bounds how long after
// issuance a token is accepted; zero means tokens never expire.
func NewService(secret []byte, maxAge time.Duration) *Service {
	return &Service{
		secret: secret,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Issue signs a token for the identity with the current issued-at time.
func (s *Service) Issue(id *auth.Identity) (string, error) {
	claims := Claims{
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string and returns the identity
// it carries. Only HS256 is accepted; a token signed with any other
// algorithm is invalid regardless of its header claims.
func (s *Service) Verify(tokenString string) (*auth.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("%w: missing username claim", ErrInvalidToken)
	}
	if s.maxAge > 0 {
		if claims.IssuedAt == nil {
			return nil, fmt.Errorf("%w: missing issued-at claim", ErrInvalidToken)
		}
		if s.now().Sub(claims.IssuedAt.Time) > s.maxAge {
			return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
		}
	}
	return &auth.Identity{Username: claims.Username}, nil
}

// Authenticator votes on requests carrying a bearer token in the
// Authorization header. Requests without a bearer header get Abstain so
// the chain (and ultimately the guards) decide; a present but invalid
// token gets No.
type Authenticator struct {
	service *Service
}

// NewAuthenticator wraps a Service as a chain authenticator.
func NewAuthenticator(service *Service) *Authenticator {
	return &Authenticator{service: service}
}

// Authenticate implements auth.Authenticator.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.AuthResult{Decision: auth.Abstain}
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		// Some other credential scheme; not ours to judge.
		return auth.AuthResult{Decision: auth.Abstain}
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if tokenString == "" {
		return auth.AuthResult{
			Decision: auth.No,
			Err:      fmt.Errorf("%w: empty bearer token", ErrInvalidToken),
		}
	}

	id, err := a.service.Verify(tokenString)
	if err != nil {
		debug.Log("auth", "token rejected", "error", err)
		return auth.AuthResult{Decision: auth.No, Err: err}
	}
	debug.Log("auth", "token verified", "username", id.Username)
	return auth.AuthResult{Decision: auth.Yes, Identity: id}
}
