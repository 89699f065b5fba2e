// Package jwtx issues and verifies the bearer tokens used by the task
// service. Tokens are HS256-signed JWTs carrying the user id as subject.
// The signing secret is process-wide configuration; rotating it
// invalidates every previously issued token, which is acceptable since no
// revocation list is maintained.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the default lifetime for issued tokens.
const DefaultTokenTTL = time.Hour

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
	ErrIssuer     = errors.New("jwtx: issuer mismatch")
)

// Claims are the access-token claims. The user id travels as the
// registered "sub" claim; username is carried for convenience only and is
// never used for authorization decisions.
type Claims struct {
	jwt.RegisteredClaims

	Username string `json:"username,omitempty"`
}

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// Signer issues and verifies HS256 tokens with a single symmetric secret.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewSigner builds a Signer. A zero ttl falls back to DefaultTokenTTL.
func NewSigner(secret []byte, issuer string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Signer{secret: secret, issuer: issuer, ttl: ttl}
}

// TTL reports the configured token lifetime.
func (s *Signer) TTL() time.Duration { return s.ttl }

// Issue creates a signed token for the given user expiring ttl from now.
func (s *Signer) Issue(userID, username string) (string, error) {
	return s.IssueAt(userID, username, time.Now().UTC())
}

// IssueAt is Issue with an explicit issuance instant, useful for tests
// that need an already-expired token.
func (s *Signer) IssueAt(userID, username string, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token string. Failures are collapsed into
// the package sentinel errors so callers can branch with errors.Is without
// depending on the underlying JWT library.
func (s *Signer) Verify(tokenString string) (Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSig
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	switch {
	case err == nil && token.Valid:
		// fall through to issuer check
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, ErrMalformed
	default:
		return Claims{}, ErrMalformed
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return Claims{}, ErrIssuer
	}

	return claims, nil
}
