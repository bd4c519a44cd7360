// Package token issues and verifies self-contained signed tokens carrying
// a user identity, used for password-reset links. Tokens are stateless:
// nothing is stored server-side and validity is re-derived from the token
// bytes, the shared secret and a max age supplied at verification time.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultResetMaxAge bounds password-reset links to 30 minutes.
const DefaultResetMaxAge = 30 * time.Minute

var (
	// ErrInvalid covers tampered tokens, wrong secrets and garbage input.
	ErrInvalid = errors.New("token invalid")
	// ErrExpired means the signature checked out but the token is too old.
	ErrExpired = errors.New("token expired")
)

type claims struct {
	jwt.RegisteredClaims
	UserID uint `json:"user_id"`
}

// Service signs and verifies tokens with a shared secret. Safe for
// concurrent use; the secret is read-only after construction.
type Service struct {
	secret []byte
	now    func() time.Time
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret), now: time.Now}
}

// Issue returns a URL-safe token binding userID to the current time.
// Issuing has no side effects; nothing is marked "pending".
func (s *Service) Issue(userID uint) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
		UserID: userID,
	})
	return t.SignedString(s.secret)
}

// Verify checks the signature and age of tokenString. The expiry window is
// the caller's: the same token can be accepted under one maxAge and
// rejected under a stricter one. Returns ErrInvalid for signature or
// structure failures and ErrExpired once maxAge has elapsed since issuance.
func (s *Service) Verify(tokenString string, maxAge time.Duration) (uint, error) {
	c := &claims{}
	t, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return 0, ErrInvalid
	}
	if c.IssuedAt == nil || c.UserID == 0 {
		return 0, ErrInvalid
	}
	if s.now().Sub(c.IssuedAt.Time) > maxAge {
		return 0, ErrExpired
	}
	return c.UserID, nil
}
