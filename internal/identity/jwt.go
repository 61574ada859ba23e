package identity

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSubject    = errors.New("token has no subject")
)

// Claims are the ID token claims we rely on. Firebase-style tokens carry the
// uid both in "sub" and in "user_id".
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
}

// Verifier validates ID tokens with the supplied key function.
type Verifier struct {
	keyfunc jwt.Keyfunc
	opts    []jwt.ParserOption
}

// NewVerifier builds a verifier from an arbitrary key function, e.g. one
// resolving the provider's public keys by "kid".
func NewVerifier(keyfunc jwt.Keyfunc, opts ...jwt.ParserOption) *Verifier {
	return &Verifier{keyfunc: keyfunc, opts: opts}
}

// NewHMACVerifier accepts HS256 tokens signed with secret. Intended for local
// development against an emulator.
func NewHMACVerifier(secret []byte, opts ...jwt.ParserOption) *Verifier {
	opts = append([]jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}, opts...)
	return NewVerifier(func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
}

// Verify parses token and returns the session it describes.
func (v *Verifier) Verify(token string) (Session, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, v.keyfunc, v.opts...)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return Session{}, ErrInvalidToken
	}

	uid := claims.Subject
	if uid == "" {
		uid = claims.UserID
	}
	if uid == "" {
		return Session{}, ErrNoSubject
	}

	return Session{UserID: uid, Email: claims.Email}, nil
}
