// Package token issues and checks the ES512 JWTs that carry email
// verification requests.
package token

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"jsonstore/internal/models"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/satori/go.uuid"
)

const signingMethod = "ES512"

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	jwt.RegisteredClaims
	Type     string `json:"typ"`
	Username string `json:"u,omitempty"`
}

type Signer struct {
	key    *ecdsa.PrivateKey
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(key *ecdsa.PrivateKey, issuer string, ttl time.Duration) *Signer {
	return &Signer{
		key:    key,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for iat, exp and validation.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now
	return s
}

// Issue signs a token for subject. username is optional and binds the token
// to an existing account.
func (s *Signer) Issue(subject, purpose, username string) (string, *models.TokenClaims, error) {
	now := s.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewV4().String(),
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Type:     purpose,
		Username: username,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodES512, c).SignedString(s.key)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return signed, c.toModel(), nil
}

// Verify checks the signature, expiry and issuer of raw and that it was
// issued for purpose.
func (s *Signer) Verify(raw, purpose string) (*models.TokenClaims, error) {
	var c claims
	if _, err := s.parse(raw, &c); err != nil {
		return nil, err
	}
	if c.Type != purpose {
		return nil, fmt.Errorf("%w: token type %q", ErrInvalidToken, c.Type)
	}
	if c.Subject == "" || c.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}
	return c.toModel(), nil
}

// Introspect returns the header and body of a valid token.
func (s *Signer) Introspect(raw string) (*models.TokenIntrospection, error) {
	body := jwt.MapClaims{}
	t, err := s.parse(raw, body)
	if err != nil {
		return nil, err
	}
	return &models.TokenIntrospection{Header: t.Header, Body: body}, nil
}

func (s *Signer) parse(raw string, c jwt.Claims) (*jwt.Token, error) {
	t, err := jwt.ParseWithClaims(raw, c, func(t *jwt.Token) (any, error) {
		return &s.key.PublicKey, nil
	},
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !t.Valid {
		return nil, ErrInvalidToken
	}
	return t, nil
}

func (s *Signer) PublicKeyPEM() (string, error) {
	return EncodePublicKey(&s.key.PublicKey)
}

func (c *claims) toModel() *models.TokenClaims {
	out := &models.TokenClaims{
		ID:       c.ID,
		Subject:  c.Subject,
		Purpose:  c.Type,
		Username: c.Username,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}
