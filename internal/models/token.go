package models

import "time"

const TokenTypeEmailVerify = "emailverify"

// VerificationToken is a freshly issued email verification token together with
// the links that carry it.
type VerificationToken struct {
	Token       string    `json:"token"`
	Expiry      time.Time `json:"expiry"`
	RelativeURL string    `json:"relativeUrl"`
	FullURL     string    `json:"fullUrl"`
}

// TokenClaims are the verified claims of a verification token.
type TokenClaims struct {
	ID        string
	Subject   string
	Purpose   string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIntrospection is the decoded header and body of a valid token. The
// signature is never part of it.
type TokenIntrospection struct {
	Header map[string]any `json:"header"`
	Body   map[string]any `json:"body"`
}
