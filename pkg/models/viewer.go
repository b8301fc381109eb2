package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Viewer is the authenticated party making a request. The auth service owns
// registration and login; this service only consumes the session claims.
type Viewer struct {
	ID       string `json:"id"`
	Timezone string `json:"timezone"`  // IANA name, e.g. "America/Denver"
	CaseRole string `json:"case_role"` // "parent" or "professional"
}

// Location resolves the viewer's declared timezone, falling back to UTC when
// the name is missing or unknown.
func (v *Viewer) Location() *time.Location {
	if v.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(v.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TokenClaims represents the session token claims minted by the auth service
type TokenClaims struct {
	UserID   string `json:"user_id"`
	Timezone string `json:"timezone"`
	CaseRole string `json:"case_role"`
	Type     string `json:"type"` // "access" or "refresh"
	Exp      int64  `json:"exp"`
	Iat      int64  `json:"iat"`
}

// GetExpirationTime implements jwt.Claims interface
func (c *TokenClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Exp, 0)), nil
}

// GetIssuedAt implements jwt.Claims interface
func (c *TokenClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Iat, 0)), nil
}

// GetNotBefore implements jwt.Claims interface
func (c *TokenClaims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

// GetIssuer implements jwt.Claims interface
func (c *TokenClaims) GetIssuer() (string, error) {
	return "", nil
}

// GetSubject implements jwt.Claims interface
func (c *TokenClaims) GetSubject() (string, error) {
	return c.UserID, nil
}

// GetAudience implements jwt.Claims interface
func (c *TokenClaims) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}
