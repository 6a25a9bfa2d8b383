// internal/adapters/okapi/token.go
package okapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the claims Okapi puts into its access tokens
type TokenClaims struct {
	Tenant string `json:"tenant"`
	UserID string `json:"user_id"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// TokenInfo summarizes a token for startup checks and health reports
type TokenInfo struct {
	Subject   string     `json:"subject"`
	Tenant    string     `json:"tenant"`
	Type      string     `json:"type,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the token carries an expiry that has passed
func (t *TokenInfo) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

// InspectToken decodes the claims of an Okapi token. The signature is not
// verified; only the gateway holds the signing key.
func InspectToken(token string) (*TokenInfo, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse okapi token: %w", err)
	}

	info := &TokenInfo{
		Subject: claims.Subject,
		Tenant:  claims.Tenant,
		Type:    claims.Type,
	}
	if claims.IssuedAt != nil {
		t := claims.IssuedAt.Time
		info.IssuedAt = &t
	}
	if claims.ExpiresAt != nil {
		t := claims.ExpiresAt.Time
		info.ExpiresAt = &t
	}
	return info, nil
}

// CheckToken validates that token belongs to tenant and has not expired
func CheckToken(token, tenant string, now time.Time) (*TokenInfo, error) {
	info, err := InspectToken(token)
	if err != nil {
		return nil, err
	}
	if info.Tenant != "" && info.Tenant != tenant {
		return info, fmt.Errorf("okapi token was issued for tenant %q, configured tenant is %q", info.Tenant, tenant)
	}
	if info.Expired(now) {
		return info, fmt.Errorf("okapi token expired at %s", info.ExpiresAt.Format(time.RFC3339))
	}
	return info, nil
}
