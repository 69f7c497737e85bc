package authenticator

import (
	"context"
)

// Token represents an authentication token
type Token struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Expiry       int64
}

// Claims represents user claims from the ID token
type Claims map[string]interface{}

// Subject returns the sub claim
func (c Claims) Subject() string {
	sub, _ := c["sub"].(string)
	return sub
}

// DisplayName picks nickname, then name, then email, then the subject
func (c Claims) DisplayName() string {
	for _, key := range []string{"nickname", "name", "email"} {
		if v, ok := c[key].(string); ok && v != "" {
			return v
		}
	}
	return c.Subject()
}

// Provider interface abstracts OAuth provider operations
type Provider interface {
	GetAuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*Token, error)
	GetClaims(ctx context.Context, token *Token) (Claims, error)
}
