package authenticator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vukatravels/site/config"
)

func TestClaimsDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		claims Claims
		want   string
	}{
		{"nickname first", Claims{"sub": "auth0|1", "nickname": "ana", "name": "Ana P"}, "ana"},
		{"name next", Claims{"sub": "auth0|1", "name": "Ana P", "email": "ana@example.com"}, "Ana P"},
		{"email next", Claims{"sub": "auth0|1", "nickname": "", "email": "ana@example.com"}, "ana@example.com"},
		{"subject last", Claims{"sub": "auth0|1"}, "auth0|1"},
		{"nothing", Claims{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.claims.DisplayName())
		})
	}
}

func TestIssuerURL(t *testing.T) {
	assert.Equal(t, "https://tenant.eu.auth0.com/", issuerURL("tenant.eu.auth0.com"))
	assert.Equal(t, "https://accounts.google.com", issuerURL("https://accounts.google.com"))
}

func TestNewOpenIDProviderRequiresConfig(t *testing.T) {
	_, err := NewOpenIDProvider(context.Background(), config.OIDCConfig{Domain: "example.com", ClientID: "id"})
	assert.EqualError(t, err, "client secret is required")

	_, err = NewOpenIDProvider(context.Background(), config.OIDCConfig{})
	assert.EqualError(t, err, "domain is required")
}
