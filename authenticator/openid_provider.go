package authenticator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/vukatravels/site/config"
)

// OpenIDProvider implements the Provider interface for any OpenID Connect
// issuer, Auth0 tenants included
type OpenIDProvider struct {
	verifier *oidc.IDTokenVerifier
	config   oauth2.Config
}

// NewOpenIDProvider discovers the issuer named by cfg.Domain. A bare domain
// such as "tenant.eu.auth0.com" is treated as https://tenant.eu.auth0.com/.
func NewOpenIDProvider(ctx context.Context, cfg config.OIDCConfig) (Provider, error) {
	if cfg.Domain == "" {
		return nil, errors.New("domain is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.CallbackURL == "" {
		return nil, errors.New("callback URL is required")
	}

	provider, err := oidc.NewProvider(ctx, issuerURL(cfg.Domain))
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC issuer: %w", err)
	}

	conf := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.CallbackURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &OpenIDProvider{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		config:   conf,
	}, nil
}

func issuerURL(domain string) string {
	if strings.HasPrefix(domain, "https://") || strings.HasPrefix(domain, "http://") {
		return domain
	}
	return "https://" + domain + "/"
}

// GetAuthURL returns the authorization URL
func (p *OpenIDProvider) GetAuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for tokens
func (p *OpenIDProvider) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	oauth2Token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	token := &Token{
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken,
		Expiry:       oauth2Token.Expiry.Unix(),
	}
	if idToken, ok := oauth2Token.Extra("id_token").(string); ok {
		token.IDToken = idToken
	}

	return token, nil
}

// GetClaims verifies the ID token and returns its claims
func (p *OpenIDProvider) GetClaims(ctx context.Context, token *Token) (Claims, error) {
	if token.IDToken == "" {
		return nil, errors.New("no id_token in token")
	}

	idToken, err := p.verifier.Verify(ctx, token.IDToken)
	if err != nil {
		return nil, err
	}

	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		return nil, err
	}
	return claims, nil
}
