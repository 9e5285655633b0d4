// Package oidc signs users in against an OpenID Connect identity provider.
package oidc

import (
	"cmp"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/target/eventhub/internal/domain/auth"
	"github.com/target/eventhub/internal/ports"
)

const wellKnownSuffix = "/.well-known/openid-configuration"

// ProviderConfig holds client registration and discovery settings.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Scope is space separated. Without "openid" the identity comes from the userinfo endpoint only.
	Scope        string
	DiscoveryURL string
	HTTPClient   *http.Client
}

func (c ProviderConfig) validate() error {
	var errs []error
	for _, f := range []struct{ name, value string }{
		{"client ID", c.ClientID},
		{"client secret", c.ClientSecret},
		{"redirect URL", c.RedirectURL},
		{"discovery URL", c.DiscoveryURL},
	} {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", f.name))
		}
	}
	return errors.Join(errs...)
}

// Provider implements ports.AuthProvider with the authorization code flow.
type Provider struct {
	oauth    *oauth2.Config
	client   *http.Client
	op       *gooidc.Provider
	verifier *gooidc.IDTokenVerifier
	openID   bool
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider fetches the discovery document once and builds the OAuth2 client from it.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	ctx := gooidc.ClientContext(context.Background(), client)
	op, err := gooidc.NewProvider(ctx, issuerFromDiscovery(cfg.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	scopes := strings.Fields(cfg.Scope)
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
		client:   client,
		op:       op,
		verifier: op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		openID:   slices.Contains(scopes, gooidc.ScopeOpenID),
	}, nil
}

// issuerFromDiscovery accepts either the issuer URL or its discovery document URL.
func issuerFromDiscovery(raw string) string {
	issuer := strings.TrimSuffix(strings.TrimSpace(raw), "/")
	issuer = strings.TrimSuffix(issuer, wellKnownSuffix)
	return strings.TrimSuffix(issuer, "/")
}

// Begin returns the authorization URL plus the state and nonce the caller must
// keep until the callback. Signup asks the IdP for its registration screen.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, nonce := rand.Text(), rand.Text()
	prompt := "select_account"
	if in.Signup {
		prompt = "create"
	}

	// redirect_uri is always the registered callback; in.RedirectURL stays with the caller.
	authURL := p.oauth.AuthCodeURL(state,
		gooidc.Nonce(nonce),
		oauth2.SetAuthURLParam("prompt", prompt),
	)
	return authURL, state, nonce, nil
}

// Exchange redeems the code, verifies the ID token and its nonce, and fills
// any claims the ID token lacks from the userinfo endpoint.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.client)
	token, err := p.oauth.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	var c claims
	if p.openID {
		if c, err = p.idTokenClaims(ctx, token, in.Nonce); err != nil {
			return domainauth.Identity{}, err
		}
	}
	if c.userID() == "" || c.email() == "" {
		info, infoErr := p.userInfo(ctx, token)
		if infoErr != nil {
			return domainauth.Identity{}, infoErr
		}
		c = c.merge(info)
	}
	if c.userID() == "" {
		return domainauth.Identity{}, errors.New("identity provider returned no subject")
	}

	return domainauth.Identity{
		UserID:    c.userID(),
		FirstName: cmp.Or(c.GivenName, c.FirstName),
		LastName:  cmp.Or(c.FamilyName, c.LastName),
		Email:     c.email(),
		Groups:    c.groups(),
		ExpiresAt: token.Expiry,
	}, nil
}

func (p *Provider) idTokenClaims(ctx context.Context, token *oauth2.Token, nonce string) (claims, error) {
	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return claims{}, errors.New("token response has no id_token")
	}
	idTok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return claims{}, fmt.Errorf("verify id_token: %w", err)
	}
	if idTok.Nonce != nonce {
		return claims{}, errors.New("id_token nonce mismatch")
	}
	var c claims
	if err := idTok.Claims(&c); err != nil {
		return claims{}, fmt.Errorf("decode id_token claims: %w", err)
	}
	return c, nil
}

func (p *Provider) userInfo(ctx context.Context, token *oauth2.Token) (claims, error) {
	info, err := p.op.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return claims{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	var c claims
	if err := info.Claims(&c); err != nil {
		return claims{}, fmt.Errorf("decode userinfo: %w", err)
	}
	return c, nil
}

// claims accepts the standard OIDC names alongside the ADFS ones.
type claims struct {
	Subject           string   `json:"sub"`
	PreferredUsername string   `json:"preferred_username"`
	SamAccountName    string   `json:"samaccountname"`
	Email             string   `json:"email"`
	Mail              string   `json:"mail"`
	GivenName         string   `json:"given_name"`
	FirstName         string   `json:"firstname"`
	FamilyName        string   `json:"family_name"`
	LastName          string   `json:"lastname"`
	Groups            []string `json:"groups"`
	Roles             []string `json:"roles"`
	MemberOf          []string `json:"memberof"`
}

func (c claims) userID() string {
	return cmp.Or(c.SamAccountName, c.PreferredUsername, c.Subject)
}

func (c claims) email() string { return cmp.Or(c.Email, c.Mail) }

func (c claims) groups() []string {
	for _, g := range [][]string{c.Groups, c.Roles, c.MemberOf} {
		if len(g) > 0 {
			return g
		}
	}
	return nil
}

// merge keeps every field already set on c and takes the rest from other.
func (c claims) merge(other claims) claims {
	c.Subject = cmp.Or(c.Subject, other.Subject)
	c.PreferredUsername = cmp.Or(c.PreferredUsername, other.PreferredUsername)
	c.SamAccountName = cmp.Or(c.SamAccountName, other.SamAccountName)
	c.Email = cmp.Or(c.Email, other.Email)
	c.Mail = cmp.Or(c.Mail, other.Mail)
	c.GivenName = cmp.Or(c.GivenName, other.GivenName)
	c.FirstName = cmp.Or(c.FirstName, other.FirstName)
	c.FamilyName = cmp.Or(c.FamilyName, other.FamilyName)
	c.LastName = cmp.Or(c.LastName, other.LastName)
	if len(c.groups()) == 0 {
		c.Groups, c.Roles, c.MemberOf = other.Groups, other.Roles, other.MemberOf
	}
	return c
}
