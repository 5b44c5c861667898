package shared

import (
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// OAuthConfig describes the provider whose authorize URL redirects back to the catcher.
type OAuthConfig struct {
	ClientID string   `toml:"client_id" json:"client_id"`
	AuthURL  string   `toml:"auth_url" json:"auth_url"`
	TokenURL string   `toml:"token_url" json:"token_url"`
	Scopes   []string `toml:"scopes" json:"scopes"`
	PKCE     bool     `toml:"pkce" json:"pkce"`
}

// Authorization is a ready-to-open authorize URL and the values needed to redeem its code later.
//
// Verifier is empty unless PKCE is enabled.
type Authorization struct {
	URL      string
	State    string
	Verifier string
}

// Endpoint returns the configured endpoint, falling back to GitHub's for unset URLs.
func (o OAuthConfig) Endpoint() oauth2.Endpoint {
	endpoint := github.Endpoint
	if o.AuthURL != "" {
		endpoint.AuthURL = o.AuthURL
	}
	if o.TokenURL != "" {
		endpoint.TokenURL = o.TokenURL
	}
	return endpoint
}

// Config builds an [oauth2.Config] whose redirect URL points at the catcher.
func (o OAuthConfig) Config(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:    o.ClientID,
		Endpoint:    o.Endpoint(),
		RedirectURL: redirectURL,
		Scopes:      o.Scopes,
	}
}

// Authorize builds the authorize URL for the given redirect URL.
//
// The code is never exchanged here; the operator copies it from the catcher page.
func (o OAuthConfig) Authorize(redirectURL string) (*Authorization, error) {
	if strings.TrimSpace(o.ClientID) == "" {
		return nil, fmt.Errorf("%w: oauth.client_id must be set", ErrMissingCredentials)
	}

	auth := &Authorization{State: GenerateState()}
	var opts []oauth2.AuthCodeOption
	if o.PKCE {
		auth.Verifier = oauth2.GenerateVerifier()
		opts = append(opts, oauth2.S256ChallengeOption(auth.Verifier))
	}

	auth.URL = o.Config(redirectURL).AuthCodeURL(auth.State, opts...)
	return auth, nil
}
