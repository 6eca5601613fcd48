/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v84/github"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub REST API for the handful of operations this service
// performs: reading issues and repository metadata, forking, and opening pull
// requests. It also exposes the oauth2.TokenSource backing the client so git
// operations can authenticate the same way.
type Client struct {
	gh          *github.Client
	tokenSource oauth2.TokenSource
}

type clientConfig struct {
	tokenSource oauth2.TokenSource
	baseURL     string
}

// Option configures a Client.
type Option func(*clientConfig) error

// WithToken authenticates with a static personal access token.
func WithToken(token string) Option {
	return func(cfg *clientConfig) error {
		if token == "" {
			return errors.New("token cannot be empty")
		}
		cfg.tokenSource = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		return nil
	}
}

// WithAppInstallation authenticates as a GitHub App installation. The
// installation transport mints short-lived tokens on demand, which the
// TokenSource surfaces for git pushes.
func WithAppInstallation(appID, installationID int64, privateKeyPEM []byte) Option {
	return func(cfg *clientConfig) error {
		tr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKeyPEM)
		if err != nil {
			return fmt.Errorf("creating installation transport: %w", err)
		}
		cfg.tokenSource = &installationTokenSource{tr: tr}
		return nil
	}
}

// WithBaseURL points the client at a different API endpoint. Used by tests to
// target an httptest server.
func WithBaseURL(base string) Option {
	return func(cfg *clientConfig) error {
		cfg.baseURL = base
		return nil
	}
}

// New constructs a Client. With no auth option the client is unauthenticated,
// which still works for public repositories at reduced rate limits.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	var cfg clientConfig
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	var hc *http.Client
	if cfg.tokenSource != nil {
		hc = oauth2.NewClient(ctx, cfg.tokenSource)
	}
	gh := github.NewClient(hc)
	if cfg.baseURL != "" {
		base := cfg.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing base URL: %w", err)
		}
		gh.BaseURL = u
	}
	return &Client{gh: gh, tokenSource: cfg.tokenSource}, nil
}

// TokenSource returns the token source backing this client, or nil when the
// client is unauthenticated.
func (c *Client) TokenSource() oauth2.TokenSource {
	return c.tokenSource
}

// installationTokenSource adapts a ghinstallation transport to
// oauth2.TokenSource so go-git can reuse App credentials.
type installationTokenSource struct {
	tr *ghinstallation.Transport
}

func (s *installationTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.tr.Token(context.Background())
	if err != nil {
		return nil, fmt.Errorf("minting installation token: %w", err)
	}
	return &oauth2.Token{AccessToken: tok}, nil
}

// ErrNotFound reports that the requested GitHub entity does not exist (or is
// not visible to the configured credentials).
var ErrNotFound = errors.New("not found")

// wrapErr translates go-github errors into this package's taxonomy: 404s
// become ErrNotFound, everything else stays an upstream failure.
func wrapErr(op string, err error) error {
	var ger *github.ErrorResponse
	if errors.As(err, &ger) && ger.Response != nil && ger.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
