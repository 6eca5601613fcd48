/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"golang.org/x/oauth2"
)

const checkoutDirPrefix = "gdev-checkout-"

// remoteURL resolves the clone URL for a repository. Tests override this to
// point at local fixture repositories.
var remoteURL = defaultRemoteURL

func defaultRemoteURL(owner, repo string) string {
	return fmt.Sprintf("https://github.com/%s/%s.git", owner, repo)
}

// Manager creates authenticated checkouts. The token source must allow
// cloning and pushing to the targeted repositories; identity becomes the
// commit author.
type Manager struct {
	tokenSource oauth2.TokenSource
	authorName  string
	authorEmail string
}

// New constructs a Manager.
func New(tokenSource oauth2.TokenSource, identity string) (*Manager, error) {
	if tokenSource == nil {
		return nil, errors.New("token source cannot be nil")
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, errors.New("identity cannot be empty")
	}

	name, email := identity, identity
	if !strings.Contains(identity, "@") {
		email = identity + "@users.noreply.github.com"
	}
	return &Manager{
		tokenSource: tokenSource,
		authorName:  name,
		authorEmail: email,
	}, nil
}

// Checkout clones owner/repo into a fresh temporary directory. Callers must
// Close the returned checkout.
func (m *Manager) Checkout(ctx context.Context, owner, repo string) (*Checkout, error) {
	dir, err := os.MkdirTemp("", checkoutDirPrefix)
	if err != nil {
		return nil, fmt.Errorf("creating checkout dir: %w", err)
	}

	url := remoteURL(owner, repo)
	auth, err := m.authFor(url)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	clog.FromContext(ctx).Infof("Cloning %s/%s into %s", owner, repo, dir)
	r, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:  url,
		Auth: auth,
		Tags: git.NoTags,
	})
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("cloning %s/%s: %w", owner, repo, err)
	}
	wt, err := r.Worktree()
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("opening worktree: %w", err)
	}

	return &Checkout{
		dir:         dir,
		repo:        r,
		wt:          wt,
		auth:        auth,
		authorName:  m.authorName,
		authorEmail: m.authorEmail,
	}, nil
}

// authFor builds token auth for https remotes. Non-http remotes (the local
// paths tests use) take no auth.
func (m *Manager) authFor(url string) (transport.AuthMethod, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, nil
	}
	tok, err := m.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("fetching token for clone: %w", err)
	}
	return &githttp.BasicAuth{Username: "x-access-token", Password: tok.AccessToken}, nil
}

// Checkout is one working copy owned by a single fix task.
type Checkout struct {
	dir  string
	repo *git.Repository
	wt   *git.Worktree

	auth        transport.AuthMethod
	authorName  string
	authorEmail string
	branch      string
}

// Dir returns the checkout's root directory.
func (c *Checkout) Dir() string { return c.dir }

// Branch creates and checks out a new branch off the cloned HEAD.
func (c *Checkout) Branch(name string) error {
	if name == "" {
		return errors.New("branch name cannot be empty")
	}
	if err := c.wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	}); err != nil {
		return fmt.Errorf("creating branch %q: %w", name, err)
	}
	c.branch = name
	return nil
}

// WriteFile writes content to path (relative to the repository root) and
// stages it. Paths that escape the checkout are rejected.
func (c *Checkout) WriteFile(path, content string) error {
	full, err := c.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating parent dirs for %q: %w", path, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}
	if _, err := c.wt.Add(filepath.ToSlash(filepath.Clean(path))); err != nil {
		return fmt.Errorf("staging %q: %w", path, err)
	}
	return nil
}

// resolve joins path under the checkout root and rejects escapes.
func (c *Checkout) resolve(path string) (string, error) {
	full := filepath.Join(c.dir, filepath.Clean(path))
	rel, err := filepath.Rel(c.dir, full)
	if err != nil {
		return "", fmt.Errorf("path %q: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the checkout", path)
	}
	return full, nil
}

// CommitAndPush commits staged changes and pushes the current fix branch to
// origin.
func (c *Checkout) CommitAndPush(ctx context.Context, message string) error {
	if c.branch == "" {
		return errors.New("no fix branch checked out")
	}
	if _, err := c.wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  c.authorName,
			Email: c.authorEmail,
			When:  time.Now(),
		},
	}); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	refspec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", c.branch, c.branch))
	if err := c.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{refspec},
		Auth:       c.auth,
	}); err != nil {
		return fmt.Errorf("pushing %q: %w", c.branch, err)
	}
	return nil
}

// Close removes the checkout directory.
func (c *Checkout) Close() error {
	return os.RemoveAll(c.dir)
}
