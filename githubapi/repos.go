/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package githubapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v84/github"
)

// Repository is the repository metadata surfaced by the info endpoint and
// consumed by the fix pipeline.
type Repository struct {
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	DefaultBranch string `json:"default_branch"`
	OpenIssues    int    `json:"open_issues_count"`
	Stars         int    `json:"stargazers_count"`
	Language      string `json:"language,omitempty"`
}

// GetRepository fetches repository metadata.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	r, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("fetching repository %s/%s", owner, repo), err)
	}
	return &Repository{
		Owner:         owner,
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		DefaultBranch: r.GetDefaultBranch(),
		OpenIssues:    r.GetOpenIssuesCount(),
		Stars:         r.GetStargazersCount(),
		Language:      r.GetLanguage(),
	}, nil
}

// DefaultBranch resolves the repository's default branch, falling back to
// "main" when the API omits it.
func (c *Client) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	r, err := c.GetRepository(ctx, owner, repo)
	if err != nil {
		return "", err
	}
	if r.DefaultBranch == "" {
		return "main", nil
	}
	return r.DefaultBranch, nil
}

// EnsureFork forks owner/repo into the forkOwner account and returns the fork
// repository name. GitHub serves fork creation asynchronously (202), which
// go-github reports as AcceptedError; both are success here since the fork is
// usually ready by the time the pipeline clones it.
func (c *Client) EnsureFork(ctx context.Context, owner, repo string) (string, error) {
	r, _, err := c.gh.Repositories.CreateFork(ctx, owner, repo, &github.RepositoryCreateForkOptions{DefaultBranchOnly: true})
	if err != nil {
		var accepted *github.AcceptedError
		if !errors.As(err, &accepted) {
			return "", wrapErr(fmt.Sprintf("forking %s/%s", owner, repo), err)
		}
	}
	if r != nil && r.GetName() != "" {
		return r.GetName(), nil
	}
	return repo, nil
}
