/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package githubapi

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v84/github"
)

// PullRequest is the slice of a GitHub pull request this service surfaces.
// State is "open", "closed" or "merged"; GitHub reports merged PRs as closed,
// so the merged flag is folded into the state here.
type PullRequest struct {
	Number     int       `json:"number"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	State      string    `json:"state"`
	Author     string    `json:"author"`
	HeadBranch string    `json:"head_branch"`
	BaseBranch string    `json:"base_branch"`
	HTMLURL    string    `json:"html_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PullListOptions bounds a pull request listing.
type PullListOptions struct {
	// State filters by "open", "closed" or "merged"; empty or "all" lists
	// everything. Callers validate; unknown values list everything.
	State string
	// Limit caps how many pull requests are returned; zero means no cap.
	Limit int
}

// ListPullRequests fetches pull requests for a repository, walking every
// page. "merged" is not a state the GitHub API filters on, so that filter
// lists closed PRs and keeps the merged ones.
func (c *Client) ListPullRequests(ctx context.Context, owner, repo string, opts PullListOptions) ([]PullRequest, error) {
	apiState := "all"
	switch opts.State {
	case "open", "closed":
		apiState = opts.State
	case "merged":
		apiState = "closed"
	}

	var out []PullRequest
	lo := &github.PullRequestListOptions{
		State:       apiState,
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		page, resp, err := c.gh.PullRequests.List(ctx, owner, repo, lo)
		if err != nil {
			return nil, wrapErr(fmt.Sprintf("listing pull requests for %s/%s", owner, repo), err)
		}
		for _, gpr := range page {
			pr := fromGitHubPull(gpr)
			if opts.State == "merged" && pr.State != "merged" {
				continue
			}
			out = append(out, pr)
			if opts.Limit > 0 && len(out) >= opts.Limit {
				return out, nil
			}
		}
		if resp.NextPage == 0 {
			break
		}
		lo.Page = resp.NextPage
	}
	return out, nil
}

func fromGitHubPull(gpr *github.PullRequest) PullRequest {
	state := gpr.GetState()
	if gpr.MergedAt != nil {
		state = "merged"
	}
	return PullRequest{
		Number:     gpr.GetNumber(),
		Title:      gpr.GetTitle(),
		Body:       gpr.GetBody(),
		State:      state,
		Author:     gpr.GetUser().GetLogin(),
		HeadBranch: gpr.GetHead().GetRef(),
		BaseBranch: gpr.GetBase().GetRef(),
		HTMLURL:    gpr.GetHTMLURL(),
		CreatedAt:  gpr.GetCreatedAt().Time,
		UpdatedAt:  gpr.GetUpdatedAt().Time,
	}
}

// PullStats aggregates pull request counts for one repository.
type PullStats struct {
	Repository    string    `json:"repository"`
	TotalPRs      int       `json:"total_prs"`
	OpenPRs       int       `json:"open_prs"`
	ClosedPRs     int       `json:"closed_prs"`
	MergedPRs     int       `json:"merged_prs"`
	LastUpdatedAt time.Time `json:"last_updated,omitzero"`
}

// ComputePullStats tallies stats over pull requests already fetched for repo.
// Merged PRs count as merged, not closed.
func ComputePullStats(repo string, prs []PullRequest) PullStats {
	stats := PullStats{
		Repository: repo,
		TotalPRs:   len(prs),
	}
	for _, pr := range prs {
		switch pr.State {
		case "open":
			stats.OpenPRs++
		case "merged":
			stats.MergedPRs++
		case "closed":
			stats.ClosedPRs++
		}
		if pr.UpdatedAt.After(stats.LastUpdatedAt) {
			stats.LastUpdatedAt = pr.UpdatedAt
		}
	}
	return stats
}

// NewPullRequest describes a PR to open.
type NewPullRequest struct {
	Title string
	Body  string
	// Head is "branch" or "forkowner:branch" for cross-repository PRs.
	Head string
	Base string
}

// CreatePullRequest opens a pull request against owner/repo.
func (c *Client) CreatePullRequest(ctx context.Context, owner, repo string, pr NewPullRequest) (*PullRequest, error) {
	created, _, err := c.gh.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title:               github.Ptr(pr.Title),
		Body:                github.Ptr(pr.Body),
		Head:                github.Ptr(pr.Head),
		Base:                github.Ptr(pr.Base),
		MaintainerCanModify: github.Ptr(true),
	})
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("creating pull request on %s/%s", owner, repo), err)
	}
	out := fromGitHubPull(created)
	return &out, nil
}

// MergeOptions tune how a pull request is merged.
type MergeOptions struct {
	CommitTitle   string
	CommitMessage string
	// Method is "merge", "squash" or "rebase"; empty means "merge".
	Method string
}

// MergeResult reports the outcome of a merge.
type MergeResult struct {
	Merged  bool   `json:"merged"`
	Message string `json:"message"`
	SHA     string `json:"sha"`
	Number  int    `json:"number"`
	Method  string `json:"merge_method"`
}

// MergePullRequest merges an open pull request.
func (c *Client) MergePullRequest(ctx context.Context, owner, repo string, number int, opts MergeOptions) (*MergeResult, error) {
	method := opts.Method
	if method == "" {
		method = "merge"
	}
	res, _, err := c.gh.PullRequests.Merge(ctx, owner, repo, number, opts.CommitMessage, &github.PullRequestOptions{
		CommitTitle: opts.CommitTitle,
		MergeMethod: method,
	})
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("merging pull request %s/%s#%d", owner, repo, number), err)
	}
	return &MergeResult{
		Merged:  res.GetMerged(),
		Message: res.GetMessage(),
		SHA:     res.GetSHA(),
		Number:  number,
		Method:  method,
	}, nil
}
