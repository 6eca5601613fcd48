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

// Issue is the slice of a GitHub issue this service cares about. Issues are
// fetched on demand and never persisted.
type Issue struct {
	Number    int       `json:"number" xml:"number"`
	Title     string    `json:"title" xml:"title"`
	Body      string    `json:"body" xml:"body"`
	State     string    `json:"state" xml:"state"`
	Labels    []string  `json:"labels" xml:"labels>label"`
	URL       string    `json:"html_url,omitempty" xml:"url,omitempty"`
	CreatedAt time.Time `json:"created_at" xml:"-"`
	UpdatedAt time.Time `json:"updated_at" xml:"-"`
}

// ListOptions bounds an issue listing.
type ListOptions struct {
	// IncludeClosed widens the listing from open issues to all issues.
	IncludeClosed bool
	// Limit caps how many issues are returned; zero means no cap.
	Limit int
}

// ListIssues fetches issues for a repository, walking every page. Pull
// requests (which the issues API also returns) are filtered out.
func (c *Client) ListIssues(ctx context.Context, owner, repo string, opts ListOptions) ([]Issue, error) {
	state := "open"
	if opts.IncludeClosed {
		state = "all"
	}

	var out []Issue
	lo := &github.IssueListByRepoOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		page, resp, err := c.gh.Issues.ListByRepo(ctx, owner, repo, lo)
		if err != nil {
			return nil, wrapErr(fmt.Sprintf("listing issues for %s/%s", owner, repo), err)
		}
		for _, gi := range page {
			if gi.IsPullRequest() {
				continue
			}
			out = append(out, fromGitHub(gi))
			if opts.Limit > 0 && len(out) >= opts.Limit {
				return out, nil
			}
		}
		if resp.NextPage == 0 {
			break
		}
		lo.ListOptions.Page = resp.NextPage
	}
	return out, nil
}

// GetIssue fetches a single issue by number.
func (c *Client) GetIssue(ctx context.Context, owner, repo string, number int) (*Issue, error) {
	gi, _, err := c.gh.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("fetching issue %s/%s#%d", owner, repo, number), err)
	}
	iss := fromGitHub(gi)
	return &iss, nil
}

func fromGitHub(gi *github.Issue) Issue {
	labels := make([]string, 0, len(gi.Labels))
	for _, l := range gi.Labels {
		labels = append(labels, l.GetName())
	}
	return Issue{
		Number:    gi.GetNumber(),
		Title:     gi.GetTitle(),
		Body:      gi.GetBody(),
		State:     gi.GetState(),
		Labels:    labels,
		URL:       gi.GetHTMLURL(),
		CreatedAt: gi.GetCreatedAt().Time,
		UpdatedAt: gi.GetUpdatedAt().Time,
	}
}
