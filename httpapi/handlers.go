/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/gdev-ai/gdev/analysis"
	"github.com/gdev-ai/gdev/autofix"
	"github.com/gdev-ai/gdev/githubapi"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":   "healthy",
		"provider": s.provider,
		"autofix":  s.launcher != nil,
		"tasks":    s.store.CountByStatus(),
	})
}

func (s *Server) handleRepoInfo(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	info, err := s.github.GetRepository(r.Context(), owner, repo)
	if err != nil {
		writeError(w, r, upstream(err))
		return
	}
	writeJSON(w, r, http.StatusOK, info)
}

// listParams reads the shared include_closed / limit query parameters.
func (s *Server) listParams(r *http.Request) (githubapi.ListOptions, error) {
	opts := githubapi.ListOptions{Limit: s.defaultLimit}
	q := r.URL.Query()
	if v := q.Get("include_closed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, badRequestf("invalid include_closed %q", v)
		}
		opts.IncludeClosed = b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, badRequestf("invalid limit %q", v)
		}
		opts.Limit = n
	}
	return opts, nil
}

func (s *Server) handleRawIssues(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	opts, err := s.listParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	issues, err := s.github.ListIssues(r.Context(), owner, repo, opts)
	if err != nil {
		writeError(w, r, upstream(err))
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"repository": owner + "/" + repo,
		"count":      len(issues),
		"issues":     issues,
	})
}

func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	opts, err := s.listParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	issues, err := s.github.ListIssues(r.Context(), owner, repo, opts)
	if err != nil {
		writeError(w, r, upstream(err))
		return
	}

	// Analyze in parallel, bounded, preserving input order.
	results := make([]analysis.Result, len(issues))
	eg, ctx := errgroup.WithContext(r.Context())
	eg.SetLimit(s.concurrency)
	for i, issue := range issues {
		eg.Go(func() error {
			res, err := s.analyzer.AnalyzeIssue(ctx, &analysis.IssueRequest{
				Owner: owner, Repo: repo, Issue: issue,
			})
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		writeError(w, r, upstream(err))
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"repository":   owner + "/" + repo,
		"total_issues": len(results),
		"analyses":     results,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	// Stats always span open and closed issues.
	issues, err := s.github.ListIssues(r.Context(), owner, repo, githubapi.ListOptions{IncludeClosed: true})
	if err != nil {
		writeError(w, r, upstream(err))
		return
	}
	writeJSON(w, r, http.StatusOK, githubapi.ComputeStats(owner+"/"+repo, issues))
}

// pathNumber reads the {number} path segment shared by the issue and pull
// request endpoints.
func pathNumber(r *http.Request) (int, error) {
	raw := r.PathValue("number")
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, badRequestf("invalid number %q", raw)
	}
	return n, nil
}

func (s *Server) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	number, err := pathNumber(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	issue, err := s.github.GetIssue(r.Context(), owner, repo, number)
	if err != nil {
		writeError(w, r, upstream(err))
		return
	}
	result, err := s.analyzer.AnalyzeIssue(r.Context(), &analysis.IssueRequest{
		Owner: owner, Repo: repo, Issue: *issue,
	})
	if err != nil {
		writeError(w, r, upstream(err))
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// autoFixRequest is the optional POST body for launching a fix.
type autoFixRequest struct {
	BranchName    string `json:"branch_name"`
	CommitMessage string `json:"commit_message"`
}

func (s *Server) handleAutoFix(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	number, err := pathNumber(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if s.launcher == nil {
		writeError(w, r, badRequestf("auto-fix is not configured"))
		return
	}

	var body autoFixRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, badRequestf("invalid request body: %v", err))
		return
	}

	// Reject unknown issues synchronously so the caller gets a 404 instead
	// of a doomed task.
	if _, err := s.github.GetIssue(r.Context(), owner, repo, number); err != nil {
		writeError(w, r, upstream(err))
		return
	}

	task := s.launcher.Launch(r.Context(), autofix.LaunchRequest{
		Owner:         owner,
		Repo:          repo,
		IssueNumber:   number,
		BranchName:    body.BranchName,
		CommitMessage: body.CommitMessage,
	})
	writeJSON(w, r, http.StatusAccepted, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		writeJSON(w, r, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	writeJSON(w, r, http.StatusOK, task)
}
