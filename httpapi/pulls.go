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

	"github.com/gdev-ai/gdev/githubapi"
)

// pullParams reads the shared state / limit query parameters for the pull
// request endpoints. State defaults to "all", matching upstream behavior of
// listing everything.
func (s *Server) pullParams(r *http.Request) (githubapi.PullListOptions, error) {
	opts := githubapi.PullListOptions{State: "all", Limit: s.defaultLimit}
	q := r.URL.Query()
	if v := q.Get("state"); v != "" {
		switch v {
		case "open", "closed", "merged", "all":
			opts.State = v
		default:
			return opts, badRequestf("invalid state %q (want open, closed, merged or all)", v)
		}
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

func (s *Server) handleListPulls(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	opts, err := s.pullParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	prs, err := s.github.ListPullRequests(r.Context(), owner, repo, opts)
	if err != nil {
		writeError(w, r, upstream(err))
		return
	}
	if prs == nil {
		prs = []githubapi.PullRequest{}
	}
	writeJSON(w, r, http.StatusOK, prs)
}

func (s *Server) handleRawPulls(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	opts, err := s.pullParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	prs, err := s.github.ListPullRequests(r.Context(), owner, repo, opts)
	if err != nil {
		writeError(w, r, upstream(err))
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"repository":   owner + "/" + repo,
		"total_prs":    len(prs),
		"state_filter": opts.State,
		"prs":          prs,
	})
}

func (s *Server) handlePullStats(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	// Stats span every state, uncapped.
	prs, err := s.github.ListPullRequests(r.Context(), owner, repo, githubapi.PullListOptions{State: "all"})
	if err != nil {
		writeError(w, r, upstream(err))
		return
	}
	writeJSON(w, r, http.StatusOK, githubapi.ComputePullStats(owner+"/"+repo, prs))
}

// createPullRequest is the POST body for opening a pull request.
type createPullRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Head  string `json:"head"`
	Base  string `json:"base"`
}

func (s *Server) handleCreatePull(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")

	var body createPullRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, badRequestf("invalid request body: %v", err))
		return
	}
	if body.Title == "" || body.Head == "" || body.Base == "" {
		writeError(w, r, badRequestf("title, head and base are required"))
		return
	}

	pr, err := s.github.CreatePullRequest(r.Context(), owner, repo, githubapi.NewPullRequest{
		Title: body.Title,
		Body:  body.Body,
		Head:  body.Head,
		Base:  body.Base,
	})
	if err != nil {
		writeError(w, r, upstream(err))
		return
	}
	writeJSON(w, r, http.StatusCreated, pr)
}

// mergePullRequest is the optional PUT body for merging a pull request.
type mergePullRequest struct {
	CommitTitle   string `json:"commit_title"`
	CommitMessage string `json:"commit_message"`
	MergeMethod   string `json:"merge_method"`
}

func (s *Server) handleMergePull(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	number, err := pathNumber(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body mergePullRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, badRequestf("invalid request body: %v", err))
		return
	}
	switch body.MergeMethod {
	case "", "merge", "squash", "rebase":
	default:
		writeError(w, r, badRequestf("invalid merge_method %q (want merge, squash or rebase)", body.MergeMethod))
		return
	}

	res, err := s.github.MergePullRequest(r.Context(), owner, repo, number, githubapi.MergeOptions{
		CommitTitle:   body.CommitTitle,
		CommitMessage: body.CommitMessage,
		Method:        body.MergeMethod,
	})
	if err != nil {
		writeError(w, r, upstream(err))
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}
