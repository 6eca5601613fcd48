/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/rs/cors"

	"github.com/gdev-ai/gdev/analysis"
	"github.com/gdev-ai/gdev/autofix"
	"github.com/gdev-ai/gdev/githubapi"
)

// GitHub is the slice of the GitHub client the facade uses.
type GitHub interface {
	ListIssues(ctx context.Context, owner, repo string, opts githubapi.ListOptions) ([]githubapi.Issue, error)
	GetIssue(ctx context.Context, owner, repo string, number int) (*githubapi.Issue, error)
	GetRepository(ctx context.Context, owner, repo string) (*githubapi.Repository, error)
	ListPullRequests(ctx context.Context, owner, repo string, opts githubapi.PullListOptions) ([]githubapi.PullRequest, error)
	CreatePullRequest(ctx context.Context, owner, repo string, pr githubapi.NewPullRequest) (*githubapi.PullRequest, error)
	MergePullRequest(ctx context.Context, owner, repo string, number int, opts githubapi.MergeOptions) (*githubapi.MergeResult, error)
}

// Launcher starts auto-fix tasks. Nil when auto-fix is not configured.
type Launcher interface {
	Launch(ctx context.Context, req autofix.LaunchRequest) autofix.Task
}

// Config wires a Server's collaborators.
type Config struct {
	GitHub   GitHub
	Analyzer analysis.Analyzer
	Launcher Launcher
	Store    *autofix.Store

	// Provider names the model backend for /health.
	Provider string
	// DefaultLimit caps issue listings when the request doesn't say.
	DefaultLimit int
	// Concurrency bounds the per-request analysis fan-out.
	Concurrency int
}

// Server is the REST facade.
type Server struct {
	github   GitHub
	analyzer analysis.Analyzer
	launcher Launcher
	store    *autofix.Store

	provider     string
	defaultLimit int
	concurrency  int
}

func New(cfg Config) *Server {
	defaultLimit := cfg.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	return &Server{
		github:       cfg.GitHub,
		analyzer:     cfg.Analyzer,
		launcher:     cfg.Launcher,
		store:        cfg.Store,
		provider:     cfg.Provider,
		defaultLimit: defaultLimit,
		concurrency:  concurrency,
	}
}

// Handler returns the routed handler with CORS, logging and request metrics
// applied. More specific literal segments (issues/raw, issues/stats) win over
// the {number} wildcard.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", measured("/health", s.handleHealth))
	mux.HandleFunc("GET /repository/{owner}/{repo}/info", measured("/repository/info", s.handleRepoInfo))
	mux.HandleFunc("GET /repository/{owner}/{repo}/issues", measured("/repository/issues", s.handleListIssues))
	mux.HandleFunc("GET /repository/{owner}/{repo}/issues/raw", measured("/repository/issues/raw", s.handleRawIssues))
	mux.HandleFunc("GET /repository/{owner}/{repo}/issues/stats", measured("/repository/issues/stats", s.handleStats))
	mux.HandleFunc("GET /repository/{owner}/{repo}/issues/{number}", measured("/repository/issue", s.handleGetIssue))
	mux.HandleFunc("POST /repository/{owner}/{repo}/issues/{number}/auto-fix", measured("/repository/auto-fix", s.handleAutoFix))
	mux.HandleFunc("GET /repository/{owner}/{repo}/prs", measured("/repository/prs", s.handleListPulls))
	mux.HandleFunc("GET /repository/{owner}/{repo}/prs/raw", measured("/repository/prs/raw", s.handleRawPulls))
	mux.HandleFunc("GET /repository/{owner}/{repo}/prs/stats", measured("/repository/prs/stats", s.handlePullStats))
	mux.HandleFunc("POST /repository/{owner}/{repo}/prs", measured("/repository/prs/create", s.handleCreatePull))
	mux.HandleFunc("PUT /repository/{owner}/{repo}/prs/{number}/merge", measured("/repository/prs/merge", s.handleMergePull))
	mux.HandleFunc("GET /auto-fix/{id}", measured("/auto-fix/status", s.handleGetTask))

	return cors.AllowAll().Handler(withLogging(mux))
}

// withLogging scopes a request logger into the context and logs completions.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := clog.FromContext(r.Context()).With(
			"method", r.Method,
			"path", r.URL.Path,
		)
		ctx := clog.WithLogger(r.Context(), log)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		log.With("status", rec.status, "duration", time.Since(start)).Info("Handled request")
	})
}
