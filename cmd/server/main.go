/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package main runs the GDev issue-analysis and auto-fix service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-envconfig"

	"github.com/gdev-ai/gdev/analysis"
	"github.com/gdev-ai/gdev/autofix"
	"github.com/gdev-ai/gdev/githubapi"
	"github.com/gdev-ai/gdev/httpapi"
	"github.com/gdev-ai/gdev/notify"
	"github.com/gdev-ai/gdev/workspace"
)

type config struct {
	Port        int `env:"PORT,default=8080"`
	MetricsPort int `env:"METRICS_PORT,default=2112"`

	// GitHub authentication: either a personal access token, or a GitHub App
	// installation. The App path is required for auto-fix pushes at scale.
	GitHubToken          string `env:"GITHUB_TOKEN"`
	GitHubAppID          int64  `env:"GITHUB_APP_ID"`
	GitHubInstallationID int64  `env:"GITHUB_INSTALLATION_ID"`
	GitHubAppPrivateKey  string `env:"GITHUB_APP_PRIVATE_KEY"`
	// GitHubUsername is the account fixes are pushed from. When it differs
	// from a target repository's owner, fixes go through a fork of that repo.
	GitHubUsername string `env:"GITHUB_USERNAME"`

	LLMProvider     string `env:"LLM_PROVIDER,default=openai"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	OpenAIModel     string `env:"OPENAI_MODEL"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL"`

	DefaultIssueLimit  int           `env:"DEFAULT_ISSUE_LIMIT,default=50"`
	AnalyzeConcurrency int           `env:"ANALYZE_CONCURRENCY,default=4"`
	AutofixTimeout     time.Duration `env:"AUTOFIX_TIMEOUT,default=10m"`
	TaskRetention      time.Duration `env:"TASK_RETENTION,default=24h"`

	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	gh, err := newGitHubClient(ctx, &cfg)
	if err != nil {
		clog.FatalContextf(ctx, "creating GitHub client: %v", err)
	}

	analyzer, err := newAnalyzer(&cfg)
	if err != nil {
		clog.FatalContextf(ctx, "creating analyzer: %v", err)
	}
	clog.InfoContextf(ctx, "Using %s analyzer", cfg.LLMProvider)

	store := autofix.NewStore()
	slack := notify.NewSlack(cfg.SlackWebhookURL)

	// Auto-fix needs push credentials and a commit identity; without them the
	// facade still serves the read-only analysis endpoints.
	var fixer *autofix.Fixer
	if gh.TokenSource() != nil && cfg.GitHubUsername != "" {
		manager, err := workspace.New(gh.TokenSource(), cfg.GitHubUsername)
		if err != nil {
			clog.FatalContextf(ctx, "creating workspace manager: %v", err)
		}
		fixer = autofix.NewFixer(gh, analyzer, checkouts{manager}, store, autofix.Options{
			ForkOwner: cfg.GitHubUsername,
			Timeout:   cfg.AutofixTimeout,
			Notifier:  slack,
		})
	} else {
		clog.InfoContext(ctx, "GITHUB_TOKEN (or App credentials) and GITHUB_USERNAME not both set; auto-fix disabled")
	}

	var launcher httpapi.Launcher
	if fixer != nil {
		launcher = fixer
	}
	api := httpapi.New(httpapi.Config{
		GitHub:       gh,
		Analyzer:     analyzer,
		Launcher:     launcher,
		Store:        store,
		Provider:     cfg.LLMProvider,
		DefaultLimit: cfg.DefaultIssueLimit,
		Concurrency:  cfg.AnalyzeConcurrency,
	})

	// Terminal tasks are kept for TaskRetention and then swept.
	go func() {
		tick := time.NewTicker(janitorInterval(cfg.TaskRetention))
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				if n := store.Sweep(cfg.TaskRetention); n > 0 {
					clog.InfoContextf(ctx, "Swept %d finished tasks", n)
				}
			}
		}
	}()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", promhttp.Handler())
		clog.InfoContextf(ctx, "Serving metrics on port %d", cfg.MetricsPort)
		//nolint:gosec // metrics listener, not exposed publicly
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.MetricsPort), mux); err != nil {
			clog.ErrorContextf(ctx, "metrics server failed: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			clog.ErrorContextf(ctx, "shutting down: %v", err)
		}
	}()

	clog.InfoContextf(ctx, "Starting GDev server on port %d", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		clog.FatalContextf(ctx, "server failed: %v", err)
	}

	// Let in-flight fix pipelines run to completion before exiting.
	if fixer != nil {
		fixer.Wait()
	}
}

func newGitHubClient(ctx context.Context, cfg *config) (*githubapi.Client, error) {
	switch {
	case cfg.GitHubAppID != 0:
		if cfg.GitHubInstallationID == 0 || cfg.GitHubAppPrivateKey == "" {
			return nil, errors.New("GITHUB_APP_ID requires GITHUB_INSTALLATION_ID and GITHUB_APP_PRIVATE_KEY")
		}
		return githubapi.New(ctx, githubapi.WithAppInstallation(
			cfg.GitHubAppID, cfg.GitHubInstallationID, []byte(cfg.GitHubAppPrivateKey)))
	case cfg.GitHubToken != "":
		return githubapi.New(ctx, githubapi.WithToken(cfg.GitHubToken))
	default:
		// Unauthenticated works for public repositories, read-only.
		return githubapi.New(ctx)
	}
}

func newAnalyzer(cfg *config) (analysis.Analyzer, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required with LLM_PROVIDER=openai")
		}
		var opts []analysis.Option
		if cfg.OpenAIModel != "" {
			opts = append(opts, analysis.WithModel(cfg.OpenAIModel))
		}
		return analysis.NewOpenAI(cfg.OpenAIAPIKey, opts...)
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, errors.New("ANTHROPIC_API_KEY is required with LLM_PROVIDER=anthropic")
		}
		var opts []analysis.Option
		if cfg.AnthropicModel != "" {
			opts = append(opts, analysis.WithModel(cfg.AnthropicModel))
		}
		return analysis.NewAnthropic(cfg.AnthropicAPIKey, opts...)
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q (want openai or anthropic)", cfg.LLMProvider)
	}
}

// janitorInterval derives the sweep cadence from the retention window.
// NewTicker panics on non-positive durations, so a short or zero retention
// still sweeps at a sane floor.
func janitorInterval(retention time.Duration) time.Duration {
	interval := retention / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}

// checkouts adapts the workspace manager to the fixer's interface.
type checkouts struct {
	m *workspace.Manager
}

func (c checkouts) Checkout(ctx context.Context, owner, repo string) (autofix.Checkout, error) {
	return c.m.Checkout(ctx, owner, repo)
}
