/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package autofix

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/gdev-ai/gdev/analysis"
	"github.com/gdev-ai/gdev/githubapi"
)

// DefaultTimeout is the advisory bound on one fix pipeline. It is enforced as
// a context deadline around the whole task so hung clones or model calls fail
// the task instead of leaking the goroutine.
const DefaultTimeout = 10 * time.Minute

// GitHub is the slice of the GitHub collaborator the pipeline uses.
type GitHub interface {
	GetIssue(ctx context.Context, owner, repo string, number int) (*githubapi.Issue, error)
	DefaultBranch(ctx context.Context, owner, repo string) (string, error)
	EnsureFork(ctx context.Context, owner, repo string) (string, error)
	CreatePullRequest(ctx context.Context, owner, repo string, pr githubapi.NewPullRequest) (*githubapi.PullRequest, error)
}

// Checkout is one working copy the pipeline applies a change set to.
type Checkout interface {
	Branch(name string) error
	WriteFile(path, content string) error
	CommitAndPush(ctx context.Context, message string) error
	Close() error
}

// Checkouts provides working copies.
type Checkouts interface {
	Checkout(ctx context.Context, owner, repo string) (Checkout, error)
}

// Notifier is told about terminal tasks. Implementations must not block for
// long; the pipeline goroutine calls them inline.
type Notifier interface {
	TaskFinished(ctx context.Context, task Task)
}

// Options tune a Fixer.
type Options struct {
	// ForkOwner is the account fixes are pushed from when it differs from the
	// repository owner. Empty disables forking; fixes push directly.
	ForkOwner string
	// Timeout bounds one pipeline run; zero means DefaultTimeout.
	Timeout time.Duration
	// Notifier, when set, hears about every terminal task.
	Notifier Notifier
}

// Fixer launches and runs auto-fix tasks.
type Fixer struct {
	github    GitHub
	analyzer  analysis.Analyzer
	checkouts Checkouts
	store     *Store

	forkOwner string
	timeout   time.Duration
	notifier  Notifier

	wg sync.WaitGroup
}

// NewFixer wires a Fixer. The store is shared with the HTTP facade, which
// polls it for task status.
func NewFixer(gh GitHub, an analysis.Analyzer, co Checkouts, store *Store, opts Options) *Fixer {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fixer{
		github:    gh,
		analyzer:  an,
		checkouts: co,
		store:     store,
		forkOwner: opts.ForkOwner,
		timeout:   timeout,
		notifier:  opts.Notifier,
	}
}

// LaunchRequest names the issue to fix and optional overrides.
type LaunchRequest struct {
	Owner         string
	Repo          string
	IssueNumber   int
	BranchName    string
	CommitMessage string
}

// Launch creates a pending task, starts its pipeline in the background, and
// returns the task snapshot immediately. The pipeline detaches from the
// request's cancellation but keeps its values (logger), and is bounded by the
// fixer's timeout.
func (f *Fixer) Launch(ctx context.Context, req LaunchRequest) Task {
	branch := req.BranchName
	if branch == "" {
		branch = fmt.Sprintf("fix/issue-%d-%s", req.IssueNumber, randomSuffix())
	}
	task := f.store.Create(req.Owner, req.Repo, req.IssueNumber, branch)

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()
		f.run(runCtx, task.ID, req, branch)
	}()
	return task
}

// Wait blocks until every launched pipeline has finished. Used for clean
// shutdown.
func (f *Fixer) Wait() {
	f.wg.Wait()
}

// run is the pipeline. Steps are strictly sequential; the first failure moves
// the task to failed and stops.
func (f *Fixer) run(ctx context.Context, id string, req LaunchRequest, branch string) {
	log := clog.FromContext(ctx).With(
		"task_id", id,
		"repository", req.Owner+"/"+req.Repo,
		"issue", req.IssueNumber,
	)
	ctx = clog.WithLogger(ctx, log)

	if err := f.store.Start(id); err != nil {
		log.With("error", err).Error("Starting task")
		return
	}
	log.Info("Auto-fix task started")

	issue, err := f.github.GetIssue(ctx, req.Owner, req.Repo, req.IssueNumber)
	if err != nil {
		f.fail(ctx, id, fmt.Sprintf("fetching issue #%d: %v", req.IssueNumber, err))
		return
	}

	result, err := f.analyzer.AnalyzeIssue(ctx, &analysis.IssueRequest{
		Owner: req.Owner, Repo: req.Repo, Issue: *issue,
	})
	if err != nil {
		f.fail(ctx, id, fmt.Sprintf("analyzing issue: %v", err))
		return
	}

	changes, err := f.analyzer.GenerateChangeSet(ctx, &analysis.FixRequest{
		Owner: req.Owner, Repo: req.Repo, Issue: *issue, Result: *result, Branch: branch,
	})
	if err != nil {
		f.fail(ctx, id, fmt.Sprintf("generating fix: %v", err))
		return
	}

	// Push to a fork when we don't own the upstream repository.
	cloneOwner, cloneRepo := req.Owner, req.Repo
	if f.forkOwner != "" && !strings.EqualFold(f.forkOwner, req.Owner) {
		forkRepo, err := f.github.EnsureFork(ctx, req.Owner, req.Repo)
		if err != nil {
			f.fail(ctx, id, fmt.Sprintf("forking repository: %v", err))
			return
		}
		cloneOwner, cloneRepo = f.forkOwner, forkRepo
	}

	base, err := f.github.DefaultBranch(ctx, req.Owner, req.Repo)
	if err != nil {
		f.fail(ctx, id, fmt.Sprintf("resolving default branch: %v", err))
		return
	}

	co, err := f.checkouts.Checkout(ctx, cloneOwner, cloneRepo)
	if err != nil {
		f.fail(ctx, id, fmt.Sprintf("cloning %s/%s: %v", cloneOwner, cloneRepo, err))
		return
	}
	defer co.Close()

	if err := co.Branch(branch); err != nil {
		f.fail(ctx, id, fmt.Sprintf("creating branch: %v", err))
		return
	}
	for _, fc := range changes.Files {
		if err := co.WriteFile(fc.Path, fc.Content); err != nil {
			f.fail(ctx, id, fmt.Sprintf("applying change to %s: %v", fc.Path, err))
			return
		}
	}

	message := req.CommitMessage
	if message == "" {
		message = changes.CommitMessage
	}
	if err := co.CommitAndPush(ctx, message); err != nil {
		f.fail(ctx, id, fmt.Sprintf("pushing branch %q: %v", branch, err))
		return
	}

	head := branch
	if cloneOwner != req.Owner {
		head = cloneOwner + ":" + branch
	}
	pr, err := f.github.CreatePullRequest(ctx, req.Owner, req.Repo, githubapi.NewPullRequest{
		Title: fmt.Sprintf("Fix issue #%d: %s", req.IssueNumber, issue.Title),
		Body:  prBody(req.IssueNumber, result, changes),
		Head:  head,
		Base:  base,
	})
	if err != nil {
		f.fail(ctx, id, fmt.Sprintf("fix pushed to branch %q but pull request creation failed: %v", branch, err))
		return
	}

	if err := f.store.Complete(id, pr.HTMLURL); err != nil {
		log.With("error", err).Error("Completing task")
		return
	}
	log.With("pr_url", pr.HTMLURL).Info("Auto-fix task completed")
	f.notify(ctx, id)
}

func (f *Fixer) fail(ctx context.Context, id, msg string) {
	log := clog.FromContext(ctx)
	if err := f.store.Fail(id, msg); err != nil {
		log.With("error", err).Error("Failing task")
		return
	}
	log.With("reason", msg).Warn("Auto-fix task failed")
	f.notify(ctx, id)
}

func (f *Fixer) notify(ctx context.Context, id string) {
	if f.notifier == nil {
		return
	}
	if task, ok := f.store.Get(id); ok {
		f.notifier.TaskFinished(ctx, task)
	}
}

func prBody(issueNumber int, result *analysis.Result, changes *analysis.ChangeSet) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "This PR addresses issue #%d.\n\n", issueNumber)
	if result.SuggestedFix != "" {
		fmt.Fprintf(&sb, "## Approach\n\n%s\n\n", result.SuggestedFix)
	}
	if changes.Notes != "" {
		fmt.Fprintf(&sb, "## Notes\n\n%s\n\n", changes.Notes)
	}
	sb.WriteString("Automated fix generated by GDev.\n")
	return sb.String()
}
