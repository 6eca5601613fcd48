/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"

	"github.com/gdev-ai/gdev/githubapi"
)

// Priority is the triage priority tier assigned to an issue.
type Priority string

// Complexity is the estimated effort tier for resolving an issue.
type Complexity string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"

	ComplexityComplex Complexity = "Complex"
	ComplexityMedium  Complexity = "Medium"
	ComplexitySimple  Complexity = "Simple"
)

// Result is the structured analysis of a single issue. It is derived per
// request and never stored.
type Result struct {
	IssueNumber  int        `json:"issue_number"`
	Title        string     `json:"title"`
	Analysis     string     `json:"analysis"`
	SuggestedFix string     `json:"suggested_fix"`
	Priority     Priority   `json:"priority"`
	Complexity   Complexity `json:"complexity"`
}

// FileChange is one file the model wants written, with its complete new
// content.
type FileChange struct {
	Path    string `json:"path" jsonschema:"description=File path relative to the repository root"`
	Content string `json:"content" jsonschema:"description=Complete new content of the file"`
}

// ChangeSet is the model's proposed fix for an issue.
type ChangeSet struct {
	CommitMessage string       `json:"commit_message" jsonschema:"description=Single-line conventional commit message for the fix"`
	Files         []FileChange `json:"files" jsonschema:"description=Files to create or overwrite"`
	Notes         string       `json:"notes,omitempty" jsonschema:"description=Anything a human reviewer should know about the change"`
}

// IssueRequest asks for an analysis of one issue.
type IssueRequest struct {
	Owner string
	Repo  string
	Issue githubapi.Issue
}

// FixRequest asks for a change set resolving one analyzed issue.
type FixRequest struct {
	Owner  string
	Repo   string
	Issue  githubapi.Issue
	Result Result
	Branch string
}

// Analyzer is the LLM collaborator interface consumed by the HTTP facade and
// the auto-fix pipeline.
type Analyzer interface {
	AnalyzeIssue(ctx context.Context, req *IssueRequest) (*Result, error)
	GenerateChangeSet(ctx context.Context, req *FixRequest) (*ChangeSet, error)
}

// completer is the single provider-specific operation: send a system and user
// prompt, get text back.
type completer interface {
	complete(ctx context.Context, system, user string) (string, error)
	name() string
}

// analyzer implements Analyzer on top of any completer.
type analyzer struct {
	completer completer
}

// analysisPayload is what the model is asked to produce for an analysis; the
// surrounding Result fields are filled from the request.
type analysisPayload struct {
	Analysis     string `json:"analysis" jsonschema:"description=Technical analysis of the issue referencing the codebase where possible"`
	SuggestedFix string `json:"suggested_fix" jsonschema:"description=Specific actionable steps to resolve the issue"`
	Priority     string `json:"priority" jsonschema:"enum=High,enum=Medium,enum=Low"`
	Complexity   string `json:"complexity" jsonschema:"enum=Complex,enum=Medium,enum=Simple"`
}

func (a *analyzer) AnalyzeIssue(ctx context.Context, req *IssueRequest) (*Result, error) {
	log := clog.FromContext(ctx)

	system, user, err := buildAnalysisPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("building analysis prompt: %w", err)
	}

	text, err := a.completer.complete(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("completing analysis for %s/%s#%d: %w", req.Owner, req.Repo, req.Issue.Number, err)
	}

	res := &Result{
		IssueNumber: req.Issue.Number,
		Title:       req.Issue.Title,
		Priority:    PriorityMedium,
		Complexity:  ComplexityMedium,
	}
	payload, err := decode[analysisPayload](text)
	if err != nil {
		// The model answered but not in shape. Keep the raw analysis rather
		// than discarding a usable response.
		log.With("error", err).Warn("Model response was not valid JSON, keeping raw text")
		res.Analysis = strings.TrimSpace(text)
		res.SuggestedFix = "Manual analysis required"
		return res, nil
	}

	res.Analysis = payload.Analysis
	res.SuggestedFix = payload.SuggestedFix
	res.Priority = normalizePriority(payload.Priority)
	res.Complexity = normalizeComplexity(payload.Complexity)
	return res, nil
}

func (a *analyzer) GenerateChangeSet(ctx context.Context, req *FixRequest) (*ChangeSet, error) {
	system, user, err := buildFixPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("building fix prompt: %w", err)
	}

	text, err := a.completer.complete(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("completing fix for %s/%s#%d: %w", req.Owner, req.Repo, req.Issue.Number, err)
	}

	cs, err := decode[ChangeSet](text)
	if err != nil {
		return nil, fmt.Errorf("decoding change set: %w", err)
	}
	if err := validateChangeSet(cs); err != nil {
		return nil, err
	}
	if cs.CommitMessage == "" {
		cs.CommitMessage = fmt.Sprintf("Fix issue #%d", req.Issue.Number)
	}
	return cs, nil
}

func validateChangeSet(cs *ChangeSet) error {
	if len(cs.Files) == 0 {
		return fmt.Errorf("model returned no file changes")
	}
	for _, f := range cs.Files {
		switch {
		case f.Path == "":
			return fmt.Errorf("change set contains a file with no path")
		case strings.HasPrefix(f.Path, "/"):
			return fmt.Errorf("change set path %q is absolute", f.Path)
		case strings.Contains(f.Path, ".."):
			return fmt.Errorf("change set path %q escapes the repository", f.Path)
		}
	}
	return nil
}

func normalizePriority(s string) Priority {
	switch l := strings.ToLower(s); {
	case strings.Contains(l, "high"):
		return PriorityHigh
	case strings.Contains(l, "low"):
		return PriorityLow
	default:
		return PriorityMedium
	}
}

func normalizeComplexity(s string) Complexity {
	switch l := strings.ToLower(s); {
	case strings.Contains(l, "simple"):
		return ComplexitySimple
	case strings.Contains(l, "complex"):
		return ComplexityComplex
	default:
		return ComplexityMedium
	}
}
