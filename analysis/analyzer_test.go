/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gdev-ai/gdev/githubapi"
)

// stubCompleter replays a canned response and records the prompts it saw.
type stubCompleter struct {
	response string
	err      error
	system   string
	user     string
}

func (s *stubCompleter) name() string { return "stub" }

func (s *stubCompleter) complete(_ context.Context, system, user string) (string, error) {
	s.system, s.user = system, user
	return s.response, s.err
}

func issueReq() *IssueRequest {
	return &IssueRequest{
		Owner: "octocat",
		Repo:  "Hello-World",
		Issue: githubapi.Issue{
			Number: 1,
			Title:  "Crash on startup",
			Body:   "The app panics when GITHUB_TOKEN is unset.",
			State:  "open",
			Labels: []string{"bug"},
		},
	}
}

func TestAnalyzeIssue(t *testing.T) {
	t.Run("structured response", func(t *testing.T) {
		stub := &stubCompleter{response: "```json\n" + `{
			"analysis": "nil map access in config loader",
			"suggested_fix": "initialize the map before use",
			"priority": "High",
			"complexity": "Simple"
		}` + "\n```"}
		a := &analyzer{completer: stub}

		got, err := a.AnalyzeIssue(context.Background(), issueReq())
		if err != nil {
			t.Fatalf("AnalyzeIssue() error = %v", err)
		}
		if got.IssueNumber != 1 || got.Title != "Crash on startup" {
			t.Errorf("identity fields: got = %d/%q, wanted = 1/%q", got.IssueNumber, got.Title, "Crash on startup")
		}
		if got.Priority != PriorityHigh {
			t.Errorf("Priority: got = %q, wanted = %q", got.Priority, PriorityHigh)
		}
		if got.Complexity != ComplexitySimple {
			t.Errorf("Complexity: got = %q, wanted = %q", got.Complexity, ComplexitySimple)
		}
	})

	t.Run("prompt carries the issue and schema", func(t *testing.T) {
		stub := &stubCompleter{response: `{"analysis":"a","suggested_fix":"b","priority":"Low","complexity":"Medium"}`}
		a := &analyzer{completer: stub}

		if _, err := a.AnalyzeIssue(context.Background(), issueReq()); err != nil {
			t.Fatalf("AnalyzeIssue() error = %v", err)
		}
		for _, want := range []string{"octocat/Hello-World", "Crash on startup", "suggested_fix"} {
			if !strings.Contains(stub.user, want) {
				t.Errorf("user prompt missing %q", want)
			}
		}
	})

	t.Run("unparseable response degrades to raw text", func(t *testing.T) {
		stub := &stubCompleter{response: "I think this is probably a race condition."}
		a := &analyzer{completer: stub}

		got, err := a.AnalyzeIssue(context.Background(), issueReq())
		if err != nil {
			t.Fatalf("AnalyzeIssue() error = %v", err)
		}
		if got.Analysis != "I think this is probably a race condition." {
			t.Errorf("Analysis: got = %q, wanted raw model text", got.Analysis)
		}
		if got.Priority != PriorityMedium || got.Complexity != ComplexityMedium {
			t.Errorf("tiers: got = %q/%q, wanted Medium/Medium defaults", got.Priority, got.Complexity)
		}
	})

	t.Run("completer failure propagates", func(t *testing.T) {
		stub := &stubCompleter{err: errors.New("rate limited")}
		a := &analyzer{completer: stub}

		if _, err := a.AnalyzeIssue(context.Background(), issueReq()); err == nil {
			t.Error("AnalyzeIssue() error = nil, wanted upstream error")
		}
	})
}

func TestNormalizeTiers(t *testing.T) {
	if got := normalizePriority("Priority: HIGH (data loss)"); got != PriorityHigh {
		t.Errorf("normalizePriority: got = %q, wanted = High", got)
	}
	if got := normalizePriority("unclear"); got != PriorityMedium {
		t.Errorf("normalizePriority: got = %q, wanted = Medium", got)
	}
	if got := normalizeComplexity("simple enough"); got != ComplexitySimple {
		t.Errorf("normalizeComplexity: got = %q, wanted = Simple", got)
	}
	if got := normalizeComplexity("Complex"); got != ComplexityComplex {
		t.Errorf("normalizeComplexity: got = %q, wanted = Complex", got)
	}
}

func TestGenerateChangeSet(t *testing.T) {
	fixReq := &FixRequest{
		Owner:  "octocat",
		Repo:   "Hello-World",
		Issue:  issueReq().Issue,
		Result: Result{IssueNumber: 1, Priority: PriorityHigh, Complexity: ComplexitySimple},
		Branch: "fix/issue-1-abcd1234",
	}

	t.Run("valid change set", func(t *testing.T) {
		stub := &stubCompleter{response: `{
			"commit_message": "fix: initialize config map",
			"files": [{"path": "config/loader.go", "content": "package config\n"}]
		}`}
		a := &analyzer{completer: stub}

		cs, err := a.GenerateChangeSet(context.Background(), fixReq)
		if err != nil {
			t.Fatalf("GenerateChangeSet() error = %v", err)
		}
		if len(cs.Files) != 1 || cs.Files[0].Path != "config/loader.go" {
			t.Errorf("Files: got = %+v, wanted one change to config/loader.go", cs.Files)
		}
		if !strings.Contains(stub.user, "fix/issue-1-abcd1234") {
			t.Error("fix prompt does not mention the branch")
		}
	})

	t.Run("empty change set rejected", func(t *testing.T) {
		stub := &stubCompleter{response: `{"commit_message": "noop", "files": []}`}
		a := &analyzer{completer: stub}
		if _, err := a.GenerateChangeSet(context.Background(), fixReq); err == nil {
			t.Error("GenerateChangeSet() error = nil, wanted no-file-changes error")
		}
	})

	t.Run("escaping path rejected", func(t *testing.T) {
		stub := &stubCompleter{response: `{"files": [{"path": "../../etc/passwd", "content": "x"}]}`}
		a := &analyzer{completer: stub}
		if _, err := a.GenerateChangeSet(context.Background(), fixReq); err == nil {
			t.Error("GenerateChangeSet() error = nil, wanted path-escape error")
		}
	})

	t.Run("missing commit message gets a default", func(t *testing.T) {
		stub := &stubCompleter{response: `{"files": [{"path": "a.go", "content": "x"}]}`}
		a := &analyzer{completer: stub}
		cs, err := a.GenerateChangeSet(context.Background(), fixReq)
		if err != nil {
			t.Fatalf("GenerateChangeSet() error = %v", err)
		}
		if want := "Fix issue #1"; cs.CommitMessage != want {
			t.Errorf("CommitMessage: got = %q, wanted = %q", cs.CommitMessage, want)
		}
	})
}
