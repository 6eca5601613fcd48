/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gdev-ai/gdev/autofix"
)

func TestPost(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, wanted = POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, wanted = application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding body: %v", err)
		}
	}))
	defer srv.Close()

	s := NewSlack(srv.URL)
	if err := s.Post(context.Background(), "hello"); err != nil {
		t.Fatalf("Post() = %v", err)
	}
	if got["text"] != "hello" {
		t.Errorf("text = %q, wanted = %q", got["text"], "hello")
	}
}

func TestPostNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no_service", http.StatusNotFound)
	}))
	defer srv.Close()

	if err := NewSlack(srv.URL).Post(context.Background(), "hello"); err == nil {
		t.Error("Post() = nil, wanted an error for a non-200 response")
	}
}

func TestNilSlackIsNoop(t *testing.T) {
	var s *Slack
	if err := s.Post(context.Background(), "hello"); err != nil {
		t.Errorf("Post() on nil = %v", err)
	}
	s.TaskFinished(context.Background(), autofix.Task{Status: autofix.StatusCompleted})
}

func TestNewSlackEmptyURL(t *testing.T) {
	if s := NewSlack(""); s != nil {
		t.Errorf("NewSlack(\"\") = %v, wanted nil", s)
	}
}

func TestTaskFinished(t *testing.T) {
	var texts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		texts = append(texts, body["text"])
	}))
	defer srv.Close()
	s := NewSlack(srv.URL)

	s.TaskFinished(context.Background(), autofix.Task{
		Repository: "org/repo", IssueNumber: 42,
		Status: autofix.StatusCompleted,
		PRURL:  "https://github.com/org/repo/pull/7",
	})
	s.TaskFinished(context.Background(), autofix.Task{
		Repository: "org/repo", IssueNumber: 43,
		Status: autofix.StatusFailed,
		Err:    "analysis timed out",
	})
	// Non-terminal tasks are ignored.
	s.TaskFinished(context.Background(), autofix.Task{
		Repository: "org/repo", IssueNumber: 44,
		Status: autofix.StatusInProgress,
	})

	if len(texts) != 2 {
		t.Fatalf("posted %d messages, wanted = 2", len(texts))
	}
	if !strings.Contains(texts[0], "pull/7") || !strings.Contains(texts[0], "#42") {
		t.Errorf("completed message = %q", texts[0])
	}
	if !strings.Contains(texts[1], "analysis timed out") {
		t.Errorf("failed message = %q", texts[1])
	}
}
