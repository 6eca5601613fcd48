/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package analysis_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gdev-ai/gdev/analysis"
	"github.com/gdev-ai/gdev/githubapi"
)

// TestOpenAIBackend drives the OpenAI analyzer against a fake chat
// completions endpoint.
func TestOpenAIBackend(t *testing.T) {
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path: got = %q, wanted = %q", r.URL.Path, "/chat/completions")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {
					"role": "assistant",
					"content": "{\"analysis\":\"off-by-one in pagination\",\"suggested_fix\":\"use NextPage\",\"priority\":\"Low\",\"complexity\":\"Simple\"}"
				}
			}],
			"usage": {"prompt_tokens": 42, "completion_tokens": 17, "total_tokens": 59}
		}`))
	}))
	defer srv.Close()

	a, err := analysis.NewOpenAI("test-key",
		analysis.WithBaseURL(srv.URL),
		analysis.WithModel("gpt-4o"),
		analysis.WithMaxTokens(512))
	if err != nil {
		t.Fatalf("NewOpenAI() error = %v", err)
	}

	res, err := a.AnalyzeIssue(context.Background(), &analysis.IssueRequest{
		Owner: "o", Repo: "r",
		Issue: githubapi.Issue{Number: 3, Title: "pagination bug"},
	})
	if err != nil {
		t.Fatalf("AnalyzeIssue() error = %v", err)
	}

	if res.Priority != analysis.PriorityLow {
		t.Errorf("Priority: got = %q, wanted = Low", res.Priority)
	}
	if res.Analysis != "off-by-one in pagination" {
		t.Errorf("Analysis: got = %q", res.Analysis)
	}
	if gotReq.Model != "gpt-4o" {
		t.Errorf("request model: got = %q, wanted = gpt-4o", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 {
		t.Errorf("message count: got = %d, wanted = 2 (system + user)", len(gotReq.Messages))
	}
}
