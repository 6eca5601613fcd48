/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/gdev-ai/gdev/autofix"
)

// Slack posts messages to a Slack incoming webhook.
type Slack struct {
	webhookURL string
	client     *http.Client
}

// NewSlack returns a notifier for the given incoming webhook URL, or nil when
// the URL is empty.
func NewSlack(webhookURL string) *Slack {
	if webhookURL == "" {
		return nil
	}
	return &Slack{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Post sends one plain-text message. Failures are returned, not retried;
// notifications are best effort.
func (s *Slack) Post(ctx context.Context, text string) error {
	if s == nil {
		return nil
	}
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}

// TaskFinished posts a summary of a terminal auto-fix task. Errors are logged
// and swallowed so a broken webhook never fails the pipeline.
func (s *Slack) TaskFinished(ctx context.Context, task autofix.Task) {
	if s == nil {
		return
	}
	var text string
	switch task.Status {
	case autofix.StatusCompleted:
		text = fmt.Sprintf(":white_check_mark: Auto-fix for %s#%d completed: %s",
			task.Repository, task.IssueNumber, task.PRURL)
	case autofix.StatusFailed:
		text = fmt.Sprintf(":x: Auto-fix for %s#%d failed: %s",
			task.Repository, task.IssueNumber, task.Err)
	default:
		return
	}
	if err := s.Post(ctx, text); err != nil {
		clog.FromContext(ctx).With("error", err, "task_id", task.ID).Warn("Posting Slack notification")
	}
}
