/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package autofix

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Status is a task's lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status can never change again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// canTransition enforces the monotonic lifecycle
// pending -> in_progress -> {completed, failed}. A pending task may also fail
// directly when the pipeline dies before its first step.
func (s Status) canTransition(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusInProgress || to == StatusFailed
	case StatusInProgress:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}

// Task is one tracked auto-fix operation. PRURL is set on completion, Err on
// failure; both stay empty while the task is live.
type Task struct {
	ID          string    `json:"task_id"`
	Repository  string    `json:"repository"`
	IssueNumber int       `json:"issue_number"`
	Branch      string    `json:"branch_name,omitempty"`
	Status      Status    `json:"status"`
	PRURL       string    `json:"pr_url,omitempty"`
	Err         string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Owner and Repo are kept split for the pipeline; Repository above is the
	// wire form.
	Owner string `json:"-"`
	Repo  string `json:"-"`
}

// newTaskID returns a 128-bit random hex identifier. The space is large
// enough that collision handling is unnecessary.
func newTaskID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// randomSuffix returns a short hex string for generated branch names.
func randomSuffix() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}
