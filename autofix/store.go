/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package autofix

import (
	"fmt"
	"sync"
	"time"
)

// Store is the task tracker: a concurrency-safe map from task identifier to
// task record. One background goroutine writes each record while facade
// requests read it concurrently, so every access goes through the lock and
// callers only ever see copies.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewStore returns an empty task tracker.
func NewStore() *Store {
	return &Store{tasks: map[string]*Task{}}
}

// Create inserts a new pending task and returns a snapshot of it.
func (s *Store) Create(owner, repo string, issueNumber int, branch string) Task {
	now := time.Now().UTC()
	t := &Task{
		ID:          newTaskID(),
		Owner:       owner,
		Repo:        repo,
		Repository:  owner + "/" + repo,
		IssueNumber: issueNumber,
		Branch:      branch,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.tasks[t.ID] = t
	s.mu.Unlock()
	return *t
}

// Get returns a snapshot of the task, or false when the identifier was never
// issued (or has been swept).
func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// transition applies mutate under the lock iff the status change is legal.
func (s *Store) transition(id string, to Status, mutate func(*Task)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("unknown task %q", id)
	}
	if !t.Status.canTransition(to) {
		return fmt.Errorf("task %q: illegal transition %s -> %s", id, t.Status, to)
	}
	t.Status = to
	t.UpdatedAt = time.Now().UTC()
	if mutate != nil {
		mutate(t)
	}
	return nil
}

// Start moves a pending task to in_progress.
func (s *Store) Start(id string) error {
	return s.transition(id, StatusInProgress, nil)
}

// Complete finishes a task with the pull request it produced.
func (s *Store) Complete(id, prURL string) error {
	return s.transition(id, StatusCompleted, func(t *Task) { t.PRURL = prURL })
}

// Fail finishes a task with a human-readable error.
func (s *Store) Fail(id, msg string) error {
	return s.transition(id, StatusFailed, func(t *Task) { t.Err = msg })
}

// SetBranch records the branch a task ended up using.
func (s *Store) SetBranch(id, branch string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[id]; ok {
		t.Branch = branch
	}
}

// Len returns the number of tracked tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// CountByStatus tallies tasks by status for the health endpoint.
func (s *Store) CountByStatus() map[Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[Status]int, 4)
	for _, t := range s.tasks {
		counts[t.Status]++
	}
	return counts
}

// Sweep drops terminal tasks whose last update is older than retention and
// returns how many were removed. Live tasks are never swept. A swept
// identifier becomes indistinguishable from one that was never issued.
func (s *Store) Sweep(retention time.Duration) int {
	cutoff := time.Now().UTC().Add(-retention)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, t := range s.tasks {
		if t.Status.Terminal() && t.UpdatedAt.Before(cutoff) {
			delete(s.tasks, id)
			removed++
		}
	}
	return removed
}
