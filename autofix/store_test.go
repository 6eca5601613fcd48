/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package autofix

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestStoreLifecycle(t *testing.T) {
	s := NewStore()

	task := s.Create("org", "repo", 42, "fix/issue-42-abcd")
	if task.Status != StatusPending {
		t.Errorf("Status = %v, wanted = %v", task.Status, StatusPending)
	}
	if task.ID == "" {
		t.Error("Create() returned empty task ID")
	}
	if task.Repository != "org/repo" {
		t.Errorf("Repository = %q, wanted = %q", task.Repository, "org/repo")
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("Create() left timestamps unset")
	}

	if err := s.Start(task.ID); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	got, ok := s.Get(task.ID)
	if !ok {
		t.Fatal("Get() did not find the task")
	}
	if got.Status != StatusInProgress {
		t.Errorf("Status = %v, wanted = %v", got.Status, StatusInProgress)
	}

	if err := s.Complete(task.ID, "https://github.com/org/repo/pull/7"); err != nil {
		t.Fatalf("Complete() = %v", err)
	}
	got, _ = s.Get(task.ID)
	if got.Status != StatusCompleted {
		t.Errorf("Status = %v, wanted = %v", got.Status, StatusCompleted)
	}
	if got.PRURL != "https://github.com/org/repo/pull/7" {
		t.Errorf("PRURL = %q, wanted the pull request URL", got.PRURL)
	}
}

func TestStoreTerminalIsImmutable(t *testing.T) {
	s := NewStore()
	task := s.Create("org", "repo", 1, "b")
	if err := s.Start(task.ID); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if err := s.Fail(task.ID, "boom"); err != nil {
		t.Fatalf("Fail() = %v", err)
	}

	for name, fn := range map[string]func() error{
		"Start":    func() error { return s.Start(task.ID) },
		"Complete": func() error { return s.Complete(task.ID, "url") },
		"Fail":     func() error { return s.Fail(task.ID, "again") },
	} {
		t.Run(name, func(t *testing.T) {
			if err := fn(); err == nil {
				t.Error("transition out of a terminal state succeeded, wanted an error")
			}
		})
	}

	got, _ := s.Get(task.ID)
	if got.Status != StatusFailed || got.Err != "boom" {
		t.Errorf("terminal task mutated: status=%v err=%q", got.Status, got.Err)
	}
}

func TestStorePendingCanFail(t *testing.T) {
	s := NewStore()
	task := s.Create("org", "repo", 1, "b")
	if err := s.Fail(task.ID, "launch rejected"); err != nil {
		t.Fatalf("Fail() from pending = %v", err)
	}
	if err := s.Start(task.ID); err == nil {
		t.Error("Start() after Fail() succeeded, wanted an error")
	}
}

func TestStoreUnknownTask(t *testing.T) {
	s := NewStore()
	if _, ok := s.Get("3e2a6d3a9f104b1c8d7e5f6a0b1c2d3e"); ok {
		t.Error("Get() found a task that was never created")
	}
	if err := s.Start("nope"); err == nil {
		t.Error("Start() on unknown ID succeeded, wanted an error")
	}
}

func TestStoreConcurrentCreates(t *testing.T) {
	s := NewStore()
	const n = 100

	var wg sync.WaitGroup
	ids := make(chan string, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- s.Create("org", "repo", i, fmt.Sprintf("b-%d", i)).ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate task ID %q", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("distinct IDs = %d, wanted = %d", len(seen), n)
	}
	if s.Len() != n {
		t.Errorf("Len() = %d, wanted = %d", s.Len(), n)
	}
}

func TestStoreSweep(t *testing.T) {
	s := NewStore()

	old := s.Create("org", "repo", 1, "b1")
	if err := s.Fail(old.ID, "stale"); err != nil {
		t.Fatalf("Fail() = %v", err)
	}
	// Backdate the terminal task past the retention window.
	s.mu.Lock()
	s.tasks[old.ID].UpdatedAt = time.Now().UTC().Add(-2 * time.Hour)
	s.mu.Unlock()

	fresh := s.Create("org", "repo", 2, "b2")
	running := s.Create("org", "repo", 3, "b3")
	if err := s.Start(running.ID); err != nil {
		t.Fatalf("Start() = %v", err)
	}

	if got := s.Sweep(time.Hour); got != 1 {
		t.Errorf("Sweep() = %d, wanted = 1", got)
	}
	if _, ok := s.Get(old.ID); ok {
		t.Error("swept task still retrievable")
	}
	for _, id := range []string{fresh.ID, running.ID} {
		if _, ok := s.Get(id); !ok {
			t.Errorf("Sweep() removed live task %q", id)
		}
	}
}

func TestStoreCountByStatus(t *testing.T) {
	s := NewStore()
	a := s.Create("org", "repo", 1, "b1")
	b := s.Create("org", "repo", 2, "b2")
	s.Create("org", "repo", 3, "b3")
	if err := s.Start(a.ID); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if err := s.Complete(a.ID, "url"); err != nil {
		t.Fatalf("Complete() = %v", err)
	}
	if err := s.Start(b.ID); err != nil {
		t.Fatalf("Start() = %v", err)
	}

	got := s.CountByStatus()
	want := map[Status]int{StatusPending: 1, StatusInProgress: 1, StatusCompleted: 1}
	for status, n := range want {
		if got[status] != n {
			t.Errorf("CountByStatus()[%v] = %d, wanted = %d", status, got[status], n)
		}
	}
}

func TestNewTaskID(t *testing.T) {
	id := newTaskID()
	if len(id) != 32 {
		t.Errorf("len(id) = %d, wanted = 32", len(id))
	}
	if strings.ToLower(id) != id {
		t.Errorf("id %q is not lowercase hex", id)
	}
}
