/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package githubapi

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestComputeStats(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issues := []Issue{
		{Number: 1, State: "open", Labels: []string{"priority:high", "bug"}, UpdatedAt: base},
		{Number: 2, State: "open", Labels: []string{"priority:low"}, UpdatedAt: base.Add(time.Hour)},
		{Number: 3, State: "closed", Labels: []string{"priority-medium", "complexity:simple"}, UpdatedAt: base.Add(-time.Hour)},
		{Number: 4, State: "open", Labels: []string{"complexity:complex"}},
		{Number: 5, State: "open", Labels: []string{"complexity"}},
		{Number: 6, State: "open", Labels: []string{"enhancement"}},
	}

	got := ComputeStats("octocat/Hello-World", issues)
	want := IssueStats{
		Repository:    "octocat/Hello-World",
		TotalIssues:   6,
		OpenIssues:    5,
		ClosedIssues:  1,
		ByPriority:    map[string]int{"High": 1, "Medium": 1, "Low": 1},
		ByComplexity:  map[string]int{"Complex": 1, "Medium": 1, "Simple": 1},
		LastUpdatedAt: base.Add(time.Hour),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeStats() mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	got := ComputeStats("o/r", nil)
	if got.TotalIssues != 0 || got.OpenIssues != 0 || got.ClosedIssues != 0 {
		t.Errorf("ComputeStats(nil): got = %+v, wanted zero counts", got)
	}
	if got.ByPriority["High"] != 0 {
		t.Errorf("ByPriority[High]: got = %d, wanted = 0", got.ByPriority["High"])
	}
}
