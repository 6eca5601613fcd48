/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package githubapi

import (
	"strings"
	"time"
)

// IssueStats summarizes a repository's issues. Priority and complexity tallies
// are derived from label names; an issue with no matching label counts toward
// neither axis.
type IssueStats struct {
	Repository    string         `json:"repository"`
	TotalIssues   int            `json:"total_issues"`
	OpenIssues    int            `json:"open_issues"`
	ClosedIssues  int            `json:"closed_issues"`
	ByPriority    map[string]int `json:"issues_by_priority"`
	ByComplexity  map[string]int `json:"issues_by_complexity"`
	LastUpdatedAt time.Time      `json:"last_updated,omitzero"`
}

// ComputeStats tallies stats over a set of issues already fetched for repo.
func ComputeStats(repo string, issues []Issue) IssueStats {
	stats := IssueStats{
		Repository:   repo,
		TotalIssues:  len(issues),
		ByPriority:   map[string]int{"High": 0, "Medium": 0, "Low": 0},
		ByComplexity: map[string]int{"Complex": 0, "Medium": 0, "Simple": 0},
	}
	for _, iss := range issues {
		switch iss.State {
		case "open":
			stats.OpenIssues++
		case "closed":
			stats.ClosedIssues++
		}
		if iss.UpdatedAt.After(stats.LastUpdatedAt) {
			stats.LastUpdatedAt = iss.UpdatedAt
		}
		for _, label := range iss.Labels {
			name := strings.ToLower(label)
			switch {
			case strings.Contains(name, "priority"):
				switch {
				case strings.Contains(name, "high"):
					stats.ByPriority["High"]++
				case strings.Contains(name, "low"):
					stats.ByPriority["Low"]++
				default:
					stats.ByPriority["Medium"]++
				}
			case strings.Contains(name, "complexity"):
				// Strip the axis token before matching the tier; "complexity"
				// itself contains "complex".
				tier := strings.ReplaceAll(name, "complexity", "")
				switch {
				case strings.Contains(tier, "complex"):
					stats.ByComplexity["Complex"]++
				case strings.Contains(tier, "simple"):
					stats.ByComplexity["Simple"]++
				default:
					stats.ByComplexity["Medium"]++
				}
			}
		}
	}
	return stats
}
