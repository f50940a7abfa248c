package core

import (
	"sort"
	"strings"

	"github.com/prismscan/prism/analyzer"
	"github.com/prismscan/prism/schema"
)

// maxSuggestions caps how many distinct remediation hints one
// analysis carries.
const maxSuggestions = 10

// mergeReports flattens plugin reports into one issue list and one
// metric map. Issues are sorted deterministically; metric key
// collisions keep the maximum value, so the most pessimistic plugin
// wins.
func mergeReports(reports []analyzer.Report) ([]schema.Issue, map[string]float64) {
	var issues []schema.Issue
	metrics := make(map[string]float64)
	for _, report := range reports {
		issues = append(issues, report.Issues...)
		for key, value := range report.Metrics {
			if current, ok := metrics[key]; !ok || value > current {
				metrics[key] = value
			}
		}
	}
	sortIssues(issues)
	return issues, metrics
}

// sortIssues orders issues by file, line, severity (highest first),
// then rule type, so identical inputs always render identically.
func sortIssues(issues []schema.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if ra, rb := schema.SeverityRank(a.Severity), schema.SeverityRank(b.Severity); ra != rb {
			return ra > rb
		}
		return a.Type < b.Type
	})
}

// collectSuggestions returns the distinct non-empty suggestions in
// first-seen order, capped at maxSuggestions.
func collectSuggestions(issues []schema.Issue) []string {
	seen := make(map[string]struct{}, len(issues))
	var out []string
	for _, issue := range issues {
		suggestion := strings.TrimSpace(issue.Suggestion)
		if suggestion == "" {
			continue
		}
		if _, ok := seen[suggestion]; ok {
			continue
		}
		seen[suggestion] = struct{}{}
		out = append(out, suggestion)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
