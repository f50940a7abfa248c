// Package pattern holds the per-language catalogs of detection rules
// and the line scanner that turns rule matches into issues.
package pattern

import (
	"regexp"
	"strings"

	"github.com/prismscan/prism/schema"
)

// snippetMax caps the stored source excerpt per issue.
const snippetMax = 120

// Pattern is one immutable detection rule owned by a language catalog.
type Pattern struct {
	ID          string          // Rule identifier, unique within its catalog
	Matcher     *regexp.Regexp  // Compiled once at catalog build time
	Severity    schema.Severity // Rule severity tier
	Category    schema.Category // Concern the rule belongs to
	Description string          // Becomes the issue message
	Suggestion  string          // Remediation hint, may be empty
	Reference   string          // External identifier such as a CWE id
}

// Set is a compiled group of patterns matched together against source
// lines. The combined prefilter rejects lines no rule can match before
// any per-rule work happens.
type Set struct {
	patterns  []Pattern
	prefilter *regexp.Regexp
}

// NewSet builds a matching set from compiled patterns.
func NewSet(patterns []Pattern) *Set {
	if len(patterns) == 0 {
		return &Set{}
	}
	exprs := make([]string, len(patterns))
	for i, p := range patterns {
		exprs[i] = "(?:" + p.Matcher.String() + ")"
	}
	return &Set{
		patterns:  patterns,
		prefilter: regexp.MustCompile(strings.Join(exprs, "|")),
	}
}

// Len returns the number of patterns in the set.
func (s *Set) Len() int {
	return len(s.patterns)
}

// Patterns returns a copy of the rule set.
func (s *Set) Patterns() []Pattern {
	out := make([]Pattern, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// Scan matches every line of src against the set and reports at most
// one issue per (rule, line), keyed to the first match on that line.
// Line numbers and columns are 1-based.
func (s *Set) Scan(filename string, src []byte) []schema.Issue {
	if len(s.patterns) == 0 || len(src) == 0 {
		return nil
	}
	var issues []schema.Issue
	for i, line := range strings.Split(string(src), "\n") {
		if !s.prefilter.MatchString(line) {
			continue
		}
		for _, p := range s.patterns {
			loc := p.Matcher.FindStringIndex(line)
			if loc == nil {
				continue
			}
			issues = append(issues, schema.Issue{
				Type:       p.ID,
				Severity:   p.Severity,
				Category:   p.Category,
				Message:    p.Description,
				File:       filename,
				Line:       i + 1,
				Column:     loc[0] + 1,
				Snippet:    schema.TrimSnippet(line, snippetMax),
				Suggestion: p.Suggestion,
				Reference:  p.Reference,
			})
		}
	}
	return issues
}
