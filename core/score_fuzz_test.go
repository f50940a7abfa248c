package core

import (
	"testing"

	"github.com/prismscan/prism/schema"
)

// FuzzComputeScores fuzzes the scoring pipeline with arbitrary issue
// counts and metric values, asserting every score stays inside its
// documented range.
func FuzzComputeScores(f *testing.F) {
	seeds := []struct {
		security, quality, performance int
		severity                       string
		complexity, loc, dup, comments float64
		strict                         bool
	}{
		{1, 0, 0, "high", 0, 1, 0, 0, false},
		{0, 0, 0, "low", 0, 0, 0, 0, false},
		{3, 5, 2, "critical", 80, 200, 0.4, 0.1, true},
		{0, 1, 0, "medium", -5, -10, 2.5, -1, false},
	}
	for _, seed := range seeds {
		f.Add(seed.security, seed.quality, seed.performance, seed.severity,
			seed.complexity, seed.loc, seed.dup, seed.comments, seed.strict)
	}

	f.Fuzz(func(t *testing.T,
		security int, quality int, performance int, severity string,
		complexity float64, loc float64, dup float64, comments float64,
		strict bool,
	) {
		// Cap counts so the fuzzer cannot allocate unbounded slices.
		issues := buildFuzzIssues(security%200, quality%200, performance%200, schema.Severity(severity))
		metrics := map[string]float64{
			schema.MetricComplexity:       complexity,
			schema.MetricLinesOfCode:      loc,
			schema.MetricDuplicationRatio: dup,
			schema.MetricCommentRatio:     comments,
		}
		mode := schema.BalancedMode
		if strict {
			mode = schema.StrictMode
		}

		scores := ComputeScores(issues, metrics, mode)

		assertRange(t, "security", scores.Security, 0, 10)
		assertRange(t, "complexity", scores.Complexity, 0, 10)
		assertRange(t, "performance", scores.Performance, 0, 10)
		assertRange(t, "quality", scores.Quality, 0, 1)
		assertRange(t, "global", scores.Global, 0, 10)
	})
}

func buildFuzzIssues(security, quality, performance int, sev schema.Severity) []schema.Issue {
	if _, ok := schema.ValidSeverities[sev]; !ok {
		sev = schema.SeverityLow
	}
	var issues []schema.Issue
	add := func(count int, cat schema.Category) {
		if count < 0 {
			count = -count
		}
		for i := 0; i < count; i++ {
			issues = append(issues, schema.Issue{Severity: sev, Category: cat})
		}
	}
	add(security, schema.CategorySecurity)
	add(quality, schema.CategoryQuality)
	add(performance, schema.CategoryPerformance)
	return issues
}

func assertRange(t *testing.T, name string, value, lo, hi float64) {
	t.Helper()
	if value < lo || value > hi {
		t.Fatalf("%s score %f outside [%f, %f]", name, value, lo, hi)
	}
}
