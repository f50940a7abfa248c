package core

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/prismscan/prism/analyzer"
	"github.com/prismscan/prism/schema"
)

// AnalysisBuilder walks one analysis through its lifecycle: pending on
// creation, processing during plugin fan-out, then exactly one
// terminal call (Complete or Fail). Not safe for concurrent use; the
// engine feeds it from a single goroutine.
type AnalysisBuilder struct {
	analysis *schema.Analysis
	reports  []analyzer.Report
	skipped  []string
	mode     schema.ScoreMode
}

// NewAnalysisBuilder starts a pending analysis for a submission.
func NewAnalysisBuilder(sub Submission, lang schema.Language) *AnalysisBuilder {
	now := time.Now()
	return &AnalysisBuilder{
		analysis: &schema.Analysis{
			ID:        uuid.NewString(),
			UserID:    sub.UserID,
			Filename:  sub.Filename,
			Language:  lang,
			Status:    schema.StatusPending,
			Metrics:   make(map[string]float64),
			CreatedAt: now,
			UpdatedAt: now,
		},
		mode: schema.BalancedMode,
	}
}

// WithScoreMode selects the weighting profile applied by Complete.
// Unknown modes keep the balanced default.
func (b *AnalysisBuilder) WithScoreMode(mode schema.ScoreMode) *AnalysisBuilder {
	if _, ok := schema.ValidScoreModes[mode]; ok {
		b.mode = mode
	}
	return b
}

// ID returns the analysis id assigned at creation.
func (b *AnalysisBuilder) ID() string {
	return b.analysis.ID
}

// Snapshot returns a deep copy of the current analysis state for
// persistence; later builder calls never mutate it.
func (b *AnalysisBuilder) Snapshot() *schema.Analysis {
	return b.analysis.Clone()
}

// StartProcessing transitions the analysis to processing.
func (b *AnalysisBuilder) StartProcessing() *AnalysisBuilder {
	b.analysis.Status = schema.StatusProcessing
	b.analysis.UpdatedAt = time.Now()
	return b
}

// AddReport stages one plugin report for the merge in Complete.
func (b *AnalysisBuilder) AddReport(report analyzer.Report) *AnalysisBuilder {
	b.reports = append(b.reports, report)
	return b
}

// AddSkipped records a plugin that declined the input.
func (b *AnalysisBuilder) AddSkipped(name string) *AnalysisBuilder {
	b.skipped = append(b.skipped, name)
	return b
}

// Complete merges the staged reports, scores the outcome and returns
// the completed analysis. With no staged reports the analysis
// completes empty with maximum scores.
func (b *AnalysisBuilder) Complete() *schema.Analysis {
	issues, metrics := mergeReports(b.reports)
	scores := ComputeScores(issues, metrics, b.mode)

	a := b.analysis
	a.Issues = issues
	a.Metrics = metrics
	a.Suggestions = collectSuggestions(issues)
	a.Skipped = sortedNames(b.skipped)
	a.SecurityScore = scores.Security
	a.ComplexityScore = scores.Complexity
	a.PerformanceScore = scores.Performance
	a.QualityScore = scores.Quality
	a.GlobalScore = scores.Global
	a.Status = schema.StatusCompleted
	a.FailureKind = schema.FaultNone
	a.FailureDetail = ""
	a.UpdatedAt = time.Now()
	return a
}

// Fail discards every staged report and returns the failed analysis.
// Partial findings never leak into a failed verdict: issues are
// emptied and every score zeroed, with only the failure description
// kept.
func (b *AnalysisBuilder) Fail(kind schema.FaultKind, detail string) *schema.Analysis {
	a := b.analysis
	a.Issues = nil
	a.Metrics = make(map[string]float64)
	a.Suggestions = nil
	a.Skipped = sortedNames(b.skipped)
	a.SecurityScore = 0
	a.ComplexityScore = 0
	a.PerformanceScore = 0
	a.QualityScore = 0
	a.GlobalScore = 0
	a.Status = schema.StatusFailed
	a.FailureKind = kind
	a.FailureDetail = detail
	a.UpdatedAt = time.Now()
	return a
}

// sortedNames copies and sorts plugin names for deterministic output.
func sortedNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}
