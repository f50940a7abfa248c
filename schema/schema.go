// Package schema has models, constants and helpers shared by all parts of prism.
package schema

import "time"

// Issue represents a single finding reported by an analyzer plugin.
// It is ephemeral until persisted together with its analysis.
type Issue struct {
	Type       string   `json:"type"`                 // Rule identifier, e.g. "eval_usage"
	Severity   Severity `json:"severity"`             // One of low, medium, high, critical
	Category   Category `json:"category"`             // One of security, quality, performance
	Message    string   `json:"message"`              // Human-readable description of the finding
	File       string   `json:"file"`                 // Filename of the analyzed artifact
	Line       int      `json:"line"`                 // 1-based line of the first match
	Column     int      `json:"column,omitempty"`     // 1-based column of the first match
	Snippet    string   `json:"snippet,omitempty"`    // Trimmed source excerpt around the match
	Suggestion string   `json:"suggestion,omitempty"` // Remediation hint from the rule table
	Reference  string   `json:"reference,omitempty"`  // External identifier such as a CWE id
}

// Analysis represents one submission and everything derived from it.
// It is created on submission acceptance and mutated only by the engine
// and the persistence layer. Terminal analyses are never auto-deleted.
type Analysis struct {
	ID               string             `json:"id"`
	UserID           string             `json:"user_id"`
	Filename         string             `json:"filename"`
	Language         Language           `json:"language"`
	Status           Status             `json:"status"`
	Metrics          map[string]float64 `json:"metrics"`
	Issues           []Issue            `json:"issues"`
	Suggestions      []string           `json:"suggestions,omitempty"`
	Skipped          []string           `json:"skipped,omitempty"` // Plugins that declined the input
	SecurityScore    float64            `json:"security_score"`    // 0-10
	ComplexityScore  float64            `json:"complexity_score"`  // 0-10
	PerformanceScore float64            `json:"performance_score"` // 0-10
	QualityScore     float64            `json:"quality_score"`     // 0-1
	GlobalScore      float64            `json:"global_score"`      // 0-10
	FailureKind      FaultKind          `json:"failure_kind,omitempty"`
	FailureDetail    string             `json:"failure_detail,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// Clone returns a deep copy so that callers can never mutate store state
// through a returned analysis.
func (a *Analysis) Clone() *Analysis {
	if a == nil {
		return nil
	}
	clone := *a
	if a.Metrics != nil {
		clone.Metrics = make(map[string]float64, len(a.Metrics))
		for k, v := range a.Metrics {
			clone.Metrics[k] = v
		}
	}
	if a.Issues != nil {
		clone.Issues = make([]Issue, len(a.Issues))
		copy(clone.Issues, a.Issues)
	}
	if a.Suggestions != nil {
		clone.Suggestions = make([]string, len(a.Suggestions))
		copy(clone.Suggestions, a.Suggestions)
	}
	if a.Skipped != nil {
		clone.Skipped = make([]string, len(a.Skipped))
		copy(clone.Skipped, a.Skipped)
	}
	return &clone
}

// Terminal reports whether the analysis reached a final state.
func (a *Analysis) Terminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusFailed
}

// HistoryRecord represents one append-only log entry, written once per
// terminal analysis.
type HistoryRecord struct {
	Filename     string    `json:"filename"`
	AnalyzerUsed string    `json:"analyzer_used"`
	IssuesCount  int       `json:"issues_count"`
	Complexity   float64   `json:"complexity"`
	Timestamp    time.Time `json:"timestamp"`
}

// UsageStats holds aggregate counters, updated atomically with each
// history append.
type UsageStats struct {
	TotalAnalyses    int            `json:"total_analyses"`
	ByAnalyzer       map[string]int `json:"by_analyzer"`
	ByDate           map[string]int `json:"by_date"` // Keyed by YYYY-MM-DD
	ErrorCount       int            `json:"error_count"`
	LastAnalysisTime time.Time      `json:"last_analysis_time"`
}

// Clone returns a deep copy of the stats counters.
func (s *UsageStats) Clone() UsageStats {
	clone := *s
	clone.ByAnalyzer = make(map[string]int, len(s.ByAnalyzer))
	for k, v := range s.ByAnalyzer {
		clone.ByAnalyzer[k] = v
	}
	clone.ByDate = make(map[string]int, len(s.ByDate))
	for k, v := range s.ByDate {
		clone.ByDate[k] = v
	}
	return clone
}

// UsageSummary is derived from history and stats for reporting.
type UsageSummary struct {
	TotalFiles        int       `json:"total_files"`
	AverageScore      float64   `json:"average_score"`
	TotalIssues       int       `json:"total_issues"`
	AverageComplexity float64   `json:"average_complexity"`
	ErrorRate         float64   `json:"error_rate"` // Fraction of analyses that failed, 0-1
	LastAnalysis      time.Time `json:"last_analysis"`
}

// ProgressReport is the polling view of an in-flight or finished analysis.
type ProgressReport struct {
	Status   Status `json:"status"`
	Progress int    `json:"progress"` // 0-100
}

// StoreStatus represents the status of the analysis store.
type StoreStatus struct {
	Backend          string           `json:"backend"`
	Connected        bool             `json:"connected"`
	TotalAnalyses    int              `json:"total_analyses"`
	LastAnalysisTime time.Time        `json:"last_analysis_time"`
	TableSizes       map[string]int64 `json:"table_sizes"`
}
