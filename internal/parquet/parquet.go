// Package parquet provides data structures and functions for exporting prism
// analysis data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/prismscan/prism/schema"
)

// AnalysisRecord represents a single persisted analysis with its scores.
// This struct maps to the prism_analyses database table.
type AnalysisRecord struct {
	// AnalysisID is the unique identifier for this analysis
	AnalysisID string `parquet:"analysis_id,snappy"`

	// UserID is the submitting user
	UserID string `parquet:"user_id,snappy"`

	// Filename is the name of the analyzed artifact
	Filename string `parquet:"filename,snappy"`

	// Language is the declared source language
	Language string `parquet:"language,snappy"`

	// Status is the terminal or in-flight lifecycle state
	Status string `parquet:"status,snappy"`

	// IssueCount is the number of merged issues
	IssueCount int32 `parquet:"issue_count,snappy"`

	// Issues contains the JSON-encoded issue list (nullable)
	Issues *string `parquet:"issues,optional,snappy"`

	// Metrics contains the JSON-encoded metric map (nullable)
	Metrics *string `parquet:"metrics,optional,snappy"`

	// SecurityScore is the 0-10 security dimension score
	SecurityScore float64 `parquet:"security_score,snappy"`

	// ComplexityScore is the 0-10 complexity dimension score
	ComplexityScore float64 `parquet:"complexity_score,snappy"`

	// PerformanceScore is the 0-10 performance dimension score
	PerformanceScore float64 `parquet:"performance_score,snappy"`

	// QualityScore is the 0-1 quality dimension score
	QualityScore float64 `parquet:"quality_score,snappy"`

	// GlobalScore is the weighted 0-10 overall score
	GlobalScore float64 `parquet:"global_score,snappy"`

	// FailureKind classifies the fault for failed analyses (nullable)
	FailureKind *string `parquet:"failure_kind,optional,snappy"`

	// CreatedAt is when the submission was accepted
	CreatedAt time.Time `parquet:"created_at,snappy"`

	// UpdatedAt is when the analysis last changed state
	UpdatedAt time.Time `parquet:"updated_at,snappy"`
}

// HistoryEntry represents a single append-only history log entry.
// This struct maps to the prism_history database table.
type HistoryEntry struct {
	// Filename is the name of the analyzed artifact
	Filename string `parquet:"filename,snappy"`

	// Analyzer is the plugin set label recorded for the run
	Analyzer string `parquet:"analyzer,snappy"`

	// IssuesCount is the number of issues found
	IssuesCount int32 `parquet:"issues_count,snappy"`

	// Complexity is the decision-point metric for the run
	Complexity float64 `parquet:"complexity,snappy"`

	// Timestamp is when the entry was recorded
	Timestamp time.Time `parquet:"timestamp,snappy"`
}

// WriteAnalysesParquet writes a slice of AnalysisRecord structs to a Parquet file.
func WriteAnalysesParquet(data []AnalysisRecord, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the AnalysisRecord struct tags
	writer := parquet.NewGenericWriter[AnalysisRecord](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteHistoryParquet writes a slice of HistoryEntry structs to a Parquet file.
func WriteHistoryParquet(data []HistoryEntry, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the HistoryEntry struct tags
	writer := parquet.NewGenericWriter[HistoryEntry](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// MockFetchAnalyses generates sample AnalysisRecord data for demonstration.
func MockFetchAnalyses() []AnalysisRecord {
	now := time.Now()
	issues1 := `[{"type":"eval_usage","severity":"high","category":"security","line":3}]`
	metrics1 := `{"complexity":4,"loc":120}`
	metrics2 := `{"complexity":1,"loc":30}`
	failure3 := string(schema.FaultTimeout)

	return []AnalysisRecord{
		{
			AnalysisID:       "4f7a2c1e-9b3d-4e8f-a1c5-2d6b8e0f4a7c",
			UserID:           "alice",
			Filename:         "server.ts",
			Language:         string(schema.LanguageTypeScript),
			Status:           string(schema.StatusCompleted),
			IssueCount:       1,
			Issues:           &issues1,
			Metrics:          &metrics1,
			SecurityScore:    7.5,
			ComplexityScore:  9.0,
			PerformanceScore: 10.0,
			QualityScore:     0.82,
			GlobalScore:      7.9,
			CreatedAt:        now.Add(-2 * time.Hour),
			UpdatedAt:        now.Add(-2*time.Hour + 3*time.Second),
		},
		{
			AnalysisID:       "8c1d5e9f-2a4b-4c6d-8e0f-1a3b5c7d9e2f",
			UserID:           "bob",
			Filename:         "util.py",
			Language:         string(schema.LanguagePython),
			Status:           string(schema.StatusCompleted),
			IssueCount:       0,
			Metrics:          &metrics2,
			SecurityScore:    10.0,
			ComplexityScore:  9.8,
			PerformanceScore: 10.0,
			QualityScore:     0.95,
			GlobalScore:      9.8,
			CreatedAt:        now.Add(-1 * time.Hour),
			UpdatedAt:        now.Add(-1*time.Hour + time.Second),
		},
		{
			AnalysisID: "0b2e4d6c-8f1a-4b3c-9d5e-7f0a2c4e6b8d",
			UserID:     "alice",
			Filename:   "huge_bundle.js",
			Language:   string(schema.LanguageJavaScript),
			Status:     string(schema.StatusFailed),
			// Issues and Metrics are nil to demonstrate nullable fields
			FailureKind: &failure3,
			CreatedAt:   now.Add(-10 * time.Minute),
			UpdatedAt:   now.Add(-9 * time.Minute),
		},
	}
}

// MockFetchHistory generates sample HistoryEntry data for demonstration.
func MockFetchHistory() []HistoryEntry {
	now := time.Now()

	return []HistoryEntry{
		{
			Filename:    "server.ts",
			Analyzer:    "metrics,tsquality,tssec",
			IssuesCount: 1,
			Complexity:  4,
			Timestamp:   now.Add(-2 * time.Hour),
		},
		{
			Filename:    "util.py",
			Analyzer:    "metrics,pysec",
			IssuesCount: 0,
			Complexity:  1,
			Timestamp:   now.Add(-1 * time.Hour),
		},
		{
			Filename:    "huge_bundle.js",
			Analyzer:    "metrics,tsquality,tssec",
			IssuesCount: 0,
			Complexity:  0,
			Timestamp:   now.Add(-10 * time.Minute),
		},
	}
}

// ConvertAnalyses converts schema.Analysis values to AnalysisRecord for Parquet export.
func ConvertAnalyses(analyses []*schema.Analysis) []AnalysisRecord {
	result := make([]AnalysisRecord, len(analyses))
	for i, analysis := range analyses {
		record := AnalysisRecord{
			AnalysisID:       analysis.ID,
			UserID:           analysis.UserID,
			Filename:         analysis.Filename,
			Language:         string(analysis.Language),
			Status:           string(analysis.Status),
			IssueCount:       int32(len(analysis.Issues)),
			SecurityScore:    analysis.SecurityScore,
			ComplexityScore:  analysis.ComplexityScore,
			PerformanceScore: analysis.PerformanceScore,
			QualityScore:     analysis.QualityScore,
			GlobalScore:      analysis.GlobalScore,
			CreatedAt:        analysis.CreatedAt,
			UpdatedAt:        analysis.UpdatedAt,
		}
		if len(analysis.Issues) > 0 {
			if raw, err := json.Marshal(analysis.Issues); err == nil {
				encoded := string(raw)
				record.Issues = &encoded
			}
		}
		if len(analysis.Metrics) > 0 {
			if raw, err := json.Marshal(analysis.Metrics); err == nil {
				encoded := string(raw)
				record.Metrics = &encoded
			}
		}
		if analysis.FailureKind != "" {
			kind := string(analysis.FailureKind)
			record.FailureKind = &kind
		}
		result[i] = record
	}
	return result
}

// ConvertHistoryRecords converts schema.HistoryRecord values to HistoryEntry for Parquet export.
func ConvertHistoryRecords(records []schema.HistoryRecord) []HistoryEntry {
	result := make([]HistoryEntry, len(records))
	for i, record := range records {
		result[i] = HistoryEntry{
			Filename:    record.Filename,
			Analyzer:    record.AnalyzerUsed,
			IssuesCount: int32(record.IssuesCount),
			Complexity:  record.Complexity,
			Timestamp:   record.Timestamp,
		}
	}
	return result
}
