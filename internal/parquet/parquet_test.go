package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/prismscan/prism/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisRecordStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	sch := parquet.SchemaOf(new(AnalysisRecord))
	require.NotNil(t, sch)

	// Check that all expected columns exist
	expectedColumns := []string{
		"analysis_id",
		"user_id",
		"filename",
		"language",
		"status",
		"issue_count",
		"issues",
		"metrics",
		"security_score",
		"complexity_score",
		"performance_score",
		"quality_score",
		"global_score",
		"failure_kind",
		"created_at",
		"updated_at",
	}

	for _, colName := range expectedColumns {
		col, ok := sch.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestHistoryEntryStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	sch := parquet.SchemaOf(new(HistoryEntry))
	require.NotNil(t, sch)

	// Check that all expected columns exist
	expectedColumns := []string{
		"filename",
		"analyzer",
		"issues_count",
		"complexity",
		"timestamp",
	}

	for _, colName := range expectedColumns {
		col, ok := sch.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestWriteAnalysesParquet(t *testing.T) {
	// Create temporary directory for test output
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "analyses.parquet")

	// Get mock data
	data := MockFetchAnalyses()
	require.NotEmpty(t, data, "Mock data should not be empty")

	// Write data to Parquet file
	err := WriteAnalysesParquet(data, outputPath)
	require.NoError(t, err, "Writing Parquet file should not produce error")

	// Verify file was created
	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should not be empty")

	// Read back and verify data
	file, err := os.Open(outputPath)
	require.NoError(t, err, "Should be able to open output file")
	defer file.Close()

	reader := parquet.NewGenericReader[AnalysisRecord](file)
	defer reader.Close()

	// Read all rows
	readData := make([]AnalysisRecord, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	assert.Equal(t, len(data), n, "Should read all records")

	// Verify data integrity
	for i := 0; i < len(data); i++ {
		assert.Equal(t, data[i].AnalysisID, readData[i].AnalysisID, "AnalysisID should match")
		assert.Equal(t, data[i].UserID, readData[i].UserID, "UserID should match")
		assert.Equal(t, data[i].Status, readData[i].Status, "Status should match")
		assert.Equal(t, data[i].IssueCount, readData[i].IssueCount, "IssueCount should match")
		assert.InDelta(t, data[i].GlobalScore, readData[i].GlobalScore, 0.001, "GlobalScore should match")
		assert.WithinDuration(t, data[i].CreatedAt, readData[i].CreatedAt, time.Nanosecond, "CreatedAt should match within nanosecond precision")

		// Check nullable fields
		if data[i].Issues == nil {
			assert.Nil(t, readData[i].Issues, "Issues should be nil")
		} else {
			require.NotNil(t, readData[i].Issues, "Issues should not be nil")
			assert.Equal(t, *data[i].Issues, *readData[i].Issues, "Issues should match")
		}

		if data[i].FailureKind == nil {
			assert.Nil(t, readData[i].FailureKind, "FailureKind should be nil")
		} else {
			require.NotNil(t, readData[i].FailureKind, "FailureKind should not be nil")
			assert.Equal(t, *data[i].FailureKind, *readData[i].FailureKind, "FailureKind should match")
		}
	}
}

func TestWriteHistoryParquet(t *testing.T) {
	// Create temporary directory for test output
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "history.parquet")

	// Get mock data
	data := MockFetchHistory()
	require.NotEmpty(t, data, "Mock data should not be empty")

	// Write data to Parquet file
	err := WriteHistoryParquet(data, outputPath)
	require.NoError(t, err, "Writing Parquet file should not produce error")

	// Verify file was created
	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should not be empty")

	// Read back and verify data
	file, err := os.Open(outputPath)
	require.NoError(t, err, "Should be able to open output file")
	defer file.Close()

	reader := parquet.NewGenericReader[HistoryEntry](file)
	defer reader.Close()

	// Read all rows
	readData := make([]HistoryEntry, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	assert.Equal(t, len(data), n, "Should read all records")

	// Verify data integrity
	for i := 0; i < len(data); i++ {
		assert.Equal(t, data[i].Filename, readData[i].Filename, "Filename should match")
		assert.Equal(t, data[i].Analyzer, readData[i].Analyzer, "Analyzer should match")
		assert.Equal(t, data[i].IssuesCount, readData[i].IssuesCount, "IssuesCount should match")
		assert.InDelta(t, data[i].Complexity, readData[i].Complexity, 0.001, "Complexity should match")
		assert.WithinDuration(t, data[i].Timestamp, readData[i].Timestamp, time.Nanosecond, "Timestamp should match within nanosecond precision")
	}
}

func TestWriteAnalysesParquet_EmptyData(t *testing.T) {
	// Create temporary directory for test output
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "empty_analyses.parquet")

	// Write empty data
	err := WriteAnalysesParquet([]AnalysisRecord{}, outputPath)
	require.NoError(t, err, "Writing empty data should not produce error")

	// Verify file was created
	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteHistoryParquet_EmptyData(t *testing.T) {
	// Create temporary directory for test output
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "empty_history.parquet")

	// Write empty data
	err := WriteHistoryParquet([]HistoryEntry{}, outputPath)
	require.NoError(t, err, "Writing empty data should not produce error")

	// Verify file was created
	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteAnalysesParquet_InvalidPath(t *testing.T) {
	// Try to write to invalid path
	data := MockFetchAnalyses()
	err := WriteAnalysesParquet(data, "/nonexistent/directory/output.parquet")
	require.Error(t, err, "Writing to invalid path should produce error")
}

func TestWriteHistoryParquet_InvalidPath(t *testing.T) {
	// Try to write to invalid path
	data := MockFetchHistory()
	err := WriteHistoryParquet(data, "/nonexistent/directory/output.parquet")
	require.Error(t, err, "Writing to invalid path should produce error")
}

func TestMockFetchAnalyses(t *testing.T) {
	data := MockFetchAnalyses()
	require.NotEmpty(t, data, "Mock data should not be empty")
	assert.Len(t, data, 3, "Should return 3 mock records")

	// Verify the structure of mock data
	assert.Equal(t, string(schema.StatusCompleted), data[0].Status)
	assert.NotNil(t, data[0].Issues, "First record should have Issues")
	assert.NotNil(t, data[0].Metrics, "First record should have Metrics")
	assert.Nil(t, data[0].FailureKind, "First record should have nil FailureKind")

	// Third record is a failed analysis with nil nullable payloads
	assert.Equal(t, string(schema.StatusFailed), data[2].Status)
	assert.Nil(t, data[2].Issues, "Third record should have nil Issues")
	assert.Nil(t, data[2].Metrics, "Third record should have nil Metrics")
	assert.NotNil(t, data[2].FailureKind, "Third record should have FailureKind")
}

func TestMockFetchHistory(t *testing.T) {
	data := MockFetchHistory()
	require.NotEmpty(t, data, "Mock data should not be empty")
	assert.Len(t, data, 3, "Should return 3 mock records")

	assert.Equal(t, "server.ts", data[0].Filename)
	assert.Equal(t, int32(1), data[0].IssuesCount)
	assert.Equal(t, int32(0), data[2].IssuesCount)
}

func TestConvertAnalyses(t *testing.T) {
	now := time.Now()
	analyses := []*schema.Analysis{
		{
			ID:       "done-1",
			UserID:   "alice",
			Filename: "handler.ts",
			Language: schema.LanguageTypeScript,
			Status:   schema.StatusCompleted,
			Metrics:  map[string]float64{"complexity": 3, "loc": 50},
			Issues: []schema.Issue{
				{Type: "eval_usage", Severity: schema.SeverityHigh, Category: schema.CategorySecurity, File: "handler.ts", Line: 2},
			},
			SecurityScore:    7.5,
			ComplexityScore:  9.25,
			PerformanceScore: 10,
			QualityScore:     0.8,
			GlobalScore:      7.9,
			CreatedAt:        now,
			UpdatedAt:        now.Add(time.Second),
		},
		{
			ID:            "fail-1",
			UserID:        "bob",
			Filename:      "broken.py",
			Language:      schema.LanguagePython,
			Status:        schema.StatusFailed,
			FailureKind:   schema.FaultTimeout,
			FailureDetail: "analysis timed out",
			CreatedAt:     now,
			UpdatedAt:     now.Add(2 * time.Second),
		},
	}

	records := ConvertAnalyses(analyses)
	require.Len(t, records, 2)

	assert.Equal(t, "done-1", records[0].AnalysisID)
	assert.Equal(t, string(schema.LanguageTypeScript), records[0].Language)
	assert.Equal(t, int32(1), records[0].IssueCount)
	require.NotNil(t, records[0].Issues, "Completed record should carry issue JSON")
	assert.Contains(t, *records[0].Issues, "eval_usage")
	require.NotNil(t, records[0].Metrics, "Completed record should carry metric JSON")
	assert.Contains(t, *records[0].Metrics, "complexity")
	assert.Nil(t, records[0].FailureKind)

	assert.Equal(t, "fail-1", records[1].AnalysisID)
	assert.Equal(t, int32(0), records[1].IssueCount)
	assert.Nil(t, records[1].Issues, "Failed record should have nil issue JSON")
	assert.Nil(t, records[1].Metrics, "Failed record should have nil metric JSON")
	require.NotNil(t, records[1].FailureKind)
	assert.Equal(t, string(schema.FaultTimeout), *records[1].FailureKind)
}

func TestConvertHistoryRecords(t *testing.T) {
	now := time.Now()
	records := ConvertHistoryRecords([]schema.HistoryRecord{
		{Filename: "a.ts", AnalyzerUsed: "typescript-security", IssuesCount: 2, Complexity: 5, Timestamp: now},
		{Filename: "b.py", AnalyzerUsed: "python-security", IssuesCount: 0, Complexity: 1, Timestamp: now.Add(time.Minute)},
	})
	require.Len(t, records, 2)

	assert.Equal(t, "a.ts", records[0].Filename)
	assert.Equal(t, "typescript-security", records[0].Analyzer)
	assert.Equal(t, int32(2), records[0].IssuesCount)
	assert.InDelta(t, 5.0, records[0].Complexity, 0.001)
	assert.Equal(t, now, records[0].Timestamp)

	assert.Equal(t, "b.py", records[1].Filename)
	assert.Equal(t, int32(0), records[1].IssuesCount)
}
