package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeverityRank(t *testing.T) {
	assert.Greater(t, SeverityRank(SeverityCritical), SeverityRank(SeverityHigh))
	assert.Greater(t, SeverityRank(SeverityHigh), SeverityRank(SeverityMedium))
	assert.Greater(t, SeverityRank(SeverityMedium), SeverityRank(SeverityLow))
	assert.Greater(t, SeverityRank(SeverityLow), SeverityRank(Severity("bogus")))
}

func TestDateBucket(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"UTC midnight", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), "2025-03-14"},
		{"UTC end of day", time.Date(2025, 3, 14, 23, 59, 59, 0, time.UTC), "2025-03-14"},
		{"zoned time folds to UTC", time.Date(2025, 3, 15, 3, 0, 0, 0, loc), "2025-03-14"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DateBucket(tt.in))
		})
	}
}

func TestGetScoreLabel(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"Excellent Upper", 10.0, "Excellent"},
		{"Excellent Lower", 9.0, "Excellent"},
		{"Good Upper", 8.9, "Good"},
		{"Good Lower", 7.0, "Good"},
		{"Fair Upper", 6.9, "Fair"},
		{"Fair Lower", 5.0, "Fair"},
		{"Poor Upper", 4.9, "Poor"},
		{"Poor Lower", 0.0, "Poor"},
		{"Negative Score", -1.0, "Poor"}, // Edge case
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetScoreLabel(tt.score))
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		filename string
		want     Language
		known    bool
	}{
		{"app.ts", LanguageTypeScript, true},
		{"component.TSX", LanguageTypeScript, true}, // case-insensitive extension
		{"index.js", LanguageJavaScript, true},
		{"tool.py", LanguagePython, true},
		{"schema.sql", LanguageSQL, true},
		{"notes.txt", Language(""), false},
		{"Makefile", Language(""), false}, // no extension
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			lang, ok := DetectLanguage(tt.filename)
			assert.Equal(t, tt.known, ok)
			assert.Equal(t, tt.want, lang)
		})
	}
}

func TestTrimSnippet(t *testing.T) {
	assert.Equal(t, "eval(x)", TrimSnippet("   eval(x)   ", 80))
	assert.Equal(t, "abcde...", TrimSnippet("abcdefghij", 5))
	assert.Equal(t, "abcdefghij", TrimSnippet("abcdefghij", 0)) // zero max means no limit
}
