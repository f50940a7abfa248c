package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismscan/prism/analyzer/pattern"
	"github.com/prismscan/prism/schema"
)

func samplePatternRows() []patternRow {
	return []patternRow{
		{
			Language:   schema.LanguageTypeScript,
			ID:         "eval_usage",
			Expression: regexp.MustCompile(`\beval\s*\(`).String(),
			Severity:   schema.SeverityHigh,
			Category:   schema.CategorySecurity,
			Message:    "Use of eval() with dynamic input allows arbitrary code execution",
			Reference:  "CWE-95",
		},
		{
			Language: schema.LanguageTypeScript,
			ID:       "console_log",
			Severity: schema.SeverityLow,
			Category: schema.CategoryQuality,
			Message:  "console.log left in source",
		},
	}
}

func TestWritePatternsTable(t *testing.T) {
	cfg := testConfig()

	var buf bytes.Buffer
	err := writePatternsTable(&buf, schema.LanguageTypeScript, samplePatternRows(), cfg)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "typescript catalog (2 rules)")
	assert.Contains(t, out, "eval_usage")
	assert.Contains(t, out, "console_log")
	assert.Contains(t, out, "CWE-95")
}

func TestWritePatternsTableEmpty(t *testing.T) {
	cfg := testConfig()

	var buf bytes.Buffer
	err := writePatternsTable(&buf, schema.LanguagePython, nil, cfg)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "No rules registered for this language.")
}

func TestWritePatternsCSV(t *testing.T) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	err := writePatternsCSV(w, samplePatternRows())
	require.NoError(t, err)
	w.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3) // header + 2 rules

	assert.Contains(t, lines[0], "expression")
	assert.Contains(t, lines[1], "eval_usage")
	assert.Contains(t, lines[2], "console_log")
}

func TestPrintPatternsJSONFile(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "patterns.json")

	patterns := pattern.Catalog(schema.LanguageTypeScript).Patterns()
	require.NotEmpty(t, patterns)

	err := PrintPatterns(schema.LanguageTypeScript, patterns, cfg)
	require.NoError(t, err)

	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	var rows []patternRow
	require.NoError(t, json.Unmarshal(content, &rows))
	require.Len(t, rows, len(patterns))

	// Every row carries the language and a compilable expression
	for _, row := range rows {
		assert.Equal(t, schema.LanguageTypeScript, row.Language)
		_, err := regexp.Compile(row.Expression)
		assert.NoError(t, err)
	}
}
