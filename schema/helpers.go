package schema

import (
	"path/filepath"
	"strings"
	"time"
)

// severityRanks orders severities for sorting and comparisons.
var severityRanks = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// SeverityRank returns a sortable rank for a severity, higher is more
// severe. Unknown severities rank below low.
func SeverityRank(s Severity) int {
	return severityRanks[s]
}

// DateBucket formats a timestamp as the YYYY-MM-DD key used by the
// per-date usage counters.
func DateBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Score label constants.
const (
	ExcellentLabel = "Excellent" // 9.0 and above
	GoodLabel      = "Good"      // 7.0 up to 9.0
	FairLabel      = "Fair"      // 5.0 up to 7.0
	PoorLabel      = "Poor"      // below 5.0
)

// GetScoreLabel returns a plain text label for a global score on the
// 0-10 scale.
func GetScoreLabel(score float64) string {
	switch {
	case score >= 9:
		return ExcellentLabel
	case score >= 7:
		return GoodLabel
	case score >= 5:
		return FairLabel
	default:
		return PoorLabel
	}
}

// extensionLanguages maps normalized file extensions to languages.
var extensionLanguages = map[string]Language{
	".ts":   LanguageTypeScript,
	".tsx":  LanguageTypeScript,
	".mts":  LanguageTypeScript,
	".js":   LanguageJavaScript,
	".jsx":  LanguageJavaScript,
	".mjs":  LanguageJavaScript,
	".cjs":  LanguageJavaScript,
	".py":   LanguagePython,
	".pyw":  LanguagePython,
	".sql":  LanguageSQL,
	".ddl":  LanguageSQL,
	".psql": LanguageSQL,
}

// DetectLanguage guesses the language of a filename from its extension.
// The second return value is false when the extension is unknown.
func DetectLanguage(filename string) (Language, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := extensionLanguages[ext]
	return lang, ok
}

// TrimSnippet shortens a source line for display and storage, keeping
// the leading context of the match.
func TrimSnippet(line string, max int) string {
	trimmed := strings.TrimSpace(line)
	if max <= 0 || len(trimmed) <= max {
		return trimmed
	}
	rr := []rune(trimmed)
	if len(rr) <= max {
		return trimmed
	}
	return string(rr[:max]) + "..."
}
