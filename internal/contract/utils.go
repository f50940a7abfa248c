package contract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/prismscan/prism/schema"
)

// Severity label constants.
const (
	CriticalValue = "Critical" // Critical severity label
	HighValue     = "High"     // High severity label
	MediumValue   = "Medium"   // Medium severity label
	LowValue      = "Low"      // Low severity label
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // criticalColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // highColor represents strong, distinct warning.
	MediumColor   = color.New(color.FgYellow)              // mediumColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // lowColor represents informational / low-priority signal.

	ExcellentColor = color.New(color.FgGreen, color.Bold) // excellentColor represents a score to be proud of.
	GoodColor      = color.New(color.FgGreen)             // goodColor represents a healthy score.
	FairColor      = color.New(color.FgYellow)            // fairColor represents a score that needs attention.
	PoorColor      = color.New(color.FgRed, color.Bold)   // poorColor represents a score in trouble.
)

// GetSeverityLabel returns a plain text label for an issue severity.
// This is the core logic used for CSV, JSON, and table printing.
func GetSeverityLabel(sev schema.Severity) string {
	switch sev {
	case schema.SeverityCritical:
		return CriticalValue
	case schema.SeverityHigh:
		return HighValue
	case schema.SeverityMedium:
		return MediumValue
	default:
		return LowValue
	}
}

// GetSeverityColorLabel returns a colored severity label for console output (table).
// It uses GetSeverityLabel to determine the string, and then applies the appropriate color.
func GetSeverityColorLabel(sev schema.Severity) string {
	text := GetSeverityLabel(sev)

	switch text {
	case CriticalValue:
		return CriticalColor.Sprint(text)
	case HighValue:
		return HighColor.Sprint(text)
	case MediumValue:
		return MediumColor.Sprint(text)
	default: // "Low"
		return LowColor.Sprint(text)
	}
}

// GetScoreColorLabel returns a colored quality label for a 0-10 score.
// It uses schema.GetScoreLabel to determine the string, and then applies
// the appropriate color.
func GetScoreColorLabel(score float64) string {
	text := schema.GetScoreLabel(score)

	switch text {
	case schema.ExcellentLabel:
		return ExcellentColor.Sprint(text)
	case schema.GoodLabel:
		return GoodColor.Sprint(text)
	case schema.FairLabel:
		return FairColor.Sprint(text)
	default: // "Poor"
		return PoorColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the
// provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given path matches any of the exclude patterns.
// It supports simple glob patterns (using filepath.Match) when the pattern
// contains wildcard characters (*, ?, [ ]). Patterns ending with '/' are treated
// as prefixes. Patterns starting with '.' are treated as suffix (extension) matches.
// A user can provide patterns like "vendor/", "node_modules/", "*.min.js".
func ShouldIgnore(path string, excludes []string) bool {
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		// If the pattern contains glob characters, try filepath.Match.
		if strings.ContainsAny(ex, "*?[") || strings.Contains(ex, "**") {
			pat := strings.ReplaceAll(ex, "**", "*")
			if ok, err := filepath.Match(pat, path); err == nil && ok {
				return true
			}
			// Also try matching against the base filename (e.g. *.min.js)
			if ok, err := filepath.Match(pat, filepath.Base(path)); err == nil && ok {
				return true
			}
			continue
		}

		// Handle prefix, suffix, or substring matches
		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(path, ex) || strings.Contains(path, "/"+ex) {
				return true
			}
		case strings.HasPrefix(ex, "."):
			if strings.HasSuffix(path, ex) {
				return true
			}
		case strings.Contains(path, ex):
			return true
		}
	}
	return false
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".prism.db"
	}
	return filepath.Join(homeDir, ".prism.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at
// least one character of content. Without this check, small maxWidth values could
// cause slice bounds errors in the truncation calculation.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// Define the regular expression to capture "N [units]".
var timeoutDurationRe = regexp.MustCompile(`^(\d+)\s+(minute|second)s?$`)

// ParseTimeoutDuration converts strings like "2 minutes" or "45s" into a single
// time.Duration. It first tries Go's built-in time.ParseDuration for standard
// formats, then falls back to custom parsing for human-readable formats.
func ParseTimeoutDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	// Try Go's built-in duration parsing first (e.g., "30s", "2m", "500ms")
	if duration, err := time.ParseDuration(s); err == nil {
		if duration <= 0 {
			return 0, errors.New("timeout must be positive")
		}
		return duration, nil
	}

	// Fall back to custom parsing for human-readable formats (e.g., "2 minutes")
	s = strings.ToLower(s)
	matches := timeoutDurationRe.FindStringSubmatch(s)

	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid timeout format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	unit := matches[2]

	var totalDuration time.Duration

	switch unit {
	case "minute":
		totalDuration = time.Duration(value) * time.Minute
	case "second":
		totalDuration = time.Duration(value) * time.Second
	}

	if totalDuration <= 0 {
		return 0, errors.New("timeout must be positive")
	}

	return totalDuration, nil
}
