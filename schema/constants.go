package schema

// Custom string types for type safety.
type (
	// Severity represents how serious a detected issue is.
	Severity string

	// Category represents the concern an issue belongs to.
	Category string

	// Status represents the lifecycle state of an analysis.
	Status string

	// FaultKind classifies why an analysis failed.
	FaultKind string

	// Language represents a source language understood by plugins.
	Language string

	// ScoreComponent represents keys used in the global score weighting.
	ScoreComponent string

	// ScoreMode represents the weighting profile for the global score.
	ScoreMode string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string
)

// All severities supported, lowest to highest.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// All issue categories supported.
const (
	CategorySecurity    Category = "security"
	CategoryQuality     Category = "quality"
	CategoryPerformance Category = "performance"
)

// All analysis statuses supported.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// All failure kinds recorded on failed analyses.
const (
	FaultNone    FaultKind = ""
	FaultPlugin  FaultKind = "plugin_fault"
	FaultTimeout FaultKind = "timeout"
)

// All languages with built-in catalogs. LanguageAny marks a plugin as
// language-agnostic; it is never a valid submission language.
const (
	LanguageTypeScript Language = "typescript"
	LanguageJavaScript Language = "javascript"
	LanguagePython     Language = "python"
	LanguageSQL        Language = "sql"
	LanguageAny        Language = "any"
)

// Score components used in the global score weighting.
const (
	ComponentSecurity    ScoreComponent = "security"
	ComponentQuality     ScoreComponent = "quality"
	ComponentComplexity  ScoreComponent = "complexity"
	ComponentPerformance ScoreComponent = "performance"
)

// All score modes supported.
const (
	BalancedMode ScoreMode = "balanced" // default
	StrictMode   ScoreMode = "strict"
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
	CSVOut  OutputMode = "csv"
)

// All persistence backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	MemoryBackend     DatabaseBackend = "memory"
	NoneBackend       DatabaseBackend = "none"
)

// Well-known keys in the Analysis metrics map.
const (
	MetricLinesOfCode      = "lines_of_code"
	MetricCommentLines     = "comment_lines"
	MetricCommentRatio     = "comment_ratio"
	MetricDuplicationRatio = "duplication_ratio"
	MetricComplexity       = "complexity"
	MetricFunctions        = "functions"
	MetricClasses          = "classes"
	MetricImports          = "imports"
)

// AllSeverities lists severities from highest to lowest.
var AllSeverities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// ValidSeverities lists all valid severities.
var ValidSeverities = map[Severity]struct{}{
	SeverityLow:      {},
	SeverityMedium:   {},
	SeverityHigh:     {},
	SeverityCritical: {},
}

// ValidCategories lists all valid issue categories.
var ValidCategories = map[Category]struct{}{
	CategorySecurity:    {},
	CategoryQuality:     {},
	CategoryPerformance: {},
}

// ValidStatuses lists all valid analysis statuses.
var ValidStatuses = map[Status]struct{}{
	StatusPending:    {},
	StatusProcessing: {},
	StatusCompleted:  {},
	StatusFailed:     {},
}

// ValidLanguages lists all languages accepted on submission.
var ValidLanguages = map[Language]struct{}{
	LanguageTypeScript: {},
	LanguageJavaScript: {},
	LanguagePython:     {},
	LanguageSQL:        {},
}

// ValidScoreModes lists all valid score modes.
var ValidScoreModes = map[ScoreMode]struct{}{
	BalancedMode: {},
	StrictMode:   {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	JSONOut: {},
	CSVOut:  {},
}

// ValidDatabaseBackends lists all valid persistence backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	MemoryBackend:     {},
	NoneBackend:       {},
}

// GetScoreWeights returns the global score weight map for a given score mode.
// Weights sum to 1; quality is rescaled from its 0-1 range before weighting.
func GetScoreWeights(mode ScoreMode) map[ScoreComponent]float64 {
	switch mode {
	case StrictMode:
		return map[ScoreComponent]float64{
			ComponentSecurity:    0.60,
			ComponentQuality:     0.20,
			ComponentComplexity:  0.10,
			ComponentPerformance: 0.10,
		}
	default: // BalancedMode
		return map[ScoreComponent]float64{
			ComponentSecurity:    0.40,
			ComponentQuality:     0.30,
			ComponentComplexity:  0.20,
			ComponentPerformance: 0.10,
		}
	}
}
