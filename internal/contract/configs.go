package contract

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/prismscan/prism/schema"
)

// Default values for configuration.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultHistoryLimit = 50
	DefaultResultLimit  = 25
	MaxResultLimit      = 1000
	DefaultPrecision    = 1
)

// DefaultWorkers is the default number of concurrent scan workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the engine and CLI.
// This struct remains the "final, validated" config.
type Config struct {
	Workers      int
	Timeout      time.Duration // Per-submission deadline
	HistoryLimit int
	ScoreMode    schema.ScoreMode
	MinSeverity  schema.Severity // Empty means report every severity
	Language     schema.Language // Empty means detect from filename
	UserID       string
	FailUnder    float64 // Non-zero makes scan exit non-zero below this global score

	ResultLimit int
	Offset      int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Excludes    []string
	Width       int // Terminal width override (0 = auto-detect)

	Backend   schema.DatabaseBackend
	DBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Workers      int    `mapstructure:"workers"`
	Timeout      string `mapstructure:"timeout"`
	HistoryLimit int    `mapstructure:"history-limit"`
	ScoreMode    string `mapstructure:"score-mode"`
	Backend      string `mapstructure:"backend"`
	DBConnect    string `mapstructure:"database-connection-string"`
	Output       string `mapstructure:"format"`
	OutputFile   string `mapstructure:"output-file"`
	Precision    int    `mapstructure:"precision"`
	Width        int    `mapstructure:"width"`
	UseEmojis    string `mapstructure:"use-emojis"`
	UseColors    string `mapstructure:"use-colors"`

	// --- Fields shaping submissions (root and scanCmd flags) ---
	Language    string  `mapstructure:"language"`
	User        string  `mapstructure:"user"`
	MinSeverity string  `mapstructure:"min-severity"`
	FailUnder   float64 `mapstructure:"fail-under"`
	Exclude     string  `mapstructure:"exclude"`

	// --- Fields for result paging ---
	Limit  int `mapstructure:"limit"`
	Offset int `mapstructure:"offset"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Excludes != nil {
		clone.Excludes = make([]string, len(c.Excludes))
		copy(clone.Excludes, c.Excludes)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// All validation functions read from 'input' and populate 'cfg'.
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSubmissionInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs processes and validates all presentation related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.UserID = strings.TrimSpace(input.User)
	cfg.Offset = max(input.Offset, 0)

	// Parse emoji flag
	emojis, err := ParseBoolString(input.UseEmojis)
	if err != nil {
		return fmt.Errorf("invalid --use-emojis value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.UseColors)
	if err != nil {
		return fmt.Errorf("invalid --use-colors value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	cfg.Width = input.Width

	// --- 4. Excludes Processing ---
	defaults := []string{
		"node_modules/", "vendor/", "dist/", "build/", "out/", "target/",
		"__pycache__/", ".venv/", "venv/", ".git/",
		".min.js", ".min.css", ".map",
	}
	cfg.Excludes = defaults // Set defaults first

	if input.Exclude != "" {
		for p := range strings.SplitSeq(input.Exclude, ",") {
			trimmedP := strings.TrimSpace(p)
			if trimmedP != "" {
				cfg.Excludes = append(cfg.Excludes, trimmedP)
			}
		}
	}

	return nil
}

// processSubmissionInputs validates every field that shapes how a
// submission is analyzed and scored.
func processSubmissionInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 1. Score Mode Validation ---
	cfg.ScoreMode = schema.ScoreMode(strings.ToLower(input.ScoreMode))
	if _, ok := schema.ValidScoreModes[cfg.ScoreMode]; !ok {
		return fmt.Errorf("invalid score mode '%s'. must be balanced, strict", input.ScoreMode)
	}

	// --- 2. Language Override Validation ---
	cfg.Language = schema.Language(strings.ToLower(strings.TrimSpace(input.Language)))
	if cfg.Language != "" {
		if _, ok := schema.ValidLanguages[cfg.Language]; !ok {
			return fmt.Errorf("invalid language '%s'. must be typescript, javascript, python, sql", input.Language)
		}
	}

	// --- 3. Minimum Severity Validation ---
	cfg.MinSeverity = schema.Severity(strings.ToLower(strings.TrimSpace(input.MinSeverity)))
	if cfg.MinSeverity != "" {
		if _, ok := schema.ValidSeverities[cfg.MinSeverity]; !ok {
			return fmt.Errorf("invalid min severity '%s'. must be low, medium, high, critical", input.MinSeverity)
		}
	}

	// --- 4. Timeout Validation ---
	timeout, err := ParseTimeoutDuration(input.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	cfg.Timeout = timeout

	// --- 5. History Limit Validation ---
	if input.HistoryLimit <= 0 || input.HistoryLimit > MaxResultLimit {
		return fmt.Errorf("history-limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.HistoryLimit)
	}
	cfg.HistoryLimit = input.HistoryLimit

	// --- 6. Fail Threshold Validation ---
	if input.FailUnder < 0.0 || input.FailUnder > 10.0 {
		return fmt.Errorf("fail-under must be between 0.0 and 10.0 (received %.2f)", input.FailUnder)
	}
	cfg.FailUnder = input.FailUnder

	return nil
}

// validateBackendConfig validates the persistence backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.Backend = schema.DatabaseBackend(strings.ToLower(input.Backend))
	if _, ok := schema.ValidDatabaseBackends[cfg.Backend]; !ok {
		return fmt.Errorf("%w '%s'. must be sqlite, mysql, postgresql, memory, none", ErrUnknownBackend, input.Backend)
	}
	cfg.DBConnect = input.DBConnect
	return ValidateDatabaseConnectionString(cfg.Backend, cfg.DBConnect)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.MemoryBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("database-connection-string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("database-connection-string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
