// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/prismscan/prism/analyzer/pattern"
	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteAnalysisDetail prints one analysis in full using the configured output format.
func (ow *OutWriter) WriteAnalysisDetail(analysis *schema.Analysis, cfg *contract.Config, duration time.Duration) error {
	return PrintAnalysisDetail(analysis, cfg, duration)
}

// WriteAnalysisList prints a ranked list of analyses using the configured output format.
func (ow *OutWriter) WriteAnalysisList(analyses []*schema.Analysis, cfg *contract.Config, duration time.Duration) error {
	return PrintAnalysisList(analyses, cfg, duration)
}

// WriteHistory prints history ledger entries using the configured output format.
func (ow *OutWriter) WriteHistory(records []schema.HistoryRecord, cfg *contract.Config) error {
	return PrintHistory(records, cfg)
}

// WriteStats prints usage counters and the summary using the configured output format.
func (ow *OutWriter) WriteStats(stats schema.UsageStats, summary schema.UsageSummary, cfg *contract.Config) error {
	return PrintStats(stats, summary, cfg)
}

// WritePatterns prints a language's detection rules using the configured output format.
func (ow *OutWriter) WritePatterns(lang schema.Language, patterns []pattern.Pattern, cfg *contract.Config) error {
	return PrintPatterns(lang, patterns, cfg)
}
