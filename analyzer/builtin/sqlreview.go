package builtin

import (
	"context"
	"regexp"
	"strings"

	"github.com/prismscan/prism/analyzer"
	"github.com/prismscan/prism/analyzer/pattern"
	"github.com/prismscan/prism/schema"
)

var (
	joinWord = regexp.MustCompile(`(?i)\bjoin\b`)
	onWord   = regexp.MustCompile(`(?i)\bon\b`)
)

// sqlPlugin combines the SQL catalog with whole-file review checks
// that a line matcher cannot express.
type sqlPlugin struct{}

var _ analyzer.Plugin = (*sqlPlugin)(nil)

// NewSQLReview returns the SQL review plugin.
func NewSQLReview() *sqlPlugin {
	return &sqlPlugin{}
}

func (p *sqlPlugin) Name() string { return "sqlreview" }

func (p *sqlPlugin) Languages() []schema.Language {
	return []schema.Language{schema.LanguageSQL}
}

func (p *sqlPlugin) Categories() []schema.Category {
	return []schema.Category{schema.CategorySecurity, schema.CategoryPerformance, schema.CategoryQuality}
}

func (p *sqlPlugin) Analyze(ctx context.Context, src analyzer.Source, cfg analyzer.Config) (analyzer.Report, error) {
	if err := checkInput(p.Languages(), src); err != nil {
		return analyzer.Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return analyzer.Report{}, err
	}

	issues := pattern.Catalog(schema.LanguageSQL).Scan(src.Filename, src.Content)
	issues = append(issues, p.fileChecks(src)...)

	issues, err := filterMinSeverity(issues, cfg)
	if err != nil {
		return analyzer.Report{}, err
	}
	return analyzer.Report{Issues: issues}, nil
}

// fileChecks covers conditions spanning the whole script: joins that
// never state a condition and scripts without a single comment.
func (p *sqlPlugin) fileChecks(src analyzer.Source) []schema.Issue {
	text := string(src.Content)
	var issues []schema.Issue

	if joinWord.MatchString(text) && !onWord.MatchString(text) {
		issues = append(issues, schema.Issue{
			Type:       "join_without_on",
			Severity:   schema.SeverityHigh,
			Category:   schema.CategoryPerformance,
			Message:    "Join without a condition produces a cartesian product",
			File:       src.Filename,
			Line:       firstMatchLine(text, joinWord),
			Suggestion: "Add an ON clause or an explicit CROSS JOIN if intended",
		})
	}

	if !hasSQLComment(text) && strings.TrimSpace(text) != "" {
		issues = append(issues, schema.Issue{
			Type:       "missing_comments",
			Severity:   schema.SeverityLow,
			Category:   schema.CategoryQuality,
			Message:    "Script has no comments",
			File:       src.Filename,
			Line:       1,
			Suggestion: "Document intent with -- comments",
		})
	}
	return issues
}

func hasSQLComment(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			return true
		}
	}
	return false
}

// firstMatchLine returns the 1-based line of the first match of re.
func firstMatchLine(text string, re *regexp.Regexp) int {
	loc := re.FindStringIndex(text)
	if loc == nil {
		return 1
	}
	return strings.Count(text[:loc[0]], "\n") + 1
}
