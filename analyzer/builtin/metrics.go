package builtin

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/prismscan/prism/analyzer"
	"github.com/prismscan/prism/schema"
)

// dupWindow is the block size for duplicate detection.
const dupWindow = 6

var (
	decisionRe = regexp.MustCompile(`\b(if|elif|for|while|case|when|catch|except|and|or)\b|&&|\|\|`)
	functionRe = regexp.MustCompile(`\bfunction\b|\bdef\b|=>`)
	classRe    = regexp.MustCompile(`\bclass\b`)
	importRe   = regexp.MustCompile(`^\s*(import\b|from\b|require\s*\()`)
)

// metricsPlugin derives numeric metrics from any text artifact. It
// reports no issues; the scoring engine consumes its output.
type metricsPlugin struct{}

var _ analyzer.Plugin = (*metricsPlugin)(nil)

// NewMetrics returns the language-agnostic metrics plugin.
func NewMetrics() *metricsPlugin {
	return &metricsPlugin{}
}

func (p *metricsPlugin) Name() string { return "metrics" }

func (p *metricsPlugin) Languages() []schema.Language {
	return []schema.Language{schema.LanguageAny}
}

func (p *metricsPlugin) Categories() []schema.Category {
	return []schema.Category{schema.CategoryQuality}
}

func (p *metricsPlugin) Analyze(ctx context.Context, src analyzer.Source, _ analyzer.Config) (analyzer.Report, error) {
	if analyzer.IsBinary(src.Content) {
		return analyzer.Report{}, fmt.Errorf("%w: binary content in %s", analyzer.ErrUnsupportedInput, src.Filename)
	}
	if err := ctx.Err(); err != nil {
		return analyzer.Report{}, err
	}

	lines := strings.Split(string(src.Content), "\n")
	var loc, comments, decisions, functions, classes, imports int
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		loc++
		if isCommentLine(src.Language, trimmed) {
			comments++
			continue
		}
		decisions += len(decisionRe.FindAllString(line, -1))
		functions += len(functionRe.FindAllString(line, -1))
		classes += len(classRe.FindAllString(line, -1))
		if importRe.MatchString(line) {
			imports++
		}
	}
	if loc == 0 {
		return analyzer.Report{}, nil
	}

	return analyzer.Report{Metrics: map[string]float64{
		schema.MetricLinesOfCode:      float64(loc),
		schema.MetricCommentLines:     float64(comments),
		schema.MetricCommentRatio:     float64(comments) / float64(loc),
		schema.MetricDuplicationRatio: duplicationRatio(lines),
		schema.MetricComplexity:       float64(decisions),
		schema.MetricFunctions:        float64(functions),
		schema.MetricClasses:          float64(classes),
		schema.MetricImports:          float64(imports),
	}}, nil
}

func isCommentLine(lang schema.Language, trimmed string) bool {
	switch lang {
	case schema.LanguagePython:
		return strings.HasPrefix(trimmed, "#")
	case schema.LanguageSQL:
		return strings.HasPrefix(trimmed, "--")
	default:
		return strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*")
	}
}

// duplicationRatio slides a dupWindow-line window over the artifact and
// reports the fraction of windows that repeat an earlier one.
func duplicationRatio(lines []string) float64 {
	if len(lines) <= dupWindow {
		return 0
	}
	counts := make(map[string]int)
	total := 0
	for i := 0; i+dupWindow <= len(lines); i++ {
		var b strings.Builder
		empty := true
		for _, l := range lines[i : i+dupWindow] {
			t := strings.TrimSpace(l)
			if t != "" {
				empty = false
			}
			b.WriteString(t)
			b.WriteByte('\n')
		}
		if empty {
			continue
		}
		counts[b.String()]++
		total++
	}
	if total == 0 {
		return 0
	}
	dup := 0
	for _, c := range counts {
		if c > 1 {
			dup += c - 1
		}
	}
	return float64(dup) / float64(total)
}
