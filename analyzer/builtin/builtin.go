// Package builtin provides the reference analyzer plugins that ship
// with the engine: pattern-driven security and quality scanners plus a
// language-agnostic metrics collector.
package builtin

import (
	"context"
	"fmt"

	"github.com/prismscan/prism/analyzer"
	"github.com/prismscan/prism/analyzer/pattern"
	"github.com/prismscan/prism/schema"
)

// ConfigMinSeverity filters findings below the given severity, e.g.
// "medium". Unknown values are rejected as a plugin fault.
const ConfigMinSeverity = "min_severity"

// All returns one instance of every built-in plugin.
func All() []analyzer.Plugin {
	return []analyzer.Plugin{
		NewTypeScriptSecurity(),
		NewTypeScriptQuality(),
		NewPythonSecurity(),
		NewSQLReview(),
		NewMetrics(),
	}
}

// RegisterAll registers every built-in plugin on the registry.
func RegisterAll(reg *analyzer.Registry) error {
	for _, p := range All() {
		if err := reg.Register(p); err != nil {
			return fmt.Errorf("register %s: %w", p.Name(), err)
		}
	}
	return nil
}

// catalogPlugin scans one category of a language catalog. The three
// pattern-driven built-ins are instances of it.
type catalogPlugin struct {
	name     string
	langs    []schema.Language
	category schema.Category
}

var _ analyzer.Plugin = (*catalogPlugin)(nil)

func (p *catalogPlugin) Name() string                  { return p.name }
func (p *catalogPlugin) Languages() []schema.Language  { return p.langs }
func (p *catalogPlugin) Categories() []schema.Category { return []schema.Category{p.category} }

func (p *catalogPlugin) Analyze(ctx context.Context, src analyzer.Source, cfg analyzer.Config) (analyzer.Report, error) {
	if err := checkInput(p.langs, src); err != nil {
		return analyzer.Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return analyzer.Report{}, err
	}
	issues := pattern.CatalogByCategory(src.Language, p.category).Scan(src.Filename, src.Content)
	issues, err := filterMinSeverity(issues, cfg)
	if err != nil {
		return analyzer.Report{}, err
	}
	return analyzer.Report{Issues: issues}, nil
}

// checkInput declines binary content and languages the plugin never
// declared. The engine routes by language already; this guards direct
// library callers.
func checkInput(langs []schema.Language, src analyzer.Source) error {
	if analyzer.IsBinary(src.Content) {
		return fmt.Errorf("%w: binary content in %s", analyzer.ErrUnsupportedInput, src.Filename)
	}
	for _, lang := range langs {
		if lang == src.Language || lang == schema.LanguageAny {
			return nil
		}
	}
	return fmt.Errorf("%w: language %s", analyzer.ErrUnsupportedInput, src.Language)
}

// filterMinSeverity drops issues below the configured severity floor.
func filterMinSeverity(issues []schema.Issue, cfg analyzer.Config) ([]schema.Issue, error) {
	raw, ok := cfg[ConfigMinSeverity]
	if !ok || raw == "" {
		return issues, nil
	}
	floor := schema.Severity(raw)
	if _, valid := schema.ValidSeverities[floor]; !valid {
		return nil, fmt.Errorf("invalid %s value %q", ConfigMinSeverity, raw)
	}
	rank := schema.SeverityRank(floor)
	kept := issues[:0]
	for _, issue := range issues {
		if schema.SeverityRank(issue.Severity) >= rank {
			kept = append(kept, issue)
		}
	}
	return kept, nil
}
