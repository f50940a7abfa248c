package builtin

import "github.com/prismscan/prism/schema"

// NewTypeScriptQuality scans TypeScript and JavaScript sources against
// the quality catalog.
func NewTypeScriptQuality() *catalogPlugin {
	return &catalogPlugin{
		name:     "tsquality",
		langs:    []schema.Language{schema.LanguageTypeScript, schema.LanguageJavaScript},
		category: schema.CategoryQuality,
	}
}
