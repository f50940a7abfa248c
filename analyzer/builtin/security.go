package builtin

import "github.com/prismscan/prism/schema"

// NewTypeScriptSecurity scans TypeScript and JavaScript sources against
// the security catalog.
func NewTypeScriptSecurity() *catalogPlugin {
	return &catalogPlugin{
		name:     "tssec",
		langs:    []schema.Language{schema.LanguageTypeScript, schema.LanguageJavaScript},
		category: schema.CategorySecurity,
	}
}

// NewPythonSecurity scans Python sources against the security catalog.
func NewPythonSecurity() *catalogPlugin {
	return &catalogPlugin{
		name:     "pysec",
		langs:    []schema.Language{schema.LanguagePython},
		category: schema.CategorySecurity,
	}
}
