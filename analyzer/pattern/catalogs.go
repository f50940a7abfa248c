package pattern

import (
	"regexp"
	"sort"
	"sync"

	"github.com/prismscan/prism/schema"
)

// rule is one row of a declarative catalog table.
type rule struct {
	id         string
	expr       string
	severity   schema.Severity
	category   schema.Category
	message    string
	suggestion string
	reference  string
}

// catalogTables maps languages to their rule tables. JavaScript shares
// the TypeScript tables.
var catalogTables = map[schema.Language][]rule{
	schema.LanguageTypeScript: typescriptRules,
	schema.LanguageJavaScript: typescriptRules,
	schema.LanguagePython:     pythonRules,
	schema.LanguageSQL:        sqlRules,
}

type catalog struct {
	all   *Set
	byCat map[schema.Category]*Set
}

var (
	catalogs     map[schema.Language]*catalog
	catalogsOnce sync.Once
	emptySet     = &Set{}
)

// compileCatalogs builds every language catalog exactly once. Rule
// tables are static, so a bad expression is a programming error and
// panics at first use.
func compileCatalogs() {
	catalogs = make(map[schema.Language]*catalog, len(catalogTables))
	for lang, rules := range catalogTables {
		patterns := make([]Pattern, len(rules))
		grouped := make(map[schema.Category][]Pattern)
		for i, r := range rules {
			p := Pattern{
				ID:          r.id,
				Matcher:     regexp.MustCompile(r.expr),
				Severity:    r.severity,
				Category:    r.category,
				Description: r.message,
				Suggestion:  r.suggestion,
				Reference:   r.reference,
			}
			patterns[i] = p
			grouped[r.category] = append(grouped[r.category], p)
		}
		c := &catalog{
			all:   NewSet(patterns),
			byCat: make(map[schema.Category]*Set, len(grouped)),
		}
		for cat, pats := range grouped {
			c.byCat[cat] = NewSet(pats)
		}
		catalogs[lang] = c
	}
}

// Catalog returns the compiled pattern set for a language. The set is
// built once per process and identical across calls. Languages without
// a table yield an empty set, not an error.
func Catalog(lang schema.Language) *Set {
	catalogsOnce.Do(compileCatalogs)
	c, ok := catalogs[lang]
	if !ok {
		return emptySet
	}
	return c.all
}

// CatalogByCategory returns the subset of a language catalog for one
// category, compiled once like Catalog.
func CatalogByCategory(lang schema.Language, cat schema.Category) *Set {
	catalogsOnce.Do(compileCatalogs)
	c, ok := catalogs[lang]
	if !ok {
		return emptySet
	}
	s, ok := c.byCat[cat]
	if !ok {
		return emptySet
	}
	return s
}

// Languages returns every language with a built-in catalog, sorted by
// name.
func Languages() []schema.Language {
	out := make([]schema.Language, 0, len(catalogTables))
	for lang := range catalogTables {
		out = append(out, lang)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
