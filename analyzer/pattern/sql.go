package pattern

import "github.com/prismscan/prism/schema"

// sqlRules covers the review checks expressible per line. Whole-file
// checks such as joins without conditions live in the sqlreview plugin.
var sqlRules = []rule{
	{
		id:         "execute_dynamic",
		expr:       `(?i)\b(execute|exec)\b`,
		severity:   schema.SeverityHigh,
		category:   schema.CategorySecurity,
		message:    "Dynamic statement execution is prone to SQL injection",
		suggestion: "Use prepared statements with bound parameters",
		reference:  "CWE-89",
	},
	{
		id:         "grant_privileges",
		expr:       `(?i)\bgrant\b|\bsuper\b`,
		severity:   schema.SeverityMedium,
		category:   schema.CategorySecurity,
		message:    "Privileged operation detected",
		suggestion: "Grant the narrowest privileges the workload needs",
		reference:  "CWE-250",
	},
	{
		id:         "select_star",
		expr:       `(?i)select\s+\*`,
		severity:   schema.SeverityMedium,
		category:   schema.CategoryPerformance,
		message:    "SELECT * fetches every column and defeats covering indexes",
		suggestion: "List the columns the query actually needs",
	},
	{
		id:         "not_in_subquery",
		expr:       `(?i)\bnot\s+in\s*\(\s*select\b`,
		severity:   schema.SeverityMedium,
		category:   schema.CategoryPerformance,
		message:    "NOT IN with a subquery scans poorly and mishandles NULLs",
		suggestion: "Rewrite as NOT EXISTS or an anti-join",
	},
}
