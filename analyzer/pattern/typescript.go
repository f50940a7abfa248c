package pattern

import "github.com/prismscan/prism/schema"

// typescriptRules covers TypeScript and JavaScript. Severity tiers for
// the security rows follow the classic triage: injection-class rules
// are high, data-exposure rules medium, everything else low.
var typescriptRules = []rule{
	// Security
	{
		id:         "eval_usage",
		expr:       `eval\s*\(`,
		severity:   schema.SeverityHigh,
		category:   schema.CategorySecurity,
		message:    "Use of eval() with dynamic input allows arbitrary code execution",
		suggestion: "Parse data with JSON.parse or dispatch through a whitelist instead of eval",
		reference:  "CWE-95",
	},
	{
		id:         "function_constructor",
		expr:       `new\s+Function\s*\(`,
		severity:   schema.SeverityLow,
		category:   schema.CategorySecurity,
		message:    "Function constructor compiles strings into code at runtime",
		suggestion: "Declare functions statically instead of building them from strings",
		reference:  "CWE-95",
	},
	{
		id:         "dangerous_innerHTML",
		expr:       `\.innerHTML\s*=`,
		severity:   schema.SeverityMedium,
		category:   schema.CategorySecurity,
		message:    "Assignment to innerHTML can inject unsanitized markup",
		suggestion: "Use textContent or a sanitizer before writing markup",
		reference:  "CWE-79",
	},
	{
		id:         "sql_injection",
		expr:       `execute(?:Sql|Query|Statement)|raw(?:Query|Statement)`,
		severity:   schema.SeverityHigh,
		category:   schema.CategorySecurity,
		message:    "Raw query execution is prone to SQL injection",
		suggestion: "Use parameterized queries or a query builder with bound values",
		reference:  "CWE-89",
	},
	{
		id:         "command_injection",
		expr:       `exec\s*\(|execSync\s*\(|spawn\s*\(`,
		severity:   schema.SeverityHigh,
		category:   schema.CategorySecurity,
		message:    "Shelling out with dynamic arguments is prone to command injection",
		suggestion: "Pass argument arrays to spawn and never interpolate user input into commands",
		reference:  "CWE-78",
	},
	{
		id:         "sensitive_data",
		expr:       `(?i)\b(password|passwd|secret|api_?key|token|credential)s?\s*[:=]`,
		severity:   schema.SeverityMedium,
		category:   schema.CategorySecurity,
		message:    "Possible hardcoded credential or secret",
		suggestion: "Load secrets from the environment or a secret manager",
		reference:  "CWE-798",
	},
	{
		id:         "insecure_random",
		expr:       `Math\.random\s*\(`,
		severity:   schema.SeverityLow,
		category:   schema.CategorySecurity,
		message:    "Math.random is not suitable for security-sensitive values",
		suggestion: "Use crypto.getRandomValues or crypto.randomUUID for tokens",
		reference:  "CWE-338",
	},
	{
		id:         "prototype_pollution",
		expr:       `Object\.assign|Object\.prototype|__proto__`,
		severity:   schema.SeverityMedium,
		category:   schema.CategorySecurity,
		message:    "Prototype manipulation can pollute shared object state",
		suggestion: "Copy onto null-prototype objects and reject __proto__ keys from input",
		reference:  "CWE-1321",
	},
	{
		id:         "xss_vulnerable",
		expr:       `document\.write|\.outerHTML\s*=`,
		severity:   schema.SeverityHigh,
		category:   schema.CategorySecurity,
		message:    "Direct document writes can execute attacker-controlled markup",
		suggestion: "Build DOM nodes explicitly or sanitize markup before insertion",
		reference:  "CWE-79",
	},
	{
		id:         "unsafe_regex",
		expr:       `new\s+RegExp\s*\(`,
		severity:   schema.SeverityLow,
		category:   schema.CategorySecurity,
		message:    "Dynamically built regular expressions risk catastrophic backtracking",
		suggestion: "Prefer literal regular expressions and bound repetition counts",
		reference:  "CWE-1333",
	},

	// Quality
	{
		id:         "console_log",
		expr:       `console\.(log|debug|info)`,
		severity:   schema.SeverityLow,
		category:   schema.CategoryQuality,
		message:    "Console output left in source",
		suggestion: "Route diagnostics through the project logger",
	},
	{
		id:         "any_type",
		expr:       `:\s*any\b`,
		severity:   schema.SeverityLow,
		category:   schema.CategoryQuality,
		message:    "The any type disables type checking",
		suggestion: "Declare a concrete type or use unknown with narrowing",
	},
	{
		id:         "empty_catch",
		expr:       `catch\s*\([^)]*\)\s*\{\s*\}`,
		severity:   schema.SeverityLow,
		category:   schema.CategoryQuality,
		message:    "Empty catch block swallows errors",
		suggestion: "Handle the error or rethrow with context",
	},
	{
		id:       "magic_numbers",
		expr:     `\b\d{4,}\b`,
		severity: schema.SeverityLow,
		category: schema.CategoryQuality,
		message:  "Large numeric literal without a named constant",
	},
	{
		id:         "long_params",
		expr:       `function\s*\w*\s*\([^)]{80,}\)`,
		severity:   schema.SeverityLow,
		category:   schema.CategoryQuality,
		message:    "Long parameter list hurts readability",
		suggestion: "Group related parameters into an options object",
	},
	{
		id:         "complex_condition",
		expr:       `if\s*\([^)]{100,}\)`,
		severity:   schema.SeverityLow,
		category:   schema.CategoryQuality,
		message:    "Oversized condition is hard to reason about",
		suggestion: "Extract the condition into named boolean helpers",
	},
	{
		id:         "nested_callbacks",
		expr:       `callback.*callback.*callback`,
		severity:   schema.SeverityLow,
		category:   schema.CategoryQuality,
		message:    "Deeply nested callbacks",
		suggestion: "Flatten the flow with promises or async/await",
	},
	{
		id:       "todo_comment",
		expr:     `//\s*TODO|/\*\s*TODO`,
		severity: schema.SeverityLow,
		category: schema.CategoryQuality,
		message:  "Unresolved TODO marker",
	},
	{
		id:         "deprecated_api",
		expr:       `@deprecated|@obsolete`,
		severity:   schema.SeverityLow,
		category:   schema.CategoryQuality,
		message:    "Reference to a deprecated API",
		suggestion: "Migrate to the documented replacement",
	},
}
