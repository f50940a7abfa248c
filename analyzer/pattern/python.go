package pattern

import "github.com/prismscan/prism/schema"

// pythonRules mirrors the classic bandit checks that a line scanner can
// express.
var pythonRules = []rule{
	{
		id:         "eval_usage",
		expr:       `\beval\s*\(`,
		severity:   schema.SeverityHigh,
		category:   schema.CategorySecurity,
		message:    "Use of eval() with dynamic input allows arbitrary code execution",
		suggestion: "Use ast.literal_eval or explicit parsing instead of eval",
		reference:  "CWE-95",
	},
	{
		id:         "exec_usage",
		expr:       `\bexec\s*\(`,
		severity:   schema.SeverityHigh,
		category:   schema.CategorySecurity,
		message:    "Use of exec() executes arbitrary code",
		suggestion: "Replace exec with direct calls or importlib",
		reference:  "CWE-95",
	},
	{
		id:         "pickle_load",
		expr:       `pickle\.loads?\s*\(`,
		severity:   schema.SeverityHigh,
		category:   schema.CategorySecurity,
		message:    "Unpickling untrusted data can execute arbitrary code",
		suggestion: "Use json or another data-only format for untrusted input",
		reference:  "CWE-502",
	},
	{
		id:         "subprocess_shell",
		expr:       `shell\s*=\s*True`,
		severity:   schema.SeverityHigh,
		category:   schema.CategorySecurity,
		message:    "subprocess with shell=True is prone to command injection",
		suggestion: "Pass an argument list and drop shell=True",
		reference:  "CWE-78",
	},
	{
		id:         "yaml_load",
		expr:       `yaml\.load\s*\(`,
		severity:   schema.SeverityMedium,
		category:   schema.CategorySecurity,
		message:    "yaml.load without a safe loader deserializes arbitrary objects",
		suggestion: "Use yaml.safe_load",
		reference:  "CWE-502",
	},
	{
		id:         "weak_hash",
		expr:       `hashlib\.(md5|sha1)\s*\(`,
		severity:   schema.SeverityMedium,
		category:   schema.CategorySecurity,
		message:    "MD5 and SHA-1 are broken for security purposes",
		suggestion: "Use hashlib.sha256 or stronger",
		reference:  "CWE-327",
	},
	{
		id:         "hardcoded_credentials",
		expr:       `(?i)\b(password|passwd|secret|api_?key|token)s?\s*=\s*["']`,
		severity:   schema.SeverityMedium,
		category:   schema.CategorySecurity,
		message:    "Possible hardcoded credential or secret",
		suggestion: "Load secrets from the environment or a secret manager",
		reference:  "CWE-798",
	},
	{
		id:         "insecure_random",
		expr:       `\brandom\.(random|randint|choice|randrange)\s*\(`,
		severity:   schema.SeverityLow,
		category:   schema.CategorySecurity,
		message:    "The random module is not suitable for security-sensitive values",
		suggestion: "Use the secrets module for tokens and keys",
		reference:  "CWE-338",
	},
	{
		id:         "hardcoded_tmp",
		expr:       `["']/tmp/`,
		severity:   schema.SeverityLow,
		category:   schema.CategorySecurity,
		message:    "Hardcoded /tmp path invites symlink races",
		suggestion: "Create temp files with the tempfile module",
		reference:  "CWE-377",
	},
	{
		id:        "assert_usage",
		expr:      `^\s*assert\b`,
		severity:  schema.SeverityLow,
		category:  schema.CategorySecurity,
		message:   "assert statements are stripped under python -O",
		reference: "CWE-676",
	},
}
