// Package analyzer defines the plugin contract and the registry that
// binds plugin names to implementations.
package analyzer

import (
	"bytes"
	"context"
	"errors"

	"github.com/prismscan/prism/schema"
)

// Sentinel errors shared by the registry and plugin implementations.
var (
	// ErrPluginNotFound is returned when a name has no binding.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrInvalidPlugin is returned when a registration violates the
	// plugin contract.
	ErrInvalidPlugin = errors.New("invalid plugin")

	// ErrUnsupportedInput signals that a plugin cannot analyze the
	// given input. The engine records the plugin as skipped and moves
	// on instead of failing the submission.
	ErrUnsupportedInput = errors.New("unsupported input")
)

// Source is one submitted artifact handed to plugins.
type Source struct {
	Filename string          // Display name used in issues and history
	Language schema.Language // Declared language of the content
	Content  []byte          // Raw artifact bytes
}

// Config carries per-submission plugin options. A nil config is valid
// and means defaults everywhere.
type Config map[string]string

// Report is the result of one plugin run. Empty issues with zero
// metrics is the normal shape for a clean artifact, not an error.
type Report struct {
	Issues  []schema.Issue
	Metrics map[string]float64
}

// Plugin is the capability contract every analyzer implements.
// Implementations must be safe for concurrent use; the engine may run
// one plugin against many submissions at once.
type Plugin interface {
	// Name returns the unique name the plugin is registered under.
	Name() string

	// Languages returns the languages the plugin understands.
	// Declaring schema.LanguageAny makes the plugin language-agnostic,
	// so it runs for every submission.
	Languages() []schema.Language

	// Categories returns the issue categories the plugin can produce.
	Categories() []schema.Category

	// Analyze inspects one source artifact. Returning
	// ErrUnsupportedInput declines the input without failing the
	// submission; any other error is treated as a plugin fault.
	Analyze(ctx context.Context, src Source, cfg Config) (Report, error)
}

// binarySniffLen bounds how much content IsBinary inspects.
const binarySniffLen = 8000

// IsBinary reports whether content looks like a binary artifact.
// Plugins use it to decline inputs they cannot meaningfully scan.
func IsBinary(content []byte) bool {
	if len(content) > binarySniffLen {
		content = content[:binarySniffLen]
	}
	return bytes.IndexByte(content, 0) >= 0
}
