package outwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/schema"
)

// shortIDLen is how many characters of an analysis ID list views show.
const shortIDLen = 8

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "%s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	numFmt := "%.*f"
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return fmt.Sprintf(numFmt, precision, v)
	}
	return fmtFloat, intFmt
}

// header formats a section header, prefixing the emoji only when enabled.
func header(cfg *contract.Config, emoji, text string) string {
	if cfg.UseEmojis && emoji != "" {
		return emoji + " " + text
	}
	return text
}

// scoreLabel returns the quality label for a global score, colored when enabled.
func scoreLabel(cfg *contract.Config, score float64) string {
	if cfg.UseColors {
		return contract.GetScoreColorLabel(score)
	}
	return schema.GetScoreLabel(score)
}

// severityLabel returns the label for an issue severity, colored when enabled.
func severityLabel(cfg *contract.Config, sev schema.Severity) string {
	if cfg.UseColors {
		return contract.GetSeverityColorLabel(sev)
	}
	return contract.GetSeverityLabel(sev)
}

// shortID trims an analysis ID for table display.
func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// getMaxTableFileWidth calculates the maximum width for filenames in table output
// based on terminal width and table configuration.
func getMaxTableFileWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the fixed columns (Rank + ID + Language + Status +
	// Issues + Score + Label) with borders and padding.
	baseWidth := 60

	// Calculate available space for the filename
	available := termWidth - baseWidth
	if available < 15 {
		// Minimum reasonable filename width
		return 15
	}
	if available > 70 {
		// Maximum filename width to prevent overly long paths
		return 70
	}
	return available
}
