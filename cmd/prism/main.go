// Package main is the entrypoint for the prism CLI.
package main

import (
	"github.com/prismscan/prism/cmd"
	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/internal/iostore"
)

func main() {
	err := cmd.Execute()

	// Flush profiles and close store handles before deciding the exit code.
	if profErr := cmd.StopProfiling(); profErr != nil {
		contract.LogWarn("Cannot stop profiling", profErr)
	}
	iostore.CloseStores()

	if err != nil {
		contract.LogFatal("Cannot run prism", err)
	}
}
