// Package main provides a performance benchmarking tool for the Prism CLI.
// It measures scan times across generated source trees of different sizes,
// running each test multiple times, treating the first successful run against a
// store as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - prism binary installed and available in PATH
//
// Usage: go run benchmark/main.go [tree-base-dir]
//
//	tree-base-dir: Directory to generate and scan source trees in
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-store average, cold run and average of warm runs).
type BenchmarkResult struct {
	Tree        string
	Command     string
	NoStoreTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	TreeBase    string
	DBPath      string
	Timeout     time.Duration
	Workers     int
	NoStoreRuns int
	StoreRuns   int
	TestTrees   []string
	TreeFiles   map[string]int
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [tree-base-dir]\n", os.Args[0])
		os.Exit(1)
	}
	treeBase := os.Args[1]

	config := BenchmarkConfig{
		TreeBase:    treeBase,
		DBPath:      filepath.Join(treeBase, "prism-bench.db"),
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoStoreRuns: 3,
		StoreRuns:   4,
		TestTrees:   []string{"small", "medium", "large"},
		TreeFiles: map[string]int{
			"small":  60,
			"medium": 300,
			"large":  1200,
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Drop any database left over from a previous run
	fmt.Printf("Clearing store...\n")
	clearCmd := exec.Command("prism", "db", "clear",
		"--backend", "sqlite", "--database-connection-string", config.DBPath)
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear store: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Store cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies the prism binary and generates missing source trees
func checkPrerequisites(config BenchmarkConfig) error {
	// Check if prism is available
	if _, err := exec.LookPath("prism"); err != nil {
		return fmt.Errorf("prism binary not found in PATH")
	}

	// Generate any tree that does not exist yet
	for _, tree := range config.TestTrees {
		treePath := filepath.Join(config.TreeBase, tree)
		if _, err := os.Stat(treePath); os.IsNotExist(err) {
			fmt.Printf("Generating %s tree (%d files)\n", tree, config.TreeFiles[tree])
			if err := generateTree(treePath, config.TreeFiles[tree]); err != nil {
				return fmt.Errorf("failed to generate tree %s: %w", tree, err)
			}
		}
	}

	return nil
}

// runBenchmarks executes all benchmark tests across configured source trees
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d trees, %v timeout, %d workers, no-store: %d runs, store: %d runs\n",
		len(config.TestTrees), config.Timeout, config.Workers, config.NoStoreRuns, config.StoreRuns)

	for _, tree := range config.TestTrees {
		fmt.Printf("Benchmarking %s\n", tree)

		treePath := filepath.Join(config.TreeBase, tree)

		// Plain scan
		result := runBenchmarkSuite(config, tree, treePath, "scan", "full scan", "")
		results = append(results, result)

		// Strict-weighted scan
		result = runBenchmarkSuite(config, tree, treePath, "scan-strict",
			"strict-weighted scan", "--score-mode strict")
		results = append(results, result)

		// JSON export scan
		outFile := filepath.Join(config.TreeBase, "bench-out.json")
		result = runBenchmarkSuite(config, tree, treePath, "scan-json",
			"json output scan", fmt.Sprintf("--format json --output-file %s", outFile))
		results = append(results, result)
	}

	return results
}

// runBenchmarkSuite runs both no-store and store benchmarks for a scan variant
func runBenchmarkSuite(config BenchmarkConfig, tree, treePath, command, description, extraArgs string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, tree)

	// Helper to run a benchmark phase
	runPhase := func(backend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, treePath, command, extraArgs, backend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-store runs
	_, noStoreAvg := runPhase("none", config.NoStoreRuns, "No-store")

	// Phase 2: Store runs
	coldTime, warmAvg := runPhase("sqlite", config.StoreRuns, "Store")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-store average: %s, Cold time: %s, Warm average: %s\n", noStoreAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Tree:        tree,
		Command:     command,
		NoStoreTime: noStoreAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a prism scan multiple times with the specified backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, treePath, command, extraArgs, backend string, numRuns int) (coldTime float64, warmTimes []float64) {
	// Prepare command arguments
	args := []string{"scan", ".",
		"--backend", backend,
		"--workers", strconv.Itoa(config.Workers)}
	if backend == "sqlite" {
		args = append(args, "--database-connection-string", config.DBPath)
	}
	if extraArgs != "" {
		args = append(args, parseArgs(extraArgs)...)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("prism", args...)
		cmd.Dir = treePath

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

func parseArgs(argsStr string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false

	for _, r := range argsStr {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case ' ':
			if !inQuotes && current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			} else if inQuotes {
				current.WriteRune(r)
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)

	if command == "scan-json" {
		return strings.Contains(outputStr, "Wrote JSON")
	}

	return strings.Contains(outputStr, "Completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/prism_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"tree", "cmd", "no_store_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Tree, result.Command, result.NoStoreTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "scan", "Full Scan:")
	printCommandSummary(results, "scan-strict", "Strict-Weighted Scan:")
	printCommandSummary(results, "scan-json", "JSON Output Scan:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific scan variant
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-12s: No-store: %s, Cold: %s, Warm: %s\n", result.Tree, result.NoStoreTime, result.ColdTime, result.WarmTime)
		}
	}
}

// generateTree writes a synthetic source tree with a predictable mix of
// clean and flagged lines across the supported languages.
func generateTree(base string, files int) error {
	for i := 0; i < files; i++ {
		var name, body string
		switch i % 4 {
		case 0:
			name = filepath.Join("api", fmt.Sprintf("handler_%d.ts", i))
			body = typescriptBody(i)
		case 1:
			name = filepath.Join("web", fmt.Sprintf("widget_%d.js", i))
			body = typescriptBody(i)
		case 2:
			name = filepath.Join("jobs", fmt.Sprintf("task_%d.py", i))
			body = pythonBody(i)
		default:
			name = filepath.Join("db", fmt.Sprintf("query_%d.sql", i))
			body = sqlBody(i)
		}

		path := filepath.Join(base, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// typescriptBody emits a handler with mostly clean lines and an eval on
// every third file.
func typescriptBody(i int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "export function handler%d(req) {\n", i)
	for j := 0; j < 30; j++ {
		fmt.Fprintf(&b, "  const field%d = req.body.field%d;\n", j, j)
	}
	if i%3 == 0 {
		b.WriteString("  return eval(req.body.expr);\n")
	}
	b.WriteString("  return null;\n}\n")
	return b.String()
}

// pythonBody emits a task module with a shell=True call on every third file.
func pythonBody(i int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "def task_%d(payload):\n", i)
	for j := 0; j < 30; j++ {
		fmt.Fprintf(&b, "    value_%d = payload.get(\"key_%d\")\n", j, j)
	}
	if i%3 == 0 {
		b.WriteString("    subprocess.run(payload, shell=True)\n")
	}
	b.WriteString("    return None\n")
	return b.String()
}

// sqlBody emits a commented query file with a SELECT * on every third file.
func sqlBody(i int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- query %d\n", i)
	for j := 0; j < 10; j++ {
		fmt.Fprintf(&b, "SELECT id, name FROM table_%d WHERE id = %d;\n", j, i)
	}
	if i%3 == 0 {
		b.WriteString("SELECT * FROM audit_log;\n")
	}
	return b.String()
}
