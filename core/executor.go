package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prismscan/prism/analyzer"
	"github.com/prismscan/prism/analyzer/builtin"
	"github.com/prismscan/prism/analyzer/pattern"
	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/internal/outwriter"
	"github.com/prismscan/prism/schema"
)

// ExecuteScan submits every analyzable file under the given paths, waits
// for the engine to drain, and prints results worst first. It serves as
// the main entry point for the 'scan' command.
func ExecuteScan(ctx context.Context, cfg *contract.Config, engine *Engine, paths []string) error {
	start := time.Now()

	if len(paths) == 0 {
		paths = []string{"."}
	}
	files, err := collectScanFiles(cfg, paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no files found to scan")
	}

	ids := submitScanFiles(ctx, cfg, engine, files)
	engine.Wait()
	if len(ids) == 0 {
		return errors.New("no files were accepted for analysis")
	}

	analyses := make([]*schema.Analysis, 0, len(ids))
	for _, id := range ids {
		analysis, err := engine.Result(ctx, id)
		if err != nil {
			contract.LogWarn("Cannot fetch analysis result", err)
			continue
		}
		analyses = append(analyses, analysis)
	}
	sortAnalysesWorstFirst(analyses)

	duration := time.Since(start)
	if len(analyses) == 1 {
		if err := outwriter.PrintAnalysisDetail(analyses[0], cfg, duration); err != nil {
			return err
		}
	} else {
		if err := outwriter.PrintAnalysisList(analyses, cfg, duration); err != nil {
			return err
		}
	}

	return checkFailUnder(cfg, analyses)
}

// ExecuteResult loads one analysis by id and prints it in full.
func ExecuteResult(ctx context.Context, cfg *contract.Config, engine *Engine, id string) error {
	start := time.Now()
	analysis, err := engine.Result(ctx, id)
	if err != nil {
		return err
	}
	return outwriter.PrintAnalysisDetail(analysis, cfg, time.Since(start))
}

// ExecuteAnalyses queries stored analyses by user or by status and prints
// the matching records.
func ExecuteAnalyses(ctx context.Context, cfg *contract.Config, engine *Engine, status string) error {
	start := time.Now()

	var analyses []*schema.Analysis
	var err error
	switch {
	case status != "":
		analyses, err = engine.AnalysesByStatus(ctx, schema.Status(status))
	case cfg.UserID != "":
		analyses, err = engine.AnalysesByUser(ctx, cfg.UserID, cfg.Offset, cfg.ResultLimit)
	default:
		return errors.New("either --user or --status is required")
	}
	if err != nil {
		return err
	}

	return outwriter.PrintAnalysisList(analyses, cfg, time.Since(start))
}

// ExecuteHistory prints the most recent history ledger entries.
func ExecuteHistory(ctx context.Context, cfg *contract.Config, engine *Engine) error {
	records, err := engine.History(ctx, cfg.ResultLimit)
	if err != nil {
		return err
	}
	return outwriter.PrintHistory(records, cfg)
}

// ExecuteStats prints the usage counters and the derived summary.
func ExecuteStats(ctx context.Context, cfg *contract.Config, engine *Engine) error {
	usage, err := engine.UsageStats(ctx)
	if err != nil {
		return err
	}
	summary, err := engine.Summary(ctx)
	if err != nil {
		return err
	}
	return outwriter.PrintStats(usage, summary, cfg)
}

// ExecutePatterns prints the detection rule catalog for the configured
// language.
func ExecutePatterns(cfg *contract.Config) error {
	if cfg.Language == "" {
		known := pattern.Languages()
		names := make([]string, len(known))
		for i, lang := range known {
			names[i] = string(lang)
		}
		return fmt.Errorf("--language is required (built-in catalogs: %s)", strings.Join(names, ", "))
	}
	return outwriter.PrintPatterns(cfg.Language, pattern.Catalog(cfg.Language).Patterns(), cfg)
}

// collectScanFiles expands the path arguments into the list of files to
// submit. Files named explicitly are always included; directory walks
// include only files whose language is detectable (and matching the
// configured language when one is set), skipping excluded paths.
func collectScanFiles(cfg *contract.Config, paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	include := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("cannot read scan path: %w", err)
		}
		if !info.IsDir() {
			include(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && contract.ShouldIgnore(path+"/", cfg.Excludes) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if contract.ShouldIgnore(path, cfg.Excludes) {
				return nil
			}
			lang, ok := schema.DetectLanguage(path)
			if !ok {
				return nil
			}
			if cfg.Language != "" && lang != cfg.Language {
				return nil
			}
			include(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// submitScanFiles reads and submits files through a bounded worker pool
// of cfg.Workers goroutines. Unreadable or rejected files are warned
// about and skipped; accepted ids are returned.
func submitScanFiles(ctx context.Context, cfg *contract.Config, engine *Engine, files []string) []string {
	jobs := make(chan string, len(files))
	for _, f := range files {
		jobs <- f
	}
	close(jobs)

	var mu sync.Mutex
	var ids []string
	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				content, err := os.ReadFile(path)
				if err != nil {
					contract.LogWarn("Cannot read file", err)
					continue
				}
				id, err := engine.Submit(ctx, Submission{
					Filename: path,
					Content:  content,
					Language: cfg.Language,
					UserID:   cfg.UserID,
					Options:  scanOptions(cfg),
				})
				if err != nil {
					contract.LogWarn(fmt.Sprintf("Cannot submit %s", path), err)
					continue
				}
				mu.Lock()
				ids = append(ids, id)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return ids
}

// scanOptions maps scan flags onto per-submission plugin options.
func scanOptions(cfg *contract.Config) analyzer.Config {
	if cfg.MinSeverity == "" {
		return nil
	}
	return analyzer.Config{builtin.ConfigMinSeverity: string(cfg.MinSeverity)}
}

// sortAnalysesWorstFirst orders analyses by ascending global score so
// the files needing attention lead the report. Failed analyses carry a
// zero score and therefore rank first.
func sortAnalysesWorstFirst(analyses []*schema.Analysis) {
	sort.Slice(analyses, func(i, j int) bool {
		if analyses[i].GlobalScore != analyses[j].GlobalScore {
			return analyses[i].GlobalScore < analyses[j].GlobalScore
		}
		if analyses[i].Filename != analyses[j].Filename {
			return analyses[i].Filename < analyses[j].Filename
		}
		return analyses[i].ID < analyses[j].ID
	})
}

// checkFailUnder enforces the CI gating threshold. Analyses arrive
// worst first, so the first offender is the worst one.
func checkFailUnder(cfg *contract.Config, analyses []*schema.Analysis) error {
	if cfg.FailUnder <= 0 {
		return nil
	}
	for _, a := range analyses {
		if a.GlobalScore < cfg.FailUnder {
			return fmt.Errorf("%s scored %.2f, below the fail-under threshold %.2f",
				a.Filename, a.GlobalScore, cfg.FailUnder)
		}
	}
	return nil
}
