// Package core implements the analysis engine. The engine drives each
// submission through the Pending -> Processing -> {Completed, Failed}
// state machine: it resolves applicable plugins, fans them out
// concurrently, merges their reports, scores the outcome, and hands
// the terminal analysis to persistence and the history ledger.
package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prismscan/prism/analyzer"
	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/internal/observability"
	"github.com/prismscan/prism/internal/stats"
	"github.com/prismscan/prism/schema"
)

// ErrAnalysisNotFound is returned when an analysis id is unknown.
var ErrAnalysisNotFound = errors.New("analysis not found")

// Progress milestones for the polling view of a submission. The span
// between processing and done is spread across plugin completions.
const (
	progressPending    = 0
	progressProcessing = 10
	progressPluginSpan = 80
	progressDone       = 100
)

// Submission is one artifact handed to Submit.
type Submission struct {
	Filename string          // Display name recorded on issues and history
	Content  []byte          // Raw artifact bytes
	Language schema.Language // Empty means detect from the filename
	UserID   string
	Options  analyzer.Config // Optional per-submission plugin options
}

// Engine coordinates plugin execution, scoring and persistence for
// submitted artifacts. Construct one at bootstrap and share it; all
// methods are safe for concurrent use.
type Engine struct {
	cfg      *contract.Config
	registry *analyzer.Registry
	store    contract.AnalysisStore
	stats    *stats.Service
	logger   *slog.Logger

	mu       sync.Mutex
	progress map[string]int // percent by analysis id, in-flight only
	wg       sync.WaitGroup
}

// NewEngine builds an engine over the given registry and stores.
// A nil logger silences engine logging.
func NewEngine(cfg *contract.Config, registry *analyzer.Registry, store contract.AnalysisStore, statsSvc *stats.Service, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		cfg:      cfg,
		registry: registry,
		store:    store,
		stats:    statsSvc,
		logger:   logger,
		progress: make(map[string]int),
	}
}

// Submit validates and accepts one submission, returning its analysis
// id immediately. Processing happens asynchronously under the
// configured per-submission timeout; poll Status or call Wait to
// observe completion.
func (e *Engine) Submit(ctx context.Context, sub Submission) (string, error) {
	lang, err := resolveLanguage(sub)
	if err != nil {
		return "", err
	}
	if len(sub.Content) == 0 {
		return "", fmt.Errorf("empty submission content for %q", sub.Filename)
	}

	builder := NewAnalysisBuilder(sub, lang).WithScoreMode(e.cfg.ScoreMode)
	if err := e.store.Save(ctx, builder.Snapshot()); err != nil {
		return "", fmt.Errorf("failed to persist submission: %w", err)
	}
	e.setProgress(builder.ID(), progressPending)
	e.logger.Info("submission accepted",
		"id", builder.ID(), "filename", sub.Filename, "language", lang, "user", sub.UserID)

	e.wg.Add(1)
	observability.ActiveAnalyses.Inc()
	go e.process(builder, sub, lang)

	return builder.ID(), nil
}

// process runs one submission to a terminal state. It owns the
// builder exclusively; plugin goroutines report back through
// per-plugin slots so no report is shared across submissions.
func (e *Engine) process(builder *AnalysisBuilder, sub Submission, lang schema.Language) {
	defer e.wg.Done()
	defer observability.ActiveAnalyses.Dec()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.Timeout)
	defer cancel()
	ctx = withAnalysisID(ctx, builder.ID())
	ctx = withUserID(ctx, sub.UserID)

	builder.StartProcessing()
	if err := e.store.Save(ctx, builder.Snapshot()); err != nil {
		contract.LogWarn("Failed to persist processing transition", err)
	}
	e.setProgress(builder.ID(), progressProcessing)

	plugins := e.registry.ForLanguage(lang)
	src := analyzer.Source{Filename: sub.Filename, Language: lang, Content: sub.Content}
	reports := make([]analyzer.Report, len(plugins))
	skipped := make([]bool, len(plugins))
	var done atomic.Int64

	group, groupCtx := errgroup.WithContext(ctx)
	for i, plugin := range plugins {
		group.Go(func() error {
			report, err := e.runPlugin(groupCtx, plugin, src, sub.Options)
			switch {
			case err == nil:
				observability.PluginRunsTotal.WithLabelValues(plugin.Name(), observability.OutcomeOK).Inc()
				reports[i] = report
			case errors.Is(err, analyzer.ErrUnsupportedInput):
				observability.PluginRunsTotal.WithLabelValues(plugin.Name(), observability.OutcomeSkipped).Inc()
				e.logger.Info("plugin declined input", "id", builder.ID(), "plugin", plugin.Name())
				skipped[i] = true
			default:
				observability.PluginRunsTotal.WithLabelValues(plugin.Name(), observability.OutcomeFault).Inc()
				return fmt.Errorf("plugin %s: %w", plugin.Name(), err)
			}
			e.setProgress(builder.ID(), pluginProgress(int(done.Add(1)), len(plugins)))
			return nil
		})
	}
	runErr := group.Wait()

	for i, plugin := range plugins {
		switch {
		case skipped[i]:
			builder.AddSkipped(plugin.Name())
		case runErr == nil:
			builder.AddReport(reports[i])
		}
	}

	var analysis *schema.Analysis
	switch {
	case runErr == nil:
		analysis = builder.Complete()
	case errors.Is(runErr, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		detail := fmt.Sprintf("analysis exceeded the %s deadline", e.cfg.Timeout)
		analysis = builder.Fail(schema.FaultTimeout, detail)
	default:
		analysis = builder.Fail(schema.FaultPlugin, runErr.Error())
	}

	e.finish(ctx, analysis, analyzerNames(plugins), start)
}

// runPlugin invokes one plugin with panic recovery and timing. A panic
// surfaces as an ordinary plugin fault instead of tearing the engine
// down.
func (e *Engine) runPlugin(ctx context.Context, plugin analyzer.Plugin, src analyzer.Source, opts analyzer.Config) (report analyzer.Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			report = analyzer.Report{}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	start := time.Now()
	defer func() {
		observability.PluginDuration.WithLabelValues(plugin.Name()).Observe(time.Since(start).Seconds())
	}()
	return plugin.Analyze(ctx, src, opts)
}

// finish persists the terminal analysis, appends the history record
// and releases progress tracking. The submission context may already
// be past its deadline, so persistence runs detached from it.
func (e *Engine) finish(ctx context.Context, analysis *schema.Analysis, analyzerUsed string, start time.Time) {
	saveCtx := context.WithoutCancel(ctx)

	if err := e.store.Save(saveCtx, analysis); err != nil {
		contract.LogWarn("Failed to persist terminal analysis", err)
	}
	if err := e.stats.Record(saveCtx, analysis, analyzerUsed); err != nil {
		contract.LogWarn("Failed to record analysis history", err)
	}

	e.clearProgress(analysis.ID)
	observability.SubmissionsTotal.WithLabelValues(string(analysis.Status)).Inc()
	observability.AnalysisDuration.WithLabelValues(string(analysis.Language)).Observe(time.Since(start).Seconds())
	for _, issue := range analysis.Issues {
		observability.IssuesTotal.WithLabelValues(string(issue.Severity), string(issue.Category)).Inc()
	}

	if analysis.Status == schema.StatusFailed {
		e.logger.Warn("analysis failed",
			"id", analysis.ID, "kind", analysis.FailureKind, "detail", analysis.FailureDetail)
		return
	}
	e.logger.Info("analysis completed",
		"id", analysis.ID, "issues", len(analysis.Issues), "global_score", analysis.GlobalScore)
}

// Status returns the polling view of an analysis. In-flight
// submissions report engine-side progress; terminal ones come from
// the store.
func (e *Engine) Status(ctx context.Context, id string) (schema.ProgressReport, error) {
	e.mu.Lock()
	percent, inFlight := e.progress[id]
	e.mu.Unlock()
	if inFlight {
		status := schema.StatusProcessing
		if percent == progressPending {
			status = schema.StatusPending
		}
		return schema.ProgressReport{Status: status, Progress: percent}, nil
	}

	analysis, err := e.Result(ctx, id)
	if err != nil {
		return schema.ProgressReport{}, err
	}
	return schema.ProgressReport{Status: analysis.Status, Progress: storedProgress(analysis.Status)}, nil
}

// Result returns the full analysis record for an id.
func (e *Engine) Result(ctx context.Context, id string) (*schema.Analysis, error) {
	analysis, err := e.store.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrAnalysisNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis %s: %w", id, err)
	}
	return analysis, nil
}

// AnalysesByUser returns a user's analyses, newest first.
func (e *Engine) AnalysesByUser(ctx context.Context, userID string, offset, limit int) ([]*schema.Analysis, error) {
	return e.store.GetByUser(ctx, userID, offset, limit)
}

// AnalysesByStatus returns every analysis in the given lifecycle status.
func (e *Engine) AnalysesByStatus(ctx context.Context, status schema.Status) ([]*schema.Analysis, error) {
	if _, ok := schema.ValidStatuses[status]; !ok {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	return e.store.GetByStatus(ctx, status)
}

// History returns recent history records, newest first.
func (e *Engine) History(ctx context.Context, limit int) ([]schema.HistoryRecord, error) {
	return e.stats.History(ctx, limit)
}

// UsageStats returns the aggregate usage counters.
func (e *Engine) UsageStats(ctx context.Context) (schema.UsageStats, error) {
	return e.stats.UsageStats(ctx)
}

// Summary returns the condensed reporting view of the ledger.
func (e *Engine) Summary(ctx context.Context) (schema.UsageSummary, error) {
	return e.stats.Summary(ctx)
}

// Wait blocks until every in-flight submission reaches a terminal
// state.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Close drains in-flight submissions and releases tracking state. It
// does not close the stores; their owner does.
func (e *Engine) Close() error {
	e.Wait()
	e.mu.Lock()
	e.progress = make(map[string]int)
	e.mu.Unlock()
	return nil
}

func (e *Engine) setProgress(id string, percent int) {
	e.mu.Lock()
	e.progress[id] = percent
	e.mu.Unlock()
}

func (e *Engine) clearProgress(id string) {
	e.mu.Lock()
	delete(e.progress, id)
	e.mu.Unlock()
}

// pluginProgress maps plugin completions onto the processing span.
func pluginProgress(done, total int) int {
	if total <= 0 {
		return progressProcessing + progressPluginSpan
	}
	return progressProcessing + progressPluginSpan*done/total
}

// storedProgress derives a progress percent for analyses that are no
// longer tracked in memory, e.g. after a restart.
func storedProgress(status schema.Status) int {
	switch status {
	case schema.StatusPending:
		return progressPending
	case schema.StatusProcessing:
		return progressProcessing
	default:
		return progressDone
	}
}

// resolveLanguage applies the declared language or falls back to
// filename detection, rejecting anything plugins cannot understand.
func resolveLanguage(sub Submission) (schema.Language, error) {
	if sub.Filename == "" {
		return "", errors.New("submission filename is required")
	}
	lang := sub.Language
	if lang == "" {
		detected, ok := schema.DetectLanguage(sub.Filename)
		if !ok {
			return "", fmt.Errorf("cannot detect language for %q; declare one explicitly", sub.Filename)
		}
		lang = detected
	}
	if _, ok := schema.ValidLanguages[lang]; !ok {
		return "", fmt.Errorf("invalid submission language %q", lang)
	}
	return lang, nil
}

// analyzerNames renders the plugin set for the history ledger.
func analyzerNames(plugins []analyzer.Plugin) string {
	if len(plugins) == 0 {
		return "none"
	}
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name()
	}
	return strings.Join(names, ",")
}
