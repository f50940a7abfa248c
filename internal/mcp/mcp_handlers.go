package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/prismscan/prism/analyzer"
	"github.com/prismscan/prism/analyzer/builtin"
	"github.com/prismscan/prism/analyzer/pattern"
	"github.com/prismscan/prism/core"
	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	engine  *core.Engine
}

func (h *toolHandler) handleAnalyzeSource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user := request.GetString("user", h.baseCfg.UserID)
	if user == "" {
		user = "mcp"
	}

	sub := core.Submission{
		Filename: request.GetString("filename", ""),
		Content:  []byte(request.GetString("content", "")),
		Language: schema.Language(request.GetString("language", "")),
		UserID:   user,
	}
	if sev := request.GetString("min_severity", ""); sev != "" {
		sub.Options = analyzer.Config{builtin.ConfigMinSeverity: sev}
	}

	id, err := h.engine.Submit(ctx, sub)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("submission rejected: %v", err)), nil
	}

	// The protocol is request/response, so block until the verdict is in.
	h.engine.Wait()

	analysis, err := h.engine.Result(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(analysis, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetAnalysis(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("analysis_id", "")
	if id == "" {
		return mcp.NewToolResultError("analysis_id is required"), nil
	}

	analysis, err := h.engine.Result(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(analysis, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListPatterns(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lang := schema.Language(request.GetString("language", ""))
	if _, ok := schema.ValidLanguages[lang]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported language %q", lang)), nil
	}

	type patternInfo struct {
		ID         string          `json:"id"`
		Expression string          `json:"expression"`
		Severity   schema.Severity `json:"severity"`
		Category   schema.Category `json:"category"`
		Message    string          `json:"message"`
		Suggestion string          `json:"suggestion,omitempty"`
		Reference  string          `json:"reference,omitempty"`
	}

	patterns := pattern.Catalog(lang).Patterns()
	rows := make([]patternInfo, len(patterns))
	for i, p := range patterns {
		rows[i] = patternInfo{
			ID:         p.ID,
			Expression: p.Matcher.String(),
			Severity:   p.Severity,
			Category:   p.Category,
			Message:    p.Description,
			Suggestion: p.Suggestion,
			Reference:  p.Reference,
		}
	}

	jsonData, _ := json.MarshalIndent(rows, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetUsageStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	usage, err := h.engine.UsageStats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute usage stats: %v", err)), nil
	}
	summary, err := h.engine.Summary(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute summary: %v", err)), nil
	}

	model := struct {
		Stats   schema.UsageStats   `json:"stats"`
		Summary schema.UsageSummary `json:"summary"`
	}{Stats: usage, Summary: summary}

	jsonData, _ := json.MarshalIndent(model, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
