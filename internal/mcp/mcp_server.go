// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/prismscan/prism/core"
	"github.com/prismscan/prism/internal/contract"
)

// NewMCPServer initializes and configures the Prism MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, engine *core.Engine) *server.MCPServer {
	s := server.NewMCPServer(
		"Prism Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		engine:  engine,
	}

	// --- 1. Tool: analyze_source ---
	s.AddTool(mcp.NewTool("analyze_source",
		mcp.WithDescription("Analyze one source file with the registered pattern plugins and return its scored verdict."),
		mcp.WithString("filename", mcp.Description("File name the issues are reported against; the extension selects the language."), mcp.Required()),
		mcp.WithString("content", mcp.Description("Raw source text to analyze."), mcp.Required()),
		mcp.WithString("language", mcp.Description("Language override when the extension is ambiguous."), mcp.Enum("typescript", "javascript", "python", "sql")),
		mcp.WithString("min_severity", mcp.Description("Drop findings below this severity."), mcp.Enum("low", "medium", "high", "critical")),
		mcp.WithString("user", mcp.Description("User id recorded on the analysis (defaults to 'mcp').")),
	), h.handleAnalyzeSource)

	// --- 2. Tool: get_analysis ---
	s.AddTool(mcp.NewTool("get_analysis",
		mcp.WithDescription("Fetch a stored analysis by its id, including issues, metrics and scores."),
		mcp.WithString("analysis_id", mcp.Description("The id returned by a previous analyze_source call or scan."), mcp.Required()),
	), h.handleGetAnalysis)

	// --- 3. Tool: list_patterns ---
	s.AddTool(mcp.NewTool("list_patterns",
		mcp.WithDescription("List the detection rules of one language catalog."),
		mcp.WithString("language", mcp.Description("Catalog to list."), mcp.Required(), mcp.Enum("typescript", "javascript", "python", "sql")),
	), h.handleListPatterns)

	// --- 4. Tool: get_usage_stats ---
	s.AddTool(mcp.NewTool("get_usage_stats",
		mcp.WithDescription("Return aggregate usage counters and the summary over the analysis history."),
	), h.handleGetUsageStats)

	return s
}

// StartMCPServer starts the Prism MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, engine *core.Engine) error {
	s := NewMCPServer(baseCfg, engine)
	return server.ServeStdio(s)
}
