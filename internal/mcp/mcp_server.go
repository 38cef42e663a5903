// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/barrace/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the barrace MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Bar Chart Race Keyframe Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_keyframes ---
	s.AddTool(mcp.NewTool("get_keyframes",
		mcp.WithDescription("Build bar chart race keyframes from a CSV source of date, name and value rows."),
		mcp.WithString("source", mcp.Description("Local path or http(s) URL of the CSV source."), mcp.Required()),
		mcp.WithNumber("range", mcp.Description("Number of bars visible in each frame.")),
		mcp.WithNumber("interpolations", mcp.Description("Number of frames per interval between consecutive dates.")),
		mcp.WithString("date_column", mcp.Description("Header of the date column.")),
		mcp.WithString("name_column", mcp.Description("Header of the name column.")),
		mcp.WithString("value_column", mcp.Description("Header of the value column.")),
	), h.handleGetKeyframes)

	// --- 2. Tool: get_rollup ---
	s.AddTool(mcp.NewTool("get_rollup",
		mcp.WithDescription("Group a CSV source by date, listing the value of every name at each date."),
		mcp.WithString("source", mcp.Description("Local path or http(s) URL of the CSV source."), mcp.Required()),
		mcp.WithString("date_column", mcp.Description("Header of the date column.")),
		mcp.WithString("name_column", mcp.Description("Header of the name column.")),
		mcp.WithString("value_column", mcp.Description("Header of the value column.")),
	), h.handleGetRollup)

	return s
}

// StartMCPServer starts the barrace MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
