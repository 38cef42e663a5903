package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/barrace/core"
	"github.com/huangsam/barrace/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// sourceConfig clones the base config and applies the source and column arguments.
func (h *toolHandler) sourceConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	source := request.GetString("source", "")
	if source == "" {
		return nil, errors.New("source is required")
	}
	cfg := h.baseCfg.CloneWithSource(source)
	if c := request.GetString("date_column", ""); c != "" {
		cfg.DateColumn = c
	}
	if c := request.GetString("name_column", ""); c != "" {
		cfg.NameColumn = c
	}
	if c := request.GetString("value_column", ""); c != "" {
		cfg.ValueColumn = c
	}
	if cfg.DateColumn == cfg.NameColumn || cfg.DateColumn == cfg.ValueColumn || cfg.NameColumn == cfg.ValueColumn {
		return nil, fmt.Errorf("date, name and value columns must be distinct")
	}
	return cfg, nil
}

func (h *toolHandler) handleGetKeyframes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.sourceConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid keyframe parameters: %v", err)), nil
	}
	cfg.Range = request.GetInt("range", cfg.Range)
	cfg.Interpolations = request.GetInt("interpolations", cfg.Interpolations)
	if err := contract.ValidateSynthesisParams(cfg.Range, cfg.Interpolations); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid keyframe parameters: %v", err)), nil
	}

	result, _, err := core.GetKeyframeResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("keyframes failed: %v", err)), nil
	}

	return jsonResult("keyframes", result), nil
}

func (h *toolHandler) handleGetRollup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.sourceConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid rollup parameters: %v", err)), nil
	}

	summary, err := core.GetRollupResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rollup failed: %v", err)), nil
	}

	return jsonResult("rollup", summary), nil
}

// jsonResult renders v as indented JSON. An encoding failure becomes a tool
// error so the client never receives a partial or empty payload.
func jsonResult(what string, v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode %s: %v", what, err))
	}
	return mcp.NewToolResultText(string(jsonData))
}
