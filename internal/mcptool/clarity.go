// Package mcptool открывает анализ ClariFi как инструмент MCP.
package mcptool

import (
	"context"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/models"
	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/service"
	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/validator"
)

const (
	ToolName = "get_clarity"

	genericFailure = "Something went wrong. Please try again."
)

// ClarityTool handles the get_clarity MCP tool.
type ClarityTool struct {
	provider service.Provider
	logger   *zap.Logger
}

func NewClarityTool(provider service.Provider, logger *zap.Logger) *ClarityTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClarityTool{provider: provider, logger: logger}
}

// Definition returns the MCP tool definition for get_clarity.
func (t *ClarityTool) Definition() mcp.Tool {
	names := make([]string, 0, 4)
	for _, c := range models.Contexts() {
		names = append(names, c.String())
	}

	return mcp.NewTool(ToolName,
		mcp.WithDescription(
			"Turn a dilemma into a short clarity report: a restated summary, "+
				"the key decision variables and one concrete next step.",
		),
		mcp.WithString("situation",
			mcp.Required(),
			mcp.Description("What is on your mind: the situation, dilemma or decision you are overthinking"),
		),
		mcp.WithString("context",
			mcp.Description("Category of the decision (default: Personal)"),
			mcp.Enum(names...),
		),
	)
}

// Handle processes the get_clarity tool call.
func (t *ClarityTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	situation := req.GetString("situation", "")
	if err := validator.ValidateSituation(situation); err != nil {
		return mcp.NewToolResultError("'situation' is required"), nil
	}

	c := models.DefaultContext
	if raw := strings.TrimSpace(req.GetString("context", "")); raw != "" {
		parsed, err := models.ParseContext(raw)
		if err != nil {
			return mcp.NewToolResultError("'context' must be one of Career, Study, Personal, Project"), nil
		}
		c = parsed
	}

	analysis, err := t.provider.GetAnalysis(ctx, situation, c)
	if err == nil && analysis == nil {
		err = errors.New("provider returned no analysis")
	}
	if err != nil {
		t.logger.Error("get_clarity failed", zap.String("context", c.String()), zap.Error(err))
		return mcp.NewToolResultError(genericFailure), nil
	}

	return mcp.NewToolResultText(service.FormatReport(*analysis)), nil
}

// NewServer creates the MCP server with the clarity tool registered.
func NewServer(version string, provider service.Provider, logger *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"clarifi",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	tool := NewClarityTool(provider, logger)
	s.AddTool(tool.Definition(), tool.Handle)
	return s
}
