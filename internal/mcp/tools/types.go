package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// CredentialProvider extracts the caller's search provider credential from
// the request context.
type CredentialProvider func(context.Context) string

// Tool exposes the capabilities required by the MCP server registration lifecycle.
type Tool interface {
	Definition() mcp.Tool
	Handle(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Error codes surfaced to MCP clients in structured tool errors.
const (
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeInvalidParams = "invalid_params"
	ErrCodeInternalError = "internal_error"
)

// toolErrorResult builds a structured MCP error response carrying a
// machine-readable code alongside the human-readable message.
func toolErrorResult(code, message string) *mcp.CallToolResult {
	result, err := mcp.NewToolResultJSON(map[string]any{
		"code":    code,
		"message": message,
	})
	if err != nil {
		return mcp.NewToolResultError(message)
	}
	result.IsError = true
	return result
}
