package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/chatsnap/chatsnap/internal/errors"
	"github.com/chatsnap/chatsnap/internal/feed"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	agg *feed.Aggregator
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(agg *feed.Aggregator) *Handlers {
	return &Handlers{agg: agg}
}

// FetchRequest represents the arguments for messages_fetch.
type FetchRequest struct {
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// SourcesRequest represents the arguments for sources_list.
type SourcesRequest struct {
	Category string `json:"category,omitempty"`
}

// HandleFetch handles the messages_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	limit := input.Limit
	if limit == 0 {
		limit = 10
	}

	result, err := h.agg.Fetch(ctx, feed.FetchInput{
		Category: input.Category,
		Limit:    limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSources handles the sources_list tool call.
func (h *Handlers) HandleSources(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SourcesRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.agg.Sources(ctx, feed.SourcesInput{Category: input.Category})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult creates an MCP error result with a structured payload.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if snapErr, ok := err.(*errors.SnapError); ok {
		errorObj := map[string]any{
			"code":    snapErr.Code,
			"message": snapErr.Message,
			"status":  snapErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// paths or transport internals.
		if snapErr.Code != errors.ErrInternal && snapErr.Details != nil {
			errorObj["details"] = snapErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
