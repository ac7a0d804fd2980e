package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/chatsnap/chatsnap/internal/config"
	"github.com/chatsnap/chatsnap/internal/feed"
)

var fetchToolDef = mcp.NewTool("messages_fetch",
	mcp.WithDescription("Fetch the most recent messages across all conversations, newest first, filtered by category."),
	mcp.WithString("category",
		mcp.Description("Source filter: private, group, channel, or all."),
		mcp.Enum("private", "group", "channel", "all"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of messages to return (default 10)."),
	),
)

var sourcesToolDef = mcp.NewTool("sources_list",
	mcp.WithDescription("List the conversation sources admitted by a category filter."),
	mcp.WithString("category",
		mcp.Description("Source filter: private, group, channel, or all."),
		mcp.Enum("private", "group", "channel", "all"),
	),
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"messages_fetch": {
		def:     fetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"sources_list": {
		def:     sourcesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSources },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with chatsnap tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(agg *feed.Aggregator, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"chatsnap",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(agg)

	for _, name := range ValidateDisabledTools(cfg.DisabledTools) {
		slog.Warn("unknown tool in disabled_tools", "tool", name)
	}

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(agg *feed.Aggregator, cfg *config.Config, version string) error {
	s := NewServer(agg, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
