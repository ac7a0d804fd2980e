package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chatsnap/chatsnap/internal/config"
	"github.com/chatsnap/chatsnap/internal/logging"
	"github.com/chatsnap/chatsnap/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"fetch": true, "sources": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if the file is a terminal (not piped).
func isTerminal(f *os.File) bool {
	stat, _ := f.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// setupLogging routes progress output to stderr so stdout stays clean for
// JSON results and the MCP protocol.
func setupLogging() {
	level := slog.LevelInfo
	if os.Getenv("CHATSNAP_DEBUG") != "" {
		level = slog.LevelDebug
	}
	handler := logging.NewHandler(os.Stderr, &logging.Options{
		Level: level,
		Color: isTerminal(os.Stderr),
	})
	slog.SetDefault(slog.New(handler))
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
        _           _
    ___| |__   __ _| |_ ___ _ __   __ _ _ __
   / __| '_ \ / _' | __/ __| '_ \ / _' | '_ \
  | (__| | | | (_| | |_\__ \ | | | (_| | |_) |
   \___|_| |_|\__,_|\__|___/_| |_|\__,_| .__/
                                       |_|
  Recent-message snapshots across your chats

  Usage: chatsnap <command> [options]
         chatsnap --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal(os.Stdin) {
		printBanner()
		return
	}

	// Handle --help/--version before config load (no config needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	setupLogging()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(filepath.Join(homeDir, ".chatsnap"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(cfg)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal(os.Stdin) {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'chatsnap --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	agg, err := newAggregator(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := mcp.Run(agg, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
