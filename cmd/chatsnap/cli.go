package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/chatsnap/chatsnap/internal/config"
	"github.com/chatsnap/chatsnap/internal/errors"
	"github.com/chatsnap/chatsnap/internal/feed"
	"github.com/chatsnap/chatsnap/internal/transport"
	"github.com/chatsnap/chatsnap/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "chatsnap",
		Usage:   "Recent-message snapshots across your chats",
		Version: Version,
		Commands: []*cli.Command{
			fetchCmd(cfg),
			sourcesCmd(cfg),
			serveCmd(cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// transportFlags are shared by every command that talks to a backend.
func transportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "transport", Usage: "Backend: telegram-export|discord"},
		&cli.StringFlag{Name: "export", Aliases: []string{"e"}, Usage: "Telegram export directory or result.json path", EnvVars: []string{"CHATSNAP_EXPORT"}},
		&cli.StringFlag{Name: "discord-token", Usage: "Discord bot token", EnvVars: []string{"CHATSNAP_DISCORD_TOKEN"}},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch the most recent messages across all conversations",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Value: "all", Usage: "Source filter: private|group|channel|all"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 10, Usage: "Maximum messages to return"},
			&cli.BoolFlag{Name: "strict", Usage: "Abort the run if any single source fails"},
		}, transportFlags()...),
		Action: func(c *cli.Context) error {
			agg, err := newAggregator(applyFlags(cfg, c))
			if err != nil {
				return outputError(err)
			}

			output, err := agg.Fetch(c.Context, feed.FetchInput{
				Category: c.String("category"),
				Limit:    c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// sourcesCmd creates the sources command.
func sourcesCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "sources",
		Usage: "List conversation sources admitted by a category filter",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Value: "all", Usage: "Source filter: private|group|channel|all"},
		}, transportFlags()...),
		Action: func(c *cli.Context) error {
			agg, err := newAggregator(applyFlags(cfg, c))
			if err != nil {
				return outputError(err)
			}

			output, err := agg.Sources(c.Context, feed.SourcesInput{
				Category: c.String("category"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the message digest web UI",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8787, Usage: "Port to listen on"},
		}, transportFlags()...),
		Action: func(c *cli.Context) error {
			agg, err := newAggregator(applyFlags(cfg, c))
			if err != nil {
				return outputError(err)
			}

			srv := web.NewServer(agg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// applyFlags overlays command-line flags onto the loaded config.
func applyFlags(cfg *config.Config, c *cli.Context) *config.Config {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	out := *cfg

	if v := c.String("transport"); v != "" {
		out.Transport = v
	}
	if v := c.String("export"); v != "" {
		out.TelegramExportPath = v
	}
	if v := c.String("discord-token"); v != "" {
		out.DiscordToken = v
	}
	if c.Bool("strict") {
		out.Strict = true
	}

	return &out
}

// newClient builds the configured transport backend.
func newClient(cfg *config.Config) (feed.Client, error) {
	switch cfg.Transport {
	case config.TransportTelegramExport:
		if cfg.TelegramExportPath == "" {
			return nil, errors.NewNotConfigured("telegram_export_path")
		}
		return transport.NewTelegramExport(cfg.TelegramExportPath), nil
	case config.TransportDiscord:
		if cfg.DiscordToken == "" {
			return nil, errors.NewNotConfigured("discord_token")
		}
		return transport.NewDiscord(cfg.DiscordToken)
	default:
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown transport %q (expected telegram-export or discord)", cfg.Transport))
	}
}

// newAggregator wires the configured transport into an aggregator.
func newAggregator(cfg *config.Config) (*feed.Aggregator, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return feed.NewAggregator(client, feed.Options{
		FetchFloor:    cfg.FetchFloor,
		Concurrency:   cfg.Concurrency,
		SourceTimeout: cfg.SourceTimeout(),
		Strict:        cfg.Strict,
	}, slog.Default()), nil
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if snapErr, ok := err.(*errors.SnapError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", snapErr.Code, snapErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
