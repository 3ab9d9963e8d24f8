package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/decisionlog/internal"
	pkgconfig "github.com/starford/decisionlog/pkg/config"
)

var version = "dev"

type entrypoint func(ctx context.Context, opts ...internal.Option) error

// action loads the config and hands it to fn. A missing config file keeps
// the defaults, so the tool runs in any repository without setup.
func action(fn entrypoint) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		configPath := cmd.String("config")

		cfg := internal.NewDefaultConfig()
		if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		if root := cmd.String("root"); root != "" {
			cfg.Workspace.Root = root
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
			internal.WithVersion(version),
		}

		return fn(ctx, opts...)
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "decisionlog",
		Usage:   "Regenerate README tables, CHANGELOG.md and RELATIONS.md for an ADR and idea knowledge base",
		Version: version,
		Action:  action(internal.Generate),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Workspace root, overrides workspace.root from the config",
				Sources: cli.EnvVars("DECISIONLOG_ROOT"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Run one regeneration pass (default)",
				Action: action(internal.Generate),
			},
			{
				Name:   "check",
				Usage:  "Exit non-zero when generated files are out of date",
				Action: action(internal.Check),
			},
			{
				Name:   "watch",
				Usage:  "Regenerate whenever a document changes",
				Action: action(internal.Watch),
			},
			{
				Name:   "serve",
				Usage:  "Serve the read-only document API with live regeneration",
				Action: action(internal.Serve),
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdio",
				Action: action(internal.ServeMCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
