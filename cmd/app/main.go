package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/notes/internal"
	"github.com/starford/notes/internal/models"
	pkgconfig "github.com/starford/notes/pkg/config"
)

var version = "dev"

// options loads the config file named by the global --config flag. A missing
// file leaves the defaults in place.
func options(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	// stdout carries the protocol.
	opts = append(opts, internal.WithLogOutput(os.Stderr))
	if err := internal.RunMCP(ctx, opts...); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func preview(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	status := models.NoteStatus(cmd.String("status"))
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	opts = append(opts, internal.WithLogOutput(os.Stderr))
	return internal.Preview(ctx, os.Stdout, internal.PreviewOptions{
		Status: status,
		Query:  cmd.String("query"),
		Width:  int(cmd.Int("width")),
	}, opts...)
}

func export(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	n, err := internal.Export(ctx, cmd.String("dir"), opts...)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Printf("exported %d notes\n", n)
	return nil
}

func importNotes(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	n, err := internal.Import(ctx, cmd.String("dir"), opts...)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Printf("imported %d notes\n", n)
	return nil
}

func clearData(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("refusing to delete all notes without --yes")
	}
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.Clear(ctx, opts...); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

func main() {
	dirFlag := &cli.StringFlag{
		Name:     "dir",
		Aliases:  []string{"d"},
		Usage:    "Directory of Markdown note files",
		Required: true,
	}

	cmd := &cli.Command{
		Name:    "notes",
		Usage:   "Note taking server with reminders, labels, search and Markdown import/export",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools on stdin/stdout",
				Action: mcp,
			},
			{
				Name:   "preview",
				Usage:  "Print note previews to the terminal",
				Action: preview,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Notes to show: active, archived or deleted",
						Value: string(models.StatusActive),
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Only show notes matching the query, highlighted",
					},
					&cli.IntFlag{
						Name:  "width",
						Usage: "Preview width in columns",
						Value: 48,
					},
				},
			},
			{
				Name:   "export",
				Usage:  "Write every note to a directory as Markdown",
				Action: export,
				Flags:  []cli.Flag{dirFlag},
			},
			{
				Name:   "import",
				Usage:  "Create notes from the Markdown files in a directory",
				Action: importNotes,
				Flags:  []cli.Flag{dirFlag},
			},
			{
				Name:   "clear",
				Usage:  "Delete every note and label",
				Action: clearData,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm deletion",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
