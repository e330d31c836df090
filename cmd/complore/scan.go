package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/complore/internal/output"
	"github.com/panbanda/complore/internal/progress"
	"github.com/panbanda/complore/internal/report"
	outsvc "github.com/panbanda/complore/internal/service/output"
	scansvc "github.com/panbanda/complore/internal/service/scanner"
	"github.com/panbanda/complore/pkg/config"
)

func scanFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to config file (TOML, YAML, or JSON)",
			EnvVars: []string{"COMPLORE_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output file; - writes to stdout (default: report.json for json, report.html for html)",
		},
		&cli.StringFlag{
			Name:    "report",
			Aliases: []string{"r"},
			Usage:   "Report type: html, compact, json, yaml, toon, text, markdown",
		},
		&cli.StringFlag{
			Name:  "height",
			Usage: "Metric driving bar height: loc, activity, functions, imports, maxfunc",
		},
		&cli.StringFlag{
			Name:  "color",
			Usage: "Metric driving bar color: loc, activity, functions, imports, maxfunc",
		},
		&cli.BoolFlag{
			Name:    "folders-only",
			Aliases: []string{"foldersOnly"},
			Usage:   "Aggregate files into one record per directory",
		},
		&cli.StringSliceFlag{
			Name:    "ignore",
			Aliases: []string{"i"},
			Usage:   "Comma-separated ignore patterns in .gitignore syntax",
		},
		&cli.IntFlag{
			Name:  "top",
			Usage: "Rows in text and markdown summaries",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Concurrent file workers (default: 2x CPU count)",
		},
		&cli.StringFlag{
			Name:  "activity",
			Usage: "Activity backend: git, exec, off",
		},
		&cli.BoolFlag{
			Name:  "no-gitignore",
			Usage: "Do not honour .gitignore files",
		},
		&cli.StringFlag{
			Name:  "title",
			Usage: "Heading of HTML reports",
		},
		&cli.BoolFlag{
			Name:  "collapsed",
			Usage: "Start every flamegraph section collapsed",
		},
		&cli.BoolFlag{
			Name:  "no-progress",
			Usage: "Do not draw a progress bar",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable verbose output",
		},
	}
}

// newLogger logs to stderr: warnings by default, everything when verbose.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig loads --config, or searches the standard locations. A missing
// or malformed file is logged and the defaults are used.
func loadConfig(c *cli.Context, logger *slog.Logger) *config.Config {
	cfg, source, err := config.LoadFileOrDefault(c.String("config"))
	switch {
	case err != nil:
		logger.Warn("config not loaded, using defaults", "error", err)
	case source != "":
		logger.Debug("config loaded", "source", source)
	}
	return cfg
}

// applyFlags overrides config values with the flags the user set.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.Args().Len() > 0 {
		cfg.Paths = c.Args().Slice()
	}
	if c.IsSet("out") {
		cfg.Out = c.String("out")
	}
	if c.IsSet("report") {
		cfg.Report = c.String("report")
	}
	if c.IsSet("height") {
		cfg.Height = c.String("height")
	}
	if c.IsSet("color") {
		cfg.Color = c.String("color")
	}
	if c.IsSet("folders-only") {
		cfg.FoldersOnly = c.Bool("folders-only")
	}
	if c.IsSet("ignore") {
		cfg.Ignore = config.SplitList(c.StringSlice("ignore")...)
	}
	if c.IsSet("top") {
		cfg.Top = c.Int("top")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("activity") {
		cfg.Activity.Backend = c.String("activity")
	}
	if c.IsSet("collapsed") {
		cfg.Collapsed = c.Bool("collapsed")
	}
	if c.Bool("no-gitignore") {
		cfg.Exclude.Gitignore = false
	}
}

func layoutFromConfig(l config.LayoutConfig) report.Layout {
	return report.Layout{
		PxPer10LOC:   l.PxPer10LOC,
		ColumnWidth:  l.ColumnWidth,
		GapY:         l.GapY,
		FolderPad:    l.FolderPad,
		FolderBorder: l.FolderBorder,
	}
}

// sectionState is the initial open/closed state of flamegraph sections.
func sectionState(cfg *config.Config) *report.SectionState {
	state := report.NewSectionState()
	if cfg.Collapsed {
		state.SetAll(false)
	}
	return state
}

func runScanCmd(c *cli.Context) error {
	verbose := c.Bool("verbose")
	logger := newLogger(verbose)

	cfg := loadConfig(c, logger)
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		logger.Warn("questionable configuration", "error", err)
	}

	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	showProgress := !verbose && !c.Bool("no-progress")
	scanner := scansvc.New(
		scansvc.WithRoot(root),
		scansvc.WithConfig(cfg),
		scansvc.WithProgress(progress.Factory("Scanning files...", showProgress)),
		scansvc.WithLogger(logger),
	)
	result, err := scanner.Scan(ctx, cfg.Paths, cfg.Ignore, cfg.FoldersOnly)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	if len(result.Items) == 0 {
		color.Yellow("No files matched %s", strings.Join(cfg.Paths, ", "))
	}

	renderer, err := report.NewRenderer(
		report.WithLayout(layoutFromConfig(cfg.Layout)),
		report.WithTitle(c.String("title")),
		report.WithSectionState(sectionState(cfg)),
	)
	if err != nil {
		return err
	}

	format := output.ParseFormat(cfg.Report)
	dest := cfg.Out
	if dest == "" {
		dest = output.DefaultPath(format)
	}
	writer, err := outsvc.New(
		outsvc.WithFormat(format),
		outsvc.WithFile(dest),
		outsvc.WithRenderer(renderer),
		outsvc.WithTop(cfg.Top),
		outsvc.WithColor(!color.NoColor),
	)
	if err != nil {
		return err
	}

	written, err := writer.Write(result, cfg.Components())
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if written != "" {
		color.Green("Wrote %s", written)
	}
	return nil
}
