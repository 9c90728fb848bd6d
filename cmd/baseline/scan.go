package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"baseline/internal/core/app"
	"baseline/internal/core/config"
	"baseline/internal/core/ports"
	"baseline/internal/shared/observability"
	"baseline/internal/shared/util"
	"baseline/internal/shared/version"
	uireport "baseline/internal/ui/report"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	flagRoot           string
	flagCatalog        string
	flagCatalogFormat  string
	flagAsOf           string
	flagFormat         string
	flagOutput         string
	flagWorkers        int
	flagScriptMode     string
	flagTolerateErrors bool
	flagNoColor        bool
	flagMinScore       int
)

var scanCmd = &cobra.Command{
	Use:   "scan [pattern...]",
	Short: "Scan source files and report feature support",
	Long:  "Scans files under the root matching the given glob patterns (default: scan.include from the config) and prints a per-file report.",
	RunE:  runScan,
}

func init() {
	f := scanCmd.Flags()
	f.StringVar(&flagRoot, "root", "", "directory to scan (overrides scan.root)")
	f.StringVar(&flagCatalog, "catalog", "", "catalog path: web-features data.json, YAML feature directory, or SQLite file")
	f.StringVar(&flagCatalogFormat, "catalog-format", "", "catalog format: json|yaml|sqlite (default: from extension)")
	f.StringVar(&flagAsOf, "as-of", "", "evaluate Baseline dates as of this date (YYYY-MM-DD)")
	f.StringVar(&flagFormat, "format", "", "output format: text|json")
	f.StringVarP(&flagOutput, "output", "o", "", "write the report to a file instead of stdout")
	f.IntVar(&flagWorkers, "workers", 0, "number of files processed concurrently (0 = one per CPU)")
	f.StringVar(&flagScriptMode, "script-mode", "", "script extraction: heuristic|syntax")
	f.BoolVar(&flagTolerateErrors, "tolerate-errors", false, "in syntax script mode, extract from scripts with syntax errors instead of skipping them")
	f.BoolVar(&flagNoColor, "no-color", false, "disable colored text output")
	f.IntVar(&flagMinScore, "min-score", 0, "fail when the overall score is below this value")
}

// applyScanFlags overlays explicitly set flags on the loaded config and revalidates it.
func applyScanFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Scan.Root = flagRoot
	}
	if flags.Changed("catalog") {
		cfg.Catalog.Path = flagCatalog
		if !flags.Changed("catalog-format") {
			cfg.Catalog.Format = config.DetectCatalogFormat(flagCatalog)
		}
	}
	if flags.Changed("catalog-format") {
		cfg.Catalog.Format = flagCatalogFormat
	}
	if flags.Changed("as-of") {
		cfg.Catalog.AsOf = flagAsOf
	}
	if flags.Changed("format") {
		cfg.Output.Format = flagFormat
	}
	if flags.Changed("output") {
		cfg.Output.Path = flagOutput
	}
	if flags.Changed("workers") {
		cfg.Scan.Workers = flagWorkers
	}
	if flags.Changed("script-mode") {
		cfg.Script.Mode = flagScriptMode
	}
	if flags.Changed("tolerate-errors") {
		cfg.Parse.TolerateErrors = flagTolerateErrors
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Catalog.Path == "" {
		return fmt.Errorf("no catalog configured: set catalog.path or pass --catalog")
	}
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyScanFlags(cmd, cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, version.Version)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	if cfg.Observability.MetricsAddr != "" {
		server := observability.NewMetricsServer(cfg.Observability.MetricsAddr)
		server.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(stopCtx)
		}()
	}

	cat, err := app.LoadCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	a, err := app.New(cfg, cat)
	if err != nil {
		return err
	}

	result, err := a.Scan(ctx, ports.ScanRequest{Patterns: args})
	if err != nil {
		return err
	}

	color := !flagNoColor && cfg.Output.Path == "" && isatty.IsTerminal(os.Stdout.Fd())
	renderer, err := uireport.NewRenderer(cfg.Output.Format, color)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, result); err != nil {
		return err
	}
	if cfg.Output.Path != "" {
		if err := util.WriteFileWithDirs(cfg.Output.Path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		slog.Info("report written", "path", cfg.Output.Path)
	} else if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
		return err
	}

	if flagMinScore > 0 && result.Summary.Score < flagMinScore {
		return fmt.Errorf("score %d is below the minimum of %d", result.Summary.Score, flagMinScore)
	}
	return nil
}
