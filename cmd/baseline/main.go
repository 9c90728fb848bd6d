package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"baseline/internal/core/config"

	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagVerbose bool
)

// errorHandled is set when a command already reported its failure.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "baseline",
	Short:         "Report the Baseline status of web platform features used in a project",
	Long:          "baseline scans HTML, CSS, JavaScript and TypeScript sources, resolves the features they use against the web-features catalog, and reports how widely each one is supported.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd.ErrOrStderr(), flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultConfigFile, "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads the config file. A missing default file yields the
// defaults; a missing file named explicitly is an error.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if _, err := os.Stat(flagConfig); os.IsNotExist(err) && !cmd.Flags().Changed("config") {
		slog.Debug("no config file, using defaults", "path", flagConfig)
		return config.Default(), nil
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", flagConfig, err)
	}
	return cfg, nil
}
