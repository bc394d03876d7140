package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/empsent-cli/internal/config"
	"github.com/KaramelBytes/empsent-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Loader flags (override config if set)
	flagMissing    string
	flagDateLayout string
	flagDelimiter  string
	flagSheet      string

	// Loaded configuration
	cfg    *cfgpkg.Global
	cfgErr error
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "empsent",
	Short: "empsent: exploratory report for employee feedback surveys",
	Long: `empsent loads an employee feedback survey (CSV, TSV or XLSX), computes summary
statistics, group averages, correlations, word frequencies and weekly trends,
and renders them as charts with a Markdown summary.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.empsent/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagMissing, "missing", "", "missing value policy: fail | drop (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDateLayout, "date-layout", "", "Go time layout for Feedback_Date, e.g. 2006-01-02 (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|' (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagSheet, "sheet", "", "XLSX: sheet name to read (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: config commands can still run and fix the file
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg, cfgErr = nil, err
		logger = logging.New(os.Stderr, levelFor("info"), "text")
		return
	}
	cfg, cfgErr = c, nil

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("missing") {
		cfg.MissingPolicy = flagMissing
	}
	if f.Changed("date-layout") {
		cfg.DateLayout = flagDateLayout
	}
	if f.Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	if f.Changed("sheet") {
		cfg.Sheet = flagSheet
	}
	logger = logging.New(os.Stderr, levelFor(cfg.LogLevel), cfg.LogFormat)
	slog.SetDefault(logger)
}

func levelFor(configured string) string {
	if debug {
		return "debug"
	}
	return configured
}

// requireConfig returns the loaded configuration or the error that prevented loading it.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	if cfgErr != nil {
		return nil, cfgErr
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}
