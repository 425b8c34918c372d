package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/joshuapare/heapkit/internal/logger"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	logFile string
	locale  string

	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Drive and inspect fixed-capacity arena allocators",
	Long: `heapctl runs allocation workloads against a heapkit arena and reports
the resulting block layout, free-list state and allocator counters. Workloads
are YAML scripts of alloc, free, realloc, fill, check, verify and expect steps.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	rootCmd.Version = resolvedVersion()

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&logFile, "log-file", "", "Write allocator trace records to this file")
	rootCmd.PersistentFlags().
		StringVar(&locale, "locale", "en", "Locale for number formatting in reports")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// setupLogging enables debug tracing to stderr with --verbose, or to a file
// with --log-file.
func setupLogging(cmd *cobra.Command, args []string) error {
	closer, err := logger.Init(logger.Options{
		Enabled: verbose || logFile != "",
		Path:    logFile,
		Level:   slog.LevelDebug,
		JSON:    jsonOut,
	})
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	closeLog = closer
	return nil
}

// reportLanguage resolves --locale, falling back to English.
func reportLanguage() language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		printVerbose("Unknown locale %q, using en\n", locale)
		return language.English
	}
	return tag
}

// Output helpers. Reports go to stdout, failures to stderr.

// printInfo writes unless --quiet is set.
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose writes only with --verbose.
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError reports a command failure. It is the only place errors reach the
// terminal; cobra's own error echo is silenced.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "heapctl: %v\n", err)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
