// SPDX-License-Identifier: Apache-2.0

// Package cli implements the logtally command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gemaraproj/logtally/internal/config"
	"github.com/gemaraproj/logtally/internal/extract"
	"github.com/gemaraproj/logtally/internal/logging"
	"github.com/gemaraproj/logtally/internal/report"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "dev"

// DefaultLogFile is scanned when no file argument is given.
const DefaultLogFile = "messages.txt"

// options holds raw flag values. They only override the loaded config when
// the corresponding flag was set explicitly.
type options struct {
	configPath   string
	marker       string
	minimum      int64
	comparison   string
	firstPerLine bool
	encoding     string
	output       string
	showValues   bool
	logLevel     string
	logFile      string
}

// NewRootCommand builds the logtally command with all subcommands.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "logtally [file]",
		Short: "Sum and average the numbers that follow a marker in a log file",
		Long: "logtally scans a text log for integers that directly follow a marker token\n" +
			"(default 'sent:'), optionally keeps only values above a threshold, and reports\n" +
			"how many matched along with their sum and average.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := DefaultLogFile
			if len(args) == 1 {
				path = args[0]
			}
			cfg, cleanup, err := prepare(cmd, opts, config.DefaultScanLogLevel)
			if err != nil {
				return err
			}
			defer cleanup()
			return scan(cmd.Context(), cmd.OutOrStdout(), cfg, path)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file (default ./"+config.DefaultFile+" if present)")
	flags.StringVarP(&opts.marker, "marker", "m", "", "literal token that precedes the number")
	flags.Int64Var(&opts.minimum, "min", 0, "only count values above this threshold")
	flags.StringVar(&opts.comparison, "comparison", "", "threshold comparison: gt or gte")
	flags.BoolVar(&opts.firstPerLine, "first-per-line", false, "take at most one value per line")
	flags.StringVar(&opts.encoding, "encoding", "", "input text encoding (utf-8, latin1, utf-16le, ...)")
	flags.StringVarP(&opts.output, "output", "o", "", "output format: text, json or yaml")
	flags.BoolVar(&opts.showValues, "show-values", false, "list matched values in text output")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")

	cmd.AddCommand(newDemoCommand(opts), newServeCommand(opts), newVersionCommand())
	return cmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// prepare loads and validates configuration and installs the logger at
// defaultLevel unless a level was configured.
func prepare(cmd *cobra.Command, opts *options, defaultLevel string) (*config.Config, func(), error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	applyFlags(cmd, opts, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logCfg := cfg.Logging(defaultLevel)
	logCfg.Output = cmd.ErrOrStderr()
	closeLog, err := logging.Setup(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	cleanup := func() {
		if err := closeLog(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "closing log:", err)
		}
	}
	return cfg, cleanup, nil
}

func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("marker") {
		cfg.Marker = opts.marker
	}
	if flags.Changed("min") {
		v := opts.minimum
		cfg.Minimum = &v
	}
	if flags.Changed("comparison") {
		cfg.Comparison = opts.comparison
	}
	if flags.Changed("first-per-line") {
		cfg.FirstPerLine = opts.firstPerLine
	}
	if flags.Changed("encoding") {
		cfg.Encoding = opts.encoding
	}
	if flags.Changed("output") {
		cfg.Output = opts.output
	}
	if flags.Changed("show-values") {
		cfg.ShowValues = opts.showValues
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = opts.logFile
	}
}

// scan runs one extraction and prints the report. Unreadable or missing
// logs and overflowing sums are reported on w and do not fail the command.
func scan(ctx context.Context, w io.Writer, cfg *config.Config, path string) error {
	criteria, err := cfg.Criteria()
	if err != nil {
		return err
	}
	enc, err := extract.LookupEncoding(cfg.Encoding)
	if err != nil {
		return err
	}

	extractor := extract.NewExtractor(extract.WithEncoding(enc))
	result, scanErr := extractor.Run(ctx, path, criteria)
	if scanErr != nil {
		var nf *extract.NotFoundError
		var ioErr *extract.IOError
		if !errors.As(scanErr, &nf) && !errors.As(scanErr, &ioErr) && !errors.Is(scanErr, extract.ErrSumOverflow) {
			return scanErr
		}
		slog.WarnContext(ctx, "log scan failed", "path", path, "error", scanErr)
	}

	doc := report.New(path, criteria, result, scanErr)
	return report.Write(w, cfg.Output, doc, cfg.ShowValues)
}
