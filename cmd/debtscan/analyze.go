package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/debtscan/debtscan/domain"
	"github.com/debtscan/debtscan/internal/config"
	"github.com/debtscan/debtscan/internal/reporter"
	"github.com/debtscan/debtscan/service"
)

// AnalyzeCommand runs the full eleven-stage pipeline over a set of paths
// and renders the resulting report in the requested format.
type AnalyzeCommand struct {
	configFile   string
	outputFormat string
	outputPath   string
	coverageFile string
	verbose      bool
	quiet        bool
	jobs         int
	noParallel   bool
	exclude      []string
	watch        bool
}

// NewAnalyzeCommand creates a new analyze command.
func NewAnalyzeCommand() *AnalyzeCommand {
	return &AnalyzeCommand{
		outputFormat: "text",
	}
}

// CreateCobraCommand creates the cobra command for full analysis.
func (a *AnalyzeCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [paths...]",
		Short: "Analyze source for technical debt",
		Long: `Parse Rust and Python sources, derive complexity and role metrics for
every function, build a cross-file call graph, optionally layer in LCOV
coverage, and emit a ranked list of technical-debt items alongside
structural findings such as god objects, dead code, duplication, and
error-handling gaps.

Examples:
  # Analyze the current directory, text output to stdout
  debtscan analyze .

  # Analyze with coverage data, write a JSON report to a file
  debtscan analyze --coverage coverage.lcov --format json --output report.json src/

  # Analyze several paths with a project config file
  debtscan analyze --config .debtscan.toml cmd/ internal/

  # Re-run automatically whenever a watched file changes
  debtscan analyze --watch src/`,
		Args: cobra.ArbitraryArgs,
		RunE: a.runAnalyze,
	}

	cmd.Flags().StringVarP(&a.configFile, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVarP(&a.outputFormat, "format", "f", "text", "Output format (text, json, yaml, csv)")
	cmd.Flags().StringVarP(&a.outputPath, "output", "o", "", "Write report to this file instead of stdout")
	cmd.Flags().StringVar(&a.coverageFile, "coverage", "", "Path to an LCOV coverage report")
	cmd.Flags().BoolVarP(&a.verbose, "verbose", "v", false, "Show stage-by-stage progress")
	cmd.Flags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress progress and summary output")
	cmd.Flags().IntVar(&a.jobs, "jobs", 0, "Parallel worker count (0 = auto)")
	cmd.Flags().BoolVar(&a.noParallel, "no-parallel", false, "Disable parallel parsing")
	cmd.Flags().StringSliceVar(&a.exclude, "exclude", nil, "Additional glob patterns to exclude")
	cmd.Flags().BoolVar(&a.watch, "watch", false, "Re-run analysis whenever a watched file changes")

	return cmd
}

func (a *AnalyzeCommand) runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	format := reporter.OutputFormat(a.outputFormat)
	switch format {
	case reporter.FormatText, reporter.FormatJSON, reporter.FormatYAML, reporter.FormatCSV:
	default:
		return fmt.Errorf("unsupported output format %q: want text, json, yaml, or csv", a.outputFormat)
	}

	tracker := config.NewFlagTracker()
	cmd.Flags().Visit(func(f *pflag.Flag) { tracker.Set(f.Name) })

	loader := config.NewLoader(tracker)
	cfg, err := loader.Load(a.configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(cmd.ErrOrStderr(), "config error: %v\n", e)
		}
		return fmt.Errorf("invalid configuration (%d error(s))", len(errs))
	}

	var progress domain.ProgressReporter
	if a.quiet {
		progress = service.NewNoOpProgressReporter()
	} else {
		interactive := term.IsTerminal(int(os.Stderr.Fd()))
		if a.verbose && interactive {
			progress = service.NewStageProgressReporter(cmd.ErrOrStderr(), true)
		} else {
			progress = service.NewNoOpProgressReporter()
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runOnce := func() error {
		orch := service.NewOrchestrator(progress)
		report, err := orch.Run(ctx, domain.AnalysisRequest{
			Paths:        args,
			CoveragePath: cfg.CoverageFile,
			Config:       domain.NewRunContext(cfg),
		})
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if a.outputPath != "" {
			f, err := os.Create(a.outputPath)
			if err != nil {
				return fmt.Errorf("creating output file %s: %w", a.outputPath, err)
			}
			defer f.Close()
			out = f
		}

		rp := reporter.NewDebtReporter(out)
		if err := rp.Write(report, format); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}

		if !a.quiet && a.outputPath != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s (%d item(s))\n", a.outputPath, report.Summary.TotalItems)
		}
		return nil
	}

	if err := runOnce(); err != nil {
		return err
	}
	if !a.watch {
		return nil
	}
	return a.watchAndRerun(cmd, ctx, args, runOnce)
}

// watchAndRerun watches args for filesystem changes and calls runOnce again
// after each debounced burst, until ctx is cancelled; no signal handler is
// installed, so Ctrl-C ends the process rather than cancelling ctx. It
// never returns a non-nil error for a failed re-run; failures are printed to
// stderr so one bad edit doesn't kill the watch session.
func (a *AnalyzeCommand) watchAndRerun(cmd *cobra.Command, ctx context.Context, args []string, runOnce func() error) error {
	w, err := service.NewWatcher(500 * time.Millisecond)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	if err := w.AddPaths(args); err != nil {
		return fmt.Errorf("watching paths: %w", err)
	}

	if !a.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "Watching %v for changes (Ctrl-C to stop)...\n", args)
	}

	onChange := func() {
		if !a.quiet {
			fmt.Fprintln(cmd.ErrOrStderr(), "Change detected, re-analyzing...")
		}
		if err := runOnce(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "analysis failed: %v\n", err)
		}
	}
	onEvent := func(event fsnotify.Event) {
		if a.verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "event: %s\n", event)
		}
	}

	return w.Run(ctx, onChange, onEvent)
}

// NewAnalyzeCmd creates and returns the analyze cobra command.
func NewAnalyzeCmd() *cobra.Command {
	return NewAnalyzeCommand().CreateCobraCommand()
}
