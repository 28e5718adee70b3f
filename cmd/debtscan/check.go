package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/debtscan/debtscan/domain"
	"github.com/debtscan/debtscan/internal/config"
	"github.com/debtscan/debtscan/service"
)

// CheckCommand runs a CI-friendly gate: analyze the given paths and fail
// (non-zero exit) if any Critical-severity debt item is found.
type CheckCommand struct {
	configFile   string
	quiet        bool
	maxSeverity  string
	coverageFile string
}

// NewCheckCommand creates a new check command.
func NewCheckCommand() *CheckCommand {
	return &CheckCommand{
		configFile:  "",
		quiet:       false,
		maxSeverity: "critical",
	}
}

// CreateCobraCommand creates the cobra command for the CI gate.
func (c *CheckCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Fail if any debt item reaches a severity threshold",
		Long: `Run the full analysis pipeline and exit non-zero if a debt item at or
above --max-severity is found. Designed for CI pipelines: with --quiet,
nothing is printed unless issues are found.

Exit codes:
  0  no items at or above --max-severity
  1  one or more items at or above --max-severity
  2  analysis itself failed (bad input, unreadable files, etc.)

Examples:
  # Fail the build on any critical-severity item (default)
  debtscan check .

  # Gate on high severity and above
  debtscan check --max-severity high src/`,
		Args: cobra.ArbitraryArgs,
		RunE: c.runCheck,
	}

	cmd.Flags().StringVarP(&c.configFile, "config", "c", "", "Configuration file path")
	cmd.Flags().BoolVarP(&c.quiet, "quiet", "q", false, "Suppress output unless issues found")
	cmd.Flags().StringVar(&c.maxSeverity, "max-severity", "critical", "Minimum severity that fails the check (low, medium, high, critical)")
	cmd.Flags().StringVar(&c.coverageFile, "coverage", "", "Path to an LCOV coverage report")

	return cmd
}

func (c *CheckCommand) runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	threshold, err := severityFromName(c.maxSeverity)
	if err != nil {
		return err
	}

	tracker := config.NewFlagTracker()
	cmd.Flags().Visit(func(f *pflag.Flag) { tracker.Set(f.Name) })

	loader := config.NewLoader(tracker)
	cfg, err := loader.Load(c.configFile, cmd.Flags())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "failed to load configuration: %v\n", err)
		os.Exit(2)
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(cmd.ErrOrStderr(), "config error: %v\n", e)
		}
		os.Exit(2)
	}

	if !c.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "Running debt check on %v...\n", args)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	orch := service.NewOrchestrator(service.NewNoOpProgressReporter())
	report, err := orch.Run(ctx, domain.AnalysisRequest{
		Paths:        args,
		CoveragePath: cfg.CoverageFile,
		Config:       domain.NewRunContext(cfg),
	})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "analysis failed: %v\n", err)
		os.Exit(2)
	}

	var failing int
	for _, item := range report.Items {
		if item.Severity >= threshold {
			failing++
			if !c.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s: %s\n", item.Severity, item.Kind, item.Recommendation)
			}
		}
	}

	if failing > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Found %d item(s) at or above %s severity\n", failing, threshold)
		os.Exit(1)
	}

	if !c.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "No issues at or above %s severity\n", threshold)
	}
	return nil
}

func severityFromName(name string) (domain.Severity, error) {
	switch name {
	case "low":
		return domain.SeverityLow, nil
	case "medium":
		return domain.SeverityMedium, nil
	case "high":
		return domain.SeverityHigh, nil
	case "critical":
		return domain.SeverityCritical, nil
	default:
		return 0, fmt.Errorf("unknown severity %q: want low, medium, high, or critical", name)
	}
}

// NewCheckCmd creates and returns the check cobra command.
func NewCheckCmd() *cobra.Command {
	return NewCheckCommand().CreateCobraCommand()
}
