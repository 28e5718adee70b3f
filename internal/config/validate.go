package config

import (
	"fmt"
	"os"

	"github.com/debtscan/debtscan/domain"
)

// Validate checks a resolved config for internally-inconsistent option
// combinations, accumulating every violation found rather than stopping at
// the first (§8 S2): aggregate_only together with no_aggregation, negative
// jobs, jobs > 1 while parallel is disabled, an explicitly set but empty
// coverage_file, a coverage_file path that does not exist, and scoring
// weights that do not sum to 1.0 are all reported together. Every message
// except the scoring-weights one names the layer the value came from.
func Validate(cfg *domain.Config) []*domain.AnalysisError {
	var errs []*domain.AnalysisError

	if cfg.AggregateOnly && cfg.NoAggregation {
		errs = append(errs, domain.NewConfigError("aggregate_only", fmt.Sprintf(
			"aggregate_only (set via %s) and no_aggregation (set via %s) are mutually exclusive",
			cfg.Source("aggregate_only"), cfg.Source("no_aggregation"),
		)))
	}

	if cfg.Jobs < 0 {
		errs = append(errs, domain.NewConfigError("jobs", fmt.Sprintf(
			"jobs must be >= 0 (0 means auto), got %d (set via %s)",
			cfg.Jobs, cfg.Source("jobs"),
		)))
	}

	if !cfg.Parallel && cfg.Jobs > 1 {
		errs = append(errs, domain.NewConfigError("jobs", fmt.Sprintf(
			"jobs=%d (set via %s) has no effect while parallel is disabled (set via %s)",
			cfg.Jobs, cfg.Source("jobs"), cfg.Source("parallel"),
		)))
	}

	if cfg.CoverageFile == "" && cfg.Source("coverage_file") != domain.ConfigSourceDefault {
		errs = append(errs, domain.NewConfigError("coverage_file", fmt.Sprintf(
			"coverage_file was set via %s but is empty", cfg.Source("coverage_file"),
		)))
	}

	if cfg.CoverageFile != "" {
		if _, err := os.Stat(cfg.CoverageFile); err != nil {
			errs = append(errs, domain.NewConfigError("coverage_file", fmt.Sprintf(
				"coverage_file %s (set via %s) cannot be read: %v",
				cfg.CoverageFile, cfg.Source("coverage_file"), err,
			)))
		}
	}

	sum := cfg.Scoring.Weights.Complexity + cfg.Scoring.Weights.Coverage + cfg.Scoring.Weights.Dependency
	if sum < 0.999 || sum > 1.001 {
		errs = append(errs, domain.NewConfigError("scoring.weights", fmt.Sprintf(
			"scoring.weights must sum to 1.0, got %.3f (complexity=%.3f coverage=%.3f dependency=%.3f)",
			sum, cfg.Scoring.Weights.Complexity, cfg.Scoring.Weights.Coverage, cfg.Scoring.Weights.Dependency,
		)))
	}

	return errs
}
