package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/debtscan/debtscan/domain"
)

// envPrefix namespaces the environment-variable layer, e.g.
// DEBTSCAN_JOBS, DEBTSCAN_PARALLEL.
const envPrefix = "DEBTSCAN_"

// Loader resolves a domain.Config from defaults, an optional project file,
// environment variables, and CLI flags, in that precedence order (§6), and
// tags each resolved option with its ConfigSource for error reporting.
type Loader struct {
	tracker *FlagTracker
}

// NewLoader builds a Loader around a FlagTracker recording which CLI flags
// were explicitly set (as opposed to left at their pflag default).
func NewLoader(tracker *FlagTracker) *Loader {
	if tracker == nil {
		tracker = NewFlagTracker()
	}
	return &Loader{tracker: tracker}
}

// Load merges the four configuration layers and returns the resolved
// config. It never returns an error for a missing project file (absence is
// legitimate); project-file read and TOML syntax errors are returned
// immediately since they are load-time, not validation-time, failures.
// Environment values are not type-checked: one that does not parse as the
// option's type is read as that type's zero value.
func (l *Loader) Load(configPath string, flags *pflag.FlagSet) (*domain.Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := l.applyFile(cfg, configPath); err != nil {
			return nil, err
		}
	}

	l.applyEnv(cfg)

	if flags != nil {
		l.applyFlags(cfg, flags)
	}

	return cfg, nil
}

func (l *Loader) applyFile(cfg *domain.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc FileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	setBool(cfg, &cfg.Parallel, fc.Parallel, "parallel", domain.ConfigSourceFile)
	setInt(cfg, &cfg.Jobs, fc.Jobs, "jobs", domain.ConfigSourceFile)
	setBool(cfg, &cfg.EnableEntropyDampening, fc.EnableEntropyDampening, "enable_entropy_dampening", domain.ConfigSourceFile)
	setBool(cfg, &cfg.AggregateOnly, fc.AggregateOnly, "aggregate_only", domain.ConfigSourceFile)
	setBool(cfg, &cfg.NoAggregation, fc.NoAggregation, "no_aggregation", domain.ConfigSourceFile)

	if fc.CoverageFile != nil {
		cfg.CoverageFile = *fc.CoverageFile
		cfg.SetSource("coverage_file", domain.ConfigSourceFile)
	}
	if len(fc.ExcludePatterns) > 0 {
		cfg.ExcludePatterns = fc.ExcludePatterns
		cfg.SetSource("exclude_patterns", domain.ConfigSourceFile)
	}
	if len(fc.IncludePatterns) > 0 {
		cfg.IncludePatterns = fc.IncludePatterns
		cfg.SetSource("include_patterns", domain.ConfigSourceFile)
	}
	if len(fc.FrameworkPatterns) > 0 {
		cfg.FrameworkPatterns = fc.FrameworkPatterns
		cfg.SetSource("framework_patterns", domain.ConfigSourceFile)
	}

	setFloat(cfg, &cfg.Complexity.EntropyRepetitionWeight, fc.ComplexityWeights.EntropyRepetition, "complexity_weights.entropy_repetition", domain.ConfigSourceFile)
	setFloat(cfg, &cfg.Complexity.EntropyDensityWeight, fc.ComplexityWeights.EntropyDensity, "complexity_weights.entropy_density", domain.ConfigSourceFile)

	setFloat(cfg, &cfg.Scoring.Weights.Complexity, fc.Scoring.Weights.Complexity, "scoring.weights.complexity", domain.ConfigSourceFile)
	setFloat(cfg, &cfg.Scoring.Weights.Coverage, fc.Scoring.Weights.Coverage, "scoring.weights.coverage", domain.ConfigSourceFile)
	setFloat(cfg, &cfg.Scoring.Weights.Dependency, fc.Scoring.Weights.Dependency, "scoring.weights.dependency", domain.ConfigSourceFile)

	rm := &cfg.Scoring.RoleMultipliers
	fm := fc.Scoring.RoleMultipliers
	setFloat(cfg, &rm.PureLogic, fm.PureLogic, "scoring.role_multipliers.pure_logic", domain.ConfigSourceFile)
	setFloat(cfg, &rm.EntryPoint, fm.EntryPoint, "scoring.role_multipliers.entry_point", domain.ConfigSourceFile)
	setFloat(cfg, &rm.Orchestrator, fm.Orchestrator, "scoring.role_multipliers.orchestrator", domain.ConfigSourceFile)
	setFloat(cfg, &rm.IOWrapper, fm.IOWrapper, "scoring.role_multipliers.io_wrapper", domain.ConfigSourceFile)
	setFloat(cfg, &rm.PatternMatch, fm.PatternMatch, "scoring.role_multipliers.pattern_match", domain.ConfigSourceFile)
	setFloat(cfg, &rm.Unknown, fm.Unknown, "scoring.role_multipliers.unknown", domain.ConfigSourceFile)

	cm := &cfg.Scoring.ContextMultipliers
	fcm := fc.Scoring.ContextMultipliers
	setFloat(cfg, &cm.Production, fcm.Production, "scoring.context_multipliers.production", domain.ConfigSourceFile)
	setFloat(cfg, &cm.Test, fcm.Test, "scoring.context_multipliers.test", domain.ConfigSourceFile)
	setFloat(cfg, &cm.Example, fcm.Example, "scoring.context_multipliers.example", domain.ConfigSourceFile)
	setFloat(cfg, &cm.Benchmark, fcm.Benchmark, "scoring.context_multipliers.benchmark", domain.ConfigSourceFile)
	setFloat(cfg, &cm.BuildScript, fcm.BuildScript, "scoring.context_multipliers.build_script", domain.ConfigSourceFile)

	setBool(cfg, &cfg.Scoring.EnableContextDampening, fc.Scoring.EnableContextDampening, "scoring.enable_context_dampening", domain.ConfigSourceFile)
	setBool(cfg, &cfg.Scoring.EnableBugfixContext, fc.Scoring.EnableBugfixContext, "scoring.enable_bugfix_context", domain.ConfigSourceFile)

	setUint32(cfg, &cfg.Thresholds.ComplexityLow, fc.Thresholds.ComplexityLow, "thresholds.complexity_low", domain.ConfigSourceFile)
	setUint32(cfg, &cfg.Thresholds.CognitiveLow, fc.Thresholds.CognitiveLow, "thresholds.cognitive_low", domain.ConfigSourceFile)

	setInt(cfg, &cfg.Thresholds.GodObjectMethodThreshold, fc.GodObject.MethodThreshold, "god_object.method_threshold", domain.ConfigSourceFile)
	setInt(cfg, &cfg.Thresholds.GodObjectFieldThreshold, fc.GodObject.FieldThreshold, "god_object.field_threshold", domain.ConfigSourceFile)
	setInt(cfg, &cfg.Thresholds.GodObjectResponsibility, fc.GodObject.ResponsibilityThreshold, "god_object.responsibility_threshold", domain.ConfigSourceFile)
	setInt(cfg, &cfg.Thresholds.GodObjectStandaloneThreshold, fc.GodObject.StandaloneFunctionThreshold, "god_object.standalone_function_threshold", domain.ConfigSourceFile)

	return nil
}

// newEnvViper builds a viper instance bound only to the env layer: no config
// file reading (applyFile already owns TOML parsing via go-toml/v2), just
// DEBTSCAN_*-prefixed environment lookups with automatic key binding.
func newEnvViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(strings.TrimSuffix(envPrefix, "_"))
	v.AutomaticEnv()
	for _, key := range []string{"jobs", "parallel", "coverage_file", "exclude_patterns"} {
		_ = v.BindEnv(key)
	}
	return v
}

// applyEnv layers DEBTSCAN_* environment variables over the file/default
// layers, for the small set of options that make sense as environment
// overrides in CI (jobs, parallel, coverage file, exclude patterns).
func (l *Loader) applyEnv(cfg *domain.Config) {
	v := newEnvViper()

	if v.IsSet("jobs") {
		cfg.Jobs = v.GetInt("jobs")
		cfg.SetSource("jobs", domain.ConfigSourceEnv)
	}
	if v.IsSet("parallel") {
		cfg.Parallel = v.GetBool("parallel")
		cfg.SetSource("parallel", domain.ConfigSourceEnv)
	}
	if v.IsSet("coverage_file") {
		cfg.CoverageFile = v.GetString("coverage_file")
		cfg.SetSource("coverage_file", domain.ConfigSourceEnv)
	}
	if raw := v.GetString("exclude_patterns"); raw != "" {
		cfg.ExcludePatterns = strings.Split(raw, ",")
		cfg.SetSource("exclude_patterns", domain.ConfigSourceEnv)
	}
}

// applyFlags layers CLI flags, consulting the FlagTracker so only flags the
// user explicitly passed override lower layers (pflag always returns a
// value, set or not).
func (l *Loader) applyFlags(cfg *domain.Config, flags *pflag.FlagSet) {
	if l.tracker.WasSet("jobs") {
		if v, err := flags.GetInt("jobs"); err == nil {
			cfg.Jobs = v
			cfg.SetSource("jobs", domain.ConfigSourceCLI)
		}
	}
	if l.tracker.WasSet("no-parallel") {
		if v, err := flags.GetBool("no-parallel"); err == nil {
			cfg.Parallel = !v
			cfg.SetSource("parallel", domain.ConfigSourceCLI)
		}
	}
	if l.tracker.WasSet("coverage") {
		if v, err := flags.GetString("coverage"); err == nil {
			cfg.CoverageFile = v
			cfg.SetSource("coverage_file", domain.ConfigSourceCLI)
		}
	}
	if l.tracker.WasSet("exclude") {
		if v, err := flags.GetStringSlice("exclude"); err == nil && len(v) > 0 {
			cfg.ExcludePatterns = v
			cfg.SetSource("exclude_patterns", domain.ConfigSourceCLI)
		}
	}
}

func setBool(cfg *domain.Config, dst *bool, src *bool, key string, source domain.ConfigSource) {
	if src == nil {
		return
	}
	*dst = *src
	cfg.SetSource(key, source)
}

func setInt(cfg *domain.Config, dst *int, src *int, key string, source domain.ConfigSource) {
	if src == nil {
		return
	}
	*dst = *src
	cfg.SetSource(key, source)
}

func setUint32(cfg *domain.Config, dst *uint32, src *int, key string, source domain.ConfigSource) {
	if src == nil {
		return
	}
	*dst = uint32(*src)
	cfg.SetSource(key, source)
}

func setFloat(cfg *domain.Config, dst *float64, src *float64, key string, source domain.ConfigSource) {
	if src == nil {
		return
	}
	*dst = *src
	cfg.SetSource(key, source)
}
