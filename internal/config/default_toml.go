package config

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/debtscan/debtscan/domain"
)

// DefaultTOML renders Default() as a .debtscan.toml project file, so `init`
// writes out the actual resolved defaults instead of a hand-authored
// template that can drift from them.
func DefaultTOML() ([]byte, error) {
	return toml.Marshal(fileConfigFromDefaults(Default()))
}

func fileConfigFromDefaults(cfg *domain.Config) *FileConfig {
	fc := &FileConfig{
		Parallel:               ptrBool(cfg.Parallel),
		Jobs:                   ptrInt(cfg.Jobs),
		EnableEntropyDampening: ptrBool(cfg.EnableEntropyDampening),
		ExcludePatterns:        cfg.ExcludePatterns,
		IncludePatterns:        cfg.IncludePatterns,
		FrameworkPatterns:      cfg.FrameworkPatterns,
		AggregateOnly:          ptrBool(cfg.AggregateOnly),
		NoAggregation:          ptrBool(cfg.NoAggregation),
	}
	if cfg.CoverageFile != "" {
		fc.CoverageFile = ptrString(cfg.CoverageFile)
	}

	fc.ComplexityWeights.EntropyRepetition = ptrFloat(cfg.Complexity.EntropyRepetitionWeight)
	fc.ComplexityWeights.EntropyDensity = ptrFloat(cfg.Complexity.EntropyDensityWeight)

	fc.Scoring.Weights.Complexity = ptrFloat(cfg.Scoring.Weights.Complexity)
	fc.Scoring.Weights.Coverage = ptrFloat(cfg.Scoring.Weights.Coverage)
	fc.Scoring.Weights.Dependency = ptrFloat(cfg.Scoring.Weights.Dependency)

	rm := cfg.Scoring.RoleMultipliers
	fc.Scoring.RoleMultipliers.PureLogic = ptrFloat(rm.PureLogic)
	fc.Scoring.RoleMultipliers.EntryPoint = ptrFloat(rm.EntryPoint)
	fc.Scoring.RoleMultipliers.Orchestrator = ptrFloat(rm.Orchestrator)
	fc.Scoring.RoleMultipliers.IOWrapper = ptrFloat(rm.IOWrapper)
	fc.Scoring.RoleMultipliers.PatternMatch = ptrFloat(rm.PatternMatch)
	fc.Scoring.RoleMultipliers.Unknown = ptrFloat(rm.Unknown)

	cm := cfg.Scoring.ContextMultipliers
	fc.Scoring.ContextMultipliers.Production = ptrFloat(cm.Production)
	fc.Scoring.ContextMultipliers.Test = ptrFloat(cm.Test)
	fc.Scoring.ContextMultipliers.Example = ptrFloat(cm.Example)
	fc.Scoring.ContextMultipliers.Benchmark = ptrFloat(cm.Benchmark)
	fc.Scoring.ContextMultipliers.BuildScript = ptrFloat(cm.BuildScript)

	fc.Scoring.EnableContextDampening = ptrBool(cfg.Scoring.EnableContextDampening)
	fc.Scoring.EnableBugfixContext = ptrBool(cfg.Scoring.EnableBugfixContext)

	fc.Thresholds.ComplexityLow = ptrInt(int(cfg.Thresholds.ComplexityLow))
	fc.Thresholds.CognitiveLow = ptrInt(int(cfg.Thresholds.CognitiveLow))

	fc.GodObject.MethodThreshold = ptrInt(cfg.Thresholds.GodObjectMethodThreshold)
	fc.GodObject.FieldThreshold = ptrInt(cfg.Thresholds.GodObjectFieldThreshold)
	fc.GodObject.ResponsibilityThreshold = ptrInt(cfg.Thresholds.GodObjectResponsibility)
	fc.GodObject.StandaloneFunctionThreshold = ptrInt(cfg.Thresholds.GodObjectStandaloneThreshold)

	return fc
}

func ptrBool(v bool) *bool       { return &v }
func ptrInt(v int) *int          { return &v }
func ptrFloat(v float64) *float64 { return &v }
func ptrString(v string) *string { return &v }
