package analyzer

import (
	"sort"

	"github.com/debtscan/debtscan/domain"
)

// FileContext classifies a file for the Unified Scorer's context multiplier
// (§4.8). Determined by the caller from the file path (test/bench naming
// conventions, examples/ or docs/ directories, build-script entry points).
type FileContext string

const (
	FileContextProduction  FileContext = "production"
	FileContextTest        FileContext = "test"
	FileContextExample     FileContext = "example"
	FileContextBenchmark   FileContext = "benchmark"
	FileContextBuildScript FileContext = "build_script"
)

// PercentileIndex supports project-wide normalization of a raw signal
// (§4.8: "normalize(x, project-wide percentile)") by ranking x against a
// sorted sample of every function's raw value.
type PercentileIndex struct {
	sorted []float64
}

// NewPercentileIndex builds the index from every function's raw value.
func NewPercentileIndex(values []float64) *PercentileIndex {
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	return &PercentileIndex{sorted: sorted}
}

// Normalize returns x's fractional rank in [0,1] among the indexed sample.
func (p *PercentileIndex) Normalize(x float64) float64 {
	if len(p.sorted) == 0 {
		return 0
	}
	idx := sort.SearchFloat64s(p.sorted, x)
	return float64(idx) / float64(len(p.sorted))
}

// BaseScoreInputs bundles the raw signals consumed by ComputeBaseScore.
type BaseScoreInputs struct {
	AdjustedComplexity  uint32
	TransitiveCoverage  float64
	HasCoverageData     bool
	CoverageKnown       bool // false means "unknown" even though HasCoverageData is true
	InDegree            int
	Criticality         float64 // e.g. 1.0 + fraction of Definite incoming edges
	ComplexityIndex     *PercentileIndex
	DependencyIndex     *PercentileIndex
}

// ComputeBaseScore produces the weighted-sum base score in [0,1] per §4.8.
func ComputeBaseScore(in BaseScoreInputs, weights domain.ScoringWeights) float64 {
	complexitySignal := in.ComplexityIndex.Normalize(float64(in.AdjustedComplexity))

	var coverageSignal float64
	switch {
	case !in.HasCoverageData:
		coverageSignal = 0.0
	case !in.CoverageKnown:
		coverageSignal = 1.0
	default:
		coverageSignal = 1.0 - in.TransitiveCoverage
	}

	dependencySignal := in.DependencyIndex.Normalize(float64(in.InDegree) * in.Criticality)

	return weights.Complexity*complexitySignal + weights.Coverage*coverageSignal + weights.Dependency*dependencySignal
}

// roleMultiplier looks up the configured multiplier, floored at 0.1 so a
// role adjustment never zeroes a score (§4.8 invariant, §9 open question c).
func roleMultiplier(role domain.FunctionRole, m domain.RoleMultipliers) float64 {
	var v float64
	switch role {
	case domain.RolePureLogic:
		v = m.PureLogic
	case domain.RoleEntryPoint:
		v = m.EntryPoint
	case domain.RoleOrchestrator:
		v = m.Orchestrator
	case domain.RoleIOWrapper:
		v = m.IOWrapper
	case domain.RolePatternMatch:
		v = m.PatternMatch
	default:
		v = m.Unknown
	}
	if v < 0.1 {
		return 0.1
	}
	return v
}

func contextMultiplier(ctx FileContext, m domain.ContextMultipliers, enabled bool) float64 {
	if !enabled {
		return 1.0
	}
	switch ctx {
	case FileContextTest:
		return m.Test
	case FileContextExample:
		return m.Example
	case FileContextBenchmark:
		return m.Benchmark
	case FileContextBuildScript:
		return m.BuildScript
	default:
		return m.Production
	}
}

// bugfixMultiplier scales the score up for functions living in files with a
// history of bug-fix commits, when the optional bug-fix context signal is
// enabled (§ SUPPLEMENTED FEATURES). density is a file's BugFixDensity
// value, or 0 when no history is available; the multiplier never exceeds 2x
// so a single noisy file can't dominate the ranking.
func bugfixMultiplier(density float64, enabled bool) float64 {
	if !enabled {
		return 1.0
	}
	if density < 0 {
		density = 0
	}
	if density > 1 {
		density = 1
	}
	return 1.0 + density
}

// ComputeFinalScore applies the role, context, and bug-fix-density
// multipliers and clamps to [0,100] (§4.8: "Final = clamp(base * role *
// context * 10, 0, 100)", extended with the optional bug-fix factor).
// bugfixDensity is ignored unless cfg.Scoring.EnableBugfixContext is set.
func ComputeFinalScore(base float64, role domain.FunctionRole, fileCtx FileContext, bugfixDensity float64, cfg *domain.Config) float64 {
	rm := roleMultiplier(role, cfg.Scoring.RoleMultipliers)
	cm := contextMultiplier(fileCtx, cfg.Scoring.ContextMultipliers, cfg.Scoring.EnableContextDampening)
	bf := bugfixMultiplier(bugfixDensity, cfg.Scoring.EnableBugfixContext)
	final := base * rm * cm * bf * 10
	if final < 0 {
		return 0
	}
	if final > 100 {
		return 100
	}
	return final
}

// ShouldEmitDebtItem implements the §4.8 debt-item creation rule: a
// Low-tier-complexity function with no other issue emits nothing.
func ShouldEmitDebtItem(tier domain.ComplexityTier, hasLowTestingGap, isUnusedNonExempt, otherDetectorFired bool) bool {
	if tier != domain.ComplexityTierLow {
		return true
	}
	return hasLowTestingGap || isUnusedNonExempt || otherDetectorFired
}
