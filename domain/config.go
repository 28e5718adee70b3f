package domain

// ConfigSource tags where a resolved configuration value came from, so
// validation errors can name their origin (§6: "source tracking").
type ConfigSource string

const (
	ConfigSourceDefault ConfigSource = "default"
	ConfigSourceFile    ConfigSource = "file"
	ConfigSourceEnv     ConfigSource = "env"
	ConfigSourceCLI     ConfigSource = "cli"
)

// ScoringWeights are the Unified Scorer's base-score weights; they must
// sum to 1.0 (§6, §4.8).
type ScoringWeights struct {
	Complexity float64
	Coverage   float64
	Dependency float64
}

// RoleMultipliers are the per-role multiplicative score adjustments (§4.8).
type RoleMultipliers struct {
	PureLogic    float64
	EntryPoint   float64
	Orchestrator float64
	IOWrapper    float64
	PatternMatch float64
	Unknown      float64
}

// ContextMultipliers are the per-file-type multiplicative score adjustments
// (§4.8).
type ContextMultipliers struct {
	Production float64
	Test       float64
	Example    float64
	Benchmark  float64
	BuildScript float64
}

// ComplexityWeights tune the entropy dampening formula (§4.2). The
// cognitive-complexity nesting penalty has no weight here and is fixed.
type ComplexityWeights struct {
	EntropyRepetitionWeight float64 // kRep
	EntropyDensityWeight    float64 // kEnt
}

// Thresholds gathers the Low-tier and structural thresholds from §6.
type Thresholds struct {
	ComplexityLow              uint32
	CognitiveLow               uint32
	GodObjectMethodThreshold   int
	GodObjectFieldThreshold    int
	GodObjectResponsibility    int
	GodObjectStandaloneThreshold int
}

// Config is the fully-merged, validated configuration (§6). It is threaded
// explicitly via RunContext rather than held in a package-level singleton
// (Design Notes §9).
type Config struct {
	Parallel               bool
	Jobs                   int
	EnableEntropyDampening bool

	Complexity ComplexityWeights
	Scoring    struct {
		Weights              ScoringWeights
		RoleMultipliers      RoleMultipliers
		ContextMultipliers   ContextMultipliers
		EnableContextDampening bool
		EnableBugfixContext  bool
	}
	Thresholds Thresholds

	ExcludePatterns  []string
	IncludePatterns  []string
	FrameworkPatterns []string

	// AggregateOnly and NoAggregation are mutually exclusive CLI switches
	// surfaced for the config-validation scenario in §8 (S2).
	AggregateOnly bool
	NoAggregation bool
	CoverageFile  string

	// sources tracks, per dotted option key, where the active value came
	// from, for validation error messages.
	sources map[string]ConfigSource
}

// SetSource records the origin of a configuration key.
func (c *Config) SetSource(key string, source ConfigSource) {
	if c.sources == nil {
		c.sources = make(map[string]ConfigSource)
	}
	c.sources[key] = source
}

// Source returns the recorded origin of key, defaulting to "default".
func (c *Config) Source(key string) ConfigSource {
	if c.sources == nil {
		return ConfigSourceDefault
	}
	if s, ok := c.sources[key]; ok {
		return s
	}
	return ConfigSourceDefault
}

// RunContext threads the resolved configuration and shared, read-only
// build artifacts (type registry, call graph) through the pipeline without
// a process-wide mutable singleton (Design Notes §9).
type RunContext struct {
	Config       *Config
	TypeRegistry *TypeRegistry
	CallGraph    *CallGraph
	Coverage     *CoverageReport
	Diagnostics  *DiagnosticCollector
}

// NewRunContext builds a RunContext around a resolved config.
func NewRunContext(cfg *Config) *RunContext {
	return &RunContext{
		Config:      cfg,
		Diagnostics: NewDiagnosticCollector(),
	}
}
