package config

// FileConfig mirrors the `.debtscan.toml` project file schema. Every field
// is a pointer (or nil slice) so the loader can tell "absent from file"
// apart from "explicitly set to the zero value" — the same pattern the
// teacher's PyscnTomlConfig uses for its TOML sections.
type FileConfig struct {
	Parallel               *bool    `toml:"parallel"`
	Jobs                   *int     `toml:"jobs"`
	EnableEntropyDampening *bool    `toml:"enable_entropy_dampening"`
	ExcludePatterns        []string `toml:"exclude_patterns"`
	IncludePatterns        []string `toml:"include_patterns"`
	FrameworkPatterns      []string `toml:"framework_patterns"`
	CoverageFile           *string  `toml:"coverage_file"`
	AggregateOnly          *bool    `toml:"aggregate_only"`
	NoAggregation          *bool    `toml:"no_aggregation"`

	ComplexityWeights struct {
		EntropyRepetition *float64 `toml:"entropy_repetition"`
		EntropyDensity    *float64 `toml:"entropy_density"`
	} `toml:"complexity_weights"`

	Scoring struct {
		Weights struct {
			Complexity *float64 `toml:"complexity"`
			Coverage   *float64 `toml:"coverage"`
			Dependency *float64 `toml:"dependency"`
		} `toml:"weights"`
		RoleMultipliers struct {
			PureLogic    *float64 `toml:"pure_logic"`
			EntryPoint   *float64 `toml:"entry_point"`
			Orchestrator *float64 `toml:"orchestrator"`
			IOWrapper    *float64 `toml:"io_wrapper"`
			PatternMatch *float64 `toml:"pattern_match"`
			Unknown      *float64 `toml:"unknown"`
		} `toml:"role_multipliers"`
		ContextMultipliers struct {
			Production  *float64 `toml:"production"`
			Test        *float64 `toml:"test"`
			Example     *float64 `toml:"example"`
			Benchmark   *float64 `toml:"benchmark"`
			BuildScript *float64 `toml:"build_script"`
		} `toml:"context_multipliers"`
		EnableContextDampening *bool `toml:"enable_context_dampening"`
		EnableBugfixContext    *bool `toml:"enable_bugfix_context"`
	} `toml:"scoring"`

	Thresholds struct {
		ComplexityLow *int `toml:"complexity_low"`
		CognitiveLow  *int `toml:"cognitive_low"`
	} `toml:"thresholds"`

	GodObject struct {
		MethodThreshold             *int `toml:"method_threshold"`
		FieldThreshold              *int `toml:"field_threshold"`
		ResponsibilityThreshold     *int `toml:"responsibility_threshold"`
		StandaloneFunctionThreshold *int `toml:"standalone_function_threshold"`
	} `toml:"god_object"`
}
