package config

import "github.com/debtscan/debtscan/domain"

// Default returns the built-in configuration, with every field's source
// tagged ConfigSourceDefault. Load layers a project file, environment
// variables, and CLI flags on top of this base (§6: "defaults < file <
// environment < CLI").
func Default() *domain.Config {
	cfg := &domain.Config{
		Parallel:               true,
		Jobs:                   0, // 0 means "auto" — resolved to runtime.NumCPU() by the executor
		EnableEntropyDampening: true,

		Complexity: domain.ComplexityWeights{
			EntropyRepetitionWeight: 0.5,
			EntropyDensityWeight:    0.3,
		},

		ExcludePatterns:   []string{"**/vendor/**", "**/node_modules/**", "**/target/**", "**/.git/**"},
		FrameworkPatterns: defaultFrameworkPatterns(),
	}

	cfg.Scoring.Weights = domain.ScoringWeights{Complexity: 0.5, Coverage: 0.3, Dependency: 0.2}
	cfg.Scoring.RoleMultipliers = domain.RoleMultipliers{
		PureLogic:    1.5,
		EntryPoint:   0.8,
		Orchestrator: 0.6,
		IOWrapper:    0.5,
		PatternMatch: 0.4,
		Unknown:      1.0,
	}
	cfg.Scoring.ContextMultipliers = domain.ContextMultipliers{
		Production:  1.0,
		Test:        0.2,
		Example:     0.1,
		Benchmark:   0.3,
		BuildScript: 0.3,
	}
	cfg.Scoring.EnableContextDampening = true
	cfg.Scoring.EnableBugfixContext = false

	cfg.Thresholds = domain.Thresholds{
		ComplexityLow:                8,
		CognitiveLow:                 15,
		GodObjectMethodThreshold:     20,
		GodObjectFieldThreshold:      15,
		GodObjectResponsibility:      3,
		GodObjectStandaloneThreshold: 50,
	}

	for _, key := range allConfigKeys() {
		cfg.SetSource(key, domain.ConfigSourceDefault)
	}
	return cfg
}

// defaultFrameworkPatterns lists the built-in, capability-polymorphic
// framework-exclusion name patterns consumed by
// internal/analyzer.ParseFrameworkPatterns (§4.4 phase 4). The set is
// extensible via the `framework_patterns` config option.
func defaultFrameworkPatterns() []string {
	return []string{
		"main",
		"Main",
		"handler:*Handler",
		"handler:*handle*",
		"test:test_*",
		"test:*_test",
		"test:Test*",
		"export:pub_api",
		"hook:__*__",
		"hook:on_*",
	}
}

func allConfigKeys() []string {
	return []string{
		"parallel", "jobs", "enable_entropy_dampening",
		"complexity_weights.entropy_repetition", "complexity_weights.entropy_density",
		"scoring.weights.complexity", "scoring.weights.coverage", "scoring.weights.dependency",
		"scoring.role_multipliers", "scoring.context_multipliers", "scoring.enable_context_dampening",
		"thresholds.complexity_low", "thresholds.cognitive_low",
		"god_object.method_threshold", "god_object.field_threshold",
		"god_object.responsibility_threshold", "god_object.standalone_function_threshold",
		"exclude_patterns", "framework_patterns",
	}
}
