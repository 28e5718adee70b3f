package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debtscan/debtscan/domain"
)

func callBody(n int) *domain.Node {
	stmts := make([]*domain.Node, n)
	for i := range stmts {
		stmts[i] = &domain.Node{Type: domain.NodeCall}
	}
	return &domain.Node{Body: stmts}
}

func fn(qualifiedName string, body *domain.Node) *domain.FunctionRecord {
	return &domain.FunctionRecord{
		ID:   domain.FunctionId{QualifiedName: qualifiedName},
		Body: body,
	}
}

func TestClassifyMethodWeightBoilerplate(t *testing.T) {
	for _, name := range []string{"Foo::new", "Foo::New", "Foo::clone", "Foo::default", "Foo::from", "Foo::into"} {
		t.Run(name, func(t *testing.T) {
			got := ClassifyMethodWeight(fn(name, callBody(3)))
			assert.Equal(t, domain.MethodWeightBoilerplate, got)
		})
	}
}

func TestClassifyMethodWeightAccessors(t *testing.T) {
	assert.Equal(t, domain.MethodWeightTrivialAccessor, ClassifyMethodWeight(fn("Foo::get_name", callBody(1))))
	assert.Equal(t, domain.MethodWeightSimpleAccessor, ClassifyMethodWeight(fn("Foo::is_valid", callBody(2))))
	assert.Equal(t, domain.MethodWeightSubstantive, ClassifyMethodWeight(fn("Foo::get_name", callBody(3))),
		"an accessor-named method with too many statements is not an accessor anymore")
}

func TestClassifyMethodWeightDelegating(t *testing.T) {
	got := ClassifyMethodWeight(fn("Foo::process", callBody(2)))
	assert.Equal(t, domain.MethodWeightDelegating, got)
}

func TestClassifyMethodWeightSubstantive(t *testing.T) {
	body := &domain.Node{Body: []*domain.Node{
		{Type: domain.NodeCall},
		{Type: domain.NodeAssign},
		{Type: domain.NodeReturn},
	}}
	got := ClassifyMethodWeight(fn("Foo::compute", body))
	assert.Equal(t, domain.MethodWeightSubstantive, got)
}

func TestWeightedMethodCount(t *testing.T) {
	methods := []*domain.FunctionRecord{
		fn("Foo::new", callBody(1)),               // boilerplate: 0.0
		fn("Foo::get_x", callBody(1)),              // trivial accessor: 0.1
		fn("Foo::compute", &domain.Node{Body: []*domain.Node{{Type: domain.NodeAssign}, {Type: domain.NodeReturn}}}), // substantive: 1.0
	}
	assert.InDelta(t, 1.1, WeightedMethodCount(methods), 1e-9)
}

var baseThresholds = domain.Thresholds{
	GodObjectMethodThreshold:     10,
	GodObjectFieldThreshold:      5,
	GodObjectResponsibility:      2,
	GodObjectStandaloneThreshold: 10,
}

func substantiveMethods(n int, namePrefix string) []*domain.FunctionRecord {
	out := make([]*domain.FunctionRecord, n)
	for i := 0; i < n; i++ {
		body := &domain.Node{Body: []*domain.Node{{Type: domain.NodeAssign}, {Type: domain.NodeReturn}}}
		out[i] = fn(namePrefix+"::method"+string(rune('a'+i)), body)
	}
	return out
}

// mixedResponsibilityMethods spreads n substantive methods evenly across
// three distinct name-pattern buckets (query/mutate/validate) so
// GroupResponsibilities splits them into multiple groups even though they
// all share the same (zero-value) IoProfile bucket.
func mixedResponsibilityMethods(n int, namePrefix string) []*domain.FunctionRecord {
	buckets := []string{"get_", "set_", "validate_"}
	out := make([]*domain.FunctionRecord, n)
	for i := 0; i < n; i++ {
		body := &domain.Node{Body: []*domain.Node{{Type: domain.NodeAssign}, {Type: domain.NodeReturn}, {Type: domain.NodeReturn}}}
		name := namePrefix + "::" + buckets[i%len(buckets)] + string(rune('a'+i))
		out[i] = fn(name, body)
	}
	return out
}

func TestAnalyzeGodClassCrossesThreshold(t *testing.T) {
	methods := mixedResponsibilityMethods(12, "Big")
	io := map[domain.FunctionId]domain.IoProfile{}
	graph := domain.NewCallGraph()

	analysis := AnalyzeGodClass(domain.FunctionId{}, "Big", methods, baseThresholds.GodObjectFieldThreshold+1, io, graph, nil, nil, baseThresholds)

	assert.Equal(t, domain.GodClass, analysis.Type)
	assert.Equal(t, 12, analysis.RawMethodCount)
	assert.NotEmpty(t, analysis.RecommendedSplits)
}

func TestAnalyzeGodClassBelowThresholdIsNotGodObject(t *testing.T) {
	methods := substantiveMethods(3, "Small")
	io := map[domain.FunctionId]domain.IoProfile{}
	graph := domain.NewCallGraph()

	analysis := AnalyzeGodClass(domain.FunctionId{}, "Small", methods, 1, io, graph, nil, nil, baseThresholds)

	assert.Equal(t, domain.NotGodObject, analysis.Type)
	assert.Empty(t, analysis.RecommendedSplits)
}

func TestAnalyzeGodClassNeedsAllThreeConditions(t *testing.T) {
	// enough methods and fields, but not enough responsibility groups
	// (all methods share one IoProfile bucket, same return kind, same name pattern).
	methods := substantiveMethods(12, "Uniform")
	io := map[domain.FunctionId]domain.IoProfile{}
	graph := domain.NewCallGraph()

	analysis := AnalyzeGodClass(domain.FunctionId{}, "Uniform", methods, 10, io, graph, nil, nil, baseThresholds)
	assert.Equal(t, domain.NotGodObject, analysis.Type, "a single cohesive responsibility group must not trigger GodClass")
}

func TestAnalyzeGodModuleStandaloneThreshold(t *testing.T) {
	fns := substantiveMethods(11, "pkg")
	io := map[domain.FunctionId]domain.IoProfile{}
	graph := domain.NewCallGraph()

	analysis := AnalyzeGodModule("file.rs", fns, io, graph, 50, 1000, nil, nil, baseThresholds)

	assert.Equal(t, domain.GodModule, analysis.Type)
}

func TestAnalyzeGodModuleFileLengthPath(t *testing.T) {
	// Below the standalone-function-count threshold, but the file is long
	// and the responsibility count exceeds GodObjectResponsibility.
	fns := []*domain.FunctionRecord{
		fn("pkg::get_a", callBody(2)),
		fn("pkg::set_b", callBody(2)),
		fn("pkg::validate_c", callBody(2)),
	}
	io := map[domain.FunctionId]domain.IoProfile{}
	graph := domain.NewCallGraph()

	analysis := AnalyzeGodModule("file.rs", fns, io, graph, 5000, 1000, nil, nil, baseThresholds)
	assert.Equal(t, domain.GodModule, analysis.Type)
}

func TestAnalyzeGodModuleShortFileNotGodObject(t *testing.T) {
	fns := []*domain.FunctionRecord{fn("pkg::query_a", callBody(2))}
	io := map[domain.FunctionId]domain.IoProfile{}
	graph := domain.NewCallGraph()

	analysis := AnalyzeGodModule("file.rs", fns, io, graph, 10, 1000, nil, nil, baseThresholds)
	assert.Equal(t, domain.NotGodObject, analysis.Type)
}

func TestAnalyzeGodModuleExcludesMethods(t *testing.T) {
	// S3: methods declared on a struct in the same file must not be counted
	// as standalone functions. The caller is responsible for excluding them
	// before calling AnalyzeGodModule; verify the function trusts its input
	// by only ever looking at what's passed as standaloneFns.
	allFns := substantiveMethods(11, "pkg")
	standaloneOnly := allFns[:3]
	io := map[domain.FunctionId]domain.IoProfile{}
	graph := domain.NewCallGraph()

	analysis := AnalyzeGodModule("file.rs", standaloneOnly, io, graph, 50, 1000, nil, nil, baseThresholds)
	assert.Equal(t, domain.NotGodObject, analysis.Type)
	assert.Equal(t, 3, analysis.RawMethodCount)
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"My Module & Friends",
		"a/b-c'd e",
		"type",
		"___leading_and_trailing___",
		"Already_Clean_name",
		"100% Effort!!",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			once := Sanitize(in)
			twice := Sanitize(once)
			assert.Equal(t, once, twice, "Sanitize must be idempotent")
		})
	}
}

func TestSanitizeRules(t *testing.T) {
	assert.Equal(t, "my_module_and_friends", Sanitize("My Module & Friends"))
	assert.Equal(t, "a_b_cd_e", Sanitize("a/b-c'd e"))
	assert.Equal(t, "type_module", Sanitize("type"), "a reserved keyword gets a _module suffix")
	assert.Equal(t, "leading_and_trailing", Sanitize("___leading_and_trailing___"))
	assert.False(t, strings.Contains(Sanitize("a--b  c"), "__"), "repeated underscores must collapse")
}

func TestRecommendSplitsMergesSmallGroups(t *testing.T) {
	groups := []domain.ResponsibilityGroup{
		{Label: "tiny", Methods: []domain.FunctionId{{QualifiedName: "a"}}, CohesionScore: 0.9},
		{Label: "big", Methods: []domain.FunctionId{
			{QualifiedName: "b"}, {QualifiedName: "c"}, {QualifiedName: "d"},
			{QualifiedName: "e"}, {QualifiedName: "f"},
		}, CohesionScore: 0.7},
	}
	splits := RecommendSplits("Subject", groups)
	require.Len(t, splits, 1, "the undersized group must be merged into the only sizable sibling")
	assert.Len(t, splits[0].MethodsToMove, 6)
}

func TestRecommendSplitsWarnsOnOversizedGroup(t *testing.T) {
	ids := make([]domain.FunctionId, 41)
	for i := range ids {
		ids[i] = domain.FunctionId{QualifiedName: string(rune('a' + i%26))}
	}
	groups := []domain.ResponsibilityGroup{{Label: "huge", Methods: ids, CohesionScore: 0.8}}
	splits := RecommendSplits("Subject", groups)
	require.Len(t, splits, 1)
	assert.NotEmpty(t, splits[0].Warning)
}
