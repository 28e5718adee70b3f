package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debtscan/debtscan/domain"
)

func TestBuildCoverageIndexNilReport(t *testing.T) {
	idx := BuildCoverageIndex(nil)
	require.NotNil(t, idx)
	_, ok := idx.Lookup(&domain.FunctionRecord{ID: domain.FunctionId{FilePath: "a.py", QualifiedName: "f"}})
	assert.False(t, ok)
}

func TestCoverageIndexExactMatch(t *testing.T) {
	report := &domain.CoverageReport{Records: []domain.CoverageRecord{
		{File: "src/lib.rs", FunctionName: "Foo::bar", StartLine: 10, LinesTotal: 4, LinesHit: 3},
	}}
	idx := BuildCoverageIndex(report)

	fn := &domain.FunctionRecord{ID: domain.FunctionId{FilePath: "src/lib.rs", QualifiedName: "Foo::bar", DefinitionLine: 10}}
	cov, ok := idx.Lookup(fn)
	require.True(t, ok)
	assert.Equal(t, "exact", cov.MatchedBy)
	assert.InDelta(t, 0.75, cov.Direct, 1e-9)
}

func TestCoverageIndexNameVariantMatch(t *testing.T) {
	report := &domain.CoverageReport{Records: []domain.CoverageRecord{
		{File: "src/lib.rs", FunctionName: "bar", StartLine: 10, LinesTotal: 2, LinesHit: 2},
	}}
	idx := BuildCoverageIndex(report)

	fn := &domain.FunctionRecord{ID: domain.FunctionId{FilePath: "src/lib.rs", QualifiedName: "Foo::bar", DefinitionLine: 10}}
	cov, ok := idx.Lookup(fn)
	require.True(t, ok)
	assert.Equal(t, "name_variant", cov.MatchedBy)
}

func TestCoverageIndexLineFallback(t *testing.T) {
	report := &domain.CoverageReport{Records: []domain.CoverageRecord{
		{File: "src/lib.rs", FunctionName: "totally_different_name", StartLine: 12, LinesTotal: 4, LinesHit: 4},
	}}
	idx := BuildCoverageIndex(report)

	fn := &domain.FunctionRecord{ID: domain.FunctionId{FilePath: "src/lib.rs", QualifiedName: "Foo::bar", DefinitionLine: 10}}
	cov, ok := idx.Lookup(fn)
	require.True(t, ok, "a record within 2 lines of the definition line should match via fallback")
	assert.Equal(t, "line_fallback", cov.MatchedBy)
}

func TestCoverageIndexLineFallbackOutOfRange(t *testing.T) {
	report := &domain.CoverageReport{Records: []domain.CoverageRecord{
		{File: "src/lib.rs", FunctionName: "totally_different_name", StartLine: 20, LinesTotal: 4, LinesHit: 4},
	}}
	idx := BuildCoverageIndex(report)

	fn := &domain.FunctionRecord{ID: domain.FunctionId{FilePath: "src/lib.rs", QualifiedName: "Foo::bar", DefinitionLine: 10}}
	_, ok := idx.Lookup(fn)
	assert.False(t, ok)
}

func TestCoverageIndexNormalizesPaths(t *testing.T) {
	report := &domain.CoverageReport{Records: []domain.CoverageRecord{
		{File: "./src/lib.rs", FunctionName: "bar", StartLine: 1, LinesTotal: 1, LinesHit: 1},
	}}
	idx := BuildCoverageIndex(report)

	fn := &domain.FunctionRecord{ID: domain.FunctionId{FilePath: "src/lib.rs", QualifiedName: "bar"}}
	_, ok := idx.Lookup(fn)
	assert.True(t, ok, "a leading ./ in the coverage report must not block matching")
}

func TestPropagateTransitiveCoverageNoEdgesKeepsDirect(t *testing.T) {
	graph := domain.NewCallGraph()
	id := domain.FunctionId{QualifiedName: "a"}
	graph.AddNode(id, domain.NodeKindFunction)

	got := PropagateTransitiveCoverage(graph, map[domain.FunctionId]float64{id: 0.5})
	assert.InDelta(t, 0.5, got[id], 1e-9)
}

func TestPropagateTransitiveCoverageWeightedByCertainty(t *testing.T) {
	caller := domain.FunctionId{QualifiedName: "caller"}
	callee := domain.FunctionId{QualifiedName: "callee"}
	graph := domain.NewCallGraph()
	graph.AddNode(caller, domain.NodeKindFunction)
	graph.AddNode(callee, domain.NodeKindFunction)
	graph.AddEdge(caller, callee, domain.EdgeDirectCall, domain.CertaintyDefinite)

	direct := map[domain.FunctionId]float64{callee: 1.0}
	got := PropagateTransitiveCoverage(graph, direct)

	// caller has no direct coverage but a Definite-certainty callee at 100%:
	// transitive = (1.0*1.0) / 1.0 = 1.0.
	assert.InDelta(t, 1.0, got[caller], 1e-9)
}

func TestPropagateTransitiveCoverageUnknownStaysAbsent(t *testing.T) {
	id := domain.FunctionId{QualifiedName: "isolated"}
	graph := domain.NewCallGraph()
	graph.AddNode(id, domain.NodeKindFunction)

	got := PropagateTransitiveCoverage(graph, map[domain.FunctionId]float64{})
	_, ok := got[id]
	assert.False(t, ok, "a function with no direct coverage and no covered callees must be absent, not zero")
}
