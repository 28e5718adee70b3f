package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/debtscan/debtscan/domain"
)

func TestDetectIoProfileNilBodyIsPure(t *testing.T) {
	p := DetectIoProfile(nil, DefaultIoPatterns())
	assert.True(t, p.IsPure())
}

func TestDetectIoProfileClassifiesFileCall(t *testing.T) {
	body := &domain.Node{Body: []*domain.Node{
		{Type: domain.NodeExprStmt, Children: []*domain.Node{
			{Type: domain.NodeCall, Name: "std::fs::read_to_string"},
		}},
	}}
	p := DetectIoProfile(body, DefaultIoPatterns())
	assert.Equal(t, 1, p.FileOps)
	assert.Equal(t, 0, p.NetworkOps)
}

func TestDetectIoProfileClassifiesNetworkConsoleDbEnv(t *testing.T) {
	body := &domain.Node{Body: []*domain.Node{
		{Type: domain.NodeCall, Name: "reqwest::get"},
		{Type: domain.NodeCall, Name: "println!"},
		{Type: domain.NodeCall, Name: "sqlx::query"},
		{Type: domain.NodeCall, Name: "std::env::var"},
	}}
	p := DetectIoProfile(body, DefaultIoPatterns())
	assert.Equal(t, 1, p.NetworkOps)
	assert.Equal(t, 1, p.ConsoleOps)
	assert.Equal(t, 1, p.DBOps)
	assert.Equal(t, 1, p.EnvOps)
}

func TestDetectIoProfileUsesCalleeNameWhenCallHasNoDirectName(t *testing.T) {
	body := &domain.Node{Body: []*domain.Node{
		{Type: domain.NodeCall, Callee: &domain.Node{Name: "os.path.exists"}},
	}}
	p := DetectIoProfile(body, DefaultIoPatterns())
	assert.Equal(t, 1, p.FileOps)
}

func TestDetectIoProfileFieldMutationOnNonSelfReceiver(t *testing.T) {
	body := &domain.Node{Body: []*domain.Node{
		{
			Type: domain.NodeAssign,
			Left: &domain.Node{Type: domain.NodeAttribute, Name: "shared_cache"},
		},
	}}
	p := DetectIoProfile(body, DefaultIoPatterns())
	require := assert.New(t)
	require.Len(p.SideEffects, 1)
	require.Equal(domain.SideEffectFieldMutation, p.SideEffects[0].Kind)
	require.Equal("shared_cache", p.SideEffects[0].Target)
}

func TestDetectIoProfileSelfFieldMutationIsNotASideEffect(t *testing.T) {
	body := &domain.Node{Body: []*domain.Node{
		{
			Type: domain.NodeAssign,
			Left: &domain.Node{Type: domain.NodeAttribute, Name: "self"},
		},
	}}
	p := DetectIoProfile(body, DefaultIoPatterns())
	assert.Empty(t, p.SideEffects)
}

func TestDetectIoProfileUppercaseIdentifierIsGlobalMutation(t *testing.T) {
	body := &domain.Node{Body: []*domain.Node{
		{
			Type: domain.NodeAssign,
			Left: &domain.Node{Type: domain.NodeIdentifier, Name: "Counter"},
		},
	}}
	p := DetectIoProfile(body, DefaultIoPatterns())
	require := assert.New(t)
	require.Len(p.SideEffects, 1)
	require.Equal(domain.SideEffectGlobalMutation, p.SideEffects[0].Kind)
}

func TestDetectIoProfileLowercaseLocalAssignIsNotASideEffect(t *testing.T) {
	body := &domain.Node{Body: []*domain.Node{
		{
			Type: domain.NodeAssign,
			Left: &domain.Node{Type: domain.NodeIdentifier, Name: "total"},
		},
	}}
	p := DetectIoProfile(body, DefaultIoPatterns())
	assert.Empty(t, p.SideEffects)
}

func TestPropagateIoProfilesUnionsCalleeProfiles(t *testing.T) {
	caller := domain.FunctionId{FilePath: "a.rs", QualifiedName: "caller"}
	callee := domain.FunctionId{FilePath: "a.rs", QualifiedName: "callee"}

	graph := domain.NewCallGraph()
	graph.AddNode(caller, domain.NodeKindFunction)
	graph.AddNode(callee, domain.NodeKindFunction)
	graph.AddEdge(caller, callee, domain.EdgeDirectCall, domain.CertaintyDefinite)

	direct := map[domain.FunctionId]domain.IoProfile{
		caller: {},
		callee: {FileOps: 1},
	}
	effective := PropagateIoProfiles(graph, direct)
	assert.Equal(t, 1, effective[caller].FileOps)
	assert.Equal(t, 1, effective[callee].FileOps)
}

func TestPropagateIoProfilesTransitiveThroughChain(t *testing.T) {
	a := domain.FunctionId{FilePath: "a.rs", QualifiedName: "a"}
	b := domain.FunctionId{FilePath: "a.rs", QualifiedName: "b"}
	c := domain.FunctionId{FilePath: "a.rs", QualifiedName: "c"}

	graph := domain.NewCallGraph()
	graph.AddNode(a, domain.NodeKindFunction)
	graph.AddNode(b, domain.NodeKindFunction)
	graph.AddNode(c, domain.NodeKindFunction)
	graph.AddEdge(a, b, domain.EdgeDirectCall, domain.CertaintyDefinite)
	graph.AddEdge(b, c, domain.EdgeDirectCall, domain.CertaintyDefinite)

	direct := map[domain.FunctionId]domain.IoProfile{
		a: {}, b: {}, c: {NetworkOps: 1},
	}
	effective := PropagateIoProfiles(graph, direct)
	assert.Equal(t, 1, effective[a].NetworkOps, "profile must propagate transitively through b")
}

func TestPropagateIoProfilesLeavesPureGraphUnchanged(t *testing.T) {
	id := domain.FunctionId{FilePath: "a.rs", QualifiedName: "f"}
	graph := domain.NewCallGraph()
	graph.AddNode(id, domain.NodeKindFunction)
	direct := map[domain.FunctionId]domain.IoProfile{id: {}}
	effective := PropagateIoProfiles(graph, direct)
	assert.True(t, effective[id].IsPure())
}
