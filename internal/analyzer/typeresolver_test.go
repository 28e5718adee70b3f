package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debtscan/debtscan/domain"
)

func bareCallNode(name string, args ...*domain.Node) *domain.Node {
	return &domain.Node{Type: domain.NodeCall, Name: name, Args: args}
}

func chainCallNode(chain []string, args ...*domain.Node) *domain.Node {
	var cur *domain.Node
	for _, part := range chain {
		cur = &domain.Node{Type: domain.NodeAttribute, Name: part, Left: cur}
	}
	return &domain.Node{Type: domain.NodeCall, Callee: cur, Args: args}
}

func TestCollectTypesRegistersTypesAndAttachesMethods(t *testing.T) {
	files := []*domain.FileAst{
		{
			FilePath: "a.rs",
			Types:    []*domain.TypeDefinition{{QualifiedName: "Widget", Kind: domain.TypeKindStruct}},
			Functions: []*domain.FunctionRecord{
				{ID: domain.FunctionId{QualifiedName: "Widget::render", FilePath: "a.rs"}, ParentType: "Widget"},
			},
		},
	}
	registry := CollectTypes(files)
	def, ok := registry.Lookup("Widget")
	require.True(t, ok)
	assert.Len(t, def.Methods, 1)
	assert.Equal(t, "Widget::render", def.Methods[0].QualifiedName)
}

func TestCollectTypesCreatesImplicitTypeForOrphanMethod(t *testing.T) {
	files := []*domain.FileAst{
		{
			FilePath: "a.rs",
			Functions: []*domain.FunctionRecord{
				{ID: domain.FunctionId{QualifiedName: "Ghost::run", FilePath: "a.rs"}, ParentType: "Ghost"},
			},
		},
	}
	registry := CollectTypes(files)
	_, ok := registry.Lookup("Ghost")
	assert.True(t, ok, "a method whose type definition never appeared must still produce a registry entry")
}

func TestCollectTypesRecordsTraitImplementations(t *testing.T) {
	files := []*domain.FileAst{
		{
			FilePath: "a.rs",
			Types:    []*domain.TypeDefinition{{QualifiedName: "Widget", Kind: domain.TypeKindStruct}},
			Impls:    []*domain.ImplBinding{{TypeName: "Widget", TraitName: "Drawable"}},
		},
	}
	registry := CollectTypes(files)
	def, ok := registry.Lookup("Widget")
	require.True(t, ok)
	require.Len(t, def.Implements, 1)
	assert.Equal(t, "Drawable", def.Implements[0].TraitName)
}

func TestResolveCallBareFreeFunction(t *testing.T) {
	target := &domain.FunctionRecord{ID: domain.FunctionId{QualifiedName: "helper"}}
	byQualified := map[string]*domain.FunctionRecord{"helper": target}
	caller := &domain.FunctionRecord{}

	call := bareCallNode("helper")
	candidates := ResolveCall(call, caller, domain.NewTypeRegistry(), byQualified, nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, domain.CertaintyDefinite, candidates[0].Certainty)
	assert.Equal(t, target.ID, candidates[0].Callee)
}

func TestResolveCallBareMethodOnImplicitSelf(t *testing.T) {
	target := &domain.FunctionRecord{ID: domain.FunctionId{QualifiedName: "Widget::helper"}}
	byQualified := map[string]*domain.FunctionRecord{"Widget::helper": target}
	caller := &domain.FunctionRecord{ParentType: "Widget"}

	call := bareCallNode("helper")
	candidates := ResolveCall(call, caller, domain.NewTypeRegistry(), byQualified, nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, target.ID, candidates[0].Callee)
}

func TestResolveCallSelfReceiverChain(t *testing.T) {
	target := &domain.FunctionRecord{ID: domain.FunctionId{QualifiedName: "Widget::render"}}
	byQualified := map[string]*domain.FunctionRecord{"Widget::render": target}
	caller := &domain.FunctionRecord{ParentType: "Widget"}

	call := chainCallNode([]string{"self", "render"})
	candidates := ResolveCall(call, caller, domain.NewTypeRegistry(), byQualified, nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, domain.CertaintyDefinite, candidates[0].Certainty)
	assert.Equal(t, target.ID, candidates[0].Callee)
}

func TestResolveCallFieldChainWalksRegistry(t *testing.T) {
	registry := domain.NewTypeRegistry()
	registry.Register(&domain.TypeDefinition{
		QualifiedName: "Widget",
		Fields:        []domain.FieldDefinition{{Name: "child", ResolvedType: "Gadget"}},
	})
	target := &domain.FunctionRecord{ID: domain.FunctionId{QualifiedName: "Gadget::spin"}}
	byQualified := map[string]*domain.FunctionRecord{"Gadget::spin": target}
	caller := &domain.FunctionRecord{ParentType: "Widget"}

	call := chainCallNode([]string{"self", "child", "spin"})
	candidates := ResolveCall(call, caller, registry, byQualified, nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, target.ID, candidates[0].Callee)
}

func TestResolveCallUnresolvableFieldFallsBackToName(t *testing.T) {
	registry := domain.NewTypeRegistry()
	registry.Register(&domain.TypeDefinition{QualifiedName: "Widget"})
	fallback := &domain.FunctionRecord{ID: domain.FunctionId{QualifiedName: "spin"}, Signature: domain.Signature{}}
	byBare := map[string][]*domain.FunctionRecord{"spin": {fallback}}
	caller := &domain.FunctionRecord{ParentType: "Widget"}

	call := chainCallNode([]string{"self", "unknown_field", "spin"})
	candidates := ResolveCall(call, caller, registry, map[string]*domain.FunctionRecord{}, byBare)
	require.Len(t, candidates, 1)
	assert.Equal(t, domain.CertaintyUnknown, candidates[0].Certainty)
}

func TestResolveCallTraitDispatchSingleImplIsLikely(t *testing.T) {
	registry := domain.NewTypeRegistry()
	registry.Register(&domain.TypeDefinition{
		QualifiedName: "Widget",
		Implements:    []domain.TraitImplementation{{TraitName: "Drawable"}},
	})
	registry.Register(&domain.TypeDefinition{
		QualifiedName: "ConcreteWidget",
		Implements:    []domain.TraitImplementation{{TraitName: "Drawable"}},
	})
	target := &domain.FunctionRecord{ID: domain.FunctionId{QualifiedName: "ConcreteWidget::draw"}}
	byQualified := map[string]*domain.FunctionRecord{"ConcreteWidget::draw": target}
	caller := &domain.FunctionRecord{ParentType: "Widget"}

	call := chainCallNode([]string{"self", "draw"})
	candidates := ResolveCall(call, caller, registry, byQualified, nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, domain.CertaintyLikely, candidates[0].Certainty)
	assert.Equal(t, domain.EdgeTraitMethodCall, candidates[0].Kind)
}

func TestResolveCallTraitDispatchMultipleImplsArePossible(t *testing.T) {
	registry := domain.NewTypeRegistry()
	registry.Register(&domain.TypeDefinition{
		QualifiedName: "Widget",
		Implements:    []domain.TraitImplementation{{TraitName: "Drawable"}},
	})
	registry.Register(&domain.TypeDefinition{QualifiedName: "ImplA", Implements: []domain.TraitImplementation{{TraitName: "Drawable"}}})
	registry.Register(&domain.TypeDefinition{QualifiedName: "ImplB", Implements: []domain.TraitImplementation{{TraitName: "Drawable"}}})
	fnA := &domain.FunctionRecord{ID: domain.FunctionId{QualifiedName: "ImplA::draw"}}
	fnB := &domain.FunctionRecord{ID: domain.FunctionId{QualifiedName: "ImplB::draw"}}
	byQualified := map[string]*domain.FunctionRecord{"ImplA::draw": fnA, "ImplB::draw": fnB}
	caller := &domain.FunctionRecord{ParentType: "Widget"}

	call := chainCallNode([]string{"self", "draw"})
	candidates := ResolveCall(call, caller, registry, byQualified, nil)
	require.Len(t, candidates, 2)
	for _, c := range candidates {
		assert.Equal(t, domain.CertaintyPossible, c.Certainty)
	}
}

func TestNameFallbackFiltersByArity(t *testing.T) {
	matching := &domain.FunctionRecord{ID: domain.FunctionId{QualifiedName: "f1"}, Signature: domain.Signature{Params: []domain.Parameter{{Name: "x"}}}}
	mismatched := &domain.FunctionRecord{ID: domain.FunctionId{QualifiedName: "f2"}, Signature: domain.Signature{}}
	byBare := map[string][]*domain.FunctionRecord{"do_it": {matching, mismatched}}

	out := nameFallback("do_it", 1, byBare)
	require.Len(t, out, 1)
	assert.Equal(t, matching.ID, out[0].Callee)
}
