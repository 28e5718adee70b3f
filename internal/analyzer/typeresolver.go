package analyzer

import (
	"strings"

	"github.com/debtscan/debtscan/domain"
)

// CollectTypes runs phase one of the Type & Field Resolver (§4.3): every
// TypeDefinition, field, method signature, and trait-impl across all parsed
// files is gathered into a single TypeRegistry keyed by qualified name.
func CollectTypes(files []*domain.FileAst) *domain.TypeRegistry {
	registry := domain.NewTypeRegistry()

	for _, f := range files {
		for _, t := range f.Types {
			def := *t
			registry.Register(&def)
		}
		for _, imp := range f.Impls {
			def, ok := registry.Lookup(imp.TypeName)
			if !ok {
				def = &domain.TypeDefinition{QualifiedName: imp.TypeName, Kind: domain.TypeKindStruct, File: f.FilePath}
				registry.Register(def)
			}
			def.Implements = append(def.Implements, domain.TraitImplementation{TraitName: imp.TraitName})
		}
	}

	// second sweep: attach methods to their receiver type now that every
	// type is registered, including types whose definition appears after
	// their methods in file order.
	for _, f := range files {
		for _, fn := range f.Functions {
			if fn.ParentType == "" {
				continue
			}
			def, ok := registry.Lookup(fn.ParentType)
			if !ok {
				def = &domain.TypeDefinition{QualifiedName: fn.ParentType, Kind: domain.TypeKindStruct, File: f.FilePath}
				registry.Register(def)
			}
			def.Methods = append(def.Methods, fn.ID)
		}
	}

	return registry
}

// Candidate is one resolved (or name-fallback) callee, carrying the
// certainty the resolver is willing to assign per §4.3.
type Candidate struct {
	Callee    domain.FunctionId
	Certainty domain.Certainty
	Kind      domain.EdgeKind
}

// ResolveCall implements the field-chain resolution contract of §4.3 for a
// single call expression within caller's body. byQualifiedName indexes every
// parsed function by its FunctionId.QualifiedName for direct lookups, and
// byBareName by its bare (unqualified) name for the name-based fallback.
func ResolveCall(call *domain.Node, caller *domain.FunctionRecord, registry *domain.TypeRegistry, byQualifiedName map[string]*domain.FunctionRecord, byBareName map[string][]*domain.FunctionRecord) []Candidate {
	chain := calleeChain(call)
	if len(chain) == 0 {
		return nil
	}

	methodName := chain[len(chain)-1]
	receiverChain := chain[:len(chain)-1]

	if len(receiverChain) == 0 {
		// Bare call: either a free function or an unqualified same-type
		// method call (implicit self in languages that support it).
		if fn, ok := byQualifiedName[methodName]; ok {
			return []Candidate{{Callee: fn.ID, Certainty: domain.CertaintyDefinite, Kind: domain.EdgeDirectCall}}
		}
		if caller.ParentType != "" {
			if fn, ok := byQualifiedName[domain.QualifiedFunctionName(caller.ParentType, methodName)]; ok {
				return []Candidate{{Callee: fn.ID, Certainty: domain.CertaintyDefinite, Kind: domain.EdgeDirectCall}}
			}
		}
		return nameFallback(methodName, len(call.Args), byBareName)
	}

	// Resolve the receiver type by walking the field chain: a -> type(a),
	// then .b -> type(b) via registry field lookup, repeated to the
	// penultimate element (§4.3 steps 1-2).
	receiverType := resolveLocalType(receiverChain[0], caller)
	if receiverType == "" {
		return nameFallback(methodName, len(call.Args), byBareName)
	}
	for _, field := range receiverChain[1:] {
		next, ok := registry.Field(receiverType, field)
		if !ok {
			return nameFallback(methodName, len(call.Args), byBareName)
		}
		receiverType = next
	}

	return resolveMethodOnType(receiverType, methodName, registry, byQualifiedName, byBareName, len(call.Args))
}

// resolveLocalType handles step 1 of §4.3: `self` resolves to the enclosing
// impl type; any other identifier degrades to Unknown since the AST layer
// carries no local symbol table, matching the documented recall/precision
// trade-off.
func resolveLocalType(name string, caller *domain.FunctionRecord) string {
	if name == "self" || name == "this" {
		return caller.ParentType
	}
	return ""
}

// resolveMethodOnType implements §4.3 step 3-4: inherent methods first,
// then trait implementations; multiple candidates (trait dispatch through
// many impls) each get an edge, Possible unless exactly one impl is in
// scope.
func resolveMethodOnType(typeName, methodName string, registry *domain.TypeRegistry, byQualifiedName map[string]*domain.FunctionRecord, byBareName map[string][]*domain.FunctionRecord, arity int) []Candidate {
	if fn, ok := byQualifiedName[domain.QualifiedFunctionName(typeName, methodName)]; ok {
		return []Candidate{{Callee: fn.ID, Certainty: domain.CertaintyDefinite, Kind: domain.EdgeDirectCall}}
	}

	def, ok := registry.Lookup(typeName)
	if !ok {
		return nameFallback(methodName, arity, byBareName)
	}
	for _, impl := range def.Implements {
		impls := registry.Implementations(impl.TraitName)
		var candidates []Candidate
		for _, implType := range impls {
			if fn, ok := byQualifiedName[domain.QualifiedFunctionName(implType.QualifiedName, methodName)]; ok {
				candidates = append(candidates, Candidate{Callee: fn.ID, Kind: domain.EdgeTraitMethodCall})
			}
		}
		if len(candidates) == 1 {
			candidates[0].Certainty = domain.CertaintyLikely
			return candidates
		}
		if len(candidates) > 1 {
			for i := range candidates {
				candidates[i].Certainty = domain.CertaintyPossible
			}
			return candidates
		}
	}

	return nameFallback(methodName, arity, byBareName)
}

// nameFallback is the §4.3 fallback: any function whose bare name matches
// and whose parameter arity is consistent is a possible callee with
// Certainty=Unknown.
func nameFallback(name string, arity int, byBareName map[string][]*domain.FunctionRecord) []Candidate {
	var out []Candidate
	for _, fn := range byBareName[name] {
		if len(fn.Signature.Params) != arity {
			continue
		}
		out = append(out, Candidate{Callee: fn.ID, Certainty: domain.CertaintyUnknown, Kind: domain.EdgeDirectCall})
	}
	return out
}

// calleeChain flattens a call's callee expression into a dotted name chain,
// e.g. `a.b.c.d.method(...)` -> ["a","b","c","d","method"].
func calleeChain(call *domain.Node) []string {
	if call.Callee == nil {
		if call.Name == "" {
			return nil
		}
		return strings.Split(call.Name, ".")
	}
	var parts []string
	n := call.Callee
	for n != nil {
		if n.Name != "" {
			parts = append([]string{n.Name}, parts...)
		}
		if n.Type == domain.NodeAttribute {
			n = n.Left
			continue
		}
		break
	}
	return parts
}
