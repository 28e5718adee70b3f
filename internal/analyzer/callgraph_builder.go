package analyzer

import (
	"strings"

	"github.com/debtscan/debtscan/domain"
)

// higherOrderNames marks call targets whose arguments, when they are bare
// function identifiers, mark that identifier as function-pointer-used
// (§4.4 phase 3).
var higherOrderNames = []string{
	"map", "for_each", "forEach", "spawn", "register", "filter", "then",
	"on", "addEventListener", "connect", "subscribe", "go",
}

// FrameworkPattern is one capability-polymorphic framework-exclusion rule
// (§4.4 phase 4), expressed as "category:glob-like-substring" in config
// (see internal/config.defaultFrameworkPatterns) and parsed here.
type FrameworkPattern struct {
	Category string // "test", "handler", "export", "hook", or "" for bare name match
	Pattern  string
}

func ParseFrameworkPatterns(raw []string) []FrameworkPattern {
	out := make([]FrameworkPattern, 0, len(raw))
	for _, r := range raw {
		if idx := strings.Index(r, ":"); idx >= 0 {
			out = append(out, FrameworkPattern{Category: r[:idx], Pattern: r[idx+1:]})
		} else {
			out = append(out, FrameworkPattern{Pattern: r})
		}
	}
	return out
}

// BuildCallGraph runs the five ordered phases of §4.4 over every parsed
// function. byBareName indexes functions by unqualified name for the
// resolver's fallback; byQualifiedName by FunctionId.QualifiedName.
func BuildCallGraph(files []*domain.FileAst, registry *domain.TypeRegistry, patterns []FrameworkPattern, diags *domain.DiagnosticCollector) *domain.CallGraph {
	graph := domain.NewCallGraph()

	byQualifiedName := map[string]*domain.FunctionRecord{}
	byBareName := map[string][]*domain.FunctionRecord{}
	for _, f := range files {
		for _, fn := range f.Functions {
			byQualifiedName[fn.ID.QualifiedName] = fn
			bare := fn.ID.QualifiedName
			if idx := strings.LastIndex(bare, "::"); idx >= 0 {
				bare = bare[idx+2:]
			}
			byBareName[bare] = append(byBareName[bare], fn)
			graph.AddNode(fn.ID, nodeKindFor(fn))
		}
	}

	// Phases 1-2: direct calls and trait dispatch, both driven by ResolveCall.
	for _, f := range files {
		for _, fn := range f.Functions {
			if fn.Body == nil {
				continue
			}
			calls := fn.Body.FindByType(domain.NodeCall)
			for _, call := range calls {
				candidates := ResolveCall(call, fn, registry, byQualifiedName, byBareName)
				if len(candidates) == 0 {
					if diags != nil {
						diags.Add(domain.Diagnostic{
							Operation: "resolve_call",
							Path:      fn.ID.FilePath,
							Message:   "no callee candidate for call in " + fn.ID.QualifiedName,
							Kind:      domain.ErrorKindResolve,
						})
					}
					continue
				}
				for _, c := range candidates {
					graph.AddEdge(fn.ID, c.Callee, c.Kind, c.Certainty)
				}
			}
		}
	}

	// Phase 3: function pointers / closures and higher-order call detection.
	trackAssignedFunctionPointers(files, graph, byQualifiedName, byBareName)

	// Phase 4: framework exclusion.
	applyFrameworkExclusions(files, graph, patterns)

	// Phase 5: macro expansion.
	for _, f := range files {
		for _, site := range f.MacroCallSites {
			for _, name := range site.ExpandedNames {
				for _, fn := range byBareName[name] {
					graph.AddEdge(site.EnclosingFunc, fn.ID, domain.EdgeMacroGenerated, domain.CertaintyLikely)
				}
			}
		}
	}

	return graph
}

func nodeKindFor(fn *domain.FunctionRecord) domain.NodeKind {
	switch {
	case fn.HasAttribute(domain.AttributeTest):
		return domain.NodeKindTest
	case fn.HasAttribute(domain.AttributeExport):
		return domain.NodeKindExportedApi
	case fn.ImplementedTrait != "":
		return domain.NodeKindTraitMethod
	case fn.ParentType != "":
		return domain.NodeKindMethod
	default:
		return domain.NodeKindFunction
	}
}

// trackAssignedFunctionPointers implements §4.4 phase 3: a function
// identifier passed as an argument to a higher-order call, or assigned as a
// bare identifier to a variable or field, marks that function as
// function-pointer-used. It adds no edges: a later call through that
// variable or field is resolved by the variable's own name, not to the
// assigned function, and functions placed inside a container literal are
// not tracked.
func trackAssignedFunctionPointers(files []*domain.FileAst, graph *domain.CallGraph, byQualifiedName map[string]*domain.FunctionRecord, byBareName map[string][]*domain.FunctionRecord) {
	for _, f := range files {
		for _, fn := range f.Functions {
			if fn.Body == nil {
				continue
			}
			fn.Body.Walk(func(n *domain.Node) bool {
				switch n.Type {
				case domain.NodeCall:
					callee := calleeQualifiedName(n)
					if !isHigherOrder(callee) {
						return true
					}
					for _, arg := range n.Args {
						if arg.Type == domain.NodeIdentifier && arg.Name != "" {
							markPointerUsed(arg.Name, graph, byQualifiedName, byBareName)
						}
					}
				case domain.NodeAssign:
					if n.Right != nil && n.Right.Type == domain.NodeIdentifier && n.Right.Name != "" {
						markPointerUsed(n.Right.Name, graph, byQualifiedName, byBareName)
					}
				}
				return true
			})
		}
	}
}

func isHigherOrder(name string) bool {
	for _, h := range higherOrderNames {
		if strings.Contains(name, h) {
			return true
		}
	}
	return false
}

func markPointerUsed(name string, graph *domain.CallGraph, byQualifiedName map[string]*domain.FunctionRecord, byBareName map[string][]*domain.FunctionRecord) {
	if fn, ok := byQualifiedName[name]; ok {
		graph.MarkFunctionPointerUsed(fn.ID)
		return
	}
	for _, fn := range byBareName[name] {
		graph.MarkFunctionPointerUsed(fn.ID)
	}
}

// applyFrameworkExclusions implements §4.4 phase 4: functions matching a
// framework pattern are marked reachable-by-framework, excluded from
// dead-code reporting regardless of static callers.
func applyFrameworkExclusions(files []*domain.FileAst, graph *domain.CallGraph, patterns []FrameworkPattern) {
	for _, f := range files {
		for _, fn := range f.Functions {
			bare := fn.ID.QualifiedName
			if idx := strings.LastIndex(bare, "::"); idx >= 0 {
				bare = bare[idx+2:]
			}
			for _, p := range patterns {
				if matchesFrameworkPattern(fn, bare, p) {
					graph.MarkFrameworkExcluded(fn.ID, "matches framework pattern "+p.Category+":"+p.Pattern)
					break
				}
			}
		}
	}
}

func matchesFrameworkPattern(fn *domain.FunctionRecord, bareName string, p FrameworkPattern) bool {
	switch p.Category {
	case "test":
		return fn.HasAttribute(domain.AttributeTest) || globMatch(p.Pattern, bareName)
	case "handler":
		return globMatch(p.Pattern, bareName) || globMatch(p.Pattern, fn.ParentType)
	case "export":
		return fn.HasAttribute(domain.AttributeExport) && p.Pattern == "pub_api"
	case "hook":
		return globMatch(p.Pattern, bareName)
	default:
		return bareName == p.Pattern
	}
}

// globMatch supports a single leading/trailing '*' wildcard, enough for the
// built-in framework pattern set.
func globMatch(pattern, name string) bool {
	if pattern == "" || name == "" {
		return false
	}
	switch {
	case strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") && len(pattern) > 1:
		return strings.Contains(name, pattern[1:len(pattern)-1])
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(name, pattern[1:])
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(name, pattern[:len(pattern)-1])
	default:
		return pattern == name
	}
}
