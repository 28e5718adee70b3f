package analyzer

import (
	"strings"

	"github.com/debtscan/debtscan/domain"
)

// IoPatternSet is a data-driven table of call-name substrings that indicate
// an I/O operation of a given kind (§4.7: "patterns are data-driven ... not
// hard-coded function-by-function"). Backends do not register sets of their
// own: the orchestrator applies DefaultIoPatterns to every language.
type IoPatternSet struct {
	File    []string
	Network []string
	Console []string
	Db      []string
	Env     []string
}

// DefaultIoPatterns covers common standard-library and popular third-party
// namespaces across Rust/Python/JS/TS, matched as case-sensitive substrings
// of the call's dotted/qualified name.
func DefaultIoPatterns() IoPatternSet {
	return IoPatternSet{
		File:    []string{"fs::", "os.path", "open(", "File::", "io.Open", "ReadFile", "WriteFile", "std::fs"},
		Network: []string{"reqwest::", "http.", "net::", "fetch(", "axios.", "Socket", "TcpStream", "requests."},
		Console: []string{"println!", "print!", "console.log", "print(", "fmt.Print", "eprintln!"},
		Db:      []string{"sqlx::", "diesel::", "sea_orm", ".query(", ".execute(", "cursor.", "Session."},
		Env:     []string{"std::env", "os.environ", "process.env", "os.Getenv"},
	}
}

// DetectIoProfile classifies each direct call in a function body against an
// IoPatternSet and records non-local mutations as side effects (§4.7). It
// does not propagate through the call graph — see PropagateIoProfiles.
func DetectIoProfile(body *domain.Node, patterns IoPatternSet) domain.IoProfile {
	var p domain.IoProfile
	if body == nil {
		return p
	}
	body.Walk(func(n *domain.Node) bool {
		switch n.Type {
		case domain.NodeCall, domain.NodeMacroCall:
			name := calleeQualifiedName(n)
			switch {
			case matchesAny(name, patterns.File):
				p.FileOps++
			case matchesAny(name, patterns.Network):
				p.NetworkOps++
			case matchesAny(name, patterns.Console):
				p.ConsoleOps++
			case matchesAny(name, patterns.Db):
				p.DBOps++
			case matchesAny(name, patterns.Env):
				p.EnvOps++
			}
		case domain.NodeAssign, domain.NodeAugAssign:
			if se := detectSideEffect(n); se != nil {
				p.SideEffects = append(p.SideEffects, *se)
			}
		}
		return true
	})
	return p
}

func calleeQualifiedName(n *domain.Node) string {
	if n.Name != "" {
		return n.Name
	}
	if n.Callee != nil {
		return n.Callee.Name
	}
	return ""
}

func matchesAny(name string, patterns []string) bool {
	if name == "" {
		return false
	}
	for _, p := range patterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

// detectSideEffect classifies an assignment target: a field-access chain
// rooted outside `self`/the local scope is a field mutation; a bare
// identifier not declared locally is a global mutation. The AST layer does
// not track a symbol table, so this is a syntactic heuristic consistent
// with §4.7's "assignment to fields of non-local receivers".
func detectSideEffect(assign *domain.Node) *domain.SideEffect {
	target := assign.Left
	if target == nil {
		return nil
	}
	switch target.Type {
	case domain.NodeAttribute:
		if target.Name != "" && target.Name != "self" {
			return &domain.SideEffect{Kind: domain.SideEffectFieldMutation, Target: target.Name}
		}
	case domain.NodeIdentifier:
		if target.Name != "" && strings.ToUpper(target.Name[:1]) == target.Name[:1] {
			// Uppercase-led identifiers are treated as module/global-scope
			// bindings in every supported language's convention.
			return &domain.SideEffect{Kind: domain.SideEffectGlobalMutation, Target: target.Name}
		}
	}
	return nil
}

// PropagateIoProfiles computes each node's effective IoProfile as the union
// of its direct profile and its callees' profiles, by fixed-point iteration
// until no profile changes (§4.7). direct is keyed by FunctionId and is not
// mutated; the returned map holds the propagated (effective) profiles.
func PropagateIoProfiles(graph *domain.CallGraph, direct map[domain.FunctionId]domain.IoProfile) map[domain.FunctionId]domain.IoProfile {
	effective := make(map[domain.FunctionId]domain.IoProfile, len(direct))
	for id, p := range direct {
		effective[id] = p
	}

	for changed := true; changed; {
		changed = false
		for _, node := range graph.Nodes() {
			cur := effective[node.ID]
			merged := cur
			for _, edge := range graph.EdgesFrom(node.ID) {
				calleeProfile := effective[edge.To]
				next := merged.Union(calleeProfile)
				if !next.Equal(merged) {
					merged = next
				}
			}
			if !merged.Equal(cur) {
				effective[node.ID] = merged
				changed = true
			}
		}
	}
	return effective
}
