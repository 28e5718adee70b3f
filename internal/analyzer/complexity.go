package analyzer

import (
	"github.com/debtscan/debtscan/domain"
)

// decisionKinds are the node types that add one to cyclomatic complexity.
// Nesting does not multiply: each occurrence counts once regardless of
// depth (§4.2). NodeElifClause is included: an else-if does not open a new
// nesting level for cognitive complexity, but each elif still branches
// control flow, so it counts as its own decision point.
var decisionKinds = map[domain.NodeType]bool{
	domain.NodeIf:         true,
	domain.NodeElifClause: true,
	domain.NodeMatchArm:   true,
	domain.NodeFor:        true,
	domain.NodeWhile:      true,
	domain.NodeLoop:       true,
	domain.NodeCatch:      true,
	domain.NodeTernary:    true,
}

// nestingKinds are the node types that open a nesting scope for cognitive
// complexity purposes. An NodeElifClause reuses its parent If's depth
// rather than opening a new one (§4.2: "else-if chains do not re-nest").
var nestingKinds = map[domain.NodeType]bool{
	domain.NodeIf:    true,
	domain.NodeFor:   true,
	domain.NodeWhile: true,
	domain.NodeLoop:  true,
	domain.NodeCatch: true,
	domain.NodeMatch: true,
}

// ComputeComplexity walks a function body and derives cyclomatic, cognitive,
// and max-nesting-depth metrics per §4.2. effectiveLength is the caller's
// own substantive-line count (blank/comment lines excluded upstream).
// functionName lets recursive self-calls add a cognitive-complexity point.
func ComputeComplexity(body *domain.Node, functionName string, effectiveLength uint32) *domain.ComplexityMetrics {
	w := &complexityWalker{functionName: functionName}
	if body != nil {
		w.walk(body, 0, false)
	}
	cyclomatic := w.cyclomatic + 1 // entry point
	cognitive := w.cognitive
	if cognitive < cyclomatic {
		cognitive = cyclomatic
	}
	return &domain.ComplexityMetrics{
		Cyclomatic:      uint32(cyclomatic),
		Cognitive:       uint32(cognitive),
		MaxNestingDepth: uint32(w.maxDepth),
		EffectiveLength: effectiveLength,
	}
}

type complexityWalker struct {
	functionName string
	cyclomatic   int
	cognitive    int
	maxDepth     int
}

// walk descends the AST tracking nesting depth. elseIfChain is true when the
// current node is an elif/else branch of an already-counted if, so it does
// not open a new nesting level.
func (w *complexityWalker) walk(n *domain.Node, depth int, elseIfChain bool) {
	if n == nil {
		return
	}
	if depth > w.maxDepth {
		w.maxDepth = depth
	}

	if decisionKinds[n.Type] {
		w.cyclomatic++
	}
	if n.Type == domain.NodeLogicalOp && (n.Op == "&&" || n.Op == "||" || n.Op == "and" || n.Op == "or") {
		w.cyclomatic++
	}
	if w.functionName != "" && n.Type == domain.NodeCall && n.Name == w.functionName {
		w.cognitive++
	}

	childDepth := depth
	switch {
	case nestingKinds[n.Type] && !elseIfChain:
		w.cognitive += 1 + depth
		childDepth = depth + 1
	case nestingKinds[n.Type] && elseIfChain:
		w.cognitive++
	}

	for _, child := range n.GetChildren() {
		isElseIf := n.Type == domain.NodeIf && (child.Type == domain.NodeElifClause || child.Type == domain.NodeElseClause)
		w.walk(child, childDepth, isElseIf)
	}
}
