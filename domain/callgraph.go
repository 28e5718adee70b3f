package domain

import "sort"

// NodeKind classifies a call graph node.
type NodeKind string

const (
	NodeKindFunction           NodeKind = "function"
	NodeKindMethod             NodeKind = "method"
	NodeKindTraitMethod        NodeKind = "trait_method"
	NodeKindClosure            NodeKind = "closure"
	NodeKindTest               NodeKind = "test"
	NodeKindFrameworkCallback  NodeKind = "framework_callback"
	NodeKindExportedApi        NodeKind = "exported_api"
)

// EdgeKind classifies how one function was determined to call another.
type EdgeKind string

const (
	EdgeDirectCall      EdgeKind = "direct_call"
	EdgeTraitMethodCall EdgeKind = "trait_method_call"
	EdgeFunctionPointer EdgeKind = "function_pointer"
	EdgeMacroGenerated  EdgeKind = "macro_generated"
	EdgeConditionalCall EdgeKind = "conditional_call"
)

// Certainty ranks how confident an edge's resolution is. Order matters:
// higher values are stronger and win on merge.
type Certainty int

const (
	CertaintyUnknown Certainty = iota
	CertaintyPossible
	CertaintyLikely
	CertaintyDefinite
)

// Weight returns the coverage-propagation weighting factor for a certainty
// level, per §4.5: Definite=1.0, Likely=0.8, Possible=0.5, Unknown=0.3.
func (c Certainty) Weight() float64 {
	switch c {
	case CertaintyDefinite:
		return 1.0
	case CertaintyLikely:
		return 0.8
	case CertaintyPossible:
		return 0.5
	default:
		return 0.3
	}
}

func (c Certainty) String() string {
	switch c {
	case CertaintyDefinite:
		return "definite"
	case CertaintyLikely:
		return "likely"
	case CertaintyPossible:
		return "possible"
	default:
		return "unknown"
	}
}

// CallGraphEdge is one caller->callee relationship.
type CallGraphEdge struct {
	From      FunctionId
	To        FunctionId
	Kind      EdgeKind
	Certainty Certainty
}

func edgeKey(from, to FunctionId, kind EdgeKind) string {
	return from.String() + "|" + to.String() + "|" + string(kind)
}

// CallGraphNode is a single function's position in the call graph.
type CallGraphNode struct {
	ID      FunctionId
	Kind    NodeKind
	Callers map[string]bool // FunctionId.String() set
	Callees map[string]bool
}

// FrameworkExclusion records why a function is reachable outside static
// call edges (framework callback, test runner, exported API, ...).
type FrameworkExclusion struct {
	Function FunctionId
	Reason   string
}

// CallGraph is the program-wide call graph built by the Call Graph Builder
// (§4.4). Nodes are keyed by FunctionId; edges carry kind and certainty and
// deduplicate to the strongest certainty on (from,to,kind) equality.
type CallGraph struct {
	nodes map[string]*CallGraphNode
	edges map[string]*CallGraphEdge

	FrameworkExclusions map[string]FrameworkExclusion // keyed by FunctionId.String()
	FunctionPointerUsed map[string]bool
}

// NewCallGraph allocates an empty graph.
func NewCallGraph() *CallGraph {
	return &CallGraph{
		nodes:               make(map[string]*CallGraphNode),
		edges:               make(map[string]*CallGraphEdge),
		FrameworkExclusions: make(map[string]FrameworkExclusion),
		FunctionPointerUsed: make(map[string]bool),
	}
}

// AddNode registers a function as a call graph node if not already present,
// returning the (possibly pre-existing) node.
func (g *CallGraph) AddNode(id FunctionId, kind NodeKind) *CallGraphNode {
	key := id.String()
	if n, ok := g.nodes[key]; ok {
		return n
	}
	n := &CallGraphNode{ID: id, Kind: kind, Callers: map[string]bool{}, Callees: map[string]bool{}}
	g.nodes[key] = n
	return n
}

// Node looks up a node by id.
func (g *CallGraph) Node(id FunctionId) (*CallGraphNode, bool) {
	n, ok := g.nodes[id.String()]
	return n, ok
}

// Nodes returns every node, sorted by FunctionId for deterministic output.
func (g *CallGraph) Nodes() []*CallGraphNode {
	out := make([]*CallGraphNode, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Less(out[j].ID) })
	return out
}

// AddEdge inserts an edge, merging with an existing (from,to,kind) edge by
// keeping the stronger certainty (edge dedup rule, §4.4).
func (g *CallGraph) AddEdge(from, to FunctionId, kind EdgeKind, certainty Certainty) {
	g.AddNode(from, NodeKindFunction)
	g.AddNode(to, NodeKindFunction)

	key := edgeKey(from, to, kind)
	if existing, ok := g.edges[key]; ok {
		if certainty > existing.Certainty {
			existing.Certainty = certainty
		}
	} else {
		g.edges[key] = &CallGraphEdge{From: from, To: to, Kind: kind, Certainty: certainty}
	}

	fromNode := g.nodes[from.String()]
	toNode := g.nodes[to.String()]
	fromNode.Callees[to.String()] = true
	toNode.Callers[from.String()] = true
}

// Edges returns every edge, sorted for deterministic output.
func (g *CallGraph) Edges() []*CallGraphEdge {
	out := make([]*CallGraphEdge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From.Less(out[j].From)
		}
		if out[i].To != out[j].To {
			return out[i].To.Less(out[j].To)
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// EdgesFrom returns the outgoing edges of id, strongest certainty first.
func (g *CallGraph) EdgesFrom(id FunctionId) []*CallGraphEdge {
	var out []*CallGraphEdge
	for _, e := range g.edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Certainty > out[j].Certainty })
	return out
}

// EdgesTo returns the incoming edges of id.
func (g *CallGraph) EdgesTo(id FunctionId) []*CallGraphEdge {
	var out []*CallGraphEdge
	for _, e := range g.edges {
		if e.To == id {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Certainty > out[j].Certainty })
	return out
}

// InDegree is the number of distinct callers, across all edge kinds.
func (g *CallGraph) InDegree(id FunctionId) int {
	n, ok := g.Node(id)
	if !ok {
		return 0
	}
	return len(n.Callers)
}

// MarkFrameworkExcluded records id as reachable by an external framework
// with the given reason, excluding it from dead-code reporting (§4.4 phase 4).
func (g *CallGraph) MarkFrameworkExcluded(id FunctionId, reason string) {
	g.FrameworkExclusions[id.String()] = FrameworkExclusion{Function: id, Reason: reason}
}

// IsFrameworkExcluded reports whether id was marked by phase 4.
func (g *CallGraph) IsFrameworkExcluded(id FunctionId) bool {
	_, ok := g.FrameworkExclusions[id.String()]
	return ok
}

// MarkFunctionPointerUsed records that id's identifier was captured as a
// function pointer / closure argument (§4.4 phase 3).
func (g *CallGraph) MarkFunctionPointerUsed(id FunctionId) {
	g.FunctionPointerUsed[id.String()] = true
}

// IsFunctionPointerUsed reports the phase-3 marking.
func (g *CallGraph) IsFunctionPointerUsed(id FunctionId) bool {
	return g.FunctionPointerUsed[id.String()]
}

// IsUnused implements the §4.4 unused-detection rule: in-degree zero,
// not framework-excluded, not function-pointer-used, not test/benchmark/
// exported-API (the caller passes isExempt pre-computed from the
// FunctionRecord's attributes, since CallGraph does not own records).
func (g *CallGraph) IsUnused(id FunctionId, isExempt bool) bool {
	if isExempt {
		return false
	}
	if g.IsFrameworkExcluded(id) {
		return false
	}
	if g.IsFunctionPointerUsed(id) {
		return false
	}
	return g.InDegree(id) == 0
}
