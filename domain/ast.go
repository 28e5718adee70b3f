package domain

import "fmt"

// NodeType identifies the syntactic shape of an AST node. The vocabulary is
// shared across every language backend: a backend maps its own grammar onto
// this common set rather than the core understanding per-language grammars.
type NodeType string

const (
	NodeModule NodeType = "Module"

	// Declarations
	NodeFunctionDef NodeType = "FunctionDef"
	NodeClassDef    NodeType = "ClassDef"
	NodeImplBlock   NodeType = "ImplBlock"
	NodeTraitDef    NodeType = "TraitDef"

	// Statements
	NodeReturn     NodeType = "Return"
	NodeAssign     NodeType = "Assign"
	NodeAugAssign  NodeType = "AugAssign"
	NodeFor        NodeType = "For"
	NodeWhile      NodeType = "While"
	NodeLoop       NodeType = "Loop"
	NodeIf         NodeType = "If"
	NodeElifClause NodeType = "ElifClause"
	NodeElseClause NodeType = "ElseClause"
	NodeMatch      NodeType = "Match"
	NodeMatchArm   NodeType = "MatchArm"
	NodeTry        NodeType = "Try"
	NodeCatch      NodeType = "Catch"
	NodeFinally    NodeType = "Finally"
	NodeRaise      NodeType = "Raise"
	NodeImport     NodeType = "Import"
	NodeExprStmt   NodeType = "ExprStmt"
	NodeBlock      NodeType = "Block"
	NodeBreak      NodeType = "Break"
	NodeContinue   NodeType = "Continue"

	// Expressions
	NodeBinOp      NodeType = "BinOp"
	NodeUnaryOp    NodeType = "UnaryOp"
	NodeLogicalOp  NodeType = "LogicalOp" // &&, ||, and, or, short-circuit
	NodeCall       NodeType = "Call"
	NodeMacroCall  NodeType = "MacroCall"
	NodeClosure    NodeType = "Closure"
	NodeAttribute  NodeType = "Attribute" // field / member access chain element
	NodeIdentifier NodeType = "Identifier"
	NodeLiteral    NodeType = "Literal"
	NodeTernary    NodeType = "Ternary"
	NodeAwait      NodeType = "Await"
)

// Location is a span in a single source file, 1-based lines and columns.
type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Node is a single AST node. The field set is intentionally generic: a
// backend for any supported language populates the subset relevant to its
// grammar and leaves the rest at zero value.
type Node struct {
	Type     NodeType
	Value    interface{}
	Children []*Node
	Location Location
	Parent   *Node

	Name     string  // identifier, call target name, etc.
	Body     []*Node // statement list for blocks/compound statements
	Orelse   []*Node // else branch of if/for/while
	Handlers []*Node // catch/except handlers of a try
	Test     *Node   // condition expression
	Iter     *Node   // iterable of a for loop
	Args     []*Node // call / macro arguments
	Callee   *Node   // call target expression (for chains: a.b.c.d())
	Left     *Node
	Right    *Node
	Op       string
}

// NewNode allocates an empty node of the given type.
func NewNode(t NodeType) *Node {
	return &Node{Type: t}
}

// AddChild attaches a generic child, setting its parent pointer.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// GetChildren returns every structurally-linked child across all fields,
// used by Walk/Find so callers don't need to know which fields a given node
// type populates.
func (n *Node) GetChildren() []*Node {
	all := make([]*Node, 0, len(n.Children)+len(n.Body)+len(n.Orelse)+len(n.Handlers)+len(n.Args))
	all = append(all, n.Children...)
	all = append(all, n.Body...)
	all = append(all, n.Orelse...)
	all = append(all, n.Handlers...)
	if n.Test != nil {
		all = append(all, n.Test)
	}
	if n.Iter != nil {
		all = append(all, n.Iter)
	}
	if n.Callee != nil {
		all = append(all, n.Callee)
	}
	if n.Left != nil {
		all = append(all, n.Left)
	}
	if n.Right != nil {
		all = append(all, n.Right)
	}
	all = append(all, n.Args...)
	return all
}

// String gives a short debug representation.
func (n *Node) String() string {
	if n.Name != "" {
		return fmt.Sprintf("%s(%s)", n.Type, n.Name)
	}
	return string(n.Type)
}

// Walk performs a pre-order depth-first traversal. The visitor returns false
// to prune the subtree rooted at the current node.
func (n *Node) Walk(visit func(*Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, child := range n.GetChildren() {
		child.Walk(visit)
	}
}

// Find collects every node matching predicate.
func (n *Node) Find(predicate func(*Node) bool) []*Node {
	var out []*Node
	n.Walk(func(node *Node) bool {
		if predicate(node) {
			out = append(out, node)
		}
		return true
	})
	return out
}

// FindByType is a convenience wrapper over Find for a single node type.
func (n *Node) FindByType(t NodeType) []*Node {
	return n.Find(func(node *Node) bool { return node.Type == t })
}
