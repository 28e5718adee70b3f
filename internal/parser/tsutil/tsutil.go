// Package tsutil holds tree-sitter helpers shared across the language
// backends, grounded on the teacher's internal/parser/ast_builder.go idiom
// (getLocation/getNodeText/getChildByFieldName) but generalized away from
// any single grammar.
package tsutil

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/debtscan/debtscan/domain"
)

// Location converts a tree-sitter node span into a domain.Location,
// 1-indexing the line the way the teacher's ast_builder.go does.
func Location(file string, n *sitter.Node) domain.Location {
	start := n.StartPoint()
	end := n.EndPoint()
	return domain.Location{
		File:      file,
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column),
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column),
	}
}

// Text returns a node's source text.
func Text(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(source)
}

// Field fetches a named child, nil-safe.
func Field(n *sitter.Node, name string) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(name)
}

// Children returns every direct child of n.
func Children(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.ChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		if c := n.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// ChildrenOfType returns every direct child whose grammar type is one of kinds.
func ChildrenOfType(n *sitter.Node, kinds ...string) []*sitter.Node {
	want := map[string]bool{}
	for _, k := range kinds {
		want[k] = true
	}
	var out []*sitter.Node
	for _, c := range Children(n) {
		if want[c.Type()] {
			out = append(out, c)
		}
	}
	return out
}

// Walk depth-first visits n and every descendant, stopping a branch early
// when visit returns false, mirroring domain.Node.Walk's contract.
func Walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, visit)
	}
}

// LineCount returns the 1-indexed line count of a source buffer.
func LineCount(source []byte) int {
	lines := 1
	for _, b := range source {
		if b == '\n' {
			lines++
		}
	}
	return lines
}
