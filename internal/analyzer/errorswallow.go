package analyzer

import (
	"github.com/debtscan/debtscan/domain"
)

// DetectErrorSwallowing walks a function body for catch/except clauses
// whose handler does nothing with the caught error: an empty body, or a
// body that is a single pass/no-op, bare-literal, continue or break
// statement. A body that only re-raises is NOT swallowing (it still
// propagates).
// Matches only the statement-oriented try/catch construct Python's
// backend emits; Rust's Result-based error handling has no equivalent
// catch site and is never flagged here.
func DetectErrorSwallowing(body *domain.Node) []domain.Location {
	if body == nil {
		return nil
	}
	var hits []domain.Location
	body.Walk(func(n *domain.Node) bool {
		if n.Type != domain.NodeCatch {
			return true
		}
		if isSwallowed(n) {
			hits = append(hits, n.Location)
		}
		return true
	})
	return hits
}

// isSwallowed reports whether a catch clause's handler body has no
// substantive statement: empty, or made up entirely of a bare pass-like
// expression statement referencing nothing but the bound name (or
// nothing at all).
func isSwallowed(catch *domain.Node) bool {
	stmts := catch.Body
	if len(stmts) == 0 {
		return true
	}
	if len(stmts) > 1 {
		return false
	}
	only := stmts[0]
	switch only.Type {
	case domain.NodeExprStmt:
		children := only.GetChildren()
		return len(children) == 0 || (len(children) == 1 && children[0].Type == domain.NodeLiteral)
	case domain.NodeContinue, domain.NodeBreak:
		return true
	default:
		return false
	}
}
