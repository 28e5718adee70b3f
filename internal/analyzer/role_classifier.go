package analyzer

import (
	"strings"

	"github.com/debtscan/debtscan/domain"
)

// entryPointNames are bare-name substrings recognized as entry points when
// no test/export attribute is present (§4.6).
var entryPointNames = []string{"main", "handler", "handle"}

// ClassifyRole runs the ordered, first-match rule set of §4.6. io is the
// function's *effective* (propagated) IoProfile; outDegree is its call
// graph out-degree.
func ClassifyRole(fn *domain.FunctionRecord, io domain.IoProfile, outDegree int, bodyStatementCount, callStatementCount int) domain.FunctionRole {
	bare := fn.ID.QualifiedName
	if idx := strings.LastIndex(bare, "::"); idx >= 0 {
		bare = bare[idx+2:]
	}

	if isEntryPoint(fn, bare) {
		return domain.RoleEntryPoint
	}

	if isIOWrapper(fn, io, outDegree) {
		return domain.RoleIOWrapper
	}

	if fn.Entropy != nil && fn.Entropy.BranchSimilarity > 0.7 && isBranchDominated(fn) {
		return domain.RolePatternMatch
	}

	if bodyStatementCount > 0 && callStatementCount*100/bodyStatementCount >= 70 && !isBranchy(fn) {
		return domain.RoleOrchestrator
	}

	if io.IsPure() && len(io.SideEffects) == 0 && fn.Metrics != nil && fn.Metrics.Cyclomatic > 1 {
		return domain.RolePureLogic
	}

	return domain.RoleUnknown
}

func isEntryPoint(fn *domain.FunctionRecord, bareName string) bool {
	if fn.HasAttribute(domain.AttributeTest) {
		return true
	}
	lower := strings.ToLower(bareName)
	for _, p := range entryPointNames {
		if lower == p || strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// isIOWrapper identifies a thin adapter: non-pure IoProfile, a small body
// (EffectiveLength <= 5), and at most one outgoing call-graph edge.
func isIOWrapper(fn *domain.FunctionRecord, io domain.IoProfile, outDegree int) bool {
	if io.IsPure() {
		return false
	}
	if fn.Metrics == nil {
		return false
	}
	return fn.Metrics.EffectiveLength <= 5 && outDegree <= 1
}

// isBranchDominated reports whether cyclomatic complexity comes almost
// entirely from branch count rather than nesting (§4.6).
func isBranchDominated(fn *domain.FunctionRecord) bool {
	if fn.Metrics == nil {
		return false
	}
	return !fn.Metrics.IsNestingDriven()
}

func isBranchy(fn *domain.FunctionRecord) bool {
	return fn.Metrics != nil && fn.Metrics.Cyclomatic > 3
}

// CountBodyStatements gives ClassifyRole its statement-ratio inputs (total
// statements and call statements) by walking the body's top-level block.
func CountBodyStatements(body *domain.Node) (total, calls int) {
	if body == nil {
		return 0, 0
	}
	stmts := body.Body
	if stmts == nil {
		stmts = []*domain.Node{body}
	}
	for _, s := range stmts {
		total++
		if isCallStatement(s) {
			calls++
		}
	}
	return total, calls
}

func isCallStatement(n *domain.Node) bool {
	if n.Type == domain.NodeExprStmt && len(n.GetChildren()) == 1 {
		return n.GetChildren()[0].Type == domain.NodeCall
	}
	return n.Type == domain.NodeCall
}
