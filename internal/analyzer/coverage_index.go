package analyzer

import (
	"path/filepath"
	"strings"

	"github.com/debtscan/debtscan/domain"
)

// CoverageIndex is the built, immutable-after-load index over a
// CoverageReport supporting the three query strategies of §4.5: exact name,
// name-variant, and line-fallback.
type CoverageIndex struct {
	byExact map[string]domain.CoverageRecord // normalized(file)+"|"+name -> record
	byFile  map[string][]domain.CoverageRecord
}

// BuildCoverageIndex is the single-threaded build step (§5): concurrent
// reads only thereafter.
func BuildCoverageIndex(report *domain.CoverageReport) *CoverageIndex {
	idx := &CoverageIndex{
		byExact: make(map[string]domain.CoverageRecord),
		byFile:  make(map[string][]domain.CoverageRecord),
	}
	if report == nil {
		return idx
	}
	for _, r := range report.Records {
		nf := normalizePath(r.File)
		idx.byExact[nf+"|"+r.FunctionName] = r
		idx.byFile[nf] = append(idx.byFile[nf], r)
	}
	return idx
}

// normalizePath strips leading "./" and makes the path slash-separated, to
// tolerate repo-relative vs absolute path strategies (§4.5 step 4).
func normalizePath(p string) string {
	p = filepath.ToSlash(p)
	return strings.TrimPrefix(p, "./")
}

// Lookup resolves a FunctionRecord's direct coverage fraction using, in
// order: exact name, name-variant, line-fallback (§4.5 steps 1-3). ok is
// false when no record was found by any strategy.
func (idx *CoverageIndex) Lookup(fn *domain.FunctionRecord) (domain.FunctionCoverage, bool) {
	file := normalizePath(fn.ID.FilePath)

	if r, ok := idx.byExact[file+"|"+fn.ID.QualifiedName]; ok {
		return domain.FunctionCoverage{Direct: r.DirectCoverage(), MatchedBy: "exact"}, true
	}

	for _, variant := range domain.NameVariants(fn.ID.QualifiedName, fn.ParentType, fn.ImplementedTrait) {
		if variant == fn.ID.QualifiedName {
			continue
		}
		if r, ok := idx.byExact[file+"|"+variant]; ok {
			return domain.FunctionCoverage{Direct: r.DirectCoverage(), MatchedBy: "name_variant"}, true
		}
	}

	if r, ok := idx.lineFallback(file, fn.ID.DefinitionLine); ok {
		return domain.FunctionCoverage{Direct: r.DirectCoverage(), MatchedBy: "line_fallback"}, true
	}

	return domain.FunctionCoverage{}, false
}

// lineFallback finds the record in the same file whose start line is within
// ±2 of defLine, preferring the closest match (§4.5 step 3).
func (idx *CoverageIndex) lineFallback(file string, defLine int) (domain.CoverageRecord, bool) {
	var best domain.CoverageRecord
	bestDist := -1
	for _, r := range idx.byFile[file] {
		dist := r.StartLine - defLine
		if dist < 0 {
			dist = -dist
		}
		if dist > 2 {
			continue
		}
		if bestDist == -1 || dist < bestDist {
			best, bestDist = r, dist
		}
	}
	return best, bestDist != -1
}

// PropagateTransitiveCoverage computes each function's transitive coverage
// (§4.5): weighted average of its direct coverage and its callees',
// weighted by edge certainty. Nodes with no direct coverage and no covered
// callees are absent from the result (coverage "unknown", not zero).
func PropagateTransitiveCoverage(graph *domain.CallGraph, direct map[domain.FunctionId]float64) map[domain.FunctionId]float64 {
	transitive := make(map[domain.FunctionId]float64, len(direct))
	for id, v := range direct {
		transitive[id] = v
	}

	for _, node := range graph.Nodes() {
		edges := graph.EdgesFrom(node.ID)
		if len(edges) == 0 {
			continue
		}
		selfCov, hasSelf := direct[node.ID]
		var weightedSum, weightTotal float64
		if hasSelf {
			weightedSum += selfCov
			weightTotal++
		}
		for _, e := range edges {
			if cov, ok := direct[e.To]; ok {
				w := e.Certainty.Weight()
				weightedSum += cov * w
				weightTotal += w
			}
		}
		if weightTotal > 0 {
			transitive[node.ID] = weightedSum / weightTotal
		}
	}
	return transitive
}
