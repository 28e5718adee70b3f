package domain

// CoverageRecord is one function-level line-coverage entry as read from a
// coverage report (§6: "(function-name, start-line, lines-total, lines-hit)").
type CoverageRecord struct {
	File        string
	FunctionName string
	StartLine   int
	LinesTotal  int
	LinesHit    int
}

// DirectCoverage is the record's own covered-lines / total-lines fraction.
func (r CoverageRecord) DirectCoverage() float64 {
	if r.LinesTotal <= 0 {
		return 0
	}
	return float64(r.LinesHit) / float64(r.LinesTotal)
}

// CoverageReport is the parsed form of an entire coverage file.
type CoverageReport struct {
	Records []CoverageRecord
}

// FunctionCoverage is the coverage value exposed on a DebtItem: direct is
// the function's own fraction, transitive folds in callee coverage weighted
// by edge certainty (§4.5).
type FunctionCoverage struct {
	Direct     float64
	Transitive float64
	MatchedBy  string // "exact" | "name_variant" | "line_fallback"
}

// NameVariants generates the coverage-lookup name variants for a method,
// per §4.5 step 2: {"Type::method", "method", "Trait::method"}, tried in
// that order. Free functions have only their bare name.
func NameVariants(qualifiedName, parentType, implementedTrait string) []string {
	variants := []string{qualifiedName}
	bareIdx := lastIndexSep(qualifiedName)
	bare := qualifiedName
	if bareIdx >= 0 {
		bare = qualifiedName[bareIdx+2:]
	}
	if bare != qualifiedName {
		variants = append(variants, bare)
	}
	if implementedTrait != "" {
		traitQualified := implementedTrait + "::" + bare
		if traitQualified != qualifiedName {
			variants = append(variants, traitQualified)
		}
	}
	return variants
}
