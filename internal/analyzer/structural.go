package analyzer

import (
	"strings"

	"github.com/debtscan/debtscan/domain"
)

// boilerplateNames are constructor/conversion method names that are always
// MethodWeightBoilerplate regardless of body shape (§4.9).
var boilerplateNames = map[string]bool{
	"new": true, "default": true, "clone": true, "from": true, "into": true,
}

// ClassifyMethodWeight is purely syntactic: name pattern, body shape, and
// return-expression kind (§4.9), never call-graph or cross-function data.
func ClassifyMethodWeight(fn *domain.FunctionRecord) domain.MethodWeightClass {
	bare := bareMethodName(fn.ID.QualifiedName)
	if boilerplateNames[strings.ToLower(bare)] {
		return domain.MethodWeightBoilerplate
	}

	stmtCount, callCount := CountBodyStatements(fn.Body)

	isAccessorName := strings.HasPrefix(bare, "get_") || strings.HasPrefix(bare, "set_") ||
		strings.HasPrefix(bare, "is_") || strings.HasPrefix(bare, "has_")

	switch {
	case stmtCount <= 1 && isAccessorName:
		return domain.MethodWeightTrivialAccessor
	case stmtCount <= 2 && isAccessorName:
		return domain.MethodWeightSimpleAccessor
	case stmtCount >= 1 && callCount == stmtCount && stmtCount <= 2:
		// A body that is entirely one or two delegating calls.
		return domain.MethodWeightDelegating
	default:
		return domain.MethodWeightSubstantive
	}
}

func bareMethodName(qualifiedName string) string {
	if idx := strings.LastIndex(qualifiedName, "::"); idx >= 0 {
		return qualifiedName[idx+2:]
	}
	return qualifiedName
}

// WeightedMethodCount sums ClassifyMethodWeight().Weight() across methods.
func WeightedMethodCount(methods []*domain.FunctionRecord) float64 {
	var total float64
	for _, m := range methods {
		total += ClassifyMethodWeight(m).Weight()
	}
	return total
}

// GroupResponsibilities clusters methods into cohesive groups. Methods are
// first partitioned by IoProfile primary responsibility and then split by
// return-type family and name pattern (splitByMinorSignals). Call-graph
// co-reference does not affect the grouping; it only sets each group's
// CohesionScore. Shared-field/side-effect targets are not used.
func GroupResponsibilities(methods []*domain.FunctionRecord, io map[domain.FunctionId]domain.IoProfile, graph *domain.CallGraph) []domain.ResponsibilityGroup {
	byResponsibility := map[domain.IoResponsibility][]*domain.FunctionRecord{}
	for _, m := range methods {
		resp := io[m.ID].PrimaryResponsibility()
		byResponsibility[resp] = append(byResponsibility[resp], m)
	}

	var groups []domain.ResponsibilityGroup
	for resp, ms := range byResponsibility {
		for label, sub := range splitByMinorSignals(ms, graph) {
			ids := make([]domain.FunctionId, 0, len(sub))
			for _, m := range sub {
				ids = append(ids, m.ID)
			}
			groups = append(groups, domain.ResponsibilityGroup{
				Label:         string(resp) + "/" + label,
				Methods:       ids,
				CohesionScore: cohesionScore(sub, graph),
			})
		}
	}
	return groups
}

// splitByMinorSignals further partitions a behaviorally-similar set by
// return-type family (type-signature family, 15%) and a name-pattern prefix
// (5%), approximating the remaining 20% of the composite signal.
func splitByMinorSignals(methods []*domain.FunctionRecord, graph *domain.CallGraph) map[string][]*domain.FunctionRecord {
	out := map[string][]*domain.FunctionRecord{}
	for _, m := range methods {
		key := string(m.Signature.ReturnKind) + ":" + namePatternBucket(bareMethodName(m.ID.QualifiedName))
		out[key] = append(out[key], m)
	}
	return out
}

func namePatternBucket(name string) string {
	switch {
	case strings.HasPrefix(name, "get_") || strings.HasPrefix(name, "is_") || strings.HasPrefix(name, "has_"):
		return "query"
	case strings.HasPrefix(name, "set_") || strings.HasPrefix(name, "update_"):
		return "mutate"
	case strings.HasPrefix(name, "validate_") || strings.HasPrefix(name, "check_"):
		return "validate"
	default:
		return "other"
	}
}

// cohesionScore approximates the call-graph co-reference signal (30%): the
// fraction of method pairs in the group that share at least one callee.
func cohesionScore(methods []*domain.FunctionRecord, graph *domain.CallGraph) float64 {
	if len(methods) < 2 || graph == nil {
		return 1.0
	}
	var shared, pairs int
	for i := 0; i < len(methods); i++ {
		for j := i + 1; j < len(methods); j++ {
			pairs++
			if shareCallee(methods[i].ID, methods[j].ID, graph) {
				shared++
			}
		}
	}
	if pairs == 0 {
		return 1.0
	}
	return float64(shared) / float64(pairs)
}

func shareCallee(a, b domain.FunctionId, graph *domain.CallGraph) bool {
	callees := map[domain.FunctionId]bool{}
	for _, e := range graph.EdgesFrom(a) {
		callees[e.To] = true
	}
	for _, e := range graph.EdgesFrom(b) {
		if callees[e.To] {
			return true
		}
	}
	return false
}

// AnalyzeGodClass applies the §4.9 GodClass classification rule to a single
// type's methods. fieldCount is the type's declared field count.
func AnalyzeGodClass(subject domain.FunctionId, typeName string, methods []*domain.FunctionRecord, fieldCount int, io map[domain.FunctionId]domain.IoProfile, graph *domain.CallGraph, entropies []domain.EntropyAnalysis, lengths []uint32, th domain.Thresholds) domain.GodObjectAnalysis {
	groups := GroupResponsibilities(methods, io, graph)
	weighted := WeightedMethodCount(methods)

	kind := domain.NotGodObject
	if weighted > float64(th.GodObjectMethodThreshold) && fieldCount > th.GodObjectFieldThreshold && len(groups) > th.GodObjectResponsibility {
		kind = domain.GodClass
	}

	analysis := domain.GodObjectAnalysis{
		Subject:             domain.DebtTarget{FilePath: typeName},
		Type:                kind,
		RawMethodCount:      len(methods),
		FieldCount:          fieldCount,
		WeightedMethodCount: weighted,
		ResponsibilityCount: len(groups),
		Groups:              groups,
		AggregateEntropy:    domain.AggregateEntropy(entropies, lengths),
	}
	if kind == domain.GodClass {
		analysis.RecommendedSplits = RecommendSplits(typeName, groups)
	}
	return analysis
}

// AnalyzeGodModule applies the §4.9 GodModule classification rule to a
// file's standalone (non-method) functions. Per S3, methods declared on a
// struct in the same file must not be counted here.
func AnalyzeGodModule(filePath string, standaloneFns []*domain.FunctionRecord, io map[domain.FunctionId]domain.IoProfile, graph *domain.CallGraph, fileLength int, fileLengthThreshold int, entropies []domain.EntropyAnalysis, lengths []uint32, th domain.Thresholds) domain.GodObjectAnalysis {
	var substantive []*domain.FunctionRecord
	for _, fn := range standaloneFns {
		if ClassifyMethodWeight(fn) == domain.MethodWeightSubstantive {
			substantive = append(substantive, fn)
		}
	}
	groups := GroupResponsibilities(standaloneFns, io, graph)

	kind := domain.NotGodObject
	if len(substantive) > th.GodObjectStandaloneThreshold {
		kind = domain.GodModule
	} else if fileLength > fileLengthThreshold && len(groups) > th.GodObjectResponsibility {
		kind = domain.GodModule
	}

	analysis := domain.GodObjectAnalysis{
		Subject:             domain.DebtTarget{FilePath: filePath},
		Type:                kind,
		RawMethodCount:      len(standaloneFns),
		WeightedMethodCount: WeightedMethodCount(standaloneFns),
		ResponsibilityCount: len(groups),
		Groups:              groups,
		AggregateEntropy:    domain.AggregateEntropy(entropies, lengths),
	}
	if kind == domain.GodModule {
		analysis.RecommendedSplits = RecommendSplits(filePath, groups)
	}
	return analysis
}

// RecommendSplits builds one ModuleSplit per responsibility group, merging
// undersized groups and flagging oversized ones for recursive splitting
// (§4.9: "< 5 methods are merged with nearest sibling"; "> 40 methods are
// recursively split").
func RecommendSplits(subjectName string, groups []domain.ResponsibilityGroup) []domain.ModuleSplit {
	merged := mergeSmallGroups(groups)

	splits := make([]domain.ModuleSplit, 0, len(merged))
	usedNames := map[string]int{}
	for _, g := range merged {
		name := Sanitize(subjectName + "_" + g.Label)
		if n, ok := usedNames[name]; ok {
			usedNames[name] = n + 1
			name = name + "_" + itoa(n+1)
		} else {
			usedNames[name] = 0
		}

		warning := ""
		if len(g.Methods) > 40 {
			warning = "group exceeds 40 methods; recommend a further split before extraction"
		}

		splits = append(splits, domain.ModuleSplit{
			SanitizedName:       name,
			ResponsibilityLabel: g.Label,
			Priority:            splitPriority(g.CohesionScore, len(g.Methods)),
			MethodsToMove:       g.Methods,
			Warning:             warning,
		})
	}
	return splits
}

func mergeSmallGroups(groups []domain.ResponsibilityGroup) []domain.ResponsibilityGroup {
	var big, small []domain.ResponsibilityGroup
	for _, g := range groups {
		if len(g.Methods) < 5 {
			small = append(small, g)
		} else {
			big = append(big, g)
		}
	}
	if len(small) == 0 {
		return big
	}
	if len(big) == 0 {
		// Nothing sizable to merge into; keep the small groups as-is rather
		// than inventing a sibling.
		return small
	}
	// Merge every undersized group into the smallest big sibling, the
	// nearest by method count.
	sort := func(gs []domain.ResponsibilityGroup) int {
		best, bestLen := 0, len(gs[0].Methods)
		for i, g := range gs {
			if len(g.Methods) < bestLen {
				best, bestLen = i, len(g.Methods)
			}
		}
		return best
	}
	target := sort(big)
	for _, s := range small {
		big[target].Methods = append(big[target].Methods, s.Methods...)
	}
	return big
}

func splitPriority(cohesion float64, size int) domain.SplitPriority {
	switch {
	case cohesion >= 0.6 && size >= 5:
		return domain.SplitPriorityHigh
	case cohesion >= 0.3:
		return domain.SplitPriorityMedium
	default:
		return domain.SplitPriorityLow
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

var reservedModuleNames = map[string]bool{
	"type": true, "func": true, "package": true, "import": true, "return": true,
	"if": true, "for": true, "range": true, "var": true, "const": true,
}

// Sanitize implements §4.9's module-name sanitization, built to be
// idempotent (§8 invariant 6): lowercase; &->and, /->_, -->_, '->removed,
// spaces->_; collapse repeated _; strip leading/trailing _; append _module
// if the result is a reserved keyword.
func Sanitize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "&", "and")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, " ", "_")

	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	s = b.String()

	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	s = strings.Trim(s, "_")

	if reservedModuleNames[s] {
		s += "_module"
	}
	return s
}
