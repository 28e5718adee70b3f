package analyzer

import (
	"math"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/debtscan/debtscan/domain"
)

// tokenKind folds a raw token down to a normalized vocabulary entry:
// identifiers fold to their syntactic role, literals fold to their type,
// so that two structurally identical statements produce the same token
// stream regardless of variable names (§4.2: "identifiers folded to kind").
func tokenKind(n *domain.Node) string {
	switch n.Type {
	case domain.NodeIdentifier:
		return "ident"
	case domain.NodeLiteral:
		return "lit"
	default:
		return string(n.Type)
	}
}

// AnalyzeEntropy computes token entropy, pattern repetition, and branch
// similarity for a function body and folds them into a dampening factor via
// NewEntropyAnalysis (§4.2). weights.EntropyRepetitionWeight/EntropyDensityWeight
// are k_rep/k_ent.
func AnalyzeEntropy(body *domain.Node, original uint32, weights domain.ComplexityWeights) domain.EntropyAnalysis {
	if body == nil {
		return domain.NewEntropyAnalysis(1.0, 0.0, 0.0, weights.EntropyRepetitionWeight, weights.EntropyDensityWeight, original)
	}

	tokens := tokenStream(body)
	entropy := shannonEntropy(tokens)
	repetition := patternRepetition(tokens)
	branchSim := branchSimilarity(body)

	return domain.NewEntropyAnalysis(entropy, repetition, branchSim, weights.EntropyRepetitionWeight, weights.EntropyDensityWeight, original)
}

// tokenStream flattens a subtree into its normalized token kinds, pre-order.
func tokenStream(n *domain.Node) []string {
	var out []string
	n.Walk(func(node *domain.Node) bool {
		out = append(out, tokenKind(node))
		return true
	})
	return out
}

// shannonEntropy computes Shannon entropy over the token vocabulary,
// normalized to [0,1] by the maximum possible entropy for the observed
// alphabet size (log2 of distinct token kinds).
func shannonEntropy(tokens []string) float64 {
	if len(tokens) == 0 {
		return 1.0
	}
	counts := map[string]int{}
	for _, t := range tokens {
		counts[t]++
	}
	if len(counts) <= 1 {
		return 0.0
	}
	total := float64(len(tokens))
	var h float64
	for _, c := range counts {
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	maxH := math.Log2(float64(len(counts)))
	if maxH == 0 {
		return 0.0
	}
	return h / maxH
}

// patternRepetition measures similarity between consecutive statement
// sequences by comparing adjacent statement's token signatures with a
// string-edit-distance similarity (§4.2). A body made of many near-identical
// statements (a long dispatch table) scores close to 1.0.
func patternRepetition(tokens []string) float64 {
	stmts := chunkBySize(tokens, 8)
	if len(stmts) < 2 {
		return 0.0
	}
	var total float64
	var pairs int
	for i := 1; i < len(stmts); i++ {
		sim, err := edlib.StringsSimilarity(stmts[i-1], stmts[i], edlib.Levenshtein)
		if err != nil {
			continue
		}
		total += float64(sim)
		pairs++
	}
	if pairs == 0 {
		return 0.0
	}
	return total / float64(pairs)
}

// chunkBySize groups a flat token stream into fixed-size joined chunks, a
// cheap proxy for "statement" boundaries without a full grammar.
func chunkBySize(tokens []string, size int) []string {
	var out []string
	for i := 0; i < len(tokens); i += size {
		end := i + size
		if end > len(tokens) {
			end = len(tokens)
		}
		out = append(out, strings.Join(tokens[i:end], " "))
	}
	return out
}

// branchSimilarity measures how structurally similar the arms of the body's
// largest multi-way branch are (match/switch arms, §4.2). Bodies with no
// multi-way branch score 0.
func branchSimilarity(body *domain.Node) float64 {
	matches := body.FindByType(domain.NodeMatch)
	var best float64
	for _, m := range matches {
		arms := m.Find(func(n *domain.Node) bool { return n.Type == domain.NodeMatchArm })
		if len(arms) < 2 {
			continue
		}
		var total float64
		var pairs int
		signatures := make([]string, len(arms))
		for i, a := range arms {
			signatures[i] = strings.Join(tokenStream(a), " ")
		}
		for i := 1; i < len(signatures); i++ {
			sim, err := edlib.StringsSimilarity(signatures[i-1], signatures[i], edlib.Levenshtein)
			if err != nil {
				continue
			}
			total += float64(sim)
			pairs++
		}
		if pairs > 0 {
			avg := total / float64(pairs)
			if avg > best {
				best = avg
			}
		}
	}
	return best
}
