package analyzer

import (
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/debtscan/debtscan/domain"
)

// DuplicateMinEffectiveLength excludes trivial/boilerplate bodies (getters,
// one-line delegations) from duplication reporting; they are already
// demoted to a reduced weight by ClassifyMethodWeight and would otherwise
// dominate the pair count with uninteresting matches.
const DuplicateMinEffectiveLength = 4

// DuplicatePair is one cross-function near-duplicate finding, keyed by the
// identifier-folded token stream similarity already used for
// PatternRepetition/BranchSimilarity within a single function (§4.2), here
// applied between functions instead of between statements of one function.
type DuplicatePair struct {
	A, B       domain.FunctionId
	Similarity float64
}

// DetectDuplication finds near-duplicate function bodies by comparing
// token-stream signatures pairwise within same-sized buckets (bucketing by
// token count in bands of ten keeps the comparison near-linear instead of O(n^2)
// across the whole project, at the cost of missing duplicates whose
// lengths drifted across a bucket boundary).
func DetectDuplication(functions []*domain.FunctionRecord, threshold float64) []DuplicatePair {
	type signed struct {
		fn  *domain.FunctionRecord
		sig string
		n   int
	}
	buckets := map[int][]signed{}
	for _, fn := range functions {
		if fn.Body == nil || fn.Metrics == nil || fn.Metrics.EffectiveLength < DuplicateMinEffectiveLength {
			continue
		}
		tokens := tokenStream(fn.Body)
		s := signed{fn: fn, sig: strings.Join(tokens, " "), n: len(tokens)}
		bucket := s.n / 10
		buckets[bucket] = append(buckets[bucket], s)
	}

	var pairs []DuplicatePair
	for _, group := range buckets {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if group[i].fn.ID == group[j].fn.ID {
					continue
				}
				sim, err := edlib.StringsSimilarity(group[i].sig, group[j].sig, edlib.Levenshtein)
				if err != nil {
					continue
				}
				if float64(sim) >= threshold {
					pairs = append(pairs, DuplicatePair{
						A:          group[i].fn.ID,
						B:          group[j].fn.ID,
						Similarity: float64(sim),
					})
				}
			}
		}
	}
	return pairs
}
