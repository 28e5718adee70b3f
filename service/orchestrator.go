package service

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/debtscan/debtscan/domain"
	"github.com/debtscan/debtscan/internal/analyzer"
	"github.com/debtscan/debtscan/internal/config"
	"github.com/debtscan/debtscan/internal/parser"
	"github.com/debtscan/debtscan/internal/parser/pybackend"
	"github.com/debtscan/debtscan/internal/parser/rustbackend"
)

// duplicationSimilarityThreshold is the minimum token-stream similarity for
// two function bodies to be reported as a Duplication finding (§4.2's
// pattern-repetition machinery, applied cross-function).
const duplicationSimilarityThreshold = 0.9

// testingGapThreshold is the transitive-coverage fraction below which a
// covered-but-undertested function is flagged TestingGap.
const testingGapThreshold = 0.5

// Orchestrator runs the eleven-stage pipeline of §4.10: it is the sole
// caller of every internal/analyzer function, turning a domain.AnalysisRequest
// into a domain.AnalysisReport while reporting progress and accumulating
// non-fatal diagnostics instead of aborting on the first failure.
type Orchestrator struct {
	Reader         domain.FileReader
	CoverageLoader domain.CoverageLoader
	Registry       *parser.Registry
	Progress       domain.ProgressReporter
	History        analyzer.GitHistoryProvider
}

// NewOrchestrator wires the default file reader, LCOV loader, the
// Rust/Python Parser Façade registry, and a go-git-backed history provider
// for the optional bug-fix context signal.
func NewOrchestrator(progress domain.ProgressReporter) *Orchestrator {
	if progress == nil {
		progress = NewNoOpProgressReporter()
	}
	return &Orchestrator{
		Reader:         NewFileReader(),
		CoverageLoader: NewLcovCoverageLoader(),
		Registry:       parser.NewRegistry(rustbackend.New(), pybackend.New()),
		Progress:       progress,
		History:        analyzer.NewGoGitHistoryProvider(),
	}
}

// Run executes the pipeline for one request, producing a complete report.
func (o *Orchestrator) Run(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisReport, error) {
	rc := req.Config
	if rc == nil {
		rc = domain.NewRunContext(nil)
	}
	if rc.Diagnostics == nil {
		rc.Diagnostics = domain.NewDiagnosticCollector()
	}
	cfg := rc.Config
	if cfg == nil {
		cfg = config.Default()
		rc.Config = cfg
	}

	// Stage 1: discover.
	o.Progress.StartStage(domain.StageDiscover, len(req.Paths))
	files, err := o.Reader.CollectFiles(req.Paths, cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		o.Progress.FinishStage(domain.StageDiscover)
		return nil, err
	}
	o.Progress.UpdateStage(domain.StageDiscover, len(files), len(files), "")
	o.Progress.FinishStage(domain.StageDiscover)

	// Stage 2: parse.
	o.Progress.StartStage(domain.StageParse, len(files))
	cache := PopulateParseCache(ctx, files, o.Reader, o.Registry, cfg.Jobs)
	asts := cache.Asts()
	for _, f := range files {
		if r, ok := cache.Get(f); ok && r.ParseErr != nil {
			rc.Diagnostics.AddError("parse", r.ParseErr)
		}
	}
	o.Progress.UpdateStage(domain.StageParse, len(asts), len(files), "")
	o.Progress.FinishStage(domain.StageParse)

	allFunctions := collectFunctions(asts)
	byID := make(map[domain.FunctionId]*domain.FunctionRecord, len(allFunctions))
	for _, fn := range allFunctions {
		byID[fn.ID] = fn
	}

	// Stage 3: complexity & entropy & direct I/O.
	o.Progress.StartStage(domain.StageComplexity, len(allFunctions))
	ioDirect := make(map[domain.FunctionId]domain.IoProfile, len(allFunctions))
	ioPatterns := analyzer.DefaultIoPatterns()
	for i, fn := range allFunctions {
		content := fileContent(cache, fn.ID.FilePath)
		length := effectiveLength(content, fn.BodySpan)
		fn.Metrics = analyzer.ComputeComplexity(fn.Body, bareName(fn.ID.QualifiedName), length)

		entropy := analyzer.AnalyzeEntropy(fn.Body, fn.Metrics.Cyclomatic, cfg.Complexity)
		if !cfg.EnableEntropyDampening {
			entropy.AdjustedComplexity = entropy.OriginalComplexity
			entropy.DampeningFactor = 1.0
			entropy.DampeningApplied = false
		}
		fn.Entropy = &entropy

		profile := analyzer.DetectIoProfile(fn.Body, ioPatterns)
		fn.IO = &profile
		ioDirect[fn.ID] = profile

		o.Progress.UpdateStage(domain.StageComplexity, i+1, len(allFunctions), fn.ID.QualifiedName)
	}
	o.Progress.FinishStage(domain.StageComplexity)

	// Stage 4: type & field resolution.
	o.Progress.StartStage(domain.StageTypeRegistry, len(asts))
	rc.TypeRegistry = analyzer.CollectTypes(asts)
	o.Progress.UpdateStage(domain.StageTypeRegistry, len(asts), len(asts), "")
	o.Progress.FinishStage(domain.StageTypeRegistry)

	// Stage 5: call graph.
	o.Progress.StartStage(domain.StageCallGraph, len(allFunctions))
	patterns := analyzer.ParseFrameworkPatterns(cfg.FrameworkPatterns)
	graph := analyzer.BuildCallGraph(asts, rc.TypeRegistry, patterns, rc.Diagnostics)
	rc.CallGraph = graph
	o.Progress.UpdateStage(domain.StageCallGraph, len(allFunctions), len(allFunctions), "")
	o.Progress.FinishStage(domain.StageCallGraph)

	// Stage 6: coverage (optional).
	o.Progress.StartStage(domain.StageCoverage, 1)
	hasCoverage := req.CoveragePath != ""
	var covReport *domain.CoverageReport
	if hasCoverage {
		covReport, err = o.CoverageLoader.Load(req.CoveragePath)
		if err != nil {
			rc.Diagnostics.Add(domain.Diagnostic{Operation: "load_coverage", Path: req.CoveragePath, Message: err.Error(), Kind: domain.ErrorKindIO})
			hasCoverage = false
		}
	}
	rc.Coverage = covReport
	covIndex := analyzer.BuildCoverageIndex(covReport)
	o.Progress.UpdateStage(domain.StageCoverage, 1, 1, "")
	o.Progress.FinishStage(domain.StageCoverage)

	// Stage 7: propagation (I/O union and transitive coverage) to fixed point.
	o.Progress.StartStage(domain.StagePropagate, len(allFunctions))
	ioEffective := analyzer.PropagateIoProfiles(graph, ioDirect)

	directCov := make(map[domain.FunctionId]float64, len(allFunctions))
	coverageKnown := make(map[domain.FunctionId]bool, len(allFunctions))
	if hasCoverage {
		for _, fn := range allFunctions {
			if c, ok := covIndex.Lookup(fn); ok {
				directCov[fn.ID] = c.Direct
				coverageKnown[fn.ID] = true
			}
		}
	}
	transitiveCov := analyzer.PropagateTransitiveCoverage(graph, directCov)
	o.Progress.UpdateStage(domain.StagePropagate, len(allFunctions), len(allFunctions), "")
	o.Progress.FinishStage(domain.StagePropagate)

	// Stage 8: role classification.
	o.Progress.StartStage(domain.StageRoleClassify, len(allFunctions))
	for i, fn := range allFunctions {
		effIO := ioEffective[fn.ID]
		outDegree := len(graph.EdgesFrom(fn.ID))
		total, calls := analyzer.CountBodyStatements(fn.Body)
		fn.Role = analyzer.ClassifyRole(fn, effIO, outDegree, total, calls)
		o.Progress.UpdateStage(domain.StageRoleClassify, i+1, len(allFunctions), "")
	}
	o.Progress.FinishStage(domain.StageRoleClassify)

	// Stage 9: scoring and debt-item emission.
	o.Progress.StartStage(domain.StageScore, len(allFunctions))
	bugfixDensity := o.bugfixDensity(req, cfg, rc)
	complexityValues := make([]float64, len(allFunctions))
	dependencyValues := make([]float64, len(allFunctions))
	for i, fn := range allFunctions {
		complexityValues[i] = float64(fn.Entropy.AdjustedComplexity)
		inDegree := graph.InDegree(fn.ID)
		dependencyValues[i] = float64(inDegree) * criticality(graph, fn.ID)
	}
	complexityIdx := analyzer.NewPercentileIndex(complexityValues)
	dependencyIdx := analyzer.NewPercentileIndex(dependencyValues)

	errSwallowCache := make(map[domain.FunctionId][]domain.Location, len(allFunctions))
	for _, fn := range allFunctions {
		if hits := analyzer.DetectErrorSwallowing(fn.Body); len(hits) > 0 {
			errSwallowCache[fn.ID] = hits
		}
	}
	dupPairs := analyzer.DetectDuplication(allFunctions, duplicationSimilarityThreshold)
	duplicated := make(map[domain.FunctionId]domain.FunctionId, len(dupPairs)*2)
	for _, p := range dupPairs {
		duplicated[p.A] = p.B
		duplicated[p.B] = p.A
	}

	var items []domain.DebtItem
	for i, fn := range allFunctions {
		inDegree := graph.InDegree(fn.ID)
		outDegree := len(graph.EdgesFrom(fn.ID))

		base := analyzer.ComputeBaseScore(analyzer.BaseScoreInputs{
			AdjustedComplexity: fn.Entropy.AdjustedComplexity,
			TransitiveCoverage: transitiveCov[fn.ID],
			HasCoverageData:    hasCoverage,
			CoverageKnown:      coverageKnown[fn.ID],
			InDegree:           inDegree,
			Criticality:        criticality(graph, fn.ID),
			ComplexityIndex:    complexityIdx,
			DependencyIndex:    dependencyIdx,
		}, cfg.Scoring.Weights)

		fctx := fileContextFor(fn.ID.FilePath)
		score := analyzer.ComputeFinalScore(base, fn.Role, fctx, bugfixDensity[fn.ID.FilePath], cfg)
		severity := domain.SeverityFromScore100(score)

		tier := fn.Metrics.Tier(cfg.Thresholds.ComplexityLow, cfg.Thresholds.CognitiveLow)
		isExempt := fn.HasAttribute(domain.AttributeTest) || fn.HasAttribute(domain.AttributeBenchmark) || fn.HasAttribute(domain.AttributeExport)
		isUnused := graph.IsUnused(fn.ID, isExempt)
		hasTestingGap := hasCoverage && coverageKnown[fn.ID] && transitiveCov[fn.ID] < testingGapThreshold
		_, swallows := errSwallowCache[fn.ID]
		_, dup := duplicated[fn.ID]

		if !analyzer.ShouldEmitDebtItem(tier, hasTestingGap, isUnused, swallows || dup) {
			o.Progress.UpdateStage(domain.StageScore, i+1, len(allFunctions), "")
			continue
		}

		snapshot := domain.MetricSnapshot{
			Complexity: fn.Metrics,
			Entropy:    fn.Entropy,
			Role:       fn.Role,
			InDegree:   inDegree,
			OutDegree:  outDegree,
		}
		if coverageKnown[fn.ID] {
			c := domain.FunctionCoverage{Direct: directCov[fn.ID], Transitive: transitiveCov[fn.ID]}
			snapshot.Coverage = &c
		}
		target := domain.DebtTarget{Function: &fn.ID}
		contextMult := 1.0
		if cfg.Scoring.EnableContextDampening {
			contextMult = contextMultiplierFor(fctx, cfg)
		}

		if tier != domain.ComplexityTierLow {
			items = append(items, domain.DebtItem{
				Target:            target,
				Kind:              domain.DebtKindComplexityHotspot,
				Score:             score,
				Severity:          severity,
				Metrics:           snapshot,
				ContextMultiplier: contextMult,
				Recommendation:    complexityRecommendation(fn, tier),
			})
		}
		if hasTestingGap {
			items = append(items, domain.DebtItem{
				Target:            target,
				Kind:              domain.DebtKindTestingGap,
				Score:             score,
				Severity:          severity,
				Metrics:           snapshot,
				ContextMultiplier: contextMult,
				Recommendation:    "add tests: transitive coverage is below 50%",
			})
		}
		if isUnused {
			items = append(items, domain.DebtItem{
				Target:            target,
				Kind:              domain.DebtKindDeadCode,
				Score:             score,
				Severity:          severity,
				Metrics:           snapshot,
				ContextMultiplier: contextMult,
				Recommendation:    "no caller found; remove or wire up " + fn.ID.QualifiedName,
			})
		}
		if swallows {
			items = append(items, domain.DebtItem{
				Target:            target,
				Kind:              domain.DebtKindErrorSwallowing,
				Score:             score,
				Severity:          severity,
				Metrics:           snapshot,
				ContextMultiplier: contextMult,
				Recommendation:    "at least one exception handler discards its error silently",
			})
		}
		if dup {
			items = append(items, domain.DebtItem{
				Target:            target,
				Kind:              domain.DebtKindDuplication,
				Score:             score,
				Severity:          severity,
				Metrics:           snapshot,
				ContextMultiplier: contextMult,
				Recommendation:    "near-duplicate of " + duplicated[fn.ID].QualifiedName + "; consider extracting a shared helper",
			})
		}
		o.Progress.UpdateStage(domain.StageScore, i+1, len(allFunctions), "")
	}
	o.Progress.FinishStage(domain.StageScore)

	// Stage 10: structural analysis (god class / god module).
	o.Progress.StartStage(domain.StageStructural, len(rc.TypeRegistry.Types()))
	godObjects := o.runStructuralAnalysis(rc, allFunctions, byID, ioEffective, graph, asts)
	for _, g := range godObjects {
		if g.Type == domain.NotGodObject {
			continue
		}
		score := clampScore(float64(g.WeightedMethodCount) / float64(cfg.Thresholds.GodObjectMethodThreshold) * 60)
		items = append(items, domain.DebtItem{
			Target:            g.Subject,
			Kind:              domain.DebtKindGodObject,
			Score:             score,
			Severity:          domain.SeverityFromScore100(score),
			Metrics:           domain.MetricSnapshot{Entropy: &g.AggregateEntropy},
			ContextMultiplier: 1.0,
			Recommendation:    godObjectRecommendation(g),
		})
	}
	o.Progress.FinishStage(domain.StageStructural)

	// Stage 11: emit — sort and summarize.
	o.Progress.StartStage(domain.StageEmit, len(items))
	sortDebtItems(items)
	summary := summarize(items)
	o.Progress.UpdateStage(domain.StageEmit, len(items), len(items), "")
	o.Progress.FinishStage(domain.StageEmit)

	return &domain.AnalysisReport{
		RunID:       uuid.NewString(),
		Items:       items,
		GodObjects:  keepGodObjects(godObjects),
		Summary:     summary,
		HasCoverage: hasCoverage,
		Diagnostics: rc.Diagnostics.All(),
	}, nil
}

// bugfixDensity resolves the optional bug-fix-density context signal
// (§ SUPPLEMENTED FEATURES): when enabled and a history provider is wired,
// it walks recent commit history for the first requested path and returns
// each touched file's fraction of bug-fix commits. Any failure to read
// history (not a git repo, no commits, open error) is recorded as a
// non-fatal diagnostic and treated as "no signal" rather than aborting the
// run, matching the rest of the pipeline's error-handling posture.
func (o *Orchestrator) bugfixDensity(req domain.AnalysisRequest, cfg *domain.Config, rc *domain.RunContext) map[string]float64 {
	if !cfg.Scoring.EnableBugfixContext || o.History == nil || len(req.Paths) == 0 {
		return nil
	}
	commits, err := o.History.RecentCommits(req.Paths[0], 0)
	if err != nil {
		rc.Diagnostics.AddError("bugfix_history", domain.NewIoError(req.Paths[0], "reading git history for bug-fix context", err))
		return nil
	}
	return analyzer.BugFixDensity(commits)
}

func (o *Orchestrator) runStructuralAnalysis(
	rc *domain.RunContext,
	allFunctions []*domain.FunctionRecord,
	byID map[domain.FunctionId]*domain.FunctionRecord,
	io map[domain.FunctionId]domain.IoProfile,
	graph *domain.CallGraph,
	asts []*domain.FileAst,
) []domain.GodObjectAnalysis {
	cfg := rc.Config
	var out []domain.GodObjectAnalysis

	for _, typeDef := range rc.TypeRegistry.Types() {
		if typeDef.Kind != domain.TypeKindStruct && typeDef.Kind != domain.TypeKindClass {
			continue
		}
		var methods []*domain.FunctionRecord
		var entropies []domain.EntropyAnalysis
		var lengths []uint32
		for _, id := range typeDef.Methods {
			if fn, ok := byID[id]; ok {
				methods = append(methods, fn)
				if fn.Entropy != nil {
					entropies = append(entropies, *fn.Entropy)
				}
				if fn.Metrics != nil {
					lengths = append(lengths, fn.Metrics.EffectiveLength)
				}
			}
		}
		if len(methods) == 0 {
			continue
		}
		subject := domain.FunctionId{FilePath: typeDef.File, QualifiedName: typeDef.QualifiedName, DefinitionLine: typeDef.DefLine}
		out = append(out, analyzer.AnalyzeGodClass(subject, typeDef.QualifiedName, methods, len(typeDef.Fields), io, graph, entropies, lengths, cfg.Thresholds))
	}

	byFile := map[string][]*domain.FunctionRecord{}
	fileLen := map[string]int{}
	for _, f := range asts {
		fileLen[f.FilePath] = f.LineCount
	}
	for _, fn := range allFunctions {
		if fn.ParentType == "" {
			byFile[fn.ID.FilePath] = append(byFile[fn.ID.FilePath], fn)
		}
	}
	for path, fns := range byFile {
		var entropies []domain.EntropyAnalysis
		var lengths []uint32
		for _, fn := range fns {
			if fn.Entropy != nil {
				entropies = append(entropies, *fn.Entropy)
			}
			if fn.Metrics != nil {
				lengths = append(lengths, fn.Metrics.EffectiveLength)
			}
		}
		out = append(out, analyzer.AnalyzeGodModule(path, fns, io, graph, fileLen[path], defaultFileLengthThreshold, entropies, lengths, cfg.Thresholds))
	}

	return out
}

// defaultFileLengthThreshold is the substantive-line count above which a
// file with few standalone functions can still be flagged GodModule if its
// responsibility count is high (§4.9).
const defaultFileLengthThreshold = 500

func keepGodObjects(in []domain.GodObjectAnalysis) []domain.GodObjectAnalysis {
	out := make([]domain.GodObjectAnalysis, 0, len(in))
	for _, g := range in {
		if g.Type != domain.NotGodObject {
			out = append(out, g)
		}
	}
	return out
}

func collectFunctions(asts []*domain.FileAst) []*domain.FunctionRecord {
	var out []*domain.FunctionRecord
	for _, f := range asts {
		out = append(out, f.Functions...)
	}
	return out
}

func fileContent(cache *ParseCache, path string) []byte {
	if r, ok := cache.Get(path); ok {
		return r.Content
	}
	return nil
}

// effectiveLength counts non-blank lines in content within span, falling
// back to the raw span line count when content is unavailable.
func effectiveLength(content []byte, span domain.Location) uint32 {
	if span.EndLine < span.StartLine {
		return 0
	}
	if content == nil {
		return uint32(span.EndLine - span.StartLine + 1)
	}
	lines := bytes.Split(content, []byte("\n"))
	var count uint32
	for i := span.StartLine - 1; i < span.EndLine && i < len(lines); i++ {
		if i < 0 {
			continue
		}
		if len(bytes.TrimSpace(lines[i])) > 0 {
			count++
		}
	}
	return count
}

func bareName(qualifiedName string) string {
	if idx := strings.LastIndex(qualifiedName, "::"); idx >= 0 {
		return qualifiedName[idx+2:]
	}
	return qualifiedName
}

// criticality weights a function's in-degree by the fraction of its
// incoming edges resolved at Definite certainty (§4.8: "1.0 + fraction of
// Definite incoming edges").
func criticality(graph *domain.CallGraph, id domain.FunctionId) float64 {
	edges := graph.EdgesTo(id)
	if len(edges) == 0 {
		return 1.0
	}
	var definite int
	for _, e := range edges {
		if e.Certainty == domain.CertaintyDefinite {
			definite++
		}
	}
	return 1.0 + float64(definite)/float64(len(edges))
}

// fileContextFor classifies a path by common Rust/Python project
// conventions for the Unified Scorer's context multiplier (§4.8).
func fileContextFor(path string) analyzer.FileContext {
	slash := filepath.ToSlash(path)
	base := filepath.Base(slash)
	switch {
	case strings.Contains(slash, "/benches/") || strings.HasPrefix(base, "bench_") || strings.HasSuffix(base, "_bench.py"):
		return analyzer.FileContextBenchmark
	case strings.Contains(slash, "/examples/") || strings.Contains(slash, "/docs/"):
		return analyzer.FileContextExample
	case base == "build.rs" || base == "setup.py" || base == "conftest.py":
		return analyzer.FileContextBuildScript
	case strings.Contains(slash, "/tests/") || strings.HasPrefix(base, "test_") ||
		strings.HasSuffix(base, "_test.rs") || strings.HasSuffix(base, "_test.py"):
		return analyzer.FileContextTest
	default:
		return analyzer.FileContextProduction
	}
}

func contextMultiplierFor(fctx analyzer.FileContext, cfg *domain.Config) float64 {
	switch fctx {
	case analyzer.FileContextTest:
		return cfg.Scoring.ContextMultipliers.Test
	case analyzer.FileContextExample:
		return cfg.Scoring.ContextMultipliers.Example
	case analyzer.FileContextBenchmark:
		return cfg.Scoring.ContextMultipliers.Benchmark
	case analyzer.FileContextBuildScript:
		return cfg.Scoring.ContextMultipliers.BuildScript
	default:
		return cfg.Scoring.ContextMultipliers.Production
	}
}

func complexityRecommendation(fn *domain.FunctionRecord, tier domain.ComplexityTier) string {
	if fn.Metrics.IsNestingDriven() {
		return "complexity is nesting-driven (cognitive/cyclomatic > 3); extract the deepest branch into a helper"
	}
	if tier == domain.ComplexityTierHigh {
		return "high cyclomatic complexity; split into smaller functions along its branch structure"
	}
	return "moderate complexity; consider simplifying the branch structure"
}

func godObjectRecommendation(g domain.GodObjectAnalysis) string {
	if len(g.RecommendedSplits) == 0 {
		return "concentrates too many responsibilities; no clear split found automatically"
	}
	names := make([]string, 0, len(g.RecommendedSplits))
	for _, s := range g.RecommendedSplits {
		names = append(names, s.SanitizedName)
	}
	return "split into: " + strings.Join(names, ", ")
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func sortDebtItems(items []domain.DebtItem) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0; j-- {
			if debtItemLess(items[j], items[j-1]) {
				items[j], items[j-1] = items[j-1], items[j]
			} else {
				break
			}
		}
	}
}

// debtItemLess orders by descending score, tie-broken by target identity
// for deterministic output (§8 invariant: stable tie-break by file/line/name).
func debtItemLess(a, b domain.DebtItem) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	af, bf := targetKey(a.Target), targetKey(b.Target)
	return af < bf
}

func targetKey(t domain.DebtTarget) string {
	if t.Function != nil {
		return t.Function.String()
	}
	return t.FilePath
}

func summarize(items []domain.DebtItem) domain.AnalysisSummary {
	s := domain.AnalysisSummary{
		BySeverity: map[domain.Severity]int{},
		ByKind:     map[domain.DebtKind]int{},
		TotalItems: len(items),
	}
	for _, it := range items {
		s.BySeverity[it.Severity]++
		s.ByKind[it.Kind]++
	}
	return s
}
