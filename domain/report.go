package domain

import "context"

// AnalysisRequest is the input to the pure analyze(project) -> AnalysisReport
// entry point (§6).
type AnalysisRequest struct {
	Paths        []string
	CoveragePath string // "" if no coverage report supplied
	Config       *RunContext
}

// AnalysisSummary is the report's aggregate counts.
type AnalysisSummary struct {
	BySeverity map[Severity]int
	ByKind     map[DebtKind]int
	TotalItems int
}

// AnalysisReport is the pure core's single output type (§6): ranked items,
// severity/category summary, a coverage-present flag, and diagnostics.
type AnalysisReport struct {
	RunID       string
	Items       []DebtItem
	GodObjects  []GodObjectAnalysis
	Summary     AnalysisSummary
	HasCoverage bool
	Diagnostics []Diagnostic
}

// StageName enumerates the orchestrator's eleven stages (§4.10), used for
// progress callbacks.
type StageName string

const (
	StageDiscover        StageName = "discover"
	StageParse           StageName = "parse"
	StageComplexity      StageName = "complexity"
	StageTypeRegistry    StageName = "type_registry"
	StageCallGraph       StageName = "call_graph"
	StageCoverage        StageName = "coverage"
	StagePropagate       StageName = "propagate"
	StageRoleClassify    StageName = "role_classify"
	StageScore           StageName = "score"
	StageStructural      StageName = "structural"
	StageEmit            StageName = "emit"
)

// ProgressReporter receives stage/subtask progress callbacks from the
// Orchestrator. The shell implements this to render a UI; the core never
// assumes a terminal is attached (§5).
type ProgressReporter interface {
	StartStage(stage StageName, total int)
	UpdateStage(stage StageName, current, total int, detail string)
	FinishStage(stage StageName)
}

// ParserBackend is the capability-polymorphic interface a language backend
// implements for the Parser Façade (§4.1, §6).
type ParserBackend interface {
	// Language returns the backend's language tag, e.g. "rust".
	Language() string
	// Extensions lists the file extensions this backend claims, e.g. [".rs"].
	Extensions() []string
	// ParseFile parses one file's bytes into a FileAst. A non-nil
	// *AnalysisError means the file was dropped; the façade logs it as a
	// diagnostic and continues.
	ParseFile(path string, contents []byte) (*FileAst, *AnalysisError)
	// RecognizeFrameworkPatterns returns language-specific framework
	// exclusion reasons for fn, or ("", false) if none apply.
	RecognizeFrameworkPatterns(fn *FunctionRecord) (reason string, matched bool)
}

// FileReader discovers analyzable files under a set of input paths,
// applying include/exclude glob patterns (§1: file-system walking is a
// boundary concern).
type FileReader interface {
	CollectFiles(paths []string, includePatterns, excludePatterns []string) ([]string, error)
	ReadFile(path string) ([]byte, error)
}

// CoverageLoader parses a coverage report from a path into a CoverageReport.
type CoverageLoader interface {
	Load(path string) (*CoverageReport, error)
}

// ExecutableTask is a single unit of parallel work, consumed by
// ParallelExecutor (§5 scheduling model).
type ExecutableTask interface {
	Name() string
	Execute(ctx context.Context) (interface{}, error)
}

// ParallelExecutor runs a batch of ExecutableTask concurrently, honoring a
// configured job count; jobs=1 yields deterministic single-threaded
// execution.
type ParallelExecutor interface {
	Execute(ctx context.Context, tasks []ExecutableTask) []TaskResult
}

// TaskResult pairs a task's outcome with its originating task name so a
// caller can recover per-task results without relying on slice order.
type TaskResult struct {
	Name  string
	Value interface{}
	Err   error
}
