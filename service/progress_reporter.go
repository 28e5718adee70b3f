package service

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/debtscan/debtscan/domain"
)

// StageProgressReporter renders the orchestrator's eleven stages (§4.10) as
// a text progress bar on a terminal-like writer. It never assumes a
// terminal is attached — the core only invokes the domain.ProgressReporter
// interface, never this concrete type.
type StageProgressReporter struct {
	writer   io.Writer
	enabled  bool
	barWidth int
	start    map[domain.StageName]time.Time
}

// NewStageProgressReporter builds a reporter writing to writer (defaults to
// os.Stderr), active only when enabled.
func NewStageProgressReporter(writer io.Writer, enabled bool) *StageProgressReporter {
	if writer == nil {
		writer = os.Stderr
	}
	return &StageProgressReporter{writer: writer, enabled: enabled, barWidth: 30, start: map[domain.StageName]time.Time{}}
}

func (r *StageProgressReporter) StartStage(stage domain.StageName, total int) {
	if !r.enabled {
		return
	}
	r.start[stage] = time.Now()
	if total <= 1 {
		fmt.Fprintf(r.writer, "%s...\n", stageLabel(stage))
		return
	}
	fmt.Fprintf(r.writer, "%s: 0/%d\n", stageLabel(stage), total)
}

func (r *StageProgressReporter) UpdateStage(stage domain.StageName, current, total int, detail string) {
	if !r.enabled || total <= 1 {
		return
	}
	percentage := float64(current) / float64(total)
	filled := int(percentage * float64(r.barWidth))
	if filled > r.barWidth {
		filled = r.barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", r.barWidth-filled)
	fmt.Fprintf(r.writer, "\r\033[K[%s] %3.0f%% (%d/%d) %s", bar, percentage*100, current, total, detail)
}

func (r *StageProgressReporter) FinishStage(stage domain.StageName) {
	if !r.enabled {
		return
	}
	elapsed := time.Since(r.start[stage]).Truncate(time.Millisecond)
	fmt.Fprintf(r.writer, "\r\033[K%s done in %v\n", stageLabel(stage), elapsed)
}

func stageLabel(stage domain.StageName) string {
	switch stage {
	case domain.StageDiscover:
		return "Discovering files"
	case domain.StageParse:
		return "Parsing"
	case domain.StageComplexity:
		return "Computing complexity"
	case domain.StageTypeRegistry:
		return "Building type registry"
	case domain.StageCallGraph:
		return "Building call graph"
	case domain.StageCoverage:
		return "Loading coverage"
	case domain.StagePropagate:
		return "Propagating I/O and coverage"
	case domain.StageRoleClassify:
		return "Classifying roles"
	case domain.StageScore:
		return "Scoring"
	case domain.StageStructural:
		return "Structural analysis"
	case domain.StageEmit:
		return "Emitting report"
	default:
		return string(stage)
	}
}

// NoOpProgressReporter discards every callback, used for non-interactive
// runs (piped output, tests).
type NoOpProgressReporter struct{}

func NewNoOpProgressReporter() *NoOpProgressReporter { return &NoOpProgressReporter{} }

func (n *NoOpProgressReporter) StartStage(stage domain.StageName, total int)                      {}
func (n *NoOpProgressReporter) UpdateStage(stage domain.StageName, current, total int, detail string) {}
func (n *NoOpProgressReporter) FinishStage(stage domain.StageName)                                 {}

// NewProgressReporter picks a reporter appropriate for the destination:
// stderr/stdout get the bar reporter, anything else (a redirected file, a
// test buffer) gets the no-op.
func NewProgressReporter(writer io.Writer, verbose bool) domain.ProgressReporter {
	if writer == nil || !isTerminal(writer) {
		return NewNoOpProgressReporter()
	}
	return NewStageProgressReporter(writer, true)
}

func isTerminal(w io.Writer) bool {
	return w == os.Stderr || w == os.Stdout
}
