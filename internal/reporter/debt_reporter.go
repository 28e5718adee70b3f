package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/debtscan/debtscan/domain"
	"github.com/debtscan/debtscan/internal/version"
)

// OutputFormat selects the serialization a DebtReporter writes. CLI
// formatting is a boundary concern consumed only by cmd/debtscan — the
// analysis core never depends on it.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
	FormatCSV  OutputFormat = "csv"
)

// SerializedDebtItem flattens domain.DebtItem's target/metrics into a shape
// that marshals cleanly to JSON/YAML/CSV without nested Go-only types.
type SerializedDebtItem struct {
	Target     string  `json:"target" yaml:"target" csv:"target"`
	Kind       string  `json:"kind" yaml:"kind" csv:"kind"`
	Score      float64 `json:"score" yaml:"score" csv:"score"`
	Severity   string  `json:"severity" yaml:"severity" csv:"severity"`
	Complexity int     `json:"complexity,omitempty" yaml:"complexity,omitempty" csv:"complexity"`
	Coverage   float64 `json:"coverage,omitempty" yaml:"coverage,omitempty" csv:"coverage"`
	Role       string  `json:"role,omitempty" yaml:"role,omitempty" csv:"role"`
	InDegree   int     `json:"in_degree" yaml:"in_degree" csv:"in_degree"`
	OutDegree  int     `json:"out_degree" yaml:"out_degree" csv:"out_degree"`
	Recommend  string  `json:"recommendation" yaml:"recommendation" csv:"recommendation"`
}

// DebtReport is the serializable envelope around a domain.AnalysisReport,
// adding the run metadata a file-format consumer expects alongside the
// pure core's output.
type DebtReport struct {
	RunID       string               `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time            `json:"generated_at" yaml:"generated_at"`
	Version     string               `json:"version" yaml:"version"`
	HasCoverage bool                 `json:"has_coverage" yaml:"has_coverage"`
	Summary     domain.AnalysisSummary `json:"summary" yaml:"summary"`
	Items       []SerializedDebtItem `json:"items" yaml:"items"`
	GodObjects  int                  `json:"god_objects" yaml:"god_objects"`
	Diagnostics []domain.Diagnostic  `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// DebtReporter formats a domain.AnalysisReport for one of the supported
// output formats, mirroring the teacher's reporter (one struct per report
// kind, one output* method per format, text left as the richest view).
type DebtReporter struct {
	writer io.Writer
}

// NewDebtReporter creates a reporter writing to w.
func NewDebtReporter(w io.Writer) *DebtReporter {
	return &DebtReporter{writer: w}
}

// Build converts the pure core's report into the serializable envelope.
func (r *DebtReporter) Build(report *domain.AnalysisReport) *DebtReport {
	items := make([]SerializedDebtItem, 0, len(report.Items))
	for _, it := range report.Items {
		items = append(items, serializeItem(it))
	}
	return &DebtReport{
		RunID:       report.RunID,
		GeneratedAt: time.Now(),
		Version:     version.Short(),
		HasCoverage: report.HasCoverage,
		Summary:     report.Summary,
		Items:       items,
		GodObjects:  len(report.GodObjects),
		Diagnostics: report.Diagnostics,
	}
}

func serializeItem(it domain.DebtItem) SerializedDebtItem {
	s := SerializedDebtItem{
		Target:    targetLabel(it.Target),
		Kind:      string(it.Kind),
		Score:     it.Score,
		Severity:  it.Severity.String(),
		InDegree:  it.Metrics.InDegree,
		OutDegree: it.Metrics.OutDegree,
		Recommend: it.Recommendation,
	}
	if it.Metrics.Complexity != nil {
		s.Complexity = int(it.Metrics.Complexity.Cyclomatic)
	}
	if it.Metrics.Coverage != nil {
		s.Coverage = it.Metrics.Coverage.Transitive
	}
	if it.Metrics.Role != "" {
		s.Role = string(it.Metrics.Role)
	}
	return s
}

func targetLabel(t domain.DebtTarget) string {
	if t.Function != nil {
		return t.Function.QualifiedName
	}
	return t.FilePath
}

// Write renders report in format to the reporter's writer.
func (r *DebtReporter) Write(report *domain.AnalysisReport, format OutputFormat) error {
	built := r.Build(report)
	switch format {
	case FormatJSON:
		return r.writeJSON(built)
	case FormatYAML:
		return r.writeYAML(built)
	case FormatCSV:
		return r.writeCSV(built)
	case FormatText, "":
		return r.writeText(built)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func (r *DebtReporter) writeJSON(report *DebtReport) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func (r *DebtReporter) writeYAML(report *DebtReport) error {
	enc := yaml.NewEncoder(r.writer)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(report)
}

func (r *DebtReporter) writeCSV(report *DebtReport) error {
	w := csv.NewWriter(r.writer)
	defer w.Flush()

	header := []string{"target", "kind", "score", "severity", "complexity", "coverage", "role", "in_degree", "out_degree", "recommendation"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, it := range report.Items {
		row := []string{
			it.Target, it.Kind,
			fmt.Sprintf("%.2f", it.Score), it.Severity,
			fmt.Sprintf("%d", it.Complexity), fmt.Sprintf("%.3f", it.Coverage),
			it.Role, fmt.Sprintf("%d", it.InDegree), fmt.Sprintf("%d", it.OutDegree),
			it.Recommend,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	return nil
}

func (r *DebtReporter) writeText(report *DebtReport) error {
	fmt.Fprintf(r.writer, "Technical Debt Report\n")
	fmt.Fprintf(r.writer, "======================\n\n")
	fmt.Fprintf(r.writer, "Run: %s  (debtscan %s)\n", report.RunID, report.Version)
	fmt.Fprintf(r.writer, "Coverage data: %v\n\n", report.HasCoverage)

	fmt.Fprintf(r.writer, "Summary:\n")
	fmt.Fprintf(r.writer, "  Total items: %d\n", report.Summary.TotalItems)
	for _, sev := range []domain.Severity{domain.SeverityCritical, domain.SeverityHigh, domain.SeverityMedium, domain.SeverityLow} {
		if n, ok := report.Summary.BySeverity[sev]; ok {
			fmt.Fprintf(r.writer, "  %-10s %d\n", sev, n)
		}
	}
	if report.GodObjects > 0 {
		fmt.Fprintf(r.writer, "  God objects: %d\n", report.GodObjects)
	}

	if len(report.Items) > 0 {
		fmt.Fprintf(r.writer, "\n%-45s %8s %-10s %-18s %s\n", "Target", "Score", "Severity", "Kind", "Recommendation")
		fmt.Fprint(r.writer, strings.Repeat("-", 110)+"\n")
		for _, it := range report.Items {
			fmt.Fprintf(r.writer, "%-45s %8.1f %-10s %-18s %s\n",
				truncate(it.Target, 45), it.Score, it.Severity, it.Kind, it.Recommend)
		}
	}

	if len(report.Diagnostics) > 0 {
		fmt.Fprintf(r.writer, "\nDiagnostics:\n")
		for _, d := range report.Diagnostics {
			fmt.Fprintf(r.writer, "  [%s] %s: %s\n", d.Kind, d.Path, d.Message)
		}
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
