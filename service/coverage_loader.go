package service

import (
	"bufio"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/debtscan/debtscan/domain"
)

// LcovCoverageLoader implements domain.CoverageLoader for the LCOV tracefile
// format (`SF:`/`FN:`/`DA:`/`end_of_record`), the common denominator emitted
// by `cargo llvm-cov`, `pytest --cov`, and most other coverage tools (§6).
type LcovCoverageLoader struct{}

// NewLcovCoverageLoader builds an LcovCoverageLoader.
func NewLcovCoverageLoader() *LcovCoverageLoader {
	return &LcovCoverageLoader{}
}

type lcovFunction struct {
	name      string
	startLine int
}

// Load parses path as an LCOV tracefile into a CoverageReport. A DA (line,
// hit-count) record is attributed to the last FN entry whose start line is
// <= its own, approximating per-function line coverage from the file-level
// line data LCOV actually records.
func (l *LcovCoverageLoader) Load(path string) (*domain.CoverageReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewIoError(path, "failed to open coverage file", err)
	}
	defer f.Close()

	report := &domain.CoverageReport{}

	var currentFile string
	var functions []lcovFunction
	type lineHit struct {
		line int
		hits int
	}
	var lines []lineHit

	flush := func() {
		if currentFile == "" || len(functions) == 0 {
			currentFile = ""
			functions = nil
			lines = nil
			return
		}
		sort.Slice(functions, func(i, j int) bool { return functions[i].startLine < functions[j].startLine })
		sort.Slice(lines, func(i, j int) bool { return lines[i].line < lines[j].line })

		totals := make([]int, len(functions))
		hits := make([]int, len(functions))

		li := 0
		for fi := range functions {
			upper := 1<<31 - 1
			if fi+1 < len(functions) {
				upper = functions[fi+1].startLine
			}
			for li < len(lines) && lines[li].line < functions[fi].startLine {
				li++
			}
			j := li
			for j < len(lines) && lines[j].line < upper {
				totals[fi]++
				if lines[j].hits > 0 {
					hits[fi]++
				}
				j++
			}
		}

		for i, fn := range functions {
			report.Records = append(report.Records, domain.CoverageRecord{
				File:         currentFile,
				FunctionName: fn.name,
				StartLine:    fn.startLine,
				LinesTotal:   totals[i],
				LinesHit:     hits[i],
			})
		}

		currentFile = ""
		functions = nil
		lines = nil
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "SF:"):
			currentFile = strings.TrimPrefix(line, "SF:")
		case strings.HasPrefix(line, "FN:"):
			parts := strings.SplitN(strings.TrimPrefix(line, "FN:"), ",", 2)
			if len(parts) != 2 {
				continue
			}
			startLine, err := strconv.Atoi(parts[0])
			if err != nil {
				continue
			}
			functions = append(functions, lcovFunction{name: parts[1], startLine: startLine})
		case strings.HasPrefix(line, "DA:"):
			parts := strings.SplitN(strings.TrimPrefix(line, "DA:"), ",", 3)
			if len(parts) < 2 {
				continue
			}
			lineNo, err := strconv.Atoi(parts[0])
			if err != nil {
				continue
			}
			hitCount, err := strconv.Atoi(parts[1])
			if err != nil {
				continue
			}
			lines = append(lines, lineHit{line: lineNo, hits: hitCount})
		case line == "end_of_record":
			flush()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.NewIoError(path, "failed to scan coverage file", err)
	}
	flush()

	return report, nil
}
