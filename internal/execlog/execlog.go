// Package execlog writes a plain-text execution summary after each
// operation. Writing is best-effort: a failure is reported as a warning
// and never fails the operation itself.
package execlog

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pmtools/jiradates/internal/types"
)

// DefaultFile is the execution summary file name, written in the working
// directory.
const DefaultFile = "jiradates_execution.log"

// Logger accumulates one operation's parameters, results, and summary
// lines, and renders them to a flat text report.
type Logger struct {
	File      string
	timestamp string
	operation string
	params    map[string]string
	results   map[string]string
	summary   []string
}

// New returns a logger writing to DefaultFile.
func New() *Logger {
	return &Logger{
		File:      DefaultFile,
		timestamp: time.Now().Format(time.RFC3339),
		params:    make(map[string]string),
		results:   make(map[string]string),
	}
}

// SetOperation records the operation name and its parameters.
func (l *Logger) SetOperation(operation string, params map[string]string) {
	l.operation = operation
	for k, v := range params {
		l.params[k] = v
	}
}

// SetResult records one result key/value.
func (l *Logger) SetResult(key, value string) {
	l.results[key] = value
}

// AddSummary appends detail lines to the report body.
func (l *Logger) AddSummary(lines ...string) {
	l.summary = append(l.summary, lines...)
}

// Sink returns a sink that mirrors progress records into the summary.
func (l *Logger) Sink() types.Sink {
	return sinkAdapter{logger: l}
}

type sinkAdapter struct {
	logger *Logger
}

func (s sinkAdapter) Emit(r types.Record) {
	s.logger.AddSummary(r.Text)
}

// Save writes the execution summary file.
func (l *Logger) Save() error {
	rule := strings.Repeat("=", 80)

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("jiradates Execution Summary\n")
	b.WriteString("Generated: " + l.timestamp + "\n")
	b.WriteString(rule + "\n\n")
	b.WriteString("Operation: " + l.operation + "\n")

	if len(l.params) > 0 {
		b.WriteString("\nParameters:\n")
		writeSorted(&b, l.params)
	}
	if len(l.results) > 0 {
		b.WriteString("\nResults:\n")
		writeSorted(&b, l.results)
	}
	if len(l.summary) > 0 {
		b.WriteString("\nDetailed Summary:\n")
		b.WriteString(strings.Repeat("-", 40) + "\n")
		for _, line := range l.summary {
			b.WriteString(line + "\n")
		}
	}
	b.WriteString("\n" + rule + "\n")

	if err := os.WriteFile(l.File, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("save execution log: %w", err)
	}
	return nil
}

func writeSorted(b *strings.Builder, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "  %s: %s\n", k, m[k])
	}
}
