package types

// RecordKind classifies a progress record for rendering.
type RecordKind string

// Record kinds.
const (
	KindHeader  RecordKind = "header"
	KindSection RecordKind = "section"
	KindInfo    RecordKind = "info"
	KindDetail  RecordKind = "detail"
	KindSuccess RecordKind = "success"
	KindWarning RecordKind = "warning"
	KindError   RecordKind = "error"
)

// Record is one human-readable progress line emitted by an operation.
// Ordering of records within one operation is significant.
type Record struct {
	Kind RecordKind
	Text string
}

// Sink receives progress records. Implementations render to the console,
// a GUI queue, or a log file; the sink is append-only.
type Sink interface {
	Emit(Record)
}

// DiscardSink drops every record. Used in quiet mode and tests.
type DiscardSink struct{}

// Emit implements Sink.
func (DiscardSink) Emit(Record) {}

// CaptureSink collects records in order. Used in tests and for the
// execution summary file.
type CaptureSink struct {
	Records []Record
}

// Emit implements Sink.
func (s *CaptureSink) Emit(r Record) {
	s.Records = append(s.Records, r)
}

// Lines returns the captured record texts in emission order.
func (s *CaptureSink) Lines() []string {
	lines := make([]string, 0, len(s.Records))
	for _, r := range s.Records {
		lines = append(lines, r.Text)
	}
	return lines
}

// TeeSink forwards each record to every wrapped sink in order.
type TeeSink struct {
	Sinks []Sink
}

// Emit implements Sink.
func (s TeeSink) Emit(r Record) {
	for _, inner := range s.Sinks {
		inner.Emit(r)
	}
}
