// Package types defines core data structures for jiradates.
package types

// PopulatedField is a tracked milestone field extracted from a source issue
// with a non-empty value.
type PopulatedField struct {
	Name     string `json:"name"`
	Value    any    `json:"value"`
	SourceID string `json:"source_id"`
	Type     string `json:"type"`
	TargetID string `json:"target_id,omitempty"`
}

// Outcome is the terminal result of syncing a single issue pair.
type Outcome string

// Outcome constants.
const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// ValidOutcomes is the set of allowed outcome values.
var ValidOutcomes = []Outcome{OutcomeSuccess, OutcomeSkipped, OutcomeFailed}

// IsValidOutcome checks if an outcome value is valid.
func IsValidOutcome(o Outcome) bool {
	for _, v := range ValidOutcomes {
		if v == o {
			return true
		}
	}
	return false
}

// FieldResult records the outcome of one field update within a sync.
type FieldResult struct {
	Name    string `json:"name"`
	FieldID string `json:"field_id"`
	Value   string `json:"value"`
	Updated bool   `json:"updated"`
	Error   string `json:"error,omitempty"`
}

// SyncResult holds the result of syncing one source/target pair.
type SyncResult struct {
	Source  string        `json:"source"`
	Target  string        `json:"target"`
	DryRun  bool          `json:"dry_run"`
	Outcome Outcome       `json:"outcome"`
	Fields  []FieldResult `json:"fields,omitempty"`
	Reason  string        `json:"reason,omitempty"`
}

// Updated counts the field updates that succeeded.
func (r *SyncResult) Updated() int {
	n := 0
	for _, f := range r.Fields {
		if f.Updated {
			n++
		}
	}
	return n
}

// BulkDetail records the per-idea outcome of a bulk run.
type BulkDetail struct {
	Idea   string `json:"idea"`
	Status string `json:"status"`
	Linked string `json:"linked,omitempty"`
}

// Bulk detail status values.
const (
	BulkSuccess = "success"
	BulkSkipped = "skipped"
	BulkNoLink  = "no_link"
	BulkFailed  = "failed"
)

// BulkResult aggregates outcomes across a project-wide bulk run.
// The five buckets (successful, skipped, no_links, failed, and the
// dry-run-discounted failures folded into skipped reporting) are mutually
// exclusive per idea.
type BulkResult struct {
	Project    string       `json:"project"`
	DryRun     bool         `json:"dry_run"`
	Processed  int          `json:"processed"`
	Successful int          `json:"successful"`
	Skipped    int          `json:"skipped"`
	NoLinks    int          `json:"no_links"`
	Failed     int          `json:"failed"`
	Details    []BulkDetail `json:"details,omitempty"`
}

// Succeeded reports whether the bulk run synced at least one idea.
func (r *BulkResult) Succeeded() bool {
	return r.Successful > 0
}
