// Package fieldmap builds the milestone field catalog and resolves field
// ids across the tracker's two schema variants.
//
// The same semantic field (say "Start date") is a native date field in the
// plain schema and a string field holding a JSON interval in the
// structured-variant ("JPD") schema, under different custom-field ids.
package fieldmap

import (
	"context"
	"fmt"

	"github.com/pmtools/jiradates/internal/jira"
)

// TrackedFields is the closed set of milestone date names this tool
// synchronizes. Nothing outside this set is ever touched.
var TrackedFields = []string{
	"PRD Due Date",
	"PRD Review Due Date",
	"Start date",
	"Code Complete Target",
	"Release candidate Target",
	"Preview Est. Date",
	"GA Estimated Date",
}

// IsTracked reports whether a display name belongs to the tracked set.
func IsTracked(name string) bool {
	for _, n := range TrackedFields {
		if n == name {
			return true
		}
	}
	return false
}

// fieldPairs maps each known date-typed field id to its string-typed
// sibling and back. Used as a fallback when an issue's schema does not
// declare a field under its catalog id. Every entry has a symmetric
// reverse entry; see TestFieldPairsSymmetric.
var fieldPairs = map[string]string{
	"customfield_10015": "customfield_13039", // Start date
	"customfield_13039": "customfield_10015",
	"customfield_11188": "customfield_12652", // PRD Due Date
	"customfield_12652": "customfield_11188",
	"customfield_11189": "customfield_12892", // PRD Review Due Date
	"customfield_12892": "customfield_11189",
	"customfield_11186": "customfield_12893", // Preview Est. Date
	"customfield_12893": "customfield_11186",
	"customfield_10065": "customfield_12588", // Release candidate Target
	"customfield_12588": "customfield_10065",
	"customfield_10071": "customfield_12589", // GA Estimated Date
	"customfield_12589": "customfield_10071",
	"customfield_10064": "customfield_12967", // Code Complete Target
	"customfield_12967": "customfield_10064",
}

// Pairs returns a copy of the static field-pair table.
func Pairs() map[string]string {
	out := make(map[string]string, len(fieldPairs))
	for k, v := range fieldPairs {
		out[k] = v
	}
	return out
}

// Entry is the resolved mapping for one tracked field name: the preferred
// id (date-typed when any candidate is) plus the remaining candidate ids.
type Entry struct {
	ID         string
	Type       string
	Alternates []string
}

// IsDateType reports whether a schema type is a native date family type.
func IsDateType(schemaType string) bool {
	return schemaType == "date" || schemaType == "datetime"
}

// FieldSource supplies the tracker's field-definition list.
type FieldSource interface {
	Fields(ctx context.Context) ([]jira.Field, error)
}

// Catalog caches the tracker's field definitions and the derived mapping
// for the process lifetime. Not safe for concurrent use; each operation
// owns its catalog.
type Catalog struct {
	source  FieldSource
	fields  []jira.Field
	mapping map[string]Entry
}

// NewCatalog returns a catalog backed by the given field source.
func NewCatalog(source FieldSource) *Catalog {
	return &Catalog{source: source}
}

// Fields returns the full field-definition list, fetching it on first use.
func (c *Catalog) Fields(ctx context.Context) ([]jira.Field, error) {
	if c.fields == nil {
		fields, err := c.source.Fields(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch field catalog: %w", err)
		}
		c.fields = fields
	}
	return c.fields, nil
}

// FieldName returns the display name for a field id, falling back to the
// id itself for unknown fields.
func (c *Catalog) FieldName(ctx context.Context, fieldID string) string {
	fields, err := c.Fields(ctx)
	if err != nil {
		return fieldID
	}
	for _, f := range fields {
		if f.ID == fieldID {
			return f.Name
		}
	}
	return fieldID
}

// Mapping derives the per-tracked-name entries from the catalog, built once
// and cached.
//
// Candidates are the custom fields whose display name is in the tracked
// set, kept in catalog order. The primary is the first date/datetime-typed
// candidate; when no candidate is date-typed the first candidate wins. The
// rest become alternates, still in catalog order. The catalog order is
// whatever the tracker returned; it is deliberately not re-sorted so the
// result is deterministic for a given response.
func (c *Catalog) Mapping(ctx context.Context) (map[string]Entry, error) {
	if c.mapping != nil {
		return c.mapping, nil
	}

	fields, err := c.Fields(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make(map[string][]jira.Field)
	for _, f := range fields {
		if f.Custom && IsTracked(f.Name) {
			candidates[f.Name] = append(candidates[f.Name], f)
		}
	}

	mapping := make(map[string]Entry, len(candidates))
	for name, group := range candidates {
		primary := group[0]
		for _, f := range group {
			if IsDateType(f.Schema.Type) {
				primary = f
				break
			}
		}

		entry := Entry{ID: primary.ID, Type: primary.Schema.Type}
		for _, f := range group {
			if f.ID != primary.ID {
				entry.Alternates = append(entry.Alternates, f.ID)
			}
		}
		mapping[name] = entry
	}

	c.mapping = mapping
	return mapping, nil
}

// Resolve determines which field id, if any, carries the given semantic
// field on a concrete issue. It returns the id unchanged when the issue's
// schema declares it, otherwise falls back to the static pair table.
//
// A false result means the issue's project simply does not expose the
// field; that is expected, not an error.
func Resolve(fieldID string, issue *jira.Issue) (string, bool) {
	if issue.Has(fieldID) {
		return fieldID, true
	}
	if pair, ok := fieldPairs[fieldID]; ok && issue.Has(pair) {
		return pair, true
	}
	return "", false
}
