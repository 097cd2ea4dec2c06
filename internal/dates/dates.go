// Package dates extracts and formats milestone date values across the
// tracker's two schema variants.
package dates

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pmtools/jiradates/internal/fieldmap"
	"github.com/pmtools/jiradates/internal/jira"
	"github.com/pmtools/jiradates/internal/types"
)

// IdeaTypeName marks the structured-variant ("JPD") schema. Issues of any
// other type use the plain schema.
const IdeaTypeName = "Idea"

// IsStructured reports whether the issue uses the structured-variant
// schema, i.e. its type name equals the literal "Idea".
func IsStructured(issue *jira.Issue) bool {
	return issue.TypeName() == IdeaTypeName
}

// Normalize reduces any date or datetime representation to its leading
// YYYY-MM-DD component. The value is split on the first 'T' or space; no
// timezone conversion is applied.
func Normalize(value any) string {
	s := fmt.Sprintf("%v", value)
	if idx := strings.IndexByte(s, 'T'); idx >= 0 {
		return s[:idx]
	}
	if idx := strings.IndexByte(s, ' '); idx >= 0 {
		return s[:idx]
	}
	return s
}

// interval is the structured-variant wire encoding of a date. Point-in-time
// dates model as single-day intervals, so both bounds carry the same date.
type interval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// FormatInterval wraps a date value in the structured-variant JSON interval
// encoding. The output is deterministic: the same source date always yields
// byte-identical JSON text.
func FormatInterval(value any) string {
	d := Normalize(value)
	data, _ := json.Marshal(interval{Start: d, End: d})
	return string(data)
}

// Format renders a field value for writing to the target schema: the plain
// normalized date, or the JSON interval when the target is structured.
func Format(value any, targetStructured bool) string {
	if targetStructured {
		return FormatInterval(value)
	}
	return Normalize(value)
}

// Display renders a date value for humans, e.g. "March 1, 2025". Values
// that do not parse as dates pass through normalized.
func Display(value any) string {
	if IsEmpty(value) {
		return "Not set"
	}
	d := Normalize(value)
	if t, err := time.Parse("2006-01-02", d); err == nil {
		return t.Format("January 2, 2006")
	}
	return d
}

// IsEmpty reports whether a field value counts as unset: nil, an empty
// string, or an empty list.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	}
	return false
}

// Extract reads each tracked field's primary id off the source issue and
// returns the populated subset, keyed by tracked name. Unset and empty
// values are excluded.
func Extract(issue *jira.Issue, mapping map[string]fieldmap.Entry) map[string]types.PopulatedField {
	populated := make(map[string]types.PopulatedField)
	for name, entry := range mapping {
		value := issue.Value(entry.ID)
		if IsEmpty(value) {
			continue
		}
		populated[name] = types.PopulatedField{
			Name:     name,
			Value:    value,
			SourceID: entry.ID,
			Type:     entry.Type,
		}
	}
	return populated
}
