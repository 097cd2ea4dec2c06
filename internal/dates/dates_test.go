package dates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmtools/jiradates/internal/fieldmap"
	"github.com/pmtools/jiradates/internal/jira"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"2025-03-01", "2025-03-01"},
		{"2025-03-01T00:00:00.000+0000", "2025-03-01"},
		{"2025-03-01T23:59:59Z", "2025-03-01"},
		{"2025-03-01 14:30:00", "2025-03-01"},
		{"2025-12-31T00:00:00.000-0800", "2025-12-31"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "%v", tt.in)
	}
}

func TestNormalizePreservesLeadingDate(t *testing.T) {
	// Any time or timezone suffix must not shift the date component.
	variants := []string{
		"2025-06-15",
		"2025-06-15T00:00:00.000+0000",
		"2025-06-15T23:00:00.000-1100",
		"2025-06-15 08:00:00",
	}
	for _, v := range variants {
		assert.Equal(t, "2025-06-15", Normalize(v), v)
	}
}

func TestFormatIntervalDeterministic(t *testing.T) {
	got := FormatInterval("2025-03-01T10:00:00Z")
	assert.Equal(t, `{"start":"2025-03-01","end":"2025-03-01"}`, got)

	again := FormatInterval("2025-03-01")
	assert.Equal(t, got, again, "same date must yield byte-identical output")
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "2025-03-01", Format("2025-03-01T10:00:00Z", false))
	assert.Equal(t, `{"start":"2025-03-01","end":"2025-03-01"}`, Format("2025-03-01T10:00:00Z", true))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "March 1, 2025", Display("2025-03-01"))
	assert.Equal(t, "March 1, 2025", Display("2025-03-01T00:00:00.000+0000"))
	assert.Equal(t, "Not set", Display(nil))
	assert.Equal(t, "Not set", Display(""))
	assert.Equal(t, "not-a-date", Display("not-a-date"))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty([]any{}))
	assert.False(t, IsEmpty("2025-03-01"))
	assert.False(t, IsEmpty([]any{"2025-03-01"}))
	assert.False(t, IsEmpty(0), "only nil, empty string, and empty list count as unset")
}

func TestIsStructured(t *testing.T) {
	idea := &jira.Issue{Key: "IDEA-1", Fields: map[string]any{
		"issuetype": map[string]any{"name": "Idea"},
	}}
	task := &jira.Issue{Key: "AV-1", Fields: map[string]any{
		"issuetype": map[string]any{"name": "Task"},
	}}
	bare := &jira.Issue{Key: "AV-2", Fields: map[string]any{}}

	assert.True(t, IsStructured(idea))
	assert.False(t, IsStructured(task))
	assert.False(t, IsStructured(bare))
}

func TestExtractSkipsEmptyValues(t *testing.T) {
	mapping := map[string]fieldmap.Entry{
		"Start date":           {ID: "customfield_10015", Type: "date"},
		"PRD Due Date":         {ID: "customfield_11188", Type: "date"},
		"GA Estimated Date":    {ID: "customfield_10071", Type: "datetime"},
		"Code Complete Target": {ID: "customfield_10064", Type: "date"},
	}
	issue := &jira.Issue{Key: "AV-1", Fields: map[string]any{
		"customfield_10015": "2025-03-01",
		"customfield_11188": nil,
		"customfield_10071": "",
		"customfield_10064": []any{},
	}}

	populated := Extract(issue, mapping)
	require.Len(t, populated, 1)

	field, ok := populated["Start date"]
	require.True(t, ok)
	assert.Equal(t, "customfield_10015", field.SourceID)
	assert.Equal(t, "2025-03-01", field.Value)
	assert.Equal(t, "date", field.Type)
}

func TestExtractAbsentFieldIsEmpty(t *testing.T) {
	mapping := map[string]fieldmap.Entry{
		"Start date": {ID: "customfield_10015", Type: "date"},
	}
	issue := &jira.Issue{Key: "AV-1", Fields: map[string]any{"summary": "x"}}

	assert.Empty(t, Extract(issue, mapping))
}
