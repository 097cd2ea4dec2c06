package fieldmap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmtools/jiradates/internal/jira"
)

type staticSource struct {
	fields []jira.Field
	calls  int
	err    error
}

func (s *staticSource) Fields(ctx context.Context) ([]jira.Field, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.fields, nil
}

func mkField(id, name, schemaType string) jira.Field {
	f := jira.Field{ID: id, Name: name, Custom: true}
	f.Schema.Type = schemaType
	return f
}

func TestFieldPairsSymmetric(t *testing.T) {
	for id, pair := range fieldPairs {
		back, ok := fieldPairs[pair]
		require.True(t, ok, "pair %s -> %s has no reverse entry", id, pair)
		assert.Equal(t, id, back, "pair %s -> %s does not map back", id, pair)
	}
	// One pair per tracked field, two directions each.
	assert.Len(t, fieldPairs, 2*len(TrackedFields))
}

func TestMappingPrefersDateTyped(t *testing.T) {
	src := &staticSource{fields: []jira.Field{
		mkField("customfield_13039", "Start date", "string"),
		mkField("customfield_10015", "Start date", "date"),
	}}
	cat := NewCatalog(src)

	mapping, err := cat.Mapping(context.Background())
	require.NoError(t, err)

	entry, ok := mapping["Start date"]
	require.True(t, ok)
	assert.Equal(t, "customfield_10015", entry.ID, "date-typed candidate must win over string")
	assert.Equal(t, "date", entry.Type)
	assert.Equal(t, []string{"customfield_13039"}, entry.Alternates)
}

func TestMappingDatetimeAlsoPreferred(t *testing.T) {
	src := &staticSource{fields: []jira.Field{
		mkField("customfield_12589", "GA Estimated Date", "string"),
		mkField("customfield_10071", "GA Estimated Date", "datetime"),
	}}
	cat := NewCatalog(src)

	mapping, err := cat.Mapping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "customfield_10071", mapping["GA Estimated Date"].ID)
}

func TestMappingFirstCandidateWhenNoDateType(t *testing.T) {
	src := &staticSource{fields: []jira.Field{
		mkField("customfield_12652", "PRD Due Date", "string"),
		mkField("customfield_11188", "PRD Due Date", "string"),
	}}
	cat := NewCatalog(src)

	mapping, err := cat.Mapping(context.Background())
	require.NoError(t, err)

	entry := mapping["PRD Due Date"]
	assert.Equal(t, "customfield_12652", entry.ID, "first candidate in catalog order wins the tie")
	assert.Equal(t, []string{"customfield_11188"}, entry.Alternates)
}

func TestMappingIgnoresUntrackedAndBuiltinFields(t *testing.T) {
	src := &staticSource{fields: []jira.Field{
		mkField("customfield_99999", "Due date", "date"),
		{ID: "duedate", Name: "Start date", Custom: false},
		mkField("customfield_10015", "Start date", "date"),
	}}
	cat := NewCatalog(src)

	mapping, err := cat.Mapping(context.Background())
	require.NoError(t, err)
	require.Len(t, mapping, 1)
	assert.Equal(t, "customfield_10015", mapping["Start date"].ID)
}

func TestMappingFetchesOnce(t *testing.T) {
	src := &staticSource{fields: []jira.Field{
		mkField("customfield_10015", "Start date", "date"),
	}}
	cat := NewCatalog(src)

	_, err := cat.Mapping(context.Background())
	require.NoError(t, err)
	_, err = cat.Mapping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls, "field list must be fetched once per catalog")
}

func TestMappingPropagatesSourceError(t *testing.T) {
	src := &staticSource{err: errors.New("boom")}
	cat := NewCatalog(src)

	_, err := cat.Mapping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch field catalog")
}

func TestFieldName(t *testing.T) {
	src := &staticSource{fields: []jira.Field{
		mkField("customfield_10015", "Start date", "date"),
	}}
	cat := NewCatalog(src)

	assert.Equal(t, "Start date", cat.FieldName(context.Background(), "customfield_10015"))
	assert.Equal(t, "customfield_404", cat.FieldName(context.Background(), "customfield_404"))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		fieldID  string
		issue    *jira.Issue
		wantID   string
		wantOK   bool
	}{
		{
			name:    "direct membership",
			fieldID: "customfield_10015",
			issue:   &jira.Issue{Fields: map[string]any{"customfield_10015": "2025-03-01"}},
			wantID:  "customfield_10015",
			wantOK:  true,
		},
		{
			name:    "pair fallback date to string",
			fieldID: "customfield_10015",
			issue:   &jira.Issue{Fields: map[string]any{"customfield_13039": nil}},
			wantID:  "customfield_13039",
			wantOK:  true,
		},
		{
			name:    "pair fallback string to date",
			fieldID: "customfield_13039",
			issue:   &jira.Issue{Fields: map[string]any{"customfield_10015": nil}},
			wantID:  "customfield_10015",
			wantOK:  true,
		},
		{
			name:    "absent on both schemas",
			fieldID: "customfield_10015",
			issue:   &jira.Issue{Fields: map[string]any{"summary": "x"}},
			wantID:  "",
			wantOK:  false,
		},
		{
			name:    "unknown id with no pair",
			fieldID: "customfield_55555",
			issue:   &jira.Issue{Fields: map[string]any{"customfield_10015": "x"}},
			wantID:  "",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := Resolve(tt.fieldID, tt.issue)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestResolveNilFieldValueStillCounts(t *testing.T) {
	// Membership is schema presence, not value presence. A declared field
	// holding null is still resolvable.
	issue := &jira.Issue{Fields: map[string]any{"customfield_10015": nil}}
	id, ok := Resolve("customfield_10015", issue)
	assert.True(t, ok)
	assert.Equal(t, "customfield_10015", id)
}

func TestIsTracked(t *testing.T) {
	for _, name := range TrackedFields {
		assert.True(t, IsTracked(name), name)
	}
	assert.False(t, IsTracked("Due date"))
	assert.False(t, IsTracked("start date"), "tracked names are case sensitive")
}
