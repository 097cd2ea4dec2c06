package execlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmtools/jiradates/internal/types"
)

func TestSaveRendersReport(t *testing.T) {
	l := New()
	l.File = filepath.Join(t.TempDir(), "exec.log")
	l.SetOperation("sync", map[string]string{
		"source":  "AV-1",
		"target":  "IDEA-1",
		"dry_run": "false",
	})
	l.SetResult("outcome", "success")
	l.SetResult("updated", "2")
	l.AddSummary("Start date ✓", "PRD Due Date ✓")

	require.NoError(t, l.Save())

	data, err := os.ReadFile(l.File)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "jiradates Execution Summary")
	assert.Contains(t, out, "Operation: sync")
	assert.Contains(t, out, "  source: AV-1")
	assert.Contains(t, out, "  outcome: success")
	assert.Contains(t, out, "Detailed Summary:")
	assert.Contains(t, out, "Start date ✓")

	// Parameters render in sorted key order.
	assert.Less(t, strings.Index(out, "dry_run:"), strings.Index(out, "source:"))
}

func TestSaveWithoutDetailOmitsSections(t *testing.T) {
	l := New()
	l.File = filepath.Join(t.TempDir(), "exec.log")
	l.SetOperation("fields", nil)

	require.NoError(t, l.Save())

	data, err := os.ReadFile(l.File)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "Parameters:")
	assert.NotContains(t, out, "Results:")
	assert.NotContains(t, out, "Detailed Summary:")
}

func TestSinkMirrorsRecords(t *testing.T) {
	l := New()
	l.File = filepath.Join(t.TempDir(), "exec.log")
	l.SetOperation("bulk-sync", map[string]string{"project": "IDEAS"})

	sink := l.Sink()
	sink.Emit(types.Record{Kind: types.KindHeader, Text: "Bulk sync: IDEAS"})
	sink.Emit(types.Record{Kind: types.KindSuccess, Text: "Synced 3 ideas"})

	require.NoError(t, l.Save())

	data, err := os.ReadFile(l.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Bulk sync: IDEAS")
	assert.Contains(t, string(data), "Synced 3 ideas")
}

func TestSaveFailureIsReported(t *testing.T) {
	l := New()
	l.File = filepath.Join(t.TempDir(), "missing", "exec.log")
	err := l.Save()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save execution log")
}
