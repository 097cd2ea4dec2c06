package display

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exact", Truncate("exact", 5))
	assert.Equal(t, "lo...", Truncate("long enough", 5))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}

func TestTableAlignsColumns(t *testing.T) {
	out := Table("Runs", []string{"Idea", "Status"}, [][]string{
		{"IDEA-1", "success"},
		{"IDEA-200", "failed"},
	})

	lines := strings.Split(out, "\n")
	assert.Contains(t, out, "| Idea     | Status  |")
	assert.Contains(t, out, "| IDEA-1   | success |")
	assert.Contains(t, out, "| IDEA-200 | failed  |")
	assert.Contains(t, lines[1], "Runs")

	// Every border row has the same width.
	var borders []string
	for _, line := range lines {
		if strings.HasPrefix(line, "+") {
			borders = append(borders, line)
		}
	}
	assert.Len(t, borders, 3)
	assert.Equal(t, borders[0], borders[1])
	assert.Equal(t, borders[0], borders[2])
}

func TestTableEmpty(t *testing.T) {
	assert.Equal(t, "No data to display", Table("x", []string{"A"}, nil))
}

func TestTableShortRow(t *testing.T) {
	out := Table("", []string{"A", "B"}, [][]string{{"only"}})
	assert.Contains(t, out, "| only |")
}
