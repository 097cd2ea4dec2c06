package jira

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIssueLinks(t *testing.T) {
	issue := &Issue{Key: "IDEA-1", Fields: map[string]any{
		"issuelinks": []any{
			map[string]any{
				"type":         map[string]any{"outward": "implements", "inward": "is implemented by"},
				"outwardIssue": map[string]any{"key": "AV-7"},
			},
			map[string]any{
				"type":        map[string]any{"inward": "relates to"},
				"inwardIssue": map[string]any{"key": "AV-8"},
			},
			map[string]any{}, // link with neither direction populated
		},
	}}

	links := issue.Links()
	assert.Equal(t, []IssueLink{
		{Key: "AV-7", Direction: "outward", TypeName: "implements"},
		{Key: "AV-8", Direction: "inward", TypeName: "relates to"},
	}, links)
}

func TestIssueLinksAbsent(t *testing.T) {
	issue := &Issue{Key: "AV-1", Fields: map[string]any{}}
	assert.Empty(t, issue.Links())
}

func TestIssueAccessors(t *testing.T) {
	issue := &Issue{Key: "AV-1", Fields: map[string]any{
		"summary":           "Ship the thing",
		"issuetype":         map[string]any{"name": "Task"},
		"customfield_10015": nil,
	}}

	assert.Equal(t, "Ship the thing", issue.Summary())
	assert.Equal(t, "Task", issue.TypeName())
	assert.True(t, issue.Has("customfield_10015"), "declared-but-null fields are present")
	assert.False(t, issue.Has("customfield_13039"))
	assert.Nil(t, issue.Value("customfield_10015"))
	assert.Nil(t, issue.Value("customfield_404"))
}

func TestAPIErrorMessage(t *testing.T) {
	withBody := &APIError{StatusCode: 400, Status: "400 Bad Request", Body: `{"errorMessages":["no"]}`}
	assert.Contains(t, withBody.Error(), "400 Bad Request")
	assert.Contains(t, withBody.Error(), "errorMessages")

	bare := &APIError{StatusCode: 500, Status: "500 Internal Server Error"}
	assert.Equal(t, "tracker returned 500 Internal Server Error", bare.Error())
}
