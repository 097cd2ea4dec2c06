// Package jira provides the rate-limited REST gateway to the issue tracker.
//
// Every remote call flows through Client.do, which enforces inter-call
// pacing and retries rate-limited requests with exponential backoff.
package jira

import "fmt"

// Field is one field definition as reported by the tracker. Many
// definitions may share a display name across project schema variants.
type Field struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Custom bool   `json:"custom"`
	Schema struct {
		Type string `json:"type"`
	} `json:"schema"`
}

// User identifies the authenticated account.
type User struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// Issue is a snapshot of one issue: its key plus the raw field surface the
// tracker returned. The Fields map holds every field id the issue's
// effective schema declares (unset fields are present with a nil value), so
// "does this issue expose field X" is a plain membership test.
//
// Snapshots are read-only once fetched and re-fetched per operation; the
// remote system is the source of truth and may change between reads.
type Issue struct {
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

// Has reports whether the issue's schema declares the field id.
func (i *Issue) Has(fieldID string) bool {
	_, ok := i.Fields[fieldID]
	return ok
}

// Value returns the raw value for a field id, or nil when absent or unset.
func (i *Issue) Value(fieldID string) any {
	return i.Fields[fieldID]
}

// Summary returns the issue summary, or "" when not fetched.
func (i *Issue) Summary() string {
	s, _ := i.Fields["summary"].(string)
	return s
}

// TypeName returns the issue type display name, or "" when not fetched.
func (i *Issue) TypeName() string {
	it, ok := i.Fields["issuetype"].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := it["name"].(string)
	return name
}

// IssueLink is one formal issue-link relation, flattened to the linked key
// and the direction it was found in.
type IssueLink struct {
	Key       string
	Direction string // "inward" or "outward"
	TypeName  string
}

// Links returns the issue's formal link relations in both directions.
func (i *Issue) Links() []IssueLink {
	raw, ok := i.Fields["issuelinks"].([]any)
	if !ok {
		return nil
	}

	var links []IssueLink
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		linkType, _ := m["type"].(map[string]any)

		if out, ok := m["outwardIssue"].(map[string]any); ok {
			if key, _ := out["key"].(string); key != "" {
				name, _ := linkType["outward"].(string)
				links = append(links, IssueLink{Key: key, Direction: "outward", TypeName: name})
			}
		}
		if in, ok := m["inwardIssue"].(map[string]any); ok {
			if key, _ := in["key"].(string); key != "" {
				name, _ := linkType["inward"].(string)
				links = append(links, IssueLink{Key: key, Direction: "inward", TypeName: name})
			}
		}
	}
	return links
}

// SearchResult is one page of a JQL search.
type SearchResult struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// APIError is a non-2xx response from the tracker.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("tracker returned %s: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("tracker returned %s", e.Status)
}
