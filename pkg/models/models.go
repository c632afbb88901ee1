// Package models defines data structures shared across the application.
package models

import "strings"

// Direction is the side of an issue link relative to the issue that owns it.
type Direction string

const (
	// Inward links point at the owning issue (e.g. "is blocked by").
	Inward Direction = "inward"
	// Outward links point away from the owning issue (e.g. "blocks").
	Outward Direction = "outward"
)

// Status is an issue's workflow status.
type Status struct {
	// Name is the status name (e.g., "Closed", "In Review")
	Name string

	// Category is the status category name (e.g., "To Do", "In Progress", "Done")
	Category string
}

// IssueRef is a lightweight reference to an issue, as embedded in subtask
// listings, epic children and issue links.
type IssueRef struct {
	// Key is the JIRA issue key (e.g., "ABC-123")
	Key string

	// Summary is the issue's one-line title
	Summary string

	// Status is the issue's current status
	Status Status

	// Type is the issue type name (e.g., "Story", "Epic")
	Type string
}

// LinkType names a relationship and its two verb phrases.
type LinkType struct {
	// Name is the bare link type name (e.g., "Blocks", "Relates")
	Name string

	// Inward is the phrase read from the target's side (e.g., "is blocked by")
	Inward string

	// Outward is the phrase read from the owner's side (e.g., "blocks")
	Outward string
}

// IssueLink is a typed link held by an issue. At most one of InwardIssue and
// OutwardIssue is set; the populated side determines the link direction.
type IssueLink struct {
	ID           string
	Type         LinkType
	InwardIssue  *IssueRef
	OutwardIssue *IssueRef
}

// Other returns the issue at the far end of the link and the link direction.
// The outward side wins when both are populated. ok is false for an inert link.
func (l IssueLink) Other() (ref *IssueRef, dir Direction, ok bool) {
	switch {
	case l.OutwardIssue != nil:
		return l.OutwardIssue, Outward, true
	case l.InwardIssue != nil:
		return l.InwardIssue, Inward, true
	}
	return nil, "", false
}

// Verb returns the link type phrase for the given direction.
func (l IssueLink) Verb(dir Direction) string {
	if dir == Outward {
		return l.Type.Outward
	}
	return l.Type.Inward
}

// Points reports whether the link's populated side references key.
func (l IssueLink) Points(key string) bool {
	return (l.OutwardIssue != nil && l.OutwardIssue.Key == key) ||
		(l.InwardIssue != nil && l.InwardIssue.Key == key)
}

// Issue is a fully fetched JIRA issue.
type Issue struct {
	IssueRef

	// Subtasks lists the declared subtasks in tracker order
	Subtasks []IssueRef

	// Links lists the issue links in tracker order
	Links []IssueLink
}

// Ref returns the lightweight reference for the issue.
func (i *Issue) Ref() IssueRef {
	return i.IssueRef
}

// Clone returns a copy of the issue whose link and subtask slices can be
// mutated without affecting the original.
func (i *Issue) Clone() *Issue {
	c := *i
	c.Subtasks = append([]IssueRef(nil), i.Subtasks...)
	c.Links = append([]IssueLink(nil), i.Links...)
	return &c
}

// ProjectKey returns the project prefix of an issue key: the text before the
// first "-". Keys without a separator are returned unchanged.
func ProjectKey(key string) string {
	project, _, _ := strings.Cut(key, "-")
	return project
}
