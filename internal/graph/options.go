// Package graph builds the issue relationship graph: it walks subtasks, epic
// children and issue links from a seed issue and emits Graphviz statements.
package graph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/danielolaszy/jiragraph/pkg/models"
)

const (
	// StatusClosed is the status name skipped by Options.IgnoreClosed.
	StatusClosed = "Closed"

	// IssueTypeEpic is the issue type whose children are queried.
	IssueTypeEpic = "Epic"

	// RelatesLinkType is the link type collapsed by Options.MergeRelates.
	RelatesLinkType = "Relates"
)

var (
	// ErrSeedUnresolved is returned when a seed issue cannot be fetched.
	ErrSeedUnresolved = errors.New("seed issue could not be fetched")

	// ErrEmptyGraph is returned when a seed issue contributes no statements.
	ErrEmptyGraph = errors.New("seed issue produced no graph statements")
)

// SeedError reports which seed issue failed a build.
type SeedError struct {
	Seed string
	Err  error
}

// Error returns a message naming the seed.
func (e *SeedError) Error() string {
	return fmt.Sprintf("failed to fetch data for: %s: %v", e.Seed, e.Err)
}

// Unwrap returns the underlying error.
func (e *SeedError) Unwrap() error { return e.Err }

// Repository is the issue source the builder reads from.
type Repository interface {
	// GetIssue fetches a single issue with its status, type, subtasks and links.
	GetIssue(ctx context.Context, key string) (*models.Issue, error)

	// SearchIssues returns the issues matching a JQL expression.
	SearchIssues(ctx context.Context, jql string) ([]models.Issue, error)
}

// Options controls which issues are walked and which edges are drawn.
type Options struct {
	// BaseURL is the tracker URL used for node hyperlinks.
	BaseURL string

	// ExcludedLinkTypes lists link type names whose edges are never drawn.
	// The linked issue is still walked.
	ExcludedLinkTypes []string

	// ShowDirections lists the link directions that are drawn.
	ShowDirections []models.Direction

	// WalkDirections lists the link directions that are followed.
	WalkDirections []models.Direction

	// IssueKeyInclude restricts linked issues to keys containing this substring.
	IssueKeyInclude string

	// ExcludedIssueKeys are never walked nor drawn.
	ExcludedIssueKeys []string

	// HiddenLinkVerbs lists link phrases whose edges are not drawn.
	HiddenLinkVerbs []string

	IgnoreClosed       bool
	IgnoreEpicChildren bool
	IgnoreSubtasks     bool

	// CrossProject allows the walk to leave the seed's project.
	CrossProject bool

	// WordWrap wraps long summaries instead of truncating them.
	WordWrap bool

	// MergeRelates draws "relates to" pairs as one bidirectional edge.
	MergeRelates bool

	// ShareVisited keeps one visited set across all seeds of a run.
	ShareVisited bool
}

// DefaultOptions walks and shows both directions across projects and merges
// "relates to" pairs.
func DefaultOptions() Options {
	return Options{
		ShowDirections: []models.Direction{models.Inward, models.Outward},
		WalkDirections: []models.Direction{models.Inward, models.Outward},
		CrossProject:   true,
		MergeRelates:   true,
	}
}

// IssueURL returns the browse URL of an issue.
func (o Options) IssueURL(key string) string {
	return strings.TrimSuffix(o.BaseURL, "/") + "/browse/" + key
}

func (o Options) walks(dir models.Direction) bool {
	return slices.Contains(o.WalkDirections, dir)
}

func (o Options) shows(dir models.Direction) bool {
	return slices.Contains(o.ShowDirections, dir)
}
