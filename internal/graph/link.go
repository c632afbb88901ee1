package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/danielolaszy/jiragraph/pkg/models"
)

// LinkResult is the outcome of evaluating one issue link: the neighbor to
// walk and, when the link is drawn, its edge.
type LinkResult struct {
	Neighbor string
	Edge     *Statement
}

// EvaluateLink decides whether the issue on the far side of link should be
// walked and whether an edge is drawn to it. ok is false when the link is
// filtered out entirely.
//
// Links whose type has no phrase for their direction are dropped.
func EvaluateLink(opts Options, from *models.Issue, link models.IssueLink) (LinkResult, bool) {
	other, dir, ok := link.Other()
	if !ok {
		return LinkResult{}, false
	}

	verb := link.Verb(dir)
	if verb == "" || !opts.walks(dir) {
		return LinkResult{}, false
	}
	if slices.Contains(opts.ExcludedIssueKeys, other.Key) {
		return LinkResult{}, false
	}
	if opts.IgnoreClosed && other.Status.Name == StatusClosed {
		return LinkResult{}, false
	}
	if !strings.Contains(other.Key, opts.IssueKeyInclude) {
		return LinkResult{}, false
	}

	result := LinkResult{Neighbor: other.Key}
	if slices.Contains(opts.ExcludedLinkTypes, strings.TrimSpace(link.Type.Name)) {
		return result, true
	}
	if !opts.shows(dir) || slices.Contains(opts.HiddenLinkVerbs, verb) {
		return result, true
	}

	e := edge(opts, from, *other, fmt.Sprintf(`[label="%s"%s]`, verb, edgeStyle(verb, opts.MergeRelates)))
	result.Edge = &e
	return result, true
}

func edgeStyle(verb string, mergeRelates bool) string {
	switch {
	case verb == "blocks":
		return `,color="red"`
	case verb == "has to be done before":
		return `,color="orange"`
	case verb == "relates to" && mergeRelates:
		return ", dir=both"
	}
	return ""
}
