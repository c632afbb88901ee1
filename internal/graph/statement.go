package graph

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/mitchellh/go-wordwrap"

	"github.com/danielolaszy/jiragraph/pkg/models"
)

// MaxSummaryLength is the width summaries are truncated or wrapped to.
const MaxSummaryLength = 30

// Kind distinguishes node declarations from edge declarations.
type Kind int

const (
	// NodeStatement declares a node with its attributes.
	NodeStatement Kind = iota
	// EdgeStatement declares a directed edge between two nodes.
	EdgeStatement
)

// Statement is a single rendered Graphviz statement. Two statements are
// duplicates when their Text is equal.
type Statement struct {
	Kind Kind

	// From is the declared node's key, or the edge source key.
	From string

	// To is the edge target key; empty for nodes.
	To string

	// Text is the DOT text of the statement, without a trailing separator.
	Text string
}

// String returns the DOT text.
func (s Statement) String() string {
	return s.Text
}

// FormatSummary shortens a summary for a node label. Long summaries are
// wrapped onto MaxSummaryLength-wide lines when wordWrap is set, otherwise
// truncated with "..." when that saves more than the dots cost.
// Backslashes and double quotes are escaped.
func FormatSummary(summary string, wordWrap bool) string {
	length := utf8.RuneCountInString(summary)
	if wordWrap {
		if length > MaxSummaryLength {
			// Words longer than a line are split.
			summary = ansi.Hardwrap(wordwrap.WrapString(summary, MaxSummaryLength), MaxSummaryLength, true)
		}
	} else if length > MaxSummaryLength+2 {
		summary = string([]rune(summary)[:MaxSummaryLength]) + "..."
	}
	summary = strings.ReplaceAll(summary, `\`, `\\`)
	summary = strings.ReplaceAll(summary, `"`, `\"`)
	return strings.ReplaceAll(summary, "\n", `\n`)
}

// NodeText is the quoted node identifier used in both node and edge
// statements: the key and the formatted summary on two lines.
func NodeText(key, summary string, wordWrap bool) string {
	return fmt.Sprintf(`"%s\n(%s)"`, key, FormatSummary(summary, wordWrap))
}

// StatusColor maps a status category to a fill color.
func StatusColor(status models.Status) string {
	switch strings.ToUpper(status.Category) {
	case "IN PROGRESS":
		return "yellow"
	case "DONE":
		return "green"
	}
	return "white"
}

func nodeDeclaration(opts Options, issue *models.Issue) Statement {
	attrs := fmt.Sprintf(`href="%s", fillcolor="%s", style=filled`,
		opts.IssueURL(issue.Key), StatusColor(issue.Status))
	if issue.Type == IssueTypeEpic {
		attrs += ", shape=doubleoctagon, color=purple"
	}
	return Statement{
		Kind: NodeStatement,
		From: issue.Key,
		Text: fmt.Sprintf("%s [%s]", NodeText(issue.Key, issue.Summary, opts.WordWrap), attrs),
	}
}

func edge(opts Options, from *models.Issue, to models.IssueRef, attrs string) Statement {
	return Statement{
		Kind: EdgeStatement,
		From: from.Key,
		To:   to.Key,
		Text: NodeText(from.Key, from.Summary, opts.WordWrap) + "->" +
			NodeText(to.Key, to.Summary, opts.WordWrap) + attrs,
	}
}

func epicChildEdge(opts Options, epic *models.Issue, child models.IssueRef) Statement {
	return edge(opts, epic, child, "[color=orange]")
}

func subtaskEdge(opts Options, parent *models.Issue, subtask models.IssueRef) Statement {
	return edge(opts, parent, subtask, `[color=blue][label="subtask"]`)
}
