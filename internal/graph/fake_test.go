package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielolaszy/jiragraph/pkg/models"
)

var errNotFound = errors.New("issue does not exist")

// fakeRepo is an in-memory Repository that counts fetches.
type fakeRepo struct {
	issues  map[string]*models.Issue
	epics   map[string][]string
	fetches map[string]int
	queries []string
}

func newFakeRepo(issues ...*models.Issue) *fakeRepo {
	r := &fakeRepo{
		issues:  make(map[string]*models.Issue),
		epics:   make(map[string][]string),
		fetches: make(map[string]int),
	}
	for _, issue := range issues {
		r.issues[issue.Key] = issue
	}
	return r
}

func (r *fakeRepo) GetIssue(_ context.Context, key string) (*models.Issue, error) {
	r.fetches[key]++
	issue, ok := r.issues[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, errNotFound)
	}
	return issue.Clone(), nil
}

func (r *fakeRepo) SearchIssues(_ context.Context, jql string) ([]models.Issue, error) {
	r.queries = append(r.queries, jql)
	for epic, children := range r.epics {
		if jql != EpicChildrenJQL(epic) {
			continue
		}
		var out []models.Issue
		for _, key := range children {
			out = append(out, *r.issues[key].Clone())
		}
		return out, nil
	}
	return nil, nil
}

func issue(key, summary string) *models.Issue {
	return &models.Issue{IssueRef: ref(key, summary)}
}

func ref(key, summary string) models.IssueRef {
	return models.IssueRef{
		Key:     key,
		Summary: summary,
		Status:  models.Status{Name: "Open", Category: "To Do"},
		Type:    "Story",
	}
}

var (
	blocksType  = models.LinkType{Name: "Blocks", Inward: "is blocked by", Outward: "blocks"}
	relatesType = models.LinkType{Name: "Relates", Inward: "relates to", Outward: "relates to"}
)

func outward(t models.LinkType, to *models.Issue) models.IssueLink {
	r := to.Ref()
	return models.IssueLink{Type: t, OutwardIssue: &r}
}

func inward(t models.LinkType, from *models.Issue) models.IssueLink {
	r := from.Ref()
	return models.IssueLink{Type: t, InwardIssue: &r}
}

func nodeKeys(statements []Statement) []string {
	var keys []string
	for _, s := range statements {
		if s.Kind == NodeStatement {
			keys = append(keys, s.From)
		}
	}
	return keys
}

func edgePairs(statements []Statement) []string {
	var pairs []string
	for _, s := range statements {
		if s.Kind == EdgeStatement {
			pairs = append(pairs, s.From+"->"+s.To)
		}
	}
	return pairs
}
