package graph

import (
	"context"
	"fmt"

	"github.com/danielolaszy/jiragraph/internal/logging"
	"github.com/danielolaszy/jiragraph/pkg/models"
)

// Builder turns seed issues into graph statements. A Builder owns the issue
// store for one run; it is not safe for concurrent use.
type Builder struct {
	repo  Repository
	store *Store
	opts  Options

	// visited is shared across seeds when opts.ShareVisited is set.
	visited map[string]struct{}
}

// NewBuilder creates a builder with an empty issue store.
func NewBuilder(repo Repository, opts Options) *Builder {
	return &Builder{
		repo:    repo,
		store:   NewStore(repo),
		opts:    opts,
		visited: make(map[string]struct{}),
	}
}

// Store returns the builder's issue store.
func (b *Builder) Store() *Store {
	return b.store
}

// BuildAll builds every seed in order and concatenates the statements. It
// fails on the first seed that cannot be fetched or yields no statements.
func (b *Builder) BuildAll(ctx context.Context, seeds []string) ([]Statement, error) {
	var all []Statement
	for _, seed := range seeds {
		statements, err := b.Build(ctx, seed)
		if err != nil {
			return nil, err
		}
		if len(statements) == 0 {
			return nil, &SeedError{Seed: seed, Err: ErrEmptyGraph}
		}

		logging.Debug("built graph for seed",
			"seed", seed,
			"statements", len(statements))
		all = append(all, statements...)
	}
	return all, nil
}

// Build walks the graph reachable from seed depth-first.
func (b *Builder) Build(ctx context.Context, seed string) ([]Statement, error) {
	issue, err := b.store.Get(ctx, seed)
	if err != nil {
		return nil, &SeedError{Seed: seed, Err: fmt.Errorf("%w: %w", ErrSeedUnresolved, err)}
	}

	w := &walk{
		repo:    b.repo,
		store:   b.store,
		opts:    b.opts,
		project: models.ProjectKey(seed),
		seen:    b.visited,
	}
	if !b.opts.ShareVisited {
		w.seen = make(map[string]struct{})
	}

	w.visit(ctx, issue)
	return w.graph, nil
}

// walk is the state of one seed's traversal.
type walk struct {
	repo    Repository
	store   *Store
	opts    Options
	project string
	seen    map[string]struct{}
	graph   []Statement
}

func (w *walk) walk(ctx context.Context, key string) {
	issue, err := w.store.Get(ctx, key)
	if err != nil {
		logging.Warn("abandoning branch", "issue", key, "error", err)
		return
	}
	w.visit(ctx, issue)
}

func (w *walk) visit(ctx context.Context, issue *models.Issue) {
	w.seen[issue.Key] = struct{}{}

	if w.opts.IgnoreClosed && issue.Status.Name == StatusClosed {
		logging.Debug("skipping closed issue", "issue", issue.Key)
		return
	}
	if w.outside(issue.Key) {
		return
	}

	w.graph = append(w.graph, nodeDeclaration(w.opts, issue))

	var children []string
	if !w.opts.IgnoreSubtasks {
		if issue.Type == IssueTypeEpic && !w.opts.IgnoreEpicChildren {
			children = append(children, w.epicChildren(ctx, issue)...)
		}
		for _, subtask := range issue.Subtasks {
			if w.outside(subtask.Key) {
				continue
			}
			w.graph = append(w.graph, subtaskEdge(w.opts, issue, subtask))
			children = append(children, subtask.Key)
		}
	}

	// Reciprocal removal can rewrite any cached link list, so iterate a copy.
	links := append([]models.IssueLink(nil), issue.Links...)
	for _, link := range links {
		if w.opts.MergeRelates && link.Type.Name == RelatesLinkType {
			if _, err := w.store.RemoveReciprocalLinks(ctx, issue.Key, link, RelatesLinkType); err != nil {
				logging.Warn("failed to remove reciprocal links",
					"issue", issue.Key,
					"error", err)
			}
		}

		result, ok := EvaluateLink(w.opts, issue, link)
		if !ok || w.outside(result.Neighbor) {
			continue
		}
		children = append(children, result.Neighbor)
		if result.Edge != nil {
			w.graph = append(w.graph, *result.Edge)
		}
	}

	for _, child := range children {
		if _, ok := w.seen[child]; ok {
			continue
		}
		w.walk(ctx, child)
	}
}

func (w *walk) epicChildren(ctx context.Context, epic *models.Issue) []string {
	issues, err := w.repo.SearchIssues(ctx, EpicChildrenJQL(epic.Key))
	if err != nil {
		logging.Warn("failed to query epic children", "epic", epic.Key, "error", err)
		return nil
	}

	keys := make([]string, 0, len(issues))
	for _, child := range issues {
		if w.outside(child.Key) {
			continue
		}
		w.graph = append(w.graph, epicChildEdge(w.opts, epic, child.Ref()))
		keys = append(keys, child.Key)
	}
	return keys
}

// outside reports whether key is in another project while cross-project
// walking is disabled. Such issues get neither a node nor an edge.
func (w *walk) outside(key string) bool {
	if w.opts.CrossProject || models.ProjectKey(key) == w.project {
		return false
	}
	logging.Debug("skipping issue outside project", "issue", key, "project", w.project)
	return true
}

// EpicChildrenJQL selects the issues attached to an epic.
func EpicChildrenJQL(key string) string {
	return fmt.Sprintf(`"Epic Link" = "%s" OR "Parent" = "%s"`, key, key)
}
