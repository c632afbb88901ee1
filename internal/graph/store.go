package graph

import (
	"context"
	"fmt"

	"github.com/danielolaszy/jiragraph/internal/logging"
	"github.com/danielolaszy/jiragraph/pkg/models"
)

// Store caches fetched issues by key for the lifetime of a run. Cached
// records are shared by reference, so link removal through the store is
// visible to every later visit of the same issue.
type Store struct {
	repo   Repository
	issues map[string]*models.Issue
}

// NewStore creates an empty store reading from repo.
func NewStore(repo Repository) *Store {
	return &Store{
		repo:   repo,
		issues: make(map[string]*models.Issue),
	}
}

// Get returns the cached issue for key, fetching it on first use.
// Failed fetches are not cached.
func (s *Store) Get(ctx context.Context, key string) (*models.Issue, error) {
	if issue, ok := s.issues[key]; ok {
		return issue, nil
	}

	logging.Debug("fetching issue", "issue", key)
	issue, err := s.repo.GetIssue(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issue %s: %w", key, err)
	}
	s.issues[key] = issue
	return issue, nil
}

// Len returns the number of cached issues.
func (s *Store) Len() int {
	return len(s.issues)
}

// RemoveReciprocalLinks drops from the far end of link every link named
// typeName that points back at key, and returns how many were removed.
// It must run before the far end is visited, otherwise the pair is drawn
// from both sides.
func (s *Store) RemoveReciprocalLinks(ctx context.Context, key string, link models.IssueLink, typeName string) (int, error) {
	other, _, ok := link.Other()
	if !ok {
		return 0, nil
	}

	issue, err := s.Get(ctx, other.Key)
	if err != nil {
		return 0, err
	}

	kept := make([]models.IssueLink, 0, len(issue.Links))
	for _, l := range issue.Links {
		if l.Type.Name == typeName && l.Points(key) {
			continue
		}
		kept = append(kept, l)
	}

	removed := len(issue.Links) - len(kept)
	if removed > 0 {
		logging.Debug("removed reciprocal links",
			"issue", other.Key,
			"points_to", key,
			"type", typeName,
			"count", removed)
		issue.Links = kept
	}
	return removed, nil
}
