package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/jiragraph/internal/config"
	"github.com/danielolaszy/jiragraph/internal/graph"
)

var _ graph.Repository = (*Client)(nil)

const seedIssueJSON = `{
  "key": "PROJ-1",
  "fields": {
    "summary": "Seed issue",
    "status": {"name": "In Progress", "statusCategory": {"name": "In Progress"}},
    "issuetype": {"name": "Story"},
    "subtasks": [
      {"key": "PROJ-2", "fields": {"summary": "Subtask", "status": {"name": "Closed"}, "issuetype": {"name": "Sub-task"}}}
    ],
    "issuelinks": [
      {
        "id": "10001",
        "type": {"name": "Blocks", "inward": "is blocked by", "outward": "blocks"},
        "outwardIssue": {"key": "PROJ-3", "fields": {"summary": "Blocked", "status": {"name": "Open"}}}
      },
      {
        "id": "10002",
        "type": {"name": "Relates", "inward": "relates to", "outward": "relates to"},
        "inwardIssue": {"key": "OTHER-4", "fields": {"summary": "Related"}}
      }
    ]
  }
}`

func newTestClient(t *testing.T, cfg config.JiraConfig, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.URL = server.URL
	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func TestGetIssue(t *testing.T) {
	client := newTestClient(t, config.JiraConfig{NoAuth: true}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/issue/PROJ-1", r.URL.Path)
		assert.Equal(t, issueFields, r.URL.Query().Get("fields"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(seedIssueJSON))
	})

	issue, err := client.GetIssue(context.Background(), "PROJ-1")
	require.NoError(t, err)

	assert.Equal(t, "PROJ-1", issue.Key)
	assert.Equal(t, "Seed issue", issue.Summary)
	assert.Equal(t, "Story", issue.Type)
	assert.Equal(t, "In Progress", issue.Status.Name)
	assert.Equal(t, "In Progress", issue.Status.Category)

	require.Len(t, issue.Subtasks, 1)
	assert.Equal(t, "PROJ-2", issue.Subtasks[0].Key)
	assert.Equal(t, "Closed", issue.Subtasks[0].Status.Name)

	require.Len(t, issue.Links, 2)
	assert.Equal(t, "10001", issue.Links[0].ID)
	assert.Equal(t, "Blocks", issue.Links[0].Type.Name)
	assert.Equal(t, "blocks", issue.Links[0].Type.Outward)
	require.NotNil(t, issue.Links[0].OutwardIssue)
	assert.Equal(t, "PROJ-3", issue.Links[0].OutwardIssue.Key)
	assert.Nil(t, issue.Links[0].InwardIssue)
	require.NotNil(t, issue.Links[1].InwardIssue)
	assert.Equal(t, "OTHER-4", issue.Links[1].InwardIssue.Key)
	assert.Empty(t, issue.Links[1].InwardIssue.Status.Name)
}

func TestGetIssueNotFound(t *testing.T) {
	client := newTestClient(t, config.JiraConfig{NoAuth: true}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errorMessages":["Issue Does Not Exist"],"errors":{}}`))
	})

	_, err := client.GetIssue(context.Background(), "PROJ-404")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "PROJ-404")
}

func TestGetIssueServerError(t *testing.T) {
	client := newTestClient(t, config.JiraConfig{NoAuth: true}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.GetIssue(context.Background(), "PROJ-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSearchIssuesPaginates(t *testing.T) {
	keys := []string{"PROJ-10", "PROJ-11", "PROJ-12"}
	var requests int
	client := newTestClient(t, config.JiraConfig{NoAuth: true}, func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/rest/api/2/search", r.URL.Path)
		assert.Equal(t, graph.EpicChildrenJQL("PROJ-1"), r.URL.Query().Get("jql"))

		startAt, _ := strconv.Atoi(r.URL.Query().Get("startAt"))
		end := min(startAt+2, len(keys))

		var issues []map[string]any
		for _, key := range keys[startAt:end] {
			issues = append(issues, map[string]any{
				"key":    key,
				"fields": map[string]any{"summary": "Child " + key},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"startAt":    startAt,
			"maxResults": 2,
			"total":      len(keys),
			"issues":     issues,
		})
	})

	issues, err := client.SearchIssues(context.Background(), graph.EpicChildrenJQL("PROJ-1"))
	require.NoError(t, err)

	require.Len(t, issues, 3)
	assert.Equal(t, 2, requests)
	for i, issue := range issues {
		assert.Equal(t, keys[i], issue.Key)
		assert.Equal(t, "Child "+keys[i], issue.Summary)
	}
}

func TestListKeys(t *testing.T) {
	client := newTestClient(t, config.JiraConfig{NoAuth: true}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("maxResults"))
		assert.Equal(t, "key", r.URL.Query().Get("fields"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"startAt":0,"maxResults":100,"total":2,"issues":[{"key":"PROJ-1"},{"key":"PROJ-7"}]}`))
	})

	keys, err := client.ListKeys(context.Background(), "project = PROJ")
	require.NoError(t, err)
	assert.Equal(t, []string{"PROJ-1", "PROJ-7"}, keys)
}

func TestAuthentication(t *testing.T) {
	tests := []struct {
		name   string
		config config.JiraConfig
		check  func(t *testing.T, r *http.Request)
	}{
		{
			name:   "Basic",
			config: config.JiraConfig{Username: "jdoe", Password: "secret"},
			check: func(t *testing.T, r *http.Request) {
				user, pass, ok := r.BasicAuth()
				assert.True(t, ok)
				assert.Equal(t, "jdoe", user)
				assert.Equal(t, "secret", pass)
			},
		},
		{
			name:   "Bearer",
			config: config.JiraConfig{Bearer: "pat-token"},
			check: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "Bearer pat-token", r.Header.Get("Authorization"))
			},
		},
		{
			name:   "Cookie",
			config: config.JiraConfig{Cookie: "ABC123"},
			check: func(t *testing.T, r *http.Request) {
				cookie, err := r.Cookie("JSESSIONID")
				require.NoError(t, err)
				assert.Equal(t, "ABC123", cookie.Value)
				assert.Empty(t, r.Header.Get("Authorization"))
			},
		},
		{
			name:   "None",
			config: config.JiraConfig{NoAuth: true},
			check: func(t *testing.T, r *http.Request) {
				assert.Empty(t, r.Header.Get("Authorization"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.config, func(w http.ResponseWriter, r *http.Request) {
				tt.check(t, r)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(seedIssueJSON))
			})

			_, err := client.GetIssue(context.Background(), "PROJ-1")
			require.NoError(t, err)
		})
	}
}

func TestNilClient(t *testing.T) {
	client := &Client{}

	_, err := client.GetIssue(context.Background(), "PROJ-1")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = client.SearchIssues(context.Background(), "project = PROJ")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = client.ListKeys(context.Background(), "project = PROJ")
	assert.ErrorIs(t, err, ErrNotInitialized)
}
