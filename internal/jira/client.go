// Package jira reads issues, subtasks, epic children and issue links from a
// JIRA server.
package jira

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"

	jira "github.com/andygrunwald/go-jira"
	"golang.org/x/oauth2"

	"github.com/danielolaszy/jiragraph/internal/config"
	"github.com/danielolaszy/jiragraph/internal/logging"
	"github.com/danielolaszy/jiragraph/pkg/models"
)

// issueFields are the fields requested for every issue.
const issueFields = "key,summary,status,description,issuetype,issuelinks,subtasks"

// searchPageSize is the page size used when paging through search results.
const searchPageSize = 50

// listKeysLimit caps the number of seed keys taken from a JQL query.
const listKeysLimit = 100

var (
	// ErrNotInitialized is returned by methods of a client that failed to initialize.
	ErrNotInitialized = errors.New("JIRA client not initialized")

	// ErrNotFound is returned when the server reports that an issue does not exist.
	ErrNotFound = errors.New("issue not found")
)

// Client handles interactions with the JIRA API
type Client struct {
	client *jira.Client
}

// NewClient creates a new JIRA client for the configured server and
// authentication mode.
func NewClient(cfg config.JiraConfig) (*Client, error) {
	mode := cfg.AuthMode()
	logging.Debug("initializing jira client",
		"url", cfg.URL,
		"auth", mode,
		"username", logging.MaskSensitive(cfg.Username),
		"verify_ssl", !cfg.NoVerifySSL)

	client, err := jira.NewClient(httpClient(cfg), cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	return &Client{client: client}, nil
}

// httpClient builds the HTTP client for the configured authentication mode.
func httpClient(cfg config.JiraConfig) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.NoVerifySSL {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	switch cfg.AuthMode() {
	case config.AuthCookie:
		return &http.Client{Transport: &cookieTransport{session: cfg.Cookie, base: base}}
	case config.AuthBearer:
		return &http.Client{Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Bearer}),
			Base:   base,
		}}
	case config.AuthNone:
		return &http.Client{Transport: base}
	}

	tp := jira.BasicAuthTransport{
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: base,
	}
	return tp.Client()
}

// cookieTransport sends an existing JSESSIONID with every request.
type cookieTransport struct {
	session string
	base    http.RoundTripper
}

func (t *cookieTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.AddCookie(&http.Cookie{Name: "JSESSIONID", Value: t.session})
	return t.base.RoundTrip(req)
}

// GetIssue fetches a single issue with its status, type, subtasks and links.
func (c *Client) GetIssue(ctx context.Context, key string) (*models.Issue, error) {
	if c == nil || c.client == nil {
		return nil, ErrNotInitialized
	}

	logging.Debug("fetching issue", "key", key)

	issue, resp, err := c.client.Issue.GetWithContext(ctx, key, &jira.GetQueryOptions{Fields: issueFields})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to get issue %s: %w", key, err)
	}

	return convertIssue(issue), nil
}

// SearchIssues returns every issue matching jql, following pagination.
func (c *Client) SearchIssues(ctx context.Context, jql string) ([]models.Issue, error) {
	if c == nil || c.client == nil {
		return nil, ErrNotInitialized
	}

	fields := strings.Split(issueFields, ",")
	var issues []models.Issue
	startAt := 0
	for {
		page, resp, err := c.client.Issue.SearchWithContext(ctx, jql, &jira.SearchOptions{
			StartAt:    startAt,
			MaxResults: searchPageSize,
			Fields:     fields,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to search issues: %w", err)
		}

		for i := range page {
			issues = append(issues, *convertIssue(&page[i]))
		}

		startAt += len(page)
		if len(page) == 0 || resp == nil || startAt >= resp.Total {
			break
		}
	}

	logging.Debug("search completed", "jql", jql, "count", len(issues))
	return issues, nil
}

// ListKeys returns the keys of the first issues matching jql.
func (c *Client) ListKeys(ctx context.Context, jql string) ([]string, error) {
	if c == nil || c.client == nil {
		return nil, ErrNotInitialized
	}

	issues, _, err := c.client.Issue.SearchWithContext(ctx, jql, &jira.SearchOptions{
		MaxResults: listKeysLimit,
		Fields:     []string{"key"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search issues: %w", err)
	}

	keys := make([]string, 0, len(issues))
	for _, issue := range issues {
		keys = append(keys, issue.Key)
	}
	return keys, nil
}

func convertIssue(issue *jira.Issue) *models.Issue {
	result := &models.Issue{IssueRef: convertRef(issue.Key, issue.Fields)}
	if issue.Fields == nil {
		return result
	}

	for _, subtask := range issue.Fields.Subtasks {
		if subtask == nil {
			continue
		}
		result.Subtasks = append(result.Subtasks, convertRef(subtask.Key, &subtask.Fields))
	}

	for _, link := range issue.Fields.IssueLinks {
		if link == nil {
			continue
		}
		result.Links = append(result.Links, models.IssueLink{
			ID: link.ID,
			Type: models.LinkType{
				Name:    link.Type.Name,
				Inward:  link.Type.Inward,
				Outward: link.Type.Outward,
			},
			InwardIssue:  linkedRef(link.InwardIssue),
			OutwardIssue: linkedRef(link.OutwardIssue),
		})
	}

	return result
}

func linkedRef(issue *jira.Issue) *models.IssueRef {
	if issue == nil {
		return nil
	}
	ref := convertRef(issue.Key, issue.Fields)
	return &ref
}

func convertRef(key string, fields *jira.IssueFields) models.IssueRef {
	ref := models.IssueRef{Key: key}
	if fields == nil {
		return ref
	}

	ref.Summary = fields.Summary
	ref.Type = fields.Type.Name
	if fields.Status != nil {
		ref.Status = models.Status{
			Name:     fields.Status.Name,
			Category: fields.Status.StatusCategory.Name,
		}
	}
	return ref
}
