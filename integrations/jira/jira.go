package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	coreconfig "github.com/l0lsec/PodInsights/core/config"
	"github.com/sirupsen/logrus"
)

const httpTimeout = 15 * time.Second

var httpClient = &http.Client{Timeout: httpTimeout}

var ErrNotConfigured = errors.New("jira is not configured")

// Client talks to the Jira Cloud REST API v3 with basic auth
// (account email + API token).
type Client struct {
	baseURL    string
	email      string
	apiToken   string
	projectKey string
	issueType  string
}

type Issue struct {
	ID  string `json:"id"`
	Key string `json:"key"`
	URL string `json:"url"`
}

type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewClient(cfg coreconfig.JiraConfig) *Client {
	issueType := cfg.IssueType
	if issueType == "" {
		issueType = "Task"
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		email:      cfg.Email,
		apiToken:   cfg.APIToken,
		projectKey: cfg.ProjectKey,
		issueType:  issueType,
	}
}

func (c *Client) Configured() bool {
	return c.baseURL != "" && c.email != "" && c.apiToken != "" && c.projectKey != ""
}

// BrowseURL is the human-facing link for an issue key.
func (c *Client) BrowseURL(key string) string {
	return fmt.Sprintf("%s/browse/%s", c.baseURL, key)
}

// CreateIssue files a new issue with the description wrapped in the
// document format the v3 API requires.
func (c *Client) CreateIssue(ctx context.Context, summary, description string) (Issue, error) {
	if !c.Configured() {
		return Issue{}, ErrNotConfigured
	}

	payload := map[string]any{
		"fields": map[string]any{
			"project": map[string]any{"key": c.projectKey},
			"summary": summary,
			"description": map[string]any{
				"type":    "doc",
				"version": 1,
				"content": []any{
					map[string]any{
						"type": "paragraph",
						"content": []any{
							map[string]any{"type": "text", "text": description},
						},
					},
				},
			},
			"issuetype": map[string]any{"name": c.issueType},
		},
	}

	var created struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}
	url := fmt.Sprintf("%s/rest/api/3/issue", c.baseURL)
	if err := c.jsonRequest(ctx, http.MethodPost, url, payload, &created); err != nil {
		return Issue{}, err
	}

	logrus.Infof("[JIRA] Created issue %s", created.Key)
	return Issue{ID: created.ID, Key: created.Key, URL: c.BrowseURL(created.Key)}, nil
}

// GetIssueStatus returns the name of the issue's current status column.
func (c *Client) GetIssueStatus(ctx context.Context, key string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	var issue struct {
		Fields struct {
			Status struct {
				Name string `json:"name"`
			} `json:"status"`
		} `json:"fields"`
	}
	url := fmt.Sprintf("%s/rest/api/3/issue/%s?fields=status", c.baseURL, key)
	if err := c.jsonRequest(ctx, http.MethodGet, url, nil, &issue); err != nil {
		return "", err
	}
	return issue.Fields.Status.Name, nil
}

func (c *Client) ListTransitions(ctx context.Context, key string) ([]Transition, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	var body struct {
		Transitions []Transition `json:"transitions"`
	}
	url := fmt.Sprintf("%s/rest/api/3/issue/%s/transitions", c.baseURL, key)
	if err := c.jsonRequest(ctx, http.MethodGet, url, nil, &body); err != nil {
		return nil, err
	}
	return body.Transitions, nil
}

func (c *Client) TransitionIssue(ctx context.Context, key, transitionID string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	payload := map[string]any{
		"transition": map[string]any{"id": transitionID},
	}
	url := fmt.Sprintf("%s/rest/api/3/issue/%s/transitions", c.baseURL, key)
	return c.jsonRequest(ctx, http.MethodPost, url, payload, nil)
}

// jsonRequest unifies request creation, execution and decoding.
func (c *Client) jsonRequest(ctx context.Context, method, url string, body interface{}, dest interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.email, c.apiToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("jira %s %s: status %d: %s", method, url, resp.StatusCode, string(b))
	}

	if dest != nil {
		return json.NewDecoder(resp.Body).Decode(dest)
	}
	return nil
}
