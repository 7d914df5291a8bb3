package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/LilydevMC/mrpack-distributor/internal/httpclient"
)

const (
	defaultAPIBase    = "https://api.github.com"
	defaultUploadBase = "https://uploads.github.com"
)

// Client talks to the GitHub REST API for a single repository.
type Client struct {
	exec       *httpclient.Executor
	owner      string
	repo       string
	token      string
	apiBase    string
	uploadBase string
}

// NewClient creates a GitHub client for owner/repo. An empty token is
// allowed for read-only calls against public repositories.
func NewClient(exec *httpclient.Executor, owner, repo, token string) *Client {
	return &Client{
		exec:       exec,
		owner:      owner,
		repo:       repo,
		token:      token,
		apiBase:    defaultAPIBase,
		uploadBase: defaultUploadBase,
	}
}

// SetBaseURLs overrides the API and upload endpoints. For testing.
func (c *Client) SetBaseURLs(api, upload string) {
	c.apiBase = api
	c.uploadBase = upload
}

// Release represents a GitHub release.
type Release struct {
	ID      int64  `json:"id"`
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// ReleaseParams holds the fields for creating a release.
type ReleaseParams struct {
	TagName string
	Name    string
	Body    string
}

// CreateRelease creates a release against the configured repository.
func (c *Client) CreateRelease(ctx context.Context, p ReleaseParams) (*Release, error) {
	payload := struct {
		TagName string `json:"tag_name"`
		Name    string `json:"name"`
		Body    string `json:"body"`
	}{p.TagName, p.Name, p.Body}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal release: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.repoPath("/releases"), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.exec.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create release: %w", err)
	}
	if resp.Status != http.StatusCreated {
		return nil, apiError("create release", resp)
	}

	var rel Release
	if err := json.Unmarshal(resp.BodyBytes, &rel); err != nil {
		return nil, fmt.Errorf("parse release JSON: %w", err)
	}
	return &rel, nil
}

// UploadAsset attaches an artifact to a release. Uploads go through a
// dedicated host, not the regular API endpoint.
func (c *Client) UploadAsset(ctx context.Context, releaseID int64, name string, data []byte) error {
	u := fmt.Sprintf("%s/repos/%s/%s/releases/%d/assets?name=%s",
		c.uploadBase, c.owner, c.repo, releaseID, url.QueryEscape(name))

	req, err := c.newRequest(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.exec.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("upload asset %s: %w", name, err)
	}
	if resp.Status != http.StatusCreated {
		return apiError(fmt.Sprintf("upload asset %s", name), resp)
	}
	return nil
}

// LatestRelease returns the most recent release, or nil if the repository
// has none yet.
func (c *Client) LatestRelease(ctx context.Context) (*Release, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.repoPath("/releases?per_page=1"), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.exec.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}
	if resp.Status != http.StatusOK {
		return nil, apiError("list releases", resp)
	}

	var rels []Release
	if err := json.Unmarshal(resp.BodyBytes, &rels); err != nil {
		return nil, fmt.Errorf("parse release list JSON: %w", err)
	}
	if len(rels) == 0 {
		return nil, nil
	}
	return &rels[0], nil
}

var lastPageRe = regexp.MustCompile(`<([^>]+)>;\s*rel="last"`)

// FirstCommitSHA returns the SHA of the repository's first commit. Commits
// list newest-first, so the first commit is the sole entry on the last page
// when listing one per page.
func (c *Client) FirstCommitSHA(ctx context.Context) (string, error) {
	commitsURL := c.repoPath("/commits?per_page=1")

	resp, err := c.getPage(ctx, commitsURL)
	if err != nil {
		return "", err
	}

	if m := lastPageRe.FindStringSubmatch(resp.Headers.Get("Link")); m != nil {
		resp, err = c.getPage(ctx, m[1])
		if err != nil {
			return "", err
		}
	}

	var commits []struct {
		SHA string `json:"sha"`
	}
	if err := json.Unmarshal(resp.BodyBytes, &commits); err != nil {
		return "", fmt.Errorf("parse commit list JSON: %w", err)
	}
	if len(commits) == 0 {
		return "", fmt.Errorf("repository %s/%s has no commits", c.owner, c.repo)
	}
	return commits[0].SHA, nil
}

func (c *Client) getPage(ctx context.Context, u string) (httpclient.ResponseData, error) {
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return httpclient.ResponseData{}, err
	}
	resp, err := c.exec.Do(ctx, req)
	if err != nil {
		return httpclient.ResponseData{}, fmt.Errorf("list commits: %w", err)
	}
	if resp.Status != http.StatusOK {
		return httpclient.ResponseData{}, apiError("list commits", resp)
	}
	return resp, nil
}

func (c *Client) repoPath(suffix string) string {
	return fmt.Sprintf("%s/repos/%s/%s%s", c.apiBase, c.owner, c.repo, suffix)
}

func (c *Client) newRequest(ctx context.Context, method, u string, body *bytes.Reader) (*http.Request, error) {
	var r *http.Request
	var err error
	if body != nil {
		r, err = http.NewRequestWithContext(ctx, method, u, body)
	} else {
		r, err = http.NewRequestWithContext(ctx, method, u, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	r.Header.Set("Accept", "application/vnd.github+json")
	r.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		r.Header.Set("Authorization", "Bearer "+c.token)
	}
	return r, nil
}

func apiError(action string, resp httpclient.ResponseData) error {
	return fmt.Errorf("%s: status %d: %s", action, resp.Status, strings.TrimSpace(string(resp.BodyBytes)))
}
