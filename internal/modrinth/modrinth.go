package modrinth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/LilydevMC/mrpack-distributor/internal/config"
	"github.com/LilydevMC/mrpack-distributor/internal/httpclient"
)

const (
	productionAPI  = "https://api.modrinth.com/v2"
	productionSite = "https://modrinth.com"
	stagingAPI     = "https://staging-api.modrinth.com/v2"
	stagingSite    = "https://staging.modrinth.com"
)

// URLs holds the API and site endpoints for one Modrinth environment.
type URLs struct {
	API  string
	Site string
}

// URLsFor returns the endpoints for the given environment.
func URLsFor(env config.Environment) URLs {
	if env == config.Staging {
		return URLs{API: stagingAPI, Site: stagingSite}
	}
	return URLs{API: productionAPI, Site: productionSite}
}

// Client talks to the Modrinth (Labrinth) API.
type Client struct {
	exec  *httpclient.Executor
	urls  URLs
	token string
}

func NewClient(exec *httpclient.Executor, urls URLs, token string) *Client {
	return &Client{exec: exec, urls: urls, token: token}
}

// SetAPIBase overrides the API endpoint. For testing.
func (c *Client) SetAPIBase(api string) {
	c.urls.API = api
}

// Project is the slice of project metadata the notifier needs.
type Project struct {
	Slug        string `json:"slug"`
	ProjectType string `json:"project_type"`
	Color       *int   `json:"color"`
}

// GetProject fetches project metadata by ID or slug.
func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	u := fmt.Sprintf("%s/project/%s", c.urls.API, projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.token)

	resp, err := c.exec.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", projectID, err)
	}
	if resp.Status/100 != 2 {
		return nil, apiError(fmt.Sprintf("get project %s", projectID), resp)
	}

	var proj Project
	if err := json.Unmarshal(resp.BodyBytes, &proj); err != nil {
		return nil, fmt.Errorf("parse project JSON (is the project still a draft?): %w", err)
	}
	return &proj, nil
}

// VersionParams holds the metadata for publishing a version.
type VersionParams struct {
	Name          string
	VersionNumber string
	Changelog     string
	GameVersions  []string
	Loaders       []string
	ProjectID     string
	Featured      bool
	FileName      string
	FileData      []byte
}

// Version is the created version as returned by the API.
type Version struct {
	ID            string `json:"id"`
	ProjectID     string `json:"project_id"`
	VersionNumber string `json:"version_number"`
}

// CreateVersion publishes a new version with its artifact file. The request
// is multipart: a "data" part carrying the version metadata as JSON, then
// the artifact bytes as a named file part.
func (c *Client) CreateVersion(ctx context.Context, p VersionParams) (*Version, error) {
	payload := struct {
		Name          string   `json:"name"`
		VersionNumber string   `json:"version_number"`
		Changelog     string   `json:"changelog"`
		Dependencies  []string `json:"dependencies"`
		GameVersions  []string `json:"game_versions"`
		VersionType   string   `json:"version_type"`
		Loaders       []string `json:"loaders"`
		Featured      bool     `json:"featured"`
		ProjectID     string   `json:"project_id"`
		FileParts     []string `json:"file_parts"`
		PrimaryFile   string   `json:"primary_file"`
	}{
		Name:          p.Name,
		VersionNumber: p.VersionNumber,
		Changelog:     p.Changelog,
		Dependencies:  []string{},
		GameVersions:  p.GameVersions,
		VersionType:   "release",
		Loaders:       p.Loaders,
		Featured:      p.Featured,
		ProjectID:     p.ProjectID,
		FileParts:     []string{"file"},
		PrimaryFile:   "file",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal version metadata: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("data", string(data)); err != nil {
		return nil, fmt.Errorf("write data part: %w", err)
	}
	fw, err := mw.CreateFormFile("file", p.FileName)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := fw.Write(p.FileData); err != nil {
		return nil, fmt.Errorf("write file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.urls.API+"/version", &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.exec.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create version %s: %w", p.VersionNumber, err)
	}
	if resp.Status/100 != 2 {
		return nil, apiError(fmt.Sprintf("create version %s", p.VersionNumber), resp)
	}

	var ver Version
	if err := json.Unmarshal(resp.BodyBytes, &ver); err != nil {
		return nil, fmt.Errorf("parse version JSON: %w", err)
	}
	return &ver, nil
}

func apiError(action string, resp httpclient.ResponseData) error {
	return fmt.Errorf("%s: status %d: %s", action, resp.Status, strings.TrimSpace(string(resp.BodyBytes)))
}
