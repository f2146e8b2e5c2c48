package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/vodarr/vodarr/internal/dedupe"
	"github.com/vodarr/vodarr/internal/ingest"
)

// Client wraps HTTP calls to the vodarr server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new vodarr API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // chunk processing can be slow
		},
	}
}

func (c *Client) get(path string, result any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) post(path string, body any, result any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", reader)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(respBody))
	}
	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func (c *Client) delete(path string, result any) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}
	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// Playlists lists stored playlists and their import status.
func (c *Client) Playlists() ([]ingest.FileStatus, error) {
	var resp struct {
		Results []ingest.FileStatus `json:"results"`
	}
	if err := c.get("/api/v1/playlists", &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Upload sends a playlist file to the server. Returns the stored name.
func (c *Client) Upload(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	resp, err := c.httpClient.Post(c.baseURL+"/api/v1/playlists", mw.FormDataContentType(), &buf)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}

	var uploadResp struct {
		Results struct {
			Name string `json:"name"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", err
	}
	return uploadResp.Results.Name, nil
}

// ProcessChunk advances a playlist import by one chunk.
func (c *Client) ProcessChunk(name string) (*ingest.ChunkReport, error) {
	var report ingest.ChunkReport
	if err := c.post("/api/v1/playlists/"+url.PathEscape(name)+"/process", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Reprocess reimports a playlist from the start.
func (c *Client) Reprocess(name string) (*ingest.ChunkReport, error) {
	var report ingest.ChunkReport
	if err := c.post("/api/v1/playlists/"+url.PathEscape(name)+"/reprocess", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DeletePlaylist removes a playlist and its imported records.
func (c *Client) DeletePlaylist(name string) (int, error) {
	var resp struct {
		Results map[string]int `json:"results"`
	}
	if err := c.delete("/api/v1/playlists/"+url.PathEscape(name), &resp); err != nil {
		return 0, err
	}
	return resp.Results["media_removed"], nil
}

// Duplicates lists duplicate player groups.
func (c *Client) Duplicates() ([]dedupe.Group, error) {
	var resp struct {
		Results []dedupe.Group `json:"results"`
	}
	if err := c.get("/api/v1/duplicates", &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// RemoveDuplicates reconciles duplicate players on the server.
func (c *Client) RemoveDuplicates() (*dedupe.RemovalReport, error) {
	var resp struct {
		Results dedupe.RemovalReport `json:"results"`
	}
	if err := c.post("/api/v1/duplicates/remove", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Results, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
