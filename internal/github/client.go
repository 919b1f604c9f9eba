package github

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"muse-go/internal/model"
	"muse-go/internal/muse"
)

// DefaultBaseURL is the public GitHub REST v3 endpoint.
const DefaultBaseURL = "https://api.github.com"

// Client implements muse.RemoteHost against the GitHub REST API. Requests
// rely on the transport's default timeout behavior; nothing is retried.
type Client struct {
	baseURL string
	httpc   *http.Client
}

var _ muse.RemoteHost = (*Client)(nil)

// NewClient creates a client for the given API base URL. An empty baseURL
// selects the public GitHub endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
	}
}

// do issues one authenticated JSON request. A non-2xx response is returned as
// an error wrapping muse.ErrNetwork carrying the host's status text.
func (c *Client) do(method, u, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, u, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", muse.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Method: method,
			Path:   req.URL.Path,
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// User returns the profile for the authenticated token.
func (c *Client) User(token string) (*model.RemoteUser, error) {
	var user model.RemoteUser
	if err := c.do(http.MethodGet, c.baseURL+"/user", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListRepositories returns the user's repositories, most recently updated
// first, including private ones the token can see.
func (c *Client) ListRepositories(token string) ([]model.RemoteRepository, error) {
	var repos []model.RemoteRepository
	u := c.baseURL + "/user/repos?sort=updated&per_page=100"
	if err := c.do(http.MethodGet, u, token, nil, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// ListBranches returns the branch names of a repository.
func (c *Client) ListBranches(repo, token string) ([]string, error) {
	var branches []struct {
		Name string `json:"name"`
	}
	u := fmt.Sprintf("%s/repos/%s/branches", c.baseURL, repo)
	if err := c.do(http.MethodGet, u, token, nil, &branches); err != nil {
		return nil, err
	}

	names := make([]string, len(branches))
	for i, b := range branches {
		names[i] = b.Name
	}
	return names, nil
}

// GetTree returns the recursive file tree of a branch.
func (c *Client) GetTree(repo, branch, token string) ([]muse.TreeEntry, error) {
	var tree struct {
		Tree []struct {
			Path string `json:"path"`
			Type string `json:"type"`
			SHA  string `json:"sha"`
			Size int64  `json:"size"`
			URL  string `json:"url"`
		} `json:"tree"`
		Truncated bool `json:"truncated"`
	}
	u := fmt.Sprintf("%s/repos/%s/git/trees/%s?recursive=1", c.baseURL, repo, url.PathEscape(branch))
	if err := c.do(http.MethodGet, u, token, nil, &tree); err != nil {
		return nil, err
	}

	entries := make([]muse.TreeEntry, len(tree.Tree))
	for i, e := range tree.Tree {
		entries[i] = muse.TreeEntry{Path: e.Path, Type: e.Type, SHA: e.SHA, Size: e.Size, URL: e.URL}
	}
	return entries, nil
}

// GetBlob fetches a blob by its API URL and decodes the base64 transport
// encoding to UTF-8 text.
func (c *Client) GetBlob(blobURL, token string) (string, error) {
	var blob struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	if err := c.do(http.MethodGet, blobURL, token, nil, &blob); err != nil {
		return "", err
	}

	if blob.Encoding != "base64" {
		return "", fmt.Errorf("unsupported blob encoding: %q", blob.Encoding)
	}
	// The API wraps base64 payloads in newlines.
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(blob.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decoding blob content: %w", err)
	}
	return string(decoded), nil
}

// GetContentSHA returns the blob SHA the contents API reports for a file at a
// ref, or "" when the file does not exist remotely.
func (c *Client) GetContentSHA(repo, path, branch, token string) (string, error) {
	var content struct {
		SHA string `json:"sha"`
	}
	u := fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s",
		c.baseURL, repo, escapePath(path), url.QueryEscape(branch))

	err := c.do(http.MethodGet, u, token, nil, &content)
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return content.SHA, nil
}

// PutContent creates or updates a file through the contents API. When
// req.SHA is set the host performs an optimistic-concurrency check and
// rejects the write if the remote changed since that SHA was read.
func (c *Client) PutContent(repo, path, branch, token string, req muse.PutContentRequest) error {
	body := map[string]string{
		"message": req.Message,
		"content": base64.StdEncoding.EncodeToString([]byte(req.Content)),
		"branch":  branch,
	}
	if req.SHA != "" {
		body["sha"] = req.SHA
	}

	u := fmt.Sprintf("%s/repos/%s/contents/%s", c.baseURL, repo, escapePath(path))
	return c.do(http.MethodPut, u, token, body, nil)
}

// escapePath escapes each segment of a slash-delimited path while keeping
// the slashes literal.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// StatusError is a non-2xx response from the host. It matches muse.ErrAuth
// for 401/403 and muse.ErrNetwork otherwise, so callers can use errors.Is
// while the host's status text stays visible.
type StatusError struct {
	Code   int
	Status string
	Method string
	Path   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Status)
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden {
		return muse.ErrAuth
	}
	return muse.ErrNetwork
}

// isNotFound reports whether an error is a 404 response.
func isNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}
