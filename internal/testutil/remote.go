package testutil

import (
	"fmt"
	"sync"

	"muse-go/internal/model"
	"muse-go/internal/muse"
)

// PutRecord is one PutContent call captured by FakeRemote.
type PutRecord struct {
	Repo    string
	Path    string
	Branch  string
	Request muse.PutContentRequest
}

// FakeRemote is an in-memory RemoteHost. Trees are keyed "repo@branch",
// blobs by their URL, content SHAs by "repo@branch/path". Any method can be
// forced to fail by setting the matching error field. Safe for concurrent
// use; the sync pipeline fetches blobs from multiple goroutines.
type FakeRemote struct {
	mu sync.Mutex

	UserProfile *model.RemoteUser
	Repos       []model.RemoteRepository
	Branches    map[string][]string // repo → branch names
	Trees       map[string][]muse.TreeEntry
	Blobs       map[string]string
	ContentSHAs map[string]string

	UserErr     error
	BranchesErr error
	TreeErr     error
	BlobErr     error
	SHAErr      error
	PutErr      error

	Puts      []PutRecord
	BlobCalls int
}

// NewFakeRemote creates an empty FakeRemote with a default user profile.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		UserProfile: &model.RemoteUser{Login: "octocat", Name: "The Octocat"},
		Branches:    map[string][]string{},
		Trees:       map[string][]muse.TreeEntry{},
		Blobs:       map[string]string{},
		ContentSHAs: map[string]string{},
	}
}

// AddFile registers a blob on a branch: a tree entry plus its content,
// addressable at a synthetic URL.
func (f *FakeRemote) AddFile(repo, branch, path, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := repo + "@" + branch
	url := fmt.Sprintf("https://fake/%s/%s", key, path)
	f.Trees[key] = append(f.Trees[key], muse.TreeEntry{
		Path: path,
		Type: "blob",
		SHA:  "sha-" + path,
		Size: int64(len(content)),
		URL:  url,
	})
	f.Blobs[url] = content
}

func (f *FakeRemote) User(token string) (*model.RemoteUser, error) {
	if f.UserErr != nil {
		return nil, f.UserErr
	}
	return f.UserProfile, nil
}

func (f *FakeRemote) ListRepositories(token string) ([]model.RemoteRepository, error) {
	return f.Repos, nil
}

func (f *FakeRemote) ListBranches(repo, token string) ([]string, error) {
	if f.BranchesErr != nil {
		return nil, f.BranchesErr
	}
	return f.Branches[repo], nil
}

func (f *FakeRemote) GetTree(repo, branch, token string) ([]muse.TreeEntry, error) {
	if f.TreeErr != nil {
		return nil, f.TreeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Trees[repo+"@"+branch], nil
}

func (f *FakeRemote) GetBlob(url, token string) (string, error) {
	f.mu.Lock()
	f.BlobCalls++
	f.mu.Unlock()
	if f.BlobErr != nil {
		return "", f.BlobErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.Blobs[url]
	if !ok {
		return "", fmt.Errorf("no blob at %s", url)
	}
	return content, nil
}

func (f *FakeRemote) GetContentSHA(repo, path, branch, token string) (string, error) {
	if f.SHAErr != nil {
		return "", f.SHAErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ContentSHAs[repo+"@"+branch+"/"+path], nil
}

func (f *FakeRemote) PutContent(repo, path, branch, token string, req muse.PutContentRequest) error {
	if f.PutErr != nil {
		return f.PutErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Puts = append(f.Puts, PutRecord{Repo: repo, Path: path, Branch: branch, Request: req})
	f.ContentSHAs[repo+"@"+branch+"/"+path] = "sha-" + req.Content
	return nil
}
