package muse

import "muse-go/internal/model"

// RemoteHost is the remote repository API the sync client drives. All calls
// are token-authenticated; implementations surface non-2xx responses as
// errors wrapping ErrNetwork.
type RemoteHost interface {
	// User returns the profile for the authenticated token.
	User(token string) (*model.RemoteUser, error)

	// ListRepositories returns the authenticated user's repositories,
	// most recently updated first.
	ListRepositories(token string) ([]model.RemoteRepository, error)

	// ListBranches returns the branch names of a repository.
	ListBranches(repo, token string) ([]string, error)

	// GetTree returns the recursive file tree of a branch.
	GetTree(repo, branch, token string) ([]TreeEntry, error)

	// GetBlob fetches a blob by its API URL and returns the decoded UTF-8
	// content. Transport encoding (base64) is an implementation concern.
	GetBlob(url, token string) (string, error)

	// GetContentSHA returns the content identifier the host uses for
	// optimistic concurrency on a file at a ref. Returns "" with no error
	// when the file does not exist remotely.
	GetContentSHA(repo, path, branch, token string) (string, error)

	// PutContent creates or updates a file's content at a path on a branch.
	// When req.SHA is set, the host rejects the write if the remote content
	// changed since that identifier was read.
	PutContent(repo, path, branch, token string, req PutContentRequest) error
}

// TreeEntry is one entry of a recursive branch tree.
type TreeEntry struct {
	Path string
	Type string // "blob" or "tree"
	SHA  string
	Size int64
	URL  string // API URL for fetching the blob
}

// PutContentRequest carries one file write to the remote host.
type PutContentRequest struct {
	Message string
	Content string // raw text; the host implementation handles encoding
	SHA     string // optional optimistic-concurrency token from GetContentSHA
}
