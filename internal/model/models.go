package model

import "time"

// Project is a named collection of note files with its own commit log and an
// optional link to one remote repository branch.
type Project struct {
	ID          string                `json:"id"`   // immutable once created
	Name        string                `json:"name"` // user-editable, not unique
	Description string                `json:"description"`
	Files       map[string]FileRecord `json:"files"` // keyed by slash-delimited path
	GitData     CommitLog             `json:"gitData"`
	Remote      RemoteLink            `json:"remote"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// FileRecord is one plain-text file inside a project. Content is mutated in
// place on save; history lives only in commit snapshots.
type FileRecord struct {
	Filename     string    `json:"filename"` // always equals the map key it is stored under
	Content      string    `json:"content"`
	LastModified time.Time `json:"lastModified"`
	Size         int64     `json:"size"`
}

// CommitLog is the per-project append-only snapshot history.
// A log with Initialized false rejects commit and push operations.
type CommitLog struct {
	Initialized bool     `json:"initialized"`
	Commits     []Commit `json:"commits"` // chronological order, oldest first
}

// Commit is one snapshot of a project's full file map. Commits are never
// mutated after creation except to record a successful push.
type Commit struct {
	ID           string                `json:"id"`
	Message      string                `json:"message"`
	Timestamp    time.Time             `json:"timestamp"`
	Files        map[string]FileRecord `json:"files"` // value copy taken at commit time
	Branch       string                `json:"branch,omitempty"`
	Import       bool                  `json:"import,omitempty"` // baseline synthesized by a repository import
	Pushed       bool                  `json:"pushed,omitempty"`
	PushedAt     time.Time             `json:"pushedAt,omitzero"`
	PushedBranch string                `json:"pushedBranch,omitempty"`
}

// RemoteLink identifies the single remote branch a project currently tracks.
// A project with an empty Repo is unlinked.
type RemoteLink struct {
	Repo   string `json:"githubRepo,omitempty"` // "owner/name"
	Branch string `json:"githubBranch,omitempty"`
}

// Linked reports whether the project tracks a remote repository.
func (r RemoteLink) Linked() bool { return r.Repo != "" }

// Session is the cross-invocation editing context: which project and file are
// active, and the last file that was open.
type Session struct {
	CurrentProject string `json:"currentProject,omitempty"`
	CurrentFile    string `json:"currentFile,omitempty"`
	LastFile       string `json:"lastFile,omitempty"`
}

// RemoteUser is the remote host's profile for the authenticated token.
type RemoteUser struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// RemoteRepository is one repository owned by the authenticated user.
type RemoteRepository struct {
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   string    `json:"description"`
	DefaultBranch string    `json:"default_branch"`
	Private       bool      `json:"private"`
	Language      string    `json:"language"`
	Stars         int       `json:"stargazers_count"`
	Forks         int       `json:"forks_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CloneFiles returns a value copy of a file map. Used for commit snapshots so
// later edits to the live project cannot alter a past commit.
func CloneFiles(files map[string]FileRecord) map[string]FileRecord {
	out := make(map[string]FileRecord, len(files))
	for k, v := range files {
		out[k] = v
	}
	return out
}
