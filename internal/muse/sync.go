package muse

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"muse-go/internal/model"
)

// SetToken seals the remote credential and stores it. Sealing needs only the
// public key, so no passphrase is required here.
func (s *MuseService) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: empty token", ErrAuth)
	}
	sealed, err := s.sealer.Seal([]byte(token))
	if err != nil {
		return fmt.Errorf("sealing token: %w", err)
	}
	if err := s.store.Set(keyToken, sealed); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	return nil
}

// Token opens the stored credential. Returns ErrAuth when none is stored.
func (s *MuseService) Token(passphrase string) (string, error) {
	sealed, ok, err := s.store.Get(keyToken)
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: no token stored", ErrAuth)
	}
	token, err := s.sealer.Open(sealed, passphrase)
	if err != nil {
		return "", fmt.Errorf("%w: unsealing token: %v", ErrAuth, err)
	}
	return string(token), nil
}

// ClearToken removes the stored credential and the cached profile.
func (s *MuseService) ClearToken() error {
	if err := s.store.Delete(keyToken); err != nil {
		return fmt.Errorf("removing token: %w", err)
	}
	if err := s.store.Delete(keyUser); err != nil {
		return fmt.Errorf("removing cached profile: %w", err)
	}
	return nil
}

// HasToken reports whether a credential is stored, without opening it.
func (s *MuseService) HasToken() (bool, error) {
	_, ok, err := s.store.Get(keyToken)
	if err != nil {
		return false, fmt.Errorf("reading token: %w", err)
	}
	return ok, nil
}

// FetchUser retrieves the remote profile for the token and caches it.
func (s *MuseService) FetchUser(token string) (*model.RemoteUser, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: no token", ErrAuth)
	}
	user, err := s.remote.User(token)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encoding profile: %w", err)
	}
	if err := s.store.Set(keyUser, raw); err != nil {
		return nil, fmt.Errorf("caching profile: %w", err)
	}
	return user, nil
}

// CachedUser returns the cached remote profile, or nil when none is cached.
func (s *MuseService) CachedUser() (*model.RemoteUser, error) {
	raw, ok, err := s.store.Get(keyUser)
	if err != nil {
		return nil, fmt.Errorf("reading cached profile: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var user model.RemoteUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decoding cached profile: %w", err)
	}
	return &user, nil
}

// ListRemoteRepositories returns the authenticated user's repositories.
func (s *MuseService) ListRemoteRepositories(token string) ([]model.RemoteRepository, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: no token", ErrAuth)
	}
	return s.remote.ListRepositories(token)
}

// ListBranches returns a repository's branch names. A failed listing degrades
// to an empty slice — callers fall back to a default branch — because the
// call is non-critical and the error is not actionable mid-flow.
func (s *MuseService) ListBranches(repo, token string) []string {
	branches, err := s.remote.ListBranches(repo, token)
	if err != nil {
		s.logger.Warn("branch listing failed", "repo", repo, "error", err)
		return nil
	}
	return branches
}

// ImportResult reports what a repository import or branch switch downloaded.
type ImportResult struct {
	Project    *model.Project
	Relinked   bool // an existing project for this repo was reused
	Eligible   int  // files passing the allow-list
	Downloaded int
	Truncated  int // eligible files skipped by the MaxFiles cap
	Failed     int // blob fetches that errored and were skipped
}

// ImportRepository creates a project linked to (repo, branch) and downloads
// the branch's eligible files into it. The project is created and persisted
// with an initialized, empty commit log before any content is fetched, so it
// is visible immediately. When a project already tracks the repo it is reused
// and relinked to the requested branch instead of duplicated.
func (s *MuseService) ImportRepository(repo, branch, token string) (*ImportResult, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: no token", ErrAuth)
	}

	projects, err := s.loadProjects()
	if err != nil {
		return nil, err
	}

	for _, p := range projects {
		if p.Remote.Repo != repo {
			continue
		}
		if p.Remote.Branch != branch {
			p.Remote.Branch = branch
			p.UpdatedAt = s.clock.Now()
			if err := s.saveProjects(projects); err != nil {
				return nil, err
			}
		}
		s.logger.Info("repository already imported", "repo", repo, "project", p.ID)
		return &ImportResult{Project: p, Relinked: true}, nil
	}

	now := s.clock.Now()
	name := repo
	if i := strings.LastIndex(repo, "/"); i >= 0 {
		name = repo[i+1:]
	}
	p := &model.Project{
		ID:          "github_" + strconv.FormatInt(now.UnixMilli(), 10),
		Name:        name,
		Description: fmt.Sprintf("Imported from GitHub: %s (%s)", repo, branch),
		Files:       map[string]model.FileRecord{},
		GitData:     model.CommitLog{Initialized: true, Commits: []model.Commit{}},
		Remote:      model.RemoteLink{Repo: repo, Branch: branch},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	projects[p.ID] = p
	if err := s.saveProjects(projects); err != nil {
		return nil, err
	}

	res, err := s.fetchBranchFiles(p.ID, repo, branch, token)
	if err != nil {
		return nil, err
	}

	if err := s.appendImportCommit(p.ID, repo, branch); err != nil {
		return nil, err
	}

	// Re-read: the pipeline persisted batches behind our back.
	res.Project, err = s.GetProject(p.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("repository imported", "repo", repo, "branch", branch,
		"downloaded", res.Downloaded, "truncated", res.Truncated, "failed", res.Failed)
	return res, nil
}

// appendImportCommit synthesizes the baseline commit whose snapshot equals
// the freshly downloaded file set, so history starts from the import.
func (s *MuseService) appendImportCommit(projectID, repo, branch string) error {
	projects, err := s.loadProjects()
	if err != nil {
		return err
	}
	p, ok := projects[projectID]
	if !ok {
		return fmt.Errorf("%w: unknown project %q", ErrValidation, projectID)
	}

	commit := model.Commit{
		ID:        s.idgen.New(),
		Message:   fmt.Sprintf("Import %s@%s", repo, branch),
		Timestamp: s.clock.Now(),
		Files:     model.CloneFiles(p.Files),
		Branch:    branch,
		Import:    true,
	}
	p.GitData.Commits = append(p.GitData.Commits, commit)
	return s.saveProjects(projects)
}

// blobResult is one file's outcome within a fetch batch.
type blobResult struct {
	path    string
	content string
	size    int64
	err     error
}

// fetchBranchFiles runs the shared download pipeline: tree fetch, allow-list
// filter, MaxFiles cap, batched blob fetch, decode, and per-batch persistence
// so a failure partway through keeps already-downloaded files.
func (s *MuseService) fetchBranchFiles(projectID, repo, branch, token string) (*ImportResult, error) {
	tree, err := s.remote.GetTree(repo, branch, token)
	if err != nil {
		return nil, err
	}

	var eligible []TreeEntry
	for _, e := range tree {
		if e.Type == "blob" && s.policy.Allows(e.Path) {
			eligible = append(eligible, e)
		}
	}

	res := &ImportResult{Eligible: len(eligible)}
	if len(eligible) > s.policy.MaxFiles {
		res.Truncated = len(eligible) - s.policy.MaxFiles
		eligible = eligible[:s.policy.MaxFiles]
	}

	batch := s.policy.BatchSize
	if batch < 1 {
		batch = 1
	}
	for start := 0; start < len(eligible); start += batch {
		end := start + batch
		if end > len(eligible) {
			end = len(eligible)
		}

		results := make([]blobResult, end-start)
		var wg sync.WaitGroup
		for i, entry := range eligible[start:end] {
			wg.Add(1)
			go func(i int, entry TreeEntry) {
				defer wg.Done()
				content, err := s.remote.GetBlob(entry.URL, token)
				results[i] = blobResult{path: entry.Path, content: content, size: entry.Size, err: err}
			}(i, entry)
		}
		wg.Wait()

		// Persist the batch before fetching the next one. A failed fetch is
		// logged and skipped, not retried.
		projects, err := s.loadProjects()
		if err != nil {
			return nil, err
		}
		p, ok := projects[projectID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown project %q", ErrValidation, projectID)
		}
		now := s.clock.Now()
		for _, r := range results {
			if r.err != nil {
				s.logger.Warn("blob fetch failed", "repo", repo, "path", r.path, "error", r.err)
				res.Failed++
				continue
			}
			p.Files[r.path] = model.FileRecord{
				Filename:     r.path,
				Content:      r.content,
				LastModified: now,
				Size:         int64(len(r.content)),
			}
			res.Downloaded++
		}
		p.UpdatedAt = now
		if err := s.saveProjects(projects); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// Push uploads the latest commit's snapshot to the tracked branch, one file
// at a time with the host's optimistic-concurrency token attached when the
// file already exists remotely. The push stops at the first failing file; on
// full success the commit is stamped as pushed. All preconditions are checked
// before any network call.
func (s *MuseService) Push(projectID, token string) (int, error) {
	if token == "" {
		return 0, fmt.Errorf("%w: no token", ErrAuth)
	}

	p, err := s.GetProject(projectID)
	if err != nil {
		return 0, err
	}
	if !p.Remote.Linked() {
		return 0, fmt.Errorf("%w: project %q", ErrNotLinked, projectID)
	}
	if p.Remote.Branch == "" {
		return 0, fmt.Errorf("%w: no branch selected", ErrNotLinked)
	}
	if !p.GitData.Initialized || len(p.GitData.Commits) == 0 {
		return 0, fmt.Errorf("%w: nothing to push", ErrNoCommits)
	}

	latest := p.GitData.Commits[len(p.GitData.Commits)-1]
	branch := p.Remote.Branch

	paths := make([]string, 0, len(latest.Files))
	for path := range latest.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	pushed := 0
	for _, path := range paths {
		rec := latest.Files[path]

		// Absence of a SHA means the file does not exist remotely yet; a
		// failed lookup degrades the same way and the PUT decides.
		sha, err := s.remote.GetContentSHA(p.Remote.Repo, path, branch, token)
		if err != nil {
			s.logger.Warn("content lookup failed", "path", path, "error", err)
			sha = ""
		}

		req := PutContentRequest{
			Message: latest.Message,
			Content: rec.Content,
			SHA:     sha,
		}
		if err := s.remote.PutContent(p.Remote.Repo, path, branch, token, req); err != nil {
			return pushed, fmt.Errorf("pushing %s: %w", path, err)
		}
		pushed++
		s.logger.Debug("file pushed", "path", path, "update", sha != "")
	}

	if err := s.MarkPushed(projectID, latest.ID, branch); err != nil {
		return pushed, err
	}

	s.logger.Info("commit pushed", "project", projectID, "commit", latest.ID, "files", pushed, "branch", branch)
	return pushed, nil
}

// SwitchCheck summarizes what a branch switch would clobber. Both signals are
// advisory: the caller surfaces them for confirmation, nothing blocks.
type SwitchCheck struct {
	UnpushedCommits int
	ActiveFile      string // the session's open file in this project, if any
}

// CheckSwitch reports the advisory state a caller should confirm before a
// branch switch.
func (s *MuseService) CheckSwitch(projectID string) (*SwitchCheck, error) {
	p, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	check := &SwitchCheck{}
	for _, c := range p.GitData.Commits {
		if !c.Pushed {
			check.UnpushedCommits++
		}
	}
	sess, err := s.Session()
	if err != nil {
		return nil, err
	}
	if sess.CurrentProject == projectID {
		check.ActiveFile = sess.CurrentFile
	}
	return check, nil
}

// SwitchBranch repoints the project at another branch of its remote and
// replaces the entire local file map with that branch's content through the
// same pipeline as import. A branch with zero eligible files leaves the map
// empty. If the session's open file survives the switch it stays active,
// otherwise the active file is cleared.
func (s *MuseService) SwitchBranch(projectID, newBranch, token string) (*ImportResult, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: no token", ErrAuth)
	}

	projects, err := s.loadProjects()
	if err != nil {
		return nil, err
	}
	p, ok := projects[projectID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown project %q", ErrValidation, projectID)
	}
	if !p.Remote.Linked() {
		return nil, fmt.Errorf("%w: project %q", ErrNotLinked, projectID)
	}

	sess, err := s.Session()
	if err != nil {
		return nil, err
	}
	openFile := ""
	if sess.CurrentProject == projectID {
		openFile = sess.CurrentFile
	}

	// Persist the branch selection, then destructively replace the file map.
	p.Remote.Branch = newBranch
	p.Files = map[string]model.FileRecord{}
	p.UpdatedAt = s.clock.Now()
	if err := s.saveProjects(projects); err != nil {
		return nil, err
	}

	res, err := s.fetchBranchFiles(projectID, p.Remote.Repo, newBranch, token)
	if err != nil {
		return nil, err
	}

	res.Project, err = s.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	if openFile != "" {
		if _, survived := res.Project.Files[openFile]; survived {
			if err := s.setActiveFile(projectID, openFile); err != nil {
				return nil, err
			}
		} else if err := s.detachSession(projectID, openFile); err != nil {
			return nil, err
		}
	}

	s.logger.Info("branch switched", "project", projectID, "branch", newBranch,
		"downloaded", res.Downloaded, "truncated", res.Truncated)
	return res, nil
}
