package muse

import (
	"fmt"
	"strings"

	"muse-go/internal/model"
)

// InitLog initializes a project's commit log. Re-running wipes prior history;
// that quirk is carried over from the original store and not hardened.
func (s *MuseService) InitLog(projectID string) error {
	projects, err := s.loadProjects()
	if err != nil {
		return err
	}
	p, ok := projects[projectID]
	if !ok {
		return fmt.Errorf("%w: unknown project %q", ErrValidation, projectID)
	}

	p.GitData = model.CommitLog{Initialized: true, Commits: []model.Commit{}}
	p.UpdatedAt = s.clock.Now()
	if err := s.saveProjects(projects); err != nil {
		return err
	}

	s.logger.Info("commit log initialized", "project", projectID)
	return nil
}

// Commit appends a snapshot of the project's full file map. It requires an
// initialized log, a non-empty message, and an active file in the session —
// precondition failures are reported before anything is mutated, so no
// partial state is ever persisted.
func (s *MuseService) Commit(projectID, message, branch string) (*model.Commit, error) {
	projects, err := s.loadProjects()
	if err != nil {
		return nil, err
	}
	p, ok := projects[projectID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown project %q", ErrValidation, projectID)
	}

	if !p.GitData.Initialized {
		return nil, fmt.Errorf("%w: commit log not initialized", ErrPrecondition)
	}
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: commit message is empty", ErrPrecondition)
	}
	sess, err := s.Session()
	if err != nil {
		return nil, err
	}
	if sess.CurrentFile == "" || sess.CurrentProject != projectID {
		return nil, fmt.Errorf("%w: no active file", ErrPrecondition)
	}

	if branch == "" {
		branch = p.Remote.Branch
	}
	commit := model.Commit{
		ID:        s.idgen.New(),
		Message:   strings.TrimSpace(message),
		Timestamp: s.clock.Now(),
		Files:     model.CloneFiles(p.Files),
		Branch:    branch,
	}

	p.GitData.Commits = append(p.GitData.Commits, commit)
	p.UpdatedAt = commit.Timestamp
	if err := s.saveProjects(projects); err != nil {
		return nil, err
	}

	s.logger.Info("commit created", "project", projectID, "commit", commit.ID, "files", len(commit.Files))
	return &commit, nil
}

// Log returns the project's commits, most recent first. The store appends in
// chronological order; display reverses it.
func (s *MuseService) Log(projectID string) ([]model.Commit, error) {
	p, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	commits := p.GitData.Commits
	out := make([]model.Commit, len(commits))
	for i, c := range commits {
		out[len(commits)-1-i] = c
	}
	return out, nil
}

// MarkPushed stamps a commit as pushed in place. A push never creates a new
// commit; the stamp is the only mutation a commit ever receives.
func (s *MuseService) MarkPushed(projectID, commitID, branch string) error {
	projects, err := s.loadProjects()
	if err != nil {
		return err
	}
	p, ok := projects[projectID]
	if !ok {
		return fmt.Errorf("%w: unknown project %q", ErrValidation, projectID)
	}

	for i := range p.GitData.Commits {
		c := &p.GitData.Commits[i]
		if c.ID != commitID {
			continue
		}
		c.Pushed = true
		c.PushedAt = s.clock.Now()
		c.PushedBranch = branch
		return s.saveProjects(projects)
	}
	return fmt.Errorf("%w: unknown commit %q", ErrValidation, commitID)
}

// Diff results that carry no line changes.
const (
	DiffNoChanges = "no differences"
	DiffNewFile   = "new file (not in the last commit)"
)

// Diff compares a file's content in the latest commit against its current
// live content and returns a formatted line diff.
func (s *MuseService) Diff(projectID, filename string) (string, error) {
	p, err := s.GetProject(projectID)
	if err != nil {
		return "", err
	}
	if !p.GitData.Initialized || len(p.GitData.Commits) == 0 {
		return "", fmt.Errorf("%w: no commits to diff against", ErrPrecondition)
	}

	rec, ok := p.Files[filename]
	if !ok {
		return "", fmt.Errorf("%w: no file %q in project %q", ErrValidation, filename, projectID)
	}

	last := p.GitData.Commits[len(p.GitData.Commits)-1]
	old, committed := last.Files[filename]
	if !committed {
		return DiffNewFile, nil
	}
	if old.Content == rec.Content {
		return DiffNoChanges, nil
	}
	return PositionalDiff(old.Content, rec.Content), nil
}
