package muse

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"muse-go/internal/model"
)

// DefaultProjectID is the project that is lazily created when a file is saved
// with no project designated.
const DefaultProjectID = "default"

// CreateProject creates a new empty project. The name must be non-empty after
// trimming; the description may be empty.
func (s *MuseService) CreateProject(name, description string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is empty", ErrValidation)
	}

	projects, err := s.loadProjects()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	p := &model.Project{
		ID:          "project_" + strconv.FormatInt(now.UnixMilli(), 10),
		Name:        name,
		Description: strings.TrimSpace(description),
		Files:       map[string]model.FileRecord{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	projects[p.ID] = p
	if err := s.saveProjects(projects); err != nil {
		return nil, err
	}

	s.logger.Info("project created", "id", p.ID, "name", p.Name)
	return p, nil
}

// GetProject returns one project by id.
func (s *MuseService) GetProject(id string) (*model.Project, error) {
	projects, err := s.loadProjects()
	if err != nil {
		return nil, err
	}
	p, ok := projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown project %q", ErrValidation, id)
	}
	return p, nil
}

// ListProjects returns all projects sorted by name, then id for stability.
func (s *MuseService) ListProjects() ([]*model.Project, error) {
	projects, err := s.loadProjects()
	if err != nil {
		return nil, err
	}

	out := make([]*model.Project, 0, len(projects))
	for _, p := range projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// SearchProjects returns projects whose name or any filename contains the
// query, case-insensitive. An empty query returns all projects.
func (s *MuseService) SearchProjects(query string) ([]*model.Project, error) {
	all, err := s.ListProjects()
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all, nil
	}

	var out []*model.Project
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), query) {
			out = append(out, p)
			continue
		}
		for name := range p.Files {
			if strings.Contains(strings.ToLower(name), query) {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

// Stats summarizes the store for display.
type Stats struct {
	Projects int
	Files    int
	Commits  int
}

// GetStats counts projects, files and commits across the store.
func (s *MuseService) GetStats() (Stats, error) {
	projects, err := s.loadProjects()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Projects: len(projects)}
	for _, p := range projects {
		st.Files += len(p.Files)
		st.Commits += len(p.GitData.Commits)
	}
	return st, nil
}

// RenameProject updates a project's name. A name that is empty after trimming
// or equal to the current name is a no-op, not an error.
func (s *MuseService) RenameProject(id, newName string) error {
	projects, err := s.loadProjects()
	if err != nil {
		return err
	}
	p, ok := projects[id]
	if !ok {
		return fmt.Errorf("%w: unknown project %q", ErrValidation, id)
	}

	newName = strings.TrimSpace(newName)
	if newName == "" || newName == p.Name {
		return nil
	}

	p.Name = newName
	p.UpdatedAt = s.clock.Now()
	if err := s.saveProjects(projects); err != nil {
		return err
	}

	s.logger.Info("project renamed", "id", id, "name", newName)
	return nil
}

// DeleteProject removes a project with all its files and commits. The loss is
// irrecoverable; confirming destructive intent is the caller's concern.
func (s *MuseService) DeleteProject(id string) error {
	projects, err := s.loadProjects()
	if err != nil {
		return err
	}
	if _, ok := projects[id]; !ok {
		return fmt.Errorf("%w: unknown project %q", ErrValidation, id)
	}

	delete(projects, id)
	if err := s.saveProjects(projects); err != nil {
		return err
	}
	if err := s.detachSession(id, ""); err != nil {
		return err
	}

	s.logger.Info("project deleted", "id", id)
	return nil
}

// normalizeFilename trims the name and applies the default-extension policy:
// a name with no extension gets the configured suffix appended. Names that
// already carry any extension pass through unchanged.
func (s *MuseService) normalizeFilename(filename string) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", fmt.Errorf("%w: filename is empty", ErrValidation)
	}
	if s.policy.DefaultExtension != "" && path.Ext(filename) == "" {
		filename += s.policy.DefaultExtension
	}
	return filename, nil
}

// SaveFile upserts a file's content. With an empty projectID the session's
// current project is used, and when none is designated a default project is
// lazily created. The saved file becomes the session's active file.
func (s *MuseService) SaveFile(projectID, filename, content string) (*model.FileRecord, error) {
	filename, err := s.normalizeFilename(filename)
	if err != nil {
		return nil, err
	}

	projects, err := s.loadProjects()
	if err != nil {
		return nil, err
	}

	if projectID == "" {
		sess, err := s.Session()
		if err != nil {
			return nil, err
		}
		projectID = sess.CurrentProject
	}

	now := s.clock.Now()
	p, ok := projects[projectID]
	if !ok {
		if projectID != "" && projectID != DefaultProjectID {
			return nil, fmt.Errorf("%w: unknown project %q", ErrValidation, projectID)
		}
		projectID = DefaultProjectID
		p = projects[DefaultProjectID]
		if p == nil {
			p = &model.Project{
				ID:          DefaultProjectID,
				Name:        "Default Project",
				Description: "Automatically created default project",
				Files:       map[string]model.FileRecord{},
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			projects[DefaultProjectID] = p
		}
	}

	rec := model.FileRecord{
		Filename:     filename,
		Content:      content,
		LastModified: now,
		Size:         int64(len(content)),
	}
	p.Files[filename] = rec
	p.UpdatedAt = now

	if err := s.saveProjects(projects); err != nil {
		return nil, err
	}
	if err := s.setActiveFile(projectID, filename); err != nil {
		return nil, err
	}

	s.logger.Info("file saved", "project", projectID, "file", filename, "size", rec.Size)
	return &rec, nil
}

// GetFile returns one file record.
func (s *MuseService) GetFile(projectID, filename string) (*model.FileRecord, error) {
	p, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	rec, ok := p.Files[filename]
	if !ok {
		return nil, fmt.Errorf("%w: no file %q in project %q", ErrValidation, filename, projectID)
	}
	return &rec, nil
}

// RenameFile moves a file record to a new name. The new name goes through the
// same normalization as SaveFile and must not collide with an existing file.
func (s *MuseService) RenameFile(projectID, oldName, newName string) error {
	newName, err := s.normalizeFilename(newName)
	if err != nil {
		return err
	}
	if newName == oldName {
		return nil
	}

	projects, err := s.loadProjects()
	if err != nil {
		return err
	}
	p, ok := projects[projectID]
	if !ok {
		return fmt.Errorf("%w: unknown project %q", ErrValidation, projectID)
	}

	rec, ok := p.Files[oldName]
	if !ok {
		return fmt.Errorf("%w: no file %q in project %q", ErrValidation, oldName, projectID)
	}
	if _, exists := p.Files[newName]; exists {
		return fmt.Errorf("%w: file %q", ErrConflict, newName)
	}

	rec.Filename = newName
	p.Files[newName] = rec
	delete(p.Files, oldName)
	p.UpdatedAt = s.clock.Now()

	if err := s.saveProjects(projects); err != nil {
		return err
	}
	if err := s.renameSessionFile(projectID, oldName, newName); err != nil {
		return err
	}

	s.logger.Info("file renamed", "project", projectID, "from", oldName, "to", newName)
	return nil
}

// DeleteFile removes a file. Deleting an absent file is a no-op.
func (s *MuseService) DeleteFile(projectID, filename string) error {
	projects, err := s.loadProjects()
	if err != nil {
		return err
	}
	p, ok := projects[projectID]
	if !ok {
		return fmt.Errorf("%w: unknown project %q", ErrValidation, projectID)
	}
	if _, exists := p.Files[filename]; !exists {
		return nil
	}

	delete(p.Files, filename)
	p.UpdatedAt = s.clock.Now()

	if err := s.saveProjects(projects); err != nil {
		return err
	}
	if err := s.detachSession(projectID, filename); err != nil {
		return err
	}

	s.logger.Info("file deleted", "project", projectID, "file", filename)
	return nil
}

// ListFiles returns a copy of a project's path → record mapping.
func (s *MuseService) ListFiles(projectID string) (map[string]model.FileRecord, error) {
	p, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	return model.CloneFiles(p.Files), nil
}
