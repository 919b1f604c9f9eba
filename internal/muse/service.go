package muse

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"muse-go/internal/model"
)

// MuseService is the orchestration layer over the key-value store and the
// remote host. It owns project/file CRUD, the per-project commit log, and the
// one-way remote synchronization protocol.
type MuseService struct {
	store  Store
	remote RemoteHost
	sealer TokenSealer
	logger Logger
	clock  Clock
	idgen  IDGenerator
	policy SyncPolicy
}

// SyncPolicy bounds remote fetches and controls filename normalization.
type SyncPolicy struct {
	// AllowedFiles lists eligible remote paths: entries starting with a dot
	// match by extension, anything else matches the exact base name.
	AllowedFiles []string

	// MaxFiles caps how many files one import or branch switch downloads.
	// Files beyond the cap are skipped and reported as truncated.
	MaxFiles int

	// BatchSize is the concurrency width for blob fetches. Fetches within a
	// batch run concurrently; batches run sequentially.
	BatchSize int

	// DefaultExtension is appended to extensionless filenames on save
	// (e.g. ".md"). Empty disables the policy. Files that already carry an
	// extension are never rewritten, so imported names survive round trips.
	DefaultExtension string
}

// DefaultSyncPolicy mirrors the browser extension's fixed constants.
func DefaultSyncPolicy() SyncPolicy {
	return SyncPolicy{
		AllowedFiles:     []string{".md", ".txt", "README", "LICENSE"},
		MaxFiles:         100,
		BatchSize:        5,
		DefaultExtension: ".md",
	}
}

// Allows reports whether a remote path is eligible for download.
func (p SyncPolicy) Allows(filePath string) bool {
	base := path.Base(filePath)
	ext := path.Ext(base)
	for _, a := range p.AllowedFiles {
		if strings.HasPrefix(a, ".") {
			if ext == a {
				return true
			}
		} else if base == a {
			return true
		}
	}
	return false
}

// NewMuseService creates a MuseService with the provided dependencies.
// remote and sealer may be nil for callers that only touch local state.
func NewMuseService(store Store, remote RemoteHost, sealer TokenSealer, logger Logger, clock Clock, idgen IDGenerator, policy SyncPolicy) *MuseService {
	return &MuseService{
		store:  store,
		remote: remote,
		sealer: sealer,
		logger: logger,
		clock:  clock,
		idgen:  idgen,
		policy: policy,
	}
}

// loadProjects reads the whole projects map. An absent key yields an empty
// map; a malformed payload is an error, never trusted partially.
func (s *MuseService) loadProjects() (map[string]*model.Project, error) {
	raw, ok, err := s.store.Get(keyProjects)
	if err != nil {
		return nil, fmt.Errorf("reading projects: %w", err)
	}
	if !ok {
		return map[string]*model.Project{}, nil
	}

	var projects map[string]*model.Project
	if err := json.Unmarshal(raw, &projects); err != nil {
		return nil, fmt.Errorf("decoding projects: %w", err)
	}
	for id, p := range projects {
		if p.Files == nil {
			p.Files = map[string]model.FileRecord{}
		}
		if p.ID == "" {
			p.ID = id
		}
	}
	return projects, nil
}

// saveProjects persists the whole projects map back in one write. There are
// no partial writes; payloads are small (plain-text notes).
func (s *MuseService) saveProjects(projects map[string]*model.Project) error {
	raw, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("encoding projects: %w", err)
	}
	if err := s.store.Set(keyProjects, raw); err != nil {
		return fmt.Errorf("writing projects: %w", err)
	}
	return nil
}

// MigrateLegacy converts the pre-multi-project schema (top-level "files" and
// "gitData" keys) into a default project. It runs once at startup: when the
// projects key already exists the legacy keys are ignored, and after a
// successful conversion they are deleted and never consulted again.
func (s *MuseService) MigrateLegacy() error {
	_, haveProjects, err := s.store.Get(keyProjects)
	if err != nil {
		return fmt.Errorf("checking projects key: %w", err)
	}

	rawFiles, haveFiles, err := s.store.Get(keyLegacyFiles)
	if err != nil {
		return fmt.Errorf("checking legacy files key: %w", err)
	}
	if haveProjects || !haveFiles {
		return nil
	}

	var files map[string]model.FileRecord
	if err := json.Unmarshal(rawFiles, &files); err != nil {
		return fmt.Errorf("decoding legacy files: %w", err)
	}

	gitData := model.CommitLog{}
	if rawGit, haveGit, err := s.store.Get(keyLegacyGitData); err != nil {
		return fmt.Errorf("checking legacy git data: %w", err)
	} else if haveGit {
		if err := json.Unmarshal(rawGit, &gitData); err != nil {
			return fmt.Errorf("decoding legacy git data: %w", err)
		}
	}

	now := s.clock.Now()
	projects := map[string]*model.Project{
		DefaultProjectID: {
			ID:          DefaultProjectID,
			Name:        "Default Project",
			Description: "Migrated from the single-project schema",
			Files:       files,
			GitData:     gitData,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	if err := s.saveProjects(projects); err != nil {
		return err
	}

	if err := s.store.Delete(keyLegacyFiles); err != nil {
		return fmt.Errorf("removing legacy files key: %w", err)
	}
	if err := s.store.Delete(keyLegacyGitData); err != nil {
		return fmt.Errorf("removing legacy git data key: %w", err)
	}

	s.logger.Info("legacy schema migrated", "files", len(files), "commits", len(gitData.Commits))
	return nil
}
