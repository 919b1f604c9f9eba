package muse

import (
	"fmt"

	"muse-go/internal/model"
)

// The browser extension passed its editing context between surfaces through
// shared storage keys. The same keys carry the active project/file across CLI
// invocations, replacing the extension's ambient globals with explicit state.

// Session returns the current editing context.
func (s *MuseService) Session() (model.Session, error) {
	var sess model.Session
	var err error
	if sess.CurrentProject, err = s.getStringKey(keyCurrentProject); err != nil {
		return model.Session{}, err
	}
	if sess.CurrentFile, err = s.getStringKey(keyCurrentFile); err != nil {
		return model.Session{}, err
	}
	if sess.LastFile, err = s.getStringKey(keyLastFile); err != nil {
		return model.Session{}, err
	}
	return sess, nil
}

// OpenFile marks a file as the active editing context and returns its record.
func (s *MuseService) OpenFile(projectID, filename string) (*model.FileRecord, error) {
	rec, err := s.GetFile(projectID, filename)
	if err != nil {
		return nil, err
	}
	if err := s.setActiveFile(projectID, filename); err != nil {
		return nil, err
	}
	return rec, nil
}

// CloseFile clears the active file but keeps lastFile for later restore.
func (s *MuseService) CloseFile() error {
	if err := s.store.Delete(keyCurrentFile); err != nil {
		return fmt.Errorf("clearing current file: %w", err)
	}
	return nil
}

func (s *MuseService) getStringKey(key string) (string, error) {
	raw, ok, err := s.store.Get(key)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	if !ok {
		return "", nil
	}
	return string(raw), nil
}

func (s *MuseService) setActiveFile(projectID, filename string) error {
	if err := s.store.Set(keyCurrentProject, []byte(projectID)); err != nil {
		return fmt.Errorf("writing current project: %w", err)
	}
	if err := s.store.Set(keyCurrentFile, []byte(filename)); err != nil {
		return fmt.Errorf("writing current file: %w", err)
	}
	if err := s.store.Set(keyLastFile, []byte(filename)); err != nil {
		return fmt.Errorf("writing last file: %w", err)
	}
	return nil
}

// detachSession clears session references that point at a deleted project or
// file. An empty filename matches the whole project.
func (s *MuseService) detachSession(projectID, filename string) error {
	sess, err := s.Session()
	if err != nil {
		return err
	}
	if sess.CurrentProject != projectID {
		return nil
	}
	if filename != "" && sess.CurrentFile != filename {
		return nil
	}

	keys := []string{keyCurrentFile, keyLastFile}
	if filename == "" {
		keys = append(keys, keyCurrentProject)
	}
	for _, k := range keys {
		if err := s.store.Delete(k); err != nil {
			return fmt.Errorf("clearing %s: %w", k, err)
		}
	}
	return nil
}

func (s *MuseService) renameSessionFile(projectID, oldName, newName string) error {
	sess, err := s.Session()
	if err != nil {
		return err
	}
	if sess.CurrentProject != projectID || sess.CurrentFile != oldName {
		return nil
	}
	return s.setActiveFile(projectID, newName)
}
