package app

import (
	"fmt"
	"os"
	"time"

	"muse-go/internal/config"
	"muse-go/internal/encryption"
	"muse-go/internal/github"
	"muse-go/internal/kv"
	"muse-go/internal/muse"
)

// MuseApp is the application layer between the CLI and MuseService. It
// constructs all dependencies from config, runs the one-time legacy schema
// migration, and manages the store lifecycle on Close.
type MuseApp struct {
	cfg     *config.Config
	store   muse.Store
	sealer  muse.TokenSealer
	service *muse.MuseService
	logFile *os.File
}

// NewMuseApp creates a fully wired MuseApp from the given config.
// operation identifies the CLI command being run (e.g. "Commit", "Push").
// The caller must call Close when done.
func NewMuseApp(cfg *config.Config, operation string, verbose bool) (*MuseApp, error) {
	store, err := kv.NewStoreFromConfig(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	sealer, err := encryption.NewSealerFromConfig(cfg.Encryption)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating token sealer: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z") + "-" + operation
	logger, logFile, err := newLogger(cfg.LogDir, opID, verbose)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	remote := github.NewClient(cfg.Remote.APIBaseURL)
	policy := muse.SyncPolicy{
		AllowedFiles:     cfg.Remote.AllowedFiles,
		MaxFiles:         cfg.Remote.MaxFiles,
		BatchSize:        cfg.Remote.BatchSize,
		DefaultExtension: cfg.Remote.DefaultExtension,
	}
	if len(policy.AllowedFiles) == 0 {
		policy = muse.DefaultSyncPolicy()
	}

	svc := muse.NewMuseService(store, remote, sealer, &slogAdapter{l: logger}, muse.RealClock{}, muse.UUIDGenerator{}, policy)

	if err := svc.MigrateLegacy(); err != nil {
		logFile.Close()
		store.Close()
		return nil, fmt.Errorf("migrating legacy schema: %w", err)
	}

	return &MuseApp{
		cfg:     cfg,
		store:   store,
		sealer:  sealer,
		service: svc,
		logFile: logFile,
	}, nil
}

// Service returns the wired MuseService.
func (a *MuseApp) Service() *muse.MuseService { return a.service }

// Config returns the config the app was built from.
func (a *MuseApp) Config() *config.Config { return a.cfg }

// Sealer returns the token sealer, for key setup during auth commands.
func (a *MuseApp) Sealer() muse.TokenSealer { return a.sealer }

// Close releases the store and the log file.
func (a *MuseApp) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = err
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
