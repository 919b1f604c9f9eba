package muse

// Store is the key-value persistence substrate. Each call reads or writes one
// whole value atomically; there are no transactions across keys. Concurrent
// writers to the same key are last-write-wins at whole-value granularity.
type Store interface {
	// Get returns the value for key. The second return is false when the key
	// is absent; absence is not an error.
	Get(key string) ([]byte, bool, error)

	// Set writes the whole value for key, creating or replacing it.
	Set(key string, value []byte) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string) error

	// Close releases the underlying storage.
	Close() error
}

// Storage keys. The schema is shared with the original browser-extension
// store, so key names are kept verbatim.
const (
	// keyProjects holds the map of all projects, keyed by project id.
	keyProjects = "projects"

	// keyToken holds the sealed remote-host credential.
	keyToken = "githubToken"

	// keyUser caches the remote-host profile for the stored credential.
	keyUser = "githubUser"

	// keyCurrentProject and keyCurrentFile pass "open this file" intent
	// between invocations. keyLastFile restores state without a handoff.
	keyCurrentProject = "currentProject"
	keyCurrentFile    = "currentFile"
	keyLastFile       = "lastFile"

	// Legacy pre-multi-project schema, consumed once by MigrateLegacy.
	keyLegacyFiles   = "files"
	keyLegacyGitData = "gitData"
)
