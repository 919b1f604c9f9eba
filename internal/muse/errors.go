package muse

import "errors"

// Error taxonomy for the store and the sync client. Callers match with
// errors.Is and translate into user-facing messages.
var (
	// ErrValidation means bad user input: empty name, missing filename,
	// unknown project id. Recoverable — retry with corrected input.
	ErrValidation = errors.New("invalid input")

	// ErrConflict means a name or path collision.
	ErrConflict = errors.New("name already exists")

	// ErrPrecondition means the operation is not valid in the current state,
	// e.g. commit before init or commit with no active file.
	ErrPrecondition = errors.New("operation not allowed in current state")

	// ErrAuth means the remote credential is missing or invalid.
	ErrAuth = errors.New("missing or invalid token")

	// ErrNotLinked means the project has no remote repository association.
	ErrNotLinked = errors.New("project is not linked to a remote repository")

	// ErrNetwork means a remote request returned a non-2xx response or failed
	// at the transport level. The host's status text is carried in the wrap.
	ErrNetwork = errors.New("remote request failed")

	// ErrNoCommits means a push was attempted against an empty commit log.
	ErrNoCommits = errors.New("commit log is empty")
)
