package encryption

import (
	"bytes"
	"fmt"

	"muse-go/internal/muse"
)

// testHeader makes sealed output clearly different from plaintext while
// remaining deterministic and reversible.
var testHeader = []byte("MUSE\x00SEAL")

// TestSealer is a simple, deterministic sealer for testing. It prepends a
// fixed header when sealing and strips it when opening; the passphrase is
// ignored.
type TestSealer struct {
	setupCalled bool
}

var _ muse.TokenSealer = (*TestSealer)(nil)

// NewTestSealer creates a new TestSealer.
func NewTestSealer() *TestSealer {
	return &TestSealer{}
}

func (e *TestSealer) Setup(passphrase string) error {
	e.setupCalled = true
	return nil
}

func (e *TestSealer) Seal(plaintext []byte) ([]byte, error) {
	out := make([]byte, 0, len(testHeader)+len(plaintext))
	out = append(out, testHeader...)
	return append(out, plaintext...), nil
}

func (e *TestSealer) Open(ciphertext []byte, passphrase string) ([]byte, error) {
	if !bytes.HasPrefix(ciphertext, testHeader) {
		return nil, fmt.Errorf("invalid test seal header")
	}
	return ciphertext[len(testHeader):], nil
}

func (e *TestSealer) IsConfigured() bool { return true }
