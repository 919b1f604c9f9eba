package muse

// TokenSealer seals the remote credential for storage at rest and opens it
// again for use. Sealing uses the public key only; opening requires the
// passphrase that unlocks the private key.
type TokenSealer interface {
	// Setup performs one-time key generation. Generates a key pair, stores
	// the public key in plaintext, and locks the private key with the
	// provided passphrase.
	Setup(passphrase string) error

	// Seal encrypts plaintext with the public key.
	Seal(plaintext []byte) ([]byte, error)

	// Open unlocks the private key with the passphrase and decrypts
	// ciphertext. Returns an error if the passphrase is wrong.
	Open(ciphertext []byte, passphrase string) ([]byte, error)

	// IsConfigured returns true if the key material exists.
	IsConfigured() bool
}
