package encryption

import (
	"fmt"

	"muse-go/internal/config"
	"muse-go/internal/muse"
)

// NewSealerFromConfig creates a TokenSealer based on the configuration type.
func NewSealerFromConfig(cfg config.EncryptionConfig) (muse.TokenSealer, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeSealer(cfg), nil
	case "test":
		return NewTestSealer(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
