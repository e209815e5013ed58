package auth

import (
	"crypto/subtle"
	"fmt"

	"github.com/privascope-ai/privascope/internal/config"
)

// Keyring holds the set of API keys allowed to call the service.
// When auth is disabled the keyring accepts everything.
type Keyring struct {
	enabled bool
	keys    map[string]struct{}
}

// NewFromConfig builds a Keyring from the loaded config.
func NewFromConfig(cfg *config.Config) (*Keyring, error) {
	k := &Keyring{
		enabled: cfg.Security.Enabled,
		keys:    make(map[string]struct{}),
	}

	if !k.enabled {
		return k, nil
	}

	for _, key := range cfg.Security.APIKeys {
		if key == "" {
			return nil, fmt.Errorf("empty api key in security.api_keys")
		}
		k.keys[key] = struct{}{}
	}

	return k, nil
}

// Enabled reports whether callers must present a key.
func (k *Keyring) Enabled() bool {
	return k != nil && k.enabled
}

// Allow reports whether the presented key is accepted.
func (k *Keyring) Allow(key string) bool {
	if !k.Enabled() {
		return true
	}
	if key == "" {
		return false
	}
	for candidate := range k.keys {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(key)) == 1 {
			return true
		}
	}
	return false
}
