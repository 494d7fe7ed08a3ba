// Package keybackend provides SecretStore implementations for the keys that
// sign and verify presigned object URLs.
package keybackend

import (
	"fmt"
	"sort"

	"github.com/Rifqialba/urilaga"
)

// MapSecretStore retrieves keys from an in-memory map.
// Suitable for configuration file-based key storage.
type MapSecretStore struct {
	keys map[string]string
}

// NewMapSecretStore creates a new map-based secret store with the given access key to secret key mapping.
func NewMapSecretStore(keys map[string]string) *MapSecretStore {
	return &MapSecretStore{keys: keys}
}

// Lookup retrieves the secret key for the given access key from the map.
// A missing key wraps both ErrKeyNotFound and urilaga.ErrUnauthorized.
func (s *MapSecretStore) Lookup(accessKey string) (string, error) {
	secretKey, found := s.keys[accessKey]
	if !found {
		return "", fmt.Errorf("lookup %q: %w: %w", accessKey, ErrKeyNotFound, urilaga.ErrUnauthorized)
	}
	return secretKey, nil
}

// AccessKeys returns the configured access keys in sorted order.
func (s *MapSecretStore) AccessKeys() []string {
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SigningKey returns the key pair used to sign new URLs. When accessKey is
// empty and the store holds exactly one key, that key is used.
func (s *MapSecretStore) SigningKey(accessKey string) (KeyPair, error) {
	if accessKey == "" {
		if len(s.keys) != 1 {
			return KeyPair{}, fmt.Errorf("signing key: %w: set signing.access_key to pick one of %d keys", ErrNoSigningKey, len(s.keys))
		}
		accessKey = s.AccessKeys()[0]
	}

	secretKey, err := s.Lookup(accessKey)
	if err != nil {
		return KeyPair{}, fmt.Errorf("signing key: %w", err)
	}

	return KeyPair{AccessKey: accessKey, SecretKey: secretKey}, nil
}
