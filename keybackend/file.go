package keybackend

import (
	"encoding/json"
	"fmt"
	"os"
)

// KeyPair is one signing credential.
type KeyPair struct {
	AccessKey string `json:"access_key" mapstructure:"access_key"`
	SecretKey string `json:"secret_key" mapstructure:"secret_key"`
}

func (p KeyPair) complete() bool {
	return p.AccessKey != "" && p.SecretKey != ""
}

// LoadKeysFromFile reads a JSON array of key pairs:
//
//	[
//	  {"access_key": "gallery-2024", "secret_key": "7f1c..."},
//	  {"access_key": "gallery-2023", "secret_key": "a90e..."}
//	]
//
// Retired keys stay in the file so URLs signed before a rotation keep
// verifying. Incomplete pairs are skipped. Listing one access key twice is
// allowed only when both entries carry the same secret.
func LoadKeysFromFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from the server config
	if err != nil {
		return nil, fmt.Errorf("read keys file: %w", err)
	}

	var pairs []KeyPair
	if err = json.Unmarshal(raw, &pairs); err != nil {
		return nil, fmt.Errorf("parse keys file %s: %w", path, err)
	}

	keys := make(map[string]string, len(pairs))
	for i, p := range pairs {
		if !p.complete() {
			continue
		}
		if prev, seen := keys[p.AccessKey]; seen && prev != p.SecretKey {
			return nil, fmt.Errorf("parse keys file %s: entry %d: %w %q", path, i, ErrConflictingKey, p.AccessKey)
		}
		keys[p.AccessKey] = p.SecretKey
	}

	return keys, nil
}
