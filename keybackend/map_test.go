package keybackend_test

import (
	"testing"

	"github.com/Rifqialba/urilaga"
	"github.com/Rifqialba/urilaga/keybackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapSecretStore_Lookup(t *testing.T) {
	tests := []struct {
		name      string
		keys      map[string]string
		accessKey string
		wantKey   string
		wantErr   bool
	}{
		{
			name: "returns secret key when access key exists",
			keys: map[string]string{
				"access1": "secret1",
				"access2": "secret2",
			},
			accessKey: "access1",
			wantKey:   "secret1",
		},
		{
			name:      "missing access key",
			keys:      map[string]string{"access1": "secret1"},
			accessKey: "nonexistent",
			wantErr:   true,
		},
		{
			name:      "empty store",
			keys:      map[string]string{},
			accessKey: "anykey",
			wantErr:   true,
		},
		{
			name:      "nil store",
			keys:      nil,
			accessKey: "anykey",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := keybackend.NewMapSecretStore(tt.keys)
			gotKey, err := store.Lookup(tt.accessKey)

			if tt.wantErr {
				require.ErrorIs(t, err, keybackend.ErrKeyNotFound)
				require.ErrorIs(t, err, urilaga.ErrUnauthorized)
				assert.Empty(t, gotKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, gotKey)
		})
	}
}

func TestMapSecretStore_SigningKey(t *testing.T) {
	t.Run("single key is picked implicitly", func(t *testing.T) {
		store := keybackend.NewMapSecretStore(map[string]string{"only": "s3cret"})

		pair, err := store.SigningKey("")
		require.NoError(t, err)
		assert.Equal(t, keybackend.KeyPair{AccessKey: "only", SecretKey: "s3cret"}, pair)
	})

	t.Run("explicit key among several", func(t *testing.T) {
		store := keybackend.NewMapSecretStore(map[string]string{"old": "a", "new": "b"})

		pair, err := store.SigningKey("new")
		require.NoError(t, err)
		assert.Equal(t, "b", pair.SecretKey)
	})

	t.Run("ambiguous without access key", func(t *testing.T) {
		store := keybackend.NewMapSecretStore(map[string]string{"old": "a", "new": "b"})

		_, err := store.SigningKey("")
		require.ErrorIs(t, err, keybackend.ErrNoSigningKey)
	})

	t.Run("empty store", func(t *testing.T) {
		store := keybackend.NewMapSecretStore(nil)

		_, err := store.SigningKey("")
		require.ErrorIs(t, err, keybackend.ErrNoSigningKey)
	})

	t.Run("unknown explicit key", func(t *testing.T) {
		store := keybackend.NewMapSecretStore(map[string]string{"old": "a"})

		_, err := store.SigningKey("missing")
		require.ErrorIs(t, err, keybackend.ErrKeyNotFound)
	})
}

func TestMapSecretStore_AccessKeysSorted(t *testing.T) {
	store := keybackend.NewMapSecretStore(map[string]string{"b": "1", "c": "2", "a": "3"})
	assert.Equal(t, []string{"a", "b", "c"}, store.AccessKeys())
}
