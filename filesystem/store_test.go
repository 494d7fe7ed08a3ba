package filesystem_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rifqialba/urilaga"
	"github.com/Rifqialba/urilaga/filesystem"
)

func openRoot(t *testing.T) (string, *os.Root) {
	t.Helper()
	tempDir := t.TempDir()
	osDir, err := os.OpenRoot(tempDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = osDir.Close() })
	return tempDir, osDir
}

type stubSigner struct {
	method string
	path   string
	ttl    time.Duration
	err    error
}

func (s *stubSigner) Presign(method, urlPath string, ttl time.Duration) (string, error) {
	s.method, s.path, s.ttl = method, urlPath, ttl
	if s.err != nil {
		return "", s.err
	}
	return "http://localhost:3000" + urlPath + "?sig=x", nil
}

func TestStore_Get_Success(t *testing.T) {
	tempDir, osDir := openRoot(t)

	content := []byte("test content")
	err := os.WriteFile(filepath.Join(tempDir, "cat.png"), content, 0o644)
	require.NoError(t, err)

	store := filesystem.NewFileStorage(osDir)

	ctx := context.Background()
	result, info, err := store.Get(ctx, "cat.png")

	require.NoError(t, err)
	require.NotNil(t, result)

	readContent, err := io.ReadAll(result)
	assert.NoError(t, err)
	assert.Equal(t, content, readContent)
	assert.Equal(t, "cat.png", info.Name)
	assert.Equal(t, int64(len(content)), info.Size)
	assert.Equal(t, "image/png", info.ContentType)
	assert.False(t, info.LastModified.IsZero())

	err = result.Close()
	assert.NoError(t, err)
}

func TestStore_Get_ContextCanceled(t *testing.T) {
	_, osDir := openRoot(t)

	store := filesystem.NewFileStorage(osDir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, _, err := store.Get(ctx, "cat.png")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, context.Canceled, err)
}

func TestStore_Get_NotFound(t *testing.T) {
	_, osDir := openRoot(t)

	store := filesystem.NewFileStorage(osDir)

	tests := []string{"nonexistent.png", "../escape.png", "", ".tabc"}
	for _, name := range tests {
		t.Run(fmt.Sprintf("name=%q", name), func(t *testing.T) {
			result, _, err := store.Get(context.Background(), name)

			assert.Nil(t, result)
			assert.ErrorIs(t, err, urilaga.ErrNotFound)
		})
	}
}

func TestStore_Put_Success(t *testing.T) {
	tempDir, osDir := openRoot(t)

	store := filesystem.NewFileStorage(osDir)

	content := []byte("png bytes")
	ctx := context.Background()
	info, err := store.Put(ctx, "1700000000000-cat.png", "image/png", bytes.NewReader(content), int64(len(content)))

	require.NoError(t, err)
	assert.Equal(t, "1700000000000-cat.png", info.Name)
	assert.Equal(t, int64(len(content)), info.Size)
	assert.Equal(t, "image/png", info.ContentType)
	assert.Len(t, info.ETag, 64)

	written, err := os.ReadFile(filepath.Join(tempDir, "1700000000000-cat.png"))
	require.NoError(t, err)
	assert.Equal(t, content, written)
}

func TestStore_Put_DetectsContentType(t *testing.T) {
	_, osDir := openRoot(t)

	store := filesystem.NewFileStorage(osDir)

	info, err := store.Put(context.Background(), "a.jpg", "", strings.NewReader("x"), -1)

	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", info.ContentType)
}

func TestStore_Put_KeepsDeclaredContentType(t *testing.T) {
	tests := []struct {
		name        string
		object      string
		contentType string
		want        string
	}{
		{name: "no extension", object: "1700000000000-photo", contentType: "image/png", want: "image/png"},
		{name: "mislabelled extension", object: "1700000000000-pic.jpg", contentType: "image/webp", want: "image/webp"},
		{name: "nothing declared", object: "1700000000000-pic.gif", contentType: "", want: "image/gif"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, osDir := openRoot(t)
			store := filesystem.NewFileStorage(osDir)
			ctx := context.Background()

			_, err := store.Put(ctx, tt.object, tt.contentType, strings.NewReader("bytes"), 5)
			require.NoError(t, err)

			body, info, err := store.Get(ctx, tt.object)
			require.NoError(t, err)
			_ = body.Close()
			assert.Equal(t, tt.want, info.ContentType)

			objects, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, objects, 1)
			assert.Equal(t, tt.object, objects[0].Name)
			assert.Equal(t, tt.want, objects[0].ContentType)
		})
	}
}

func TestStore_Put_UntypedOverwriteDropsStoredType(t *testing.T) {
	_, osDir := openRoot(t)
	store := filesystem.NewFileStorage(osDir)
	ctx := context.Background()

	_, err := store.Put(ctx, "photo", "image/png", strings.NewReader("a"), 1)
	require.NoError(t, err)
	_, err = store.Put(ctx, "photo", "", strings.NewReader("b"), 1)
	require.NoError(t, err)

	body, info, err := store.Get(ctx, "photo")
	require.NoError(t, err)
	_ = body.Close()
	assert.Equal(t, urilaga.DefaultContentType, info.ContentType)
}

func TestStore_Delete_RemovesStoredType(t *testing.T) {
	tempDir, osDir := openRoot(t)
	store := filesystem.NewFileStorage(osDir)
	ctx := context.Background()

	_, err := store.Put(ctx, "photo", "image/png", strings.NewReader("a"), 1)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "photo"))

	entries, err := os.ReadDir(filepath.Join(tempDir, ".meta"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, _, err = store.Get(ctx, ".meta")
	assert.ErrorIs(t, err, urilaga.ErrNotFound)
}

func TestStore_Put_DoubleDotFilename(t *testing.T) {
	tempDir, osDir := openRoot(t)
	store := filesystem.NewFileStorage(osDir)
	ctx := context.Background()

	_, err := store.Put(ctx, "1700000000000-photo..jpg", "image/jpeg", strings.NewReader("x"), 1)
	require.NoError(t, err)

	body, info, err := store.Get(ctx, "1700000000000-photo..jpg")
	require.NoError(t, err)
	_ = body.Close()
	assert.Equal(t, "image/jpeg", info.ContentType)

	_, err = os.Stat(filepath.Join(tempDir, "1700000000000-photo..jpg"))
	assert.NoError(t, err)
}

func TestStore_Put_Overwrites(t *testing.T) {
	tempDir, osDir := openRoot(t)

	store := filesystem.NewFileStorage(osDir)
	ctx := context.Background()

	first, err := store.Put(ctx, "a.png", "image/png", strings.NewReader("first"), 5)
	require.NoError(t, err)
	second, err := store.Put(ctx, "a.png", "image/png", strings.NewReader("second"), 6)
	require.NoError(t, err)

	assert.NotEqual(t, first.ETag, second.ETag)

	written, err := os.ReadFile(filepath.Join(tempDir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(written))
}

func TestStore_Put_InvalidName(t *testing.T) {
	_, osDir := openRoot(t)

	store := filesystem.NewFileStorage(osDir)

	for _, name := range []string{"", "..", "a/b.png", ".tmpfile"} {
		t.Run(fmt.Sprintf("name=%q", name), func(t *testing.T) {
			_, err := store.Put(context.Background(), name, "", strings.NewReader("x"), 1)
			assert.ErrorIs(t, err, urilaga.ErrValidation)
		})
	}
}

func TestStore_Put_ContextCanceled(t *testing.T) {
	_, osDir := openRoot(t)

	store := filesystem.NewFileStorage(osDir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Put(ctx, "a.png", "", strings.NewReader("x"), 1)

	assert.ErrorIs(t, err, context.Canceled)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestStore_Put_ReaderErrorLeavesNoTempFile(t *testing.T) {
	tempDir, osDir := openRoot(t)

	store := filesystem.NewFileStorage(osDir)

	_, err := store.Put(context.Background(), "a.png", "", failingReader{}, -1)
	assert.Error(t, err)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_Put_ETagConsistency(t *testing.T) {
	_, osDir := openRoot(t)

	store := filesystem.NewFileStorage(osDir)
	ctx := context.Background()

	content := []byte("same content")
	a, err := store.Put(ctx, "a.png", "", bytes.NewReader(content), -1)
	require.NoError(t, err)
	b, err := store.Put(ctx, "b.png", "", bytes.NewReader(content), -1)
	require.NoError(t, err)

	assert.Equal(t, a.ETag, b.ETag)
}

func TestStore_Delete(t *testing.T) {
	tempDir, osDir := openRoot(t)

	err := os.WriteFile(filepath.Join(tempDir, "a.png"), []byte("x"), 0o644)
	require.NoError(t, err)

	store := filesystem.NewFileStorage(osDir)
	ctx := context.Background()

	err = store.Delete(ctx, "a.png")
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(tempDir, "a.png"))
	assert.True(t, os.IsNotExist(err))

	err = store.Delete(ctx, "a.png")
	assert.ErrorIs(t, err, urilaga.ErrNotFound)
}

func TestStore_List(t *testing.T) {
	tempDir, osDir := openRoot(t)

	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "a.png"), []byte("aa"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "b.jpg"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".tpending"), []byte("tmp"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(tempDir, "sub"), 0o755))

	store := filesystem.NewFileStorage(osDir)

	objects, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, objects, 2)

	byName := map[string]urilaga.ObjectInfo{}
	for _, o := range objects {
		byName[o.Name] = o
	}

	assert.Equal(t, int64(2), byName["a.png"].Size)
	assert.Equal(t, "image/png", byName["a.png"].ContentType)
	assert.Equal(t, "image/jpeg", byName["b.jpg"].ContentType)
	assert.False(t, byName["b.jpg"].LastModified.IsZero())
}

func TestStore_List_Empty(t *testing.T) {
	_, osDir := openRoot(t)

	store := filesystem.NewFileStorage(osDir)

	objects, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, objects)
	assert.Empty(t, objects)
}

func TestStore_SignURL(t *testing.T) {
	_, osDir := openRoot(t)

	signer := &stubSigner{}
	store := filesystem.NewFileStorage(osDir, filesystem.WithSigner(signer, ""))

	signed, err := store.SignURL(context.Background(), "1-cat.png", time.Hour)

	require.NoError(t, err)
	assert.Equal(t, "GET", signer.method)
	assert.Equal(t, "/files/1-cat.png", signer.path)
	assert.Equal(t, time.Hour, signer.ttl)
	assert.Equal(t, "http://localhost:3000/files/1-cat.png?sig=x", signed)
}

func TestStore_SignURL_CustomPrefix(t *testing.T) {
	_, osDir := openRoot(t)

	signer := &stubSigner{}
	store := filesystem.NewFileStorage(osDir, filesystem.WithSigner(signer, "media"))

	_, err := store.SignURL(context.Background(), "a.png", time.Minute)

	require.NoError(t, err)
	assert.Equal(t, "/media/", store.URLPrefix())
	assert.Equal(t, "/media/a.png", signer.path)
}

func TestStore_SignURL_NoSigner(t *testing.T) {
	_, osDir := openRoot(t)

	store := filesystem.NewFileStorage(osDir)

	_, err := store.SignURL(context.Background(), "a.png", time.Minute)

	assert.Error(t, err)
}

func TestStore_SignURL_WithPresigner(t *testing.T) {
	_, osDir := openRoot(t)

	presigner := urilaga.NewPresigner("http://localhost:3000", "AKID", "secret")
	store := filesystem.NewFileStorage(osDir, filesystem.WithSigner(presigner, ""))

	signed, err := store.SignURL(context.Background(), "1-my cat.png", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "/files/1-my cat.png", u.Path)
	assert.Equal(t, "AKID", u.Query().Get("X-Stowry-Credential"))
	assert.Equal(t, "3600", u.Query().Get("X-Stowry-Expires"))
}

func TestStore_Integration_PutGetDelete(t *testing.T) {
	_, osDir := openRoot(t)

	store := filesystem.NewFileStorage(osDir)
	ctx := context.Background()

	content := []byte("integration test content")

	info, err := store.Put(ctx, "test.png", "image/png", bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)

	reader, _, err := store.Get(ctx, "test.png")
	require.NoError(t, err)
	readContent, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Equal(t, content, readContent)
	assert.NoError(t, reader.Close())

	objects, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, info.Name, objects[0].Name)

	err = store.Delete(ctx, "test.png")
	assert.NoError(t, err)

	_, _, err = store.Get(ctx, "test.png")
	assert.ErrorIs(t, err, urilaga.ErrNotFound)
}

func TestStore_ConcurrentPuts(t *testing.T) {
	_, osDir := openRoot(t)

	store := filesystem.NewFileStorage(osDir)
	ctx := context.Background()

	done := make(chan bool, 10)
	for i := range 10 {
		go func(n int) {
			content := fmt.Appendf(nil, "content-%d", n)
			name := fmt.Sprintf("file-%d.png", n)
			_, err := store.Put(ctx, name, "image/png", bytes.NewReader(content), int64(len(content)))
			assert.NoError(t, err)
			done <- true
		}(i)
	}

	for range 10 {
		<-done
	}

	objects, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, objects, 10)
}
