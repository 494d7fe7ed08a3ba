// Package filesystem provides a local directory object store for urilaga.
// It supports atomic writes using temp files, SHA256-based etags, content
// types recorded at upload time (falling back to the file extension), and
// native presigned URLs that this process serves itself.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Rifqialba/urilaga"
)

// DefaultURLPrefix is the HTTP route prefix under which objects are served.
const DefaultURLPrefix = "/files/"

const tmpPrefix = ".t"

// metaDir holds one sidecar per object containing its declared content type.
const metaDir = ".meta"

// URLSigner signs a request path for a limited time.
type URLSigner interface {
	Presign(method, urlPath string, ttl time.Duration) (string, error)
}

// Store provides file system storage operations.
type Store struct {
	root      *os.Root
	signer    URLSigner
	urlPrefix string
}

// Option configures a Store.
type Option func(*Store)

// WithSigner enables SignURL, producing URLs for urlPrefix+name.
// An empty prefix selects DefaultURLPrefix.
func WithSigner(signer URLSigner, urlPrefix string) Option {
	return func(s *Store) {
		s.signer = signer
		if urlPrefix != "" {
			s.urlPrefix = "/" + strings.Trim(urlPrefix, "/") + "/"
		}
	}
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root, opts ...Option) *Store {
	s := &Store{root: root, urlPrefix: DefaultURLPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URLPrefix returns the route prefix that signed URLs point at.
func (s *Store) URLPrefix() string {
	return s.urlPrefix
}

// Get opens an object for reading. Returns urilaga.ErrNotFound if the object does not exist.
func (s *Store) Get(ctx context.Context, name string) (io.ReadSeekCloser, urilaga.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, urilaga.ObjectInfo{}, err
	}

	if reserved(name) {
		return nil, urilaga.ObjectInfo{}, urilaga.ErrNotFound
	}

	f, err := s.root.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, urilaga.ObjectInfo{}, urilaga.ErrNotFound
		}
		return nil, urilaga.ObjectInfo{}, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, urilaga.ObjectInfo{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, urilaga.ObjectInfo{}, urilaga.ErrNotFound
	}

	return f, urilaga.ObjectInfo{
		Name:         name,
		Size:         info.Size(),
		ContentType:  s.contentType(name),
		LastModified: info.ModTime(),
	}, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Put atomically writes content under name using a temp file and rename.
// A non-empty contentType is recorded in a sidecar before the object becomes
// visible, so Get serves the declared type. The size hint is ignored. The operation respects context cancellation.
func (s *Store) Put(ctx context.Context, name, contentType string, content io.Reader, _ int64) (urilaga.ObjectInfo, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return urilaga.ObjectInfo{}, ctxErr
	}

	if reserved(name) {
		return urilaga.ObjectInfo{}, fmt.Errorf("put %q: %w: invalid object name", name, urilaga.ErrValidation)
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return urilaga.ObjectInfo{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !success {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	written, err := io.Copy(w, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return urilaga.ObjectInfo{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	if err = t.Sync(); err != nil {
		return urilaga.ObjectInfo{}, fmt.Errorf("could not sync written file: %w", err)
	}

	contentType = strings.TrimSpace(contentType)
	if err = s.writeMeta(name, contentType); err != nil {
		return urilaga.ObjectInfo{}, err
	}

	if renameErr := s.root.Rename(tmpFile, name); renameErr != nil {
		s.removeMeta(name)
		return urilaga.ObjectInfo{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}
	success = true

	if contentType == "" {
		contentType = detectContentType(name)
	}

	return urilaga.ObjectInfo{
		Name:         name,
		Size:         written,
		ETag:         hex.EncodeToString(h.Sum(nil)),
		ContentType:  contentType,
		LastModified: time.Now(),
	}, nil
}

// SignURL returns a presigned GET URL for name under the store's URL prefix.
func (s *Store) SignURL(ctx context.Context, name string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if s.signer == nil {
		return "", errors.New("sign url: no signer configured")
	}

	signed, err := s.signer.Presign(http.MethodGet, s.urlPrefix+name, ttl)
	if err != nil {
		return "", fmt.Errorf("sign url %q: %w", name, err)
	}
	return signed, nil
}

// Delete removes an object. Returns urilaga.ErrNotFound if the object does not exist.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if reserved(name) {
		return urilaga.ErrNotFound
	}

	err := s.root.Remove(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return urilaga.ErrNotFound
		}
		return fmt.Errorf("could not delete file: %w", err)
	}
	s.removeMeta(name)
	return nil
}

// List returns every object in the root directory with its size, modification
// time and content type. Temp files of in-flight writes, the sidecar
// directory and other subdirectories are skipped.
func (s *Store) List(ctx context.Context) ([]urilaga.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	objects := make([]urilaga.ObjectInfo, 0, len(dirEntries))
	for _, entry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if entry.IsDir() || strings.HasPrefix(entry.Name(), tmpPrefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}

		objects = append(objects, urilaga.ObjectInfo{
			Name:         entry.Name(),
			Size:         info.Size(),
			ContentType:  s.contentType(entry.Name()),
			LastModified: info.ModTime(),
		})
	}

	return objects, nil
}

// writeMeta records contentType for name through its own temp file and
// rename. An empty contentType drops any sidecar left by an earlier Put.
func (s *Store) writeMeta(name, contentType string) error {
	if contentType == "" {
		s.removeMeta(name)
		return nil
	}

	if err := s.root.MkdirAll(metaDir, 0o750); err != nil {
		return fmt.Errorf("could not create metadata dir: %w", err)
	}

	tmpFile := tmpFileName()
	if err := s.root.WriteFile(tmpFile, []byte(contentType), 0o640); err != nil {
		_ = s.root.Remove(tmpFile)
		return fmt.Errorf("could not write metadata: %w", err)
	}
	if err := s.root.Rename(tmpFile, metaPath(name)); err != nil {
		_ = s.root.Remove(tmpFile)
		return fmt.Errorf("could not rename metadata: %w", err)
	}
	return nil
}

func (s *Store) removeMeta(name string) {
	if err := s.root.Remove(metaPath(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to remove metadata", "object", name, "err", err)
	}
}

// contentType returns the type recorded by Put, or the one implied by the
// extension when no sidecar exists.
func (s *Store) contentType(name string) string {
	b, err := s.root.ReadFile(metaPath(name))
	if err == nil {
		if ct := strings.TrimSpace(string(b)); ct != "" {
			return ct
		}
	}
	return detectContentType(name)
}

func metaPath(name string) string {
	return metaDir + "/" + name
}

// reserved reports names that cannot address an object: invalid keys, temp
// files and the sidecar directory.
func reserved(name string) bool {
	return !urilaga.IsValidObjectName(name) || strings.HasPrefix(name, tmpPrefix) || name == metaDir
}

func detectContentType(name string) string {
	contentType := mime.TypeByExtension(filepath.Ext(name))

	if contentType == "" {
		return urilaga.DefaultContentType
	}

	return contentType
}

func tmpFileName() string {
	return fmt.Sprintf("%s%s", tmpPrefix, uuid.New().String())
}
