package urilaga

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultLimit is the page size used when a query omits or zeroes it.
	DefaultLimit = 6
	// MaxLimit caps the rows returned for one page. The requested limit still
	// sets the offset and totalPages.
	MaxLimit = 1000
	// DefaultSignedURLTTL is the lifetime of a signed image URL (ten years).
	DefaultSignedURLTTL = 10 * 365 * 24 * time.Hour
	// DefaultContentType is stored when an upload declares no content type.
	DefaultContentType = "application/octet-stream"
)

// UserRepo manages rows of the credential table.
type UserRepo interface {
	// GetUser looks up exactly one user by exact username match.
	// Returns ErrNotFound if no row matches.
	GetUser(ctx context.Context, username string) (User, error)

	// CreateUser inserts a user. Returns ErrAlreadyExists if the username is taken.
	CreateUser(ctx context.Context, user User) error
}

// ImageRepo manages rows of the image catalog.
type ImageRepo interface {
	// InsertImage inserts one image row and returns it with its generated
	// ID and creation time.
	InsertImage(ctx context.Context, image NewImage) (Image, error)

	// ListImages returns the rows in [offset, offset+limit-1] of the images
	// matching q's filter and search, ordered ascending by judul, together
	// with the exact count of matching rows.
	//
	// q is expected to be normalised: Page >= 1 and Limit >= 1.
	ListImages(ctx context.Context, q ImageQuery) (ImagePage, error)

	// ListObjectNames returns the object names referenced by image rows.
	ListObjectNames(ctx context.Context) ([]string, error)
}

// Repo is the metadata side of the backing data store.
type Repo interface {
	UserRepo
	ImageRepo
}

// ObjectStore is the blob side of the backing data store.
//
// All methods accept a context for cancellation. Implementations should
// respect cancellation during long transfers.
type ObjectStore interface {
	// Put writes content under name with the given content type. size is the
	// content length, or -1 when unknown. An existing object is overwritten.
	Put(ctx context.Context, name, contentType string, content io.Reader, size int64) (ObjectInfo, error)

	// SignURL returns a URL granting read access to name for ttl.
	// Implementations may shorten ttl to their own maximum.
	SignURL(ctx context.Context, name string, ttl time.Duration) (string, error)

	// Delete removes name. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, name string) error

	// List returns every stored object. Returns an empty slice (not nil)
	// when the store is empty.
	List(ctx context.Context) ([]ObjectInfo, error)
}

// ServiceConfig holds configuration options for GalleryService.
type ServiceConfig struct {
	PasswordScheme   PasswordScheme
	SignedURLTTL     time.Duration // default: DefaultSignedURLTTL
	CleanupOnFailure bool          // delete a written object when sign or insert fails
	CleanupTimeout   time.Duration // default: 30s
}

// GalleryService implements login, upload and listing on top of a Repo and an
// ObjectStore. It holds no per-request state and is safe for concurrent use.
type GalleryService struct {
	repo             Repo
	objects          ObjectStore
	scheme           PasswordScheme
	signedURLTTL     time.Duration
	cleanupOnFailure bool
	cleanupTimeout   time.Duration
	validate         *validator.Validate
	now              func() time.Time
}

func NewGalleryService(repo Repo, objects ObjectStore, cfg ServiceConfig) (*GalleryService, error) {
	scheme := cfg.PasswordScheme
	if scheme == "" {
		scheme = PasswordPlain
	}
	if !scheme.IsValid() {
		return nil, fmt.Errorf("new gallery service: invalid password scheme: %s", scheme)
	}

	ttl := cfg.SignedURLTTL
	if ttl <= 0 {
		ttl = DefaultSignedURLTTL
	}

	cleanupTimeout := cfg.CleanupTimeout
	if cleanupTimeout <= 0 {
		cleanupTimeout = 30 * time.Second
	}

	return &GalleryService{
		repo:             repo,
		objects:          objects,
		scheme:           scheme,
		signedURLTTL:     ttl,
		cleanupOnFailure: cfg.CleanupOnFailure,
		cleanupTimeout:   cleanupTimeout,
		validate:         validator.New(),
		now:              time.Now,
	}, nil
}

// Login checks username and password against the stored credential row.
// No session or token is issued.
//
// Error types returned:
//   - ErrNotFound: no user with that exact username, or the lookup failed
//   - ErrInvalidCredential: the stored password does not match
//   - ErrInternal: the stored password cannot be compared
func (s *GalleryService) Login(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	user, err := s.repo.GetUser(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("user lookup failed", "username", username, "err", err)
		}
		return fmt.Errorf("login %q: %w", username, ErrNotFound)
	}

	if err := s.scheme.Compare(user.Password, password); err != nil {
		return fmt.Errorf("login %q: %w", username, err)
	}

	return nil
}

// Upload stores the optional file, signs a read URL for it and inserts the
// image row.
//
// The method performs the following steps:
//  1. Validates that judul, rating, tanggal and by are present
//  2. Derives the badge from by
//  3. If a file is attached, writes it under ObjectName and signs a URL
//  4. Inserts the image row with the signed URL (or nil)
//
// Steps 3 and 4 are not transactional. Unless CleanupOnFailure is set, an
// object whose signing or insert failed stays in the store; SweepOrphans
// removes such objects later.
//
// Error types returned:
//   - ErrIncompleteMetadata: judul, rating, tanggal or by is empty
//   - ErrValidation: unusable filename (ErrIncompleteMetadata also matches)
//   - ErrStorage: the object write failed
//   - ErrSign: the signed URL could not be issued
//   - ErrPersistence: the row insert failed
func (s *GalleryService) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}

	if err := s.validate.Struct(req); err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w: %w", ErrIncompleteMetadata, err)
	}

	newImage := NewImage{
		Judul:   req.Judul,
		Rating:  req.Rating,
		Tanggal: req.Tanggal,
		By:      req.By,
		Sign:    BadgeFor(req.By),
	}

	if req.File != nil {
		name := ObjectName(s.now(), req.File.Name)
		if !IsValidObjectName(name) {
			return UploadResult{}, fmt.Errorf("upload %q: %w: invalid filename", req.File.Name, ErrValidation)
		}

		contentType := strings.TrimSpace(req.File.ContentType)
		if contentType == "" {
			contentType = DefaultContentType
		}

		if _, err := s.objects.Put(ctx, name, contentType, req.File.Content, req.File.Size); err != nil {
			return UploadResult{}, fmt.Errorf("upload %s: %w: %w", name, ErrStorage, err)
		}

		signedURL, err := s.objects.SignURL(ctx, name, s.signedURLTTL)
		if err != nil {
			s.discard(name)
			return UploadResult{}, fmt.Errorf("upload %s: %w: %w", name, ErrSign, err)
		}

		newImage.ImageURL = &signedURL
		newImage.ObjectName = &name
	}

	image, err := s.repo.InsertImage(ctx, newImage)
	if err != nil {
		if newImage.ObjectName != nil {
			s.discard(*newImage.ObjectName)
		}
		return UploadResult{}, fmt.Errorf("upload: %w: %w", ErrPersistence, err)
	}

	return UploadResult{Image: image, ImageURL: newImage.ImageURL}, nil
}

// discard deletes an object written by a failed upload when CleanupOnFailure
// is set. It uses a background context since the request context may already
// be cancelled.
func (s *GalleryService) discard(name string) {
	if !s.cleanupOnFailure {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cleanupTimeout)
	defer cancel()

	if err := s.objects.Delete(ctx, name); err != nil && !errors.Is(err, ErrNotFound) {
		slog.Warn("failed to discard object after upload failure", "object", name, "err", err)
	}
}

// NormalizeQuery applies the listing defaults: page below 1 becomes 1 and
// limit below 1 becomes DefaultLimit.
func NormalizeQuery(q ImageQuery) ImageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	return q
}

// List returns one page of images and the total page count for the same
// filter and search.
//
// Error types returned:
//   - ErrQuery: the lookup failed
func (s *GalleryService) List(ctx context.Context, q ImageQuery) (ListResult, error) {
	if err := ctx.Err(); err != nil {
		return ListResult{}, fmt.Errorf("list images: %w", err)
	}

	q = NormalizeQuery(q)

	page, err := s.repo.ListImages(ctx, q)
	if err != nil {
		return ListResult{}, fmt.Errorf("list images: %w: %w", ErrQuery, err)
	}

	images := page.Images
	if images == nil {
		images = []Image{}
	}

	return ListResult{
		Images:     images,
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      page.Total,
		TotalPages: TotalPages(page.Total, q.Limit),
	}, nil
}

// AddUser inserts a credential row, hashing the password when the configured
// scheme requires it.
func (s *GalleryService) AddUser(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("add user: %w", err)
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("add user: %w: username and password are required", ErrValidation)
	}

	stored, err := s.scheme.Hash(password)
	if err != nil {
		return fmt.Errorf("add user %q: %w", username, err)
	}

	if err := s.repo.CreateUser(ctx, User{Username: username, Password: stored}); err != nil {
		return fmt.Errorf("add user %q: %w", username, err)
	}

	return nil
}

// SweepOrphans deletes stored objects that no image row references and that
// are older than opts.GracePeriod.
//
// If an object has already been deleted (ErrNotFound), the sweep continues.
// The first other delete error stops the sweep and is returned together with
// the partial result.
func (s *GalleryService) SweepOrphans(ctx context.Context, opts SweepOptions) (SweepResult, error) {
	if err := ctx.Err(); err != nil {
		return SweepResult{}, fmt.Errorf("sweep orphans: %w", err)
	}

	objects, err := s.objects.List(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("sweep orphans: list objects: %w", err)
	}

	names, err := s.repo.ListObjectNames(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("sweep orphans: list references: %w", err)
	}

	referenced := make(map[string]struct{}, len(names))
	for _, n := range names {
		referenced[n] = struct{}{}
	}

	cutoff := s.now().Add(-opts.GracePeriod)
	result := SweepResult{Scanned: len(objects), Orphans: []string{}}

	for _, obj := range objects {
		if _, ok := referenced[obj.Name]; ok {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue
		}

		result.Orphans = append(result.Orphans, obj.Name)
		if opts.DryRun {
			continue
		}

		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("sweep orphans: %w", err)
		}

		delErr := s.objects.Delete(ctx, obj.Name)
		if delErr != nil && !errors.Is(delErr, ErrNotFound) {
			return result, fmt.Errorf("sweep orphans '%s': %w", obj.Name, delErr)
		}
		result.Deleted++
	}

	return result, nil
}
