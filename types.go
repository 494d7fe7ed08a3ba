package urilaga

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// User is a row of the credential table. Password holds whatever the
// configured PasswordScheme expects: the plaintext itself or a bcrypt hash.
type User struct {
	Username string `json:"username"`
	Password string `json:"-"`
}

// Image is a catalog row describing an uploaded image.
type Image struct {
	ID         uuid.UUID `json:"id"`
	ImageURL   *string   `json:"image_url"`
	Judul      string    `json:"judul"`
	Rating     string    `json:"rating"`
	Tanggal    string    `json:"tanggal"`
	By         string    `json:"by"`
	Sign       *string   `json:"sign"`
	ObjectName *string   `json:"object_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewImage carries the fields required to insert an Image.
type NewImage struct {
	ImageURL   *string
	Judul      string
	Rating     string
	Tanggal    string
	By         string
	Sign       *string
	ObjectName *string
}

// ImageQuery selects one page of images.
// Filter is a case-insensitive LIKE pattern matched against By.
// Search is a case-insensitive substring matched against Judul.
type ImageQuery struct {
	Page   int
	Limit  int
	Filter string
	Search string
}

// Offset returns the zero-based index of the first row of the page.
func (q ImageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// RowLimit is the number of rows fetched for the page: Limit, capped at
// MaxLimit. Offset and page counts still use Limit.
func (q ImageQuery) RowLimit() int {
	return min(q.Limit, MaxLimit)
}

// ImagePage is one page of images plus the number of rows matching the
// query predicate, ignoring pagination.
type ImagePage struct {
	Images []Image
	Total  int
}

// ListResult is the response of GalleryService.List.
type ListResult struct {
	Images     []Image
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// TotalPages returns ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// UploadFile is an attached binary file.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64 // -1 when unknown
	Content     io.Reader
}

// UploadRequest holds the multipart fields of an upload.
type UploadRequest struct {
	Judul   string `validate:"required"`
	Rating  string `validate:"required"`
	Tanggal string `validate:"required"`
	By      string `validate:"required"`
	File    *UploadFile
}

// UploadResult is returned after a successful upload.
type UploadResult struct {
	Image    Image
	ImageURL *string
}

// SweepOptions controls GalleryService.SweepOrphans.
type SweepOptions struct {
	// GracePeriod protects objects younger than this from deletion so that
	// uploads still between write and insert are not swept.
	GracePeriod time.Duration
	DryRun      bool
}

// SweepResult reports what a sweep found and removed.
type SweepResult struct {
	Scanned int
	Orphans []string
	Deleted int
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Name         string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// Tables holds configurable table names for metadata storage.
type Tables struct {
	Users  string `mapstructure:"users"`
	Images string `mapstructure:"images"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Users == "" {
		return errors.New("validate tables: users table name cannot be empty")
	}
	if t.Images == "" {
		return errors.New("validate tables: images table name cannot be empty")
	}

	for _, name := range []string{t.Users, t.Images} {
		if !IsValidTableName(name) {
			return fmt.Errorf("validate tables: invalid table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", name)
		}
	}

	if t.Users == t.Images {
		return fmt.Errorf("validate tables: users and images tables must differ: %s", t.Users)
	}

	return nil
}
