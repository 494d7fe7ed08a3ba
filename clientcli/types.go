package clientcli

import (
	"time"

	"github.com/google/uuid"
)

// UploadOptions configures an upload. LocalPath may be empty to create a
// catalog row without an image.
type UploadOptions struct {
	LocalPath   string
	ContentType string // optional, detected from the extension if empty
	Judul       string
	Rating      string
	Tanggal     string
	By          string
}

// UploadResult is the outcome of one upload.
type UploadResult struct {
	LocalPath string  `json:"local_path,omitempty"`
	Judul     string  `json:"judul"`
	ImageURL  *string `json:"image_url"`
	Size      int64   `json:"size_bytes,omitempty"`
}

// DownloadOptions configures a download of a signed image URL.
type DownloadOptions struct {
	URL       string
	LocalPath string // empty = derive from the URL, "-" = stdout
}

// DownloadResult describes a finished download.
type DownloadResult struct {
	URL         string `json:"url"`
	LocalPath   string `json:"local_path"`
	ETag        string `json:"etag,omitempty"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
}

// ListOptions selects a page of images.
type ListOptions struct {
	Page   int
	Limit  int
	Filter string
	Search string
	All    bool // walk every page from Page onwards
}

// ListResult holds one or more pages of images.
type ListResult struct {
	Images     []Image `json:"images"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
}

// Image mirrors a catalog row as returned by GET /images.
type Image struct {
	ID        uuid.UUID `json:"id"`
	ImageURL  *string   `json:"image_url"`
	Judul     string    `json:"judul"`
	Rating    string    `json:"rating"`
	Tanggal   string    `json:"tanggal"`
	By        string    `json:"by"`
	CreatedAt time.Time `json:"created_at"`
}

type serverUploadResponse struct {
	Success  bool    `json:"success"`
	ImageURL *string `json:"imageUrl"`
}

type serverListResponse struct {
	Success    bool    `json:"success"`
	Images     []Image `json:"images"`
	TotalPages int     `json:"totalPages"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	Total      int     `json:"total"`
}

type serverErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}
