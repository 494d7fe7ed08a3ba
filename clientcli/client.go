package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultListLimit is the page size requested when ListOptions.Limit is unset.
	DefaultListLimit = 10

	// MaxListLimit matches the server-side cap on page size.
	MaxListLimit = 1000
)

// Client talks to a gallery server.
type Client struct {
	endpoint   *url.URL
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}

	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Endpoint returns the normalized server URL.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

func (c *Client) url(p string, query url.Values) string {
	u := *c.endpoint
	u.Path = strings.TrimSuffix(u.Path, "/") + p
	u.RawQuery = query.Encode()
	return u.String()
}

// Health calls GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/healthz", nil), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	_, err = c.do(req)
	return err
}

// Login checks a username and password against the server. A nil error
// means the credentials were accepted.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if username == "" {
		return ErrUsernameRequired
	}

	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return fmt.Errorf("encode login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/login", nil), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req)
	return err
}

// Upload sends the metadata and, when LocalPath is set, the image file as a
// streamed multipart body.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) (*UploadResult, error) {
	for _, field := range []struct{ name, value string }{
		{"judul", opts.Judul},
		{"rating", opts.Rating},
		{"tanggal", opts.Tanggal},
		{"by", opts.By},
	} {
		if field.value == "" {
			return nil, fmt.Errorf("upload: %w: %s", ErrMissingField, field.name)
		}
	}

	result := &UploadResult{LocalPath: opts.LocalPath, Judul: opts.Judul}

	var file *os.File
	if opts.LocalPath != "" {
		f, err := os.Open(opts.LocalPath) //#nosec G304 -- localPath is user-provided input
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat file: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("upload: %s is a directory", opts.LocalPath)
		}
		result.Size = info.Size()
		file = f
	}

	contentType := opts.ContentType
	if contentType == "" && opts.LocalPath != "" {
		contentType = detectContentType(opts.LocalPath)
	}

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		err := writeUploadForm(form, opts, file, contentType)
		if err == nil {
			err = form.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/upload", nil), pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp serverUploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	result.ImageURL = resp.ImageURL
	return result, nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func writeUploadForm(form *multipart.Writer, opts UploadOptions, file *os.File, contentType string) error {
	fields := [][2]string{
		{"judul", opts.Judul},
		{"rating", opts.Rating},
		{"tanggal", opts.Tanggal},
		{"by", opts.By},
	}
	for _, f := range fields {
		if err := form.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("write field %s: %w", f[0], err)
		}
	}

	if file == nil {
		return nil
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`,
		quoteEscaper.Replace(filepath.Base(file.Name()))))
	header.Set("Content-Type", contentType)

	part, err := form.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create image part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy image: %w", err)
	}
	return nil
}

// List fetches one page of images, or every page from opts.Page onwards
// when opts.All is set.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if !opts.All {
		return c.listPage(ctx, opts)
	}

	first, err := c.listPage(ctx, opts)
	if err != nil {
		return nil, err
	}

	for page := first.Page + 1; page <= first.TotalPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next := opts
		next.Page = page
		result, err := c.listPage(ctx, next)
		if err != nil {
			return nil, err
		}
		first.Images = append(first.Images, result.Images...)
	}

	return first, nil
}

func (c *Client) listPage(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	page := max(opts.Page, 1)

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	if opts.Filter != "" {
		query.Set("filter", opts.Filter)
	}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/images", query), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp serverListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	images := resp.Images
	if images == nil {
		images = []Image{}
	}

	return &ListResult{
		Images:     images,
		Page:       resp.Page,
		Limit:      resp.Limit,
		Total:      resp.Total,
		TotalPages: resp.TotalPages,
	}, nil
}

// Download fetches a signed image URL. Relative URLs are resolved against
// the endpoint. If opts.LocalPath is "-", the body is returned and must be
// closed by the caller; otherwise it is written to the file and the
// io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	if opts.URL == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyURL)
	}

	ref, err := url.Parse(opts.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse url: %w", err)
	}
	target := c.endpoint.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	result := &DownloadResult{
		URL:         target.String(),
		ETag:        strings.Trim(resp.Header.Get("ETag"), `"`),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}

	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = path.Base(target.Path)
		if localPath == "/" || localPath == "." {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("download: %w", ErrEmptyPath)
		}
	}
	result.LocalPath = localPath

	if dir := filepath.Dir(localPath); dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	file, err := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("create file: %w", err)
	}

	written, copyErr := io.Copy(file, resp.Body)
	_ = resp.Body.Close()
	if copyErr != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}

	if err := file.Close(); err != nil {
		return nil, nil, fmt.Errorf("close file: %w", err)
	}

	result.Size = written
	return result, nil, nil
}

// do executes req and returns the body of a 200 response.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseServerError(resp.StatusCode, body)
	}

	return body, nil
}

// detectContentType returns the MIME type for the file extension.
func detectContentType(p string) string {
	if mimeType := mime.TypeByExtension(filepath.Ext(p)); mimeType != "" {
		return mimeType
	}
	return "application/octet-stream"
}

// parseServerError decodes the {success, error, message} envelope when the
// body carries one.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Body: string(body)}

	var envelope serverErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Code = envelope.Error
		apiErr.Message = envelope.Message
	}

	return apiErr
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error: %d %s - %s", e.StatusCode, e.Code, e.Message)
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is matches an *APIError with the same StatusCode and, when the target
// sets one, the same Code.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode && (t.Code == "" || t.Code == e.Code)
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	ErrNotFound          = &APIError{StatusCode: http.StatusNotFound}
	ErrForbidden         = &APIError{StatusCode: http.StatusForbidden}
	ErrTooLarge          = &APIError{StatusCode: http.StatusRequestEntityTooLarge}
	ErrRateLimited       = &APIError{StatusCode: http.StatusTooManyRequests}
	ErrUserNotFound      = &APIError{StatusCode: http.StatusBadRequest, Code: "not_found"}
	ErrInvalidCredential = &APIError{StatusCode: http.StatusBadRequest, Code: "invalid_credential"}
	ErrValidation        = &APIError{StatusCode: http.StatusBadRequest, Code: "validation_error"}
)
