package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Rifqialba/urilaga"
)

// multipartMemory is the part of an upload kept in memory; the rest spills
// to temporary files.
const multipartMemory = 32 << 20

// DefaultFilesPrefix is the route prefix of signed object downloads.
const DefaultFilesPrefix = "/files/"

type Service interface {
	Login(ctx context.Context, username, password string) error
	Upload(ctx context.Context, req urilaga.UploadRequest) (urilaga.UploadResult, error)
	List(ctx context.Context, q urilaga.ImageQuery) (urilaga.ListResult, error)
}

// ObjectReader opens stored objects for the signed download route.
type ObjectReader interface {
	Get(ctx context.Context, name string) (io.ReadSeekCloser, urilaga.ObjectInfo, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	// MaxUploadSize caps the upload request body in bytes. Zero disables the cap.
	MaxUploadSize int64

	// Objects enables GET FilesPrefix+{name}. FileVerifier checks the
	// presigned query of each download; nil serves objects publicly.
	Objects      ObjectReader
	FileVerifier RequestVerifier
	FilesPrefix  string

	// PublicDir, when set, is served for GET requests no API route matches.
	PublicDir fs.FS

	// LoginRateLimit is the sustained number of login attempts per second
	// allowed per client IP, with bursts up to LoginBurst. Zero disables it.
	LoginRateLimit float64
	LoginBurst     int

	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	TrustProxy bool

	// HealthCheck backs GET /healthz. Nil always reports healthy.
	HealthCheck func(ctx context.Context) error

	CORS CORSConfig
}

// Handler provides the HTTP API of the gallery.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.FilesPrefix == "" {
		cfg.FilesPrefix = DefaultFilesPrefix
	}
	cfg.FilesPrefix = "/" + strings.Trim(cfg.FilesPrefix, "/") + "/"

	return &Handler{
		config:  cfg,
		service: service,
	}
}

// Router returns an http.Handler with all routes configured.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if h.config.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/healthz", h.handleHealth)

	r.Group(func(r chi.Router) {
		if h.config.LoginRateLimit > 0 {
			r.Use(RateLimitMiddleware(NewIPRateLimiter(h.config.LoginRateLimit, h.config.LoginBurst)))
		}
		r.Post("/login", h.handleLogin)
	})

	r.Post("/upload", h.handleUpload)
	r.Get("/images", h.handleList)

	if h.config.Objects != nil {
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.config.FileVerifier))
			r.Get(h.config.FilesPrefix+"*", h.handleFile)
			r.Head(h.config.FilesPrefix+"*", h.handleFile)
		})
	}

	if h.config.PublicDir != nil {
		r.Get("/*", h.handleStatic)
	}

	return r
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type uploadResponse struct {
	Success  bool    `json:"success"`
	ImageURL *string `json:"imageUrl"`
}

type listResponse struct {
	Success    bool            `json:"success"`
	Images     []urilaga.Image `json:"images"`
	TotalPages int             `json:"totalPages"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Total      int             `json:"total"`
}

// decodeLogin accepts a JSON body or a urlencoded form.
func decodeLogin(r *http.Request) (loginRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return loginRequest{}, fmt.Errorf("%w: %w", ErrInvalidBody, err)
		}
		return loginRequest{Username: r.FormValue("username"), Password: r.FormValue("password")}, nil
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return loginRequest{}, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	return req, nil
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLogin(r)
	if err != nil {
		slog.Warn("login: undecodable body", "error", err)
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	err = h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, urilaga.ErrNotFound) {
			slog.Warn("login rejected", "error", err)
			WriteError(w, http.StatusBadRequest, "not_found", "User not found")
		} else {
			HandleError(w, err)
		}
		return
	}

	_ = WriteJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.config.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			HandleError(w, fmt.Errorf("upload: %w: %w", urilaga.ErrTooLarge, err))
			return
		}
		HandleError(w, fmt.Errorf("upload: %w: %w", urilaga.ErrValidation, err))
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	req := urilaga.UploadRequest{
		Judul:   r.FormValue("judul"),
		Rating:  r.FormValue("rating"),
		Tanggal: r.FormValue("tanggal"),
		By:      r.FormValue("by"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		req.File = &urilaga.UploadFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     file,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// metadata only
	default:
		HandleError(w, fmt.Errorf("upload: %w: %w", urilaga.ErrValidation, err))
		return
	}

	result, err := h.service.Upload(r.Context(), req)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, uploadResponse{Success: true, ImageURL: result.ImageURL})
}

// queryInt parses a query parameter, returning 0 when absent or malformed so
// that the service defaults apply.
func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := urilaga.ImageQuery{
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
		Filter: r.URL.Query().Get("filter"),
		Search: r.URL.Query().Get("search"),
	}

	result, err := h.service.List(r.Context(), query)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, listResponse{
		Success:    true,
		Images:     result.Images,
		TotalPages: result.TotalPages,
		Page:       result.Page,
		Limit:      result.Limit,
		Total:      result.Total,
	})
}

func (h *Handler) handleFile(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, h.config.FilesPrefix)

	if !urilaga.IsValidObjectName(name) {
		WriteError(w, http.StatusBadRequest, "invalid_name", "Invalid object name")
		return
	}

	content, info, err := h.config.Objects.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, urilaga.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "not_found", "Object not found")
		} else {
			HandleError(w, err)
		}
		return
	}
	defer func() { _ = content.Close() }()

	if info.ETag != "" {
		w.Header().Set("ETag", `"`+info.ETag+`"`)
	}
	w.Header().Set("Content-Type", info.ContentType)

	http.ServeContent(w, r, name, info.LastModified, content)
}

func (h *Handler) handleStatic(w http.ResponseWriter, r *http.Request) {
	public := h.config.PublicDir
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = "index.html"
	}

	info, err := fs.Stat(public, name)
	if err == nil && info.IsDir() {
		name = path.Join(name, "index.html")
		_, err = fs.Stat(public, name)
	}
	if err != nil {
		writeNotFoundPage(w, public)
		return
	}

	http.ServeFileFS(w, r, public, name)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.config.HealthCheck != nil {
		if err := h.config.HealthCheck(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			WriteError(w, http.StatusServiceUnavailable, "unhealthy", "Service unavailable")
			return
		}
	}

	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
