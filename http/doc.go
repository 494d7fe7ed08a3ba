// Package http provides the HTTP API of the urilaga image gallery.
//
// # Routes
//
//	POST /login          JSON or form {username, password}        -> {success:true}
//	POST /upload         multipart: image?, judul, rating, tanggal, by -> {success:true, imageUrl}
//	GET  /images         page?, limit?, filter?, search?          -> {success:true, images, totalPages}
//	GET  /files/{name}   presigned download (filesystem backend)
//	GET  /healthz        liveness and metadata store ping
//
// Every failure is answered with {success:false, error, message}. The error
// code is stable; the message is meant for people. Internal error detail is
// logged, never returned.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    MaxUploadSize:  10 << 20,
//	    Objects:        fileStore,                          // nil when objects live in S3
//	    FileVerifier:   urilaga.NewSignatureVerifier(keys),
//	    LoginRateLimit: 1,
//	    LoginBurst:     5,
//	}
//	handler := http.NewHandler(&handlerCfg, service)
//	http.ListenAndServe(":3000", handler.Router())
//
// # Middleware
//
// Router installs chi's RequestID and Recoverer, RequestLogger for one slog
// line per request, optional CORS, and RateLimitMiddleware on /login.
// AuthMiddleware guards the download route with native presigned signatures.
package http
