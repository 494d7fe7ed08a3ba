package http

import (
	"io"
	"io/fs"
	"net/http"
)

const notFoundPageName = "404.html"

const defaultNotFoundHTML = `<html>
<head><title>404 Not Found</title></head>
<body>
<center><h1>404 Not Found</h1></center>
<hr><center>urilaga</center>
</body>
</html>`

// writeNotFoundPage answers a static request that matched no file. The
// public directory's own 404.html is used when it has one.
func writeNotFoundPage(w http.ResponseWriter, public fs.FS) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if public != nil {
		if page, err := fs.ReadFile(public, notFoundPageName); err == nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write(page)
			return
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, defaultNotFoundHTML)
}
