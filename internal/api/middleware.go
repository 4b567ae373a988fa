// Package api implements the lectern JSON API using chi.
package api

import (
	"bytes"
	"net/http"

	"github.com/starford/lectern/internal/checksum"
)

// ETagMiddleware buffers successful GET responses, tags them with a strong
// ETag derived from the body and answers 304 Not Modified when the request's
// If-None-Match already names that tag.
func ETagMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		bw := &bufferedWriter{header: http.Header{}, status: http.StatusOK}
		next.ServeHTTP(bw, r)

		for k, v := range bw.header {
			w.Header()[k] = v
		}
		if bw.status != http.StatusOK {
			w.WriteHeader(bw.status)
			_, _ = bw.body.WriteTo(w)
			return
		}

		etag := checksum.ETag(bw.body.Bytes())
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match != "" && checksum.Match(match, etag) {
			w.Header().Del("Content-Type")
			w.Header().Del("Content-Length")
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = bw.body.WriteTo(w)
	})
}

// bufferedWriter holds a response until the handler is done with it.
type bufferedWriter struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (b *bufferedWriter) Header() http.Header { return b.header }

func (b *bufferedWriter) WriteHeader(status int) {
	if b.wroteHeader {
		return
	}
	b.status = status
	b.wroteHeader = true
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	b.wroteHeader = true
	return b.body.Write(p)
}
