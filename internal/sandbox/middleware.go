package sandbox

import (
	"net/http"
	"path"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware logs all requests
func (s *Server) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// RecoveryMiddleware recovers from panics
func (s *Server) RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic serving request", "path", r.URL.Path, "panic", err)
				respondError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// CountingMiddleware tallies requests per API method
func (s *Server) CountingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.countRequest(path.Base(r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

// CredentialsMiddleware checks the API_ID and API_KEY form fields. Like
// the real API it answers with an error body and HTTP 200.
func (s *Server) CredentialsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			respondError(w, http.StatusOK, codeBadRequest, "Invalid request body")
			return
		}
		if r.PostForm.Get("API_ID") == "" || r.PostForm.Get("API_KEY") == "" {
			respondError(w, http.StatusOK, codeNoCredentials, "API_ID and API_KEY are required")
			return
		}
		if r.PostForm.Get("API_ID") != s.opts.APIID || r.PostForm.Get("API_KEY") != s.opts.APIKey {
			respondError(w, http.StatusOK, codeBadCredentials, "Invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}
