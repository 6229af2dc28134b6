package handlers

import (
	"net/http"
	"strings"
	"sync"
)

// ══════════════════════════════════════════════════════════════════════════════
// API KEY AUTHENTICATION
// ══════════════════════════════════════════════════════════════════════════════

// APIKeyAuth guards the admin surface (verification, review, migrations
// status) behind a shared API key. Keys can be rotated at runtime.
type APIKeyAuth struct {
	headerName string

	mu   sync.RWMutex
	keys map[string]bool
}

// NewAPIKeyAuth builds an authenticator that accepts any of the given keys.
// Empty strings are ignored so an unset env var cannot open the endpoint.
func NewAPIKeyAuth(headerName string, keys []string) *APIKeyAuth {
	valid := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key != "" {
			valid[key] = true
		}
	}
	return &APIKeyAuth{headerName: headerName, keys: valid}
}

// AddKey starts accepting key.
func (a *APIKeyAuth) AddKey(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys[key] = true
}

// RemoveKey stops accepting key.
func (a *APIKeyAuth) RemoveKey(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.keys, key)
}

// IsValid reports whether key is currently accepted.
func (a *APIKeyAuth) IsValid(key string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.keys[key]
}

// Middleware rejects requests that carry no accepted key. The key may arrive
// in the configured header or as an Authorization bearer token.
func (a *APIKeyAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(a.headerName)
		if key == "" {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		switch {
		case key == "":
			http.Error(w, `{"error":"missing_api_key","message":"API key is required"}`, http.StatusUnauthorized)
		case !a.IsValid(key):
			http.Error(w, `{"error":"invalid_api_key","message":"Invalid API key"}`, http.StatusUnauthorized)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE HARDENING
// ══════════════════════════════════════════════════════════════════════════════

// SecurityHeadersMiddleware sets the standard hardening headers on every
// response. The CSP is locked down because this server only serves JSON.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// RequestSizeLimitMiddleware rejects oversized bodies. Declared lengths above
// the limit fail fast with 413; undeclared bodies are capped while reading so
// a chunked upload cannot sidestep the limit.
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, `{"error":"payload_too_large","message":"Request body too large"}`,
					http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
