package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
)

// SecurityHeaders adds OWASP recommended headers.
// Images may come from data: URIs (QR code) and https: (configured logo).
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; img-src 'self' data: https:; connect-src 'self'; form-action 'self'")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// CSRF returns middleware that protects form posts.
// PRE: authKey is 32 bytes
// secure marks the token cookie Secure; it is false only outside production.
func CSRF(authKey []byte, secure bool, trustedOrigins []string) func(http.Handler) http.Handler {
	protect := csrf.Protect(
		authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.TrustedOrigins(trustedOrigins),
	)
	return func(next http.Handler) http.Handler {
		h := protect(next)
		if secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}

// MaxBody caps request bodies. limits maps a path to its cap; other paths get defaultLimit.
// It must run outside anything that parses the form (CSRF reads the token from the body).
// A declared Content-Length over the cap is answered by onTooLarge without reading the body;
// bodies of unknown length are cut off at the cap with an *http.MaxBytesError.
func MaxBody(defaultLimit int64, limits map[string]int64, onTooLarge http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}
			limit, ok := limits[r.URL.Path]
			if !ok {
				limit = defaultLimit
			}
			if r.ContentLength > limit {
				slog.Warn("request_too_large", "path", r.URL.Path, "content_length", r.ContentLength, "limit", limit)
				onTooLarge.ServeHTTP(w, r)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// Chain wraps h with middlewares; the last one listed is outermost.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}
