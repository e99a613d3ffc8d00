package middleware

import (
	"net/http"
	"os"
	"strings"
)

// defaultOrigins covers local development of the desktop/web survey clients.
var defaultOrigins = []string{
	"http://localhost:5173",
	"http://localhost:8080",
}

// AllowedOrigins builds the CORS allow-list from the ALLOWED_ORIGINS
// environment variable (comma separated), falling back to the local dev
// origins.
func AllowedOrigins() map[string]struct{} {
	raw := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS"))
	origins := defaultOrigins
	if raw != "" {
		origins = strings.Split(raw, ",")
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			allowed[o] = struct{}{}
		}
	}
	return allowed
}

// CORS echoes the request origin back only when it is on the allow-list and
// short-circuits preflight requests.
func CORS(allowed map[string]struct{}) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if _, ok := allowed[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin") // important for caches
				w.Header().Set("Access-Control-Allow-Methods",
					"GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers",
					"Content-Type")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
