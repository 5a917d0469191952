package middleware

import (
	"log"
	"net/http"
)

// knownServices are the callers allowed to hit mutating endpoints. The
// Discord-facing service relays commands and reaction events; the CLI is
// used for administration.
var knownServices = map[string]bool{
	"chores-discord-service": true,
	"chores-cli":             true,
}

// ServiceAuthMiddleware validates that requests come from known services.
func ServiceAuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service := r.Header.Get("X-Service-Name")
		if !knownServices[service] {
			log.Printf("Auth: rejected request from unknown service %q for %s", service, r.URL.Path)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// CorsMiddleware adds permissive CORS headers for the local dashboard.
func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Service-Name")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
