package handler

import (
	"net/http"
	"slices"
	"strings"
)

// Handler carries the cross-cutting endpoints (health, CORS).
type Handler struct {
	db      Pinger
	origins []string
}

// New creates a Handler. frontendURL may list several comma-separated origins;
// the first one is the default.
func New(db Pinger, frontendURL string) *Handler {
	var origins []string
	for _, o := range strings.Split(frontendURL, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return &Handler{db: db, origins: origins}
}

// allowedOrigin echoes origin when it is listed, otherwise the default origin.
func (h *Handler) allowedOrigin(origin string) string {
	if origin != "" && slices.Contains(h.origins, origin) {
		return origin
	}
	if len(h.origins) == 0 {
		return ""
	}
	return h.origins[0]
}

func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := h.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
