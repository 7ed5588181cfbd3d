package server

import (
	"net/http"
	"strings"
)

const corsMaxAge = "600"

var corsAllowMethods = strings.Join([]string{
	http.MethodDelete, http.MethodGet, http.MethodHead, http.MethodOptions,
	http.MethodPatch, http.MethodPost, http.MethodPut,
}, ", ")

// CORS is a permissive cross-origin policy: any method, any header and
// credentials. The allowed origin is echoed back rather than "*" because
// browsers reject "*" on credentialed requests.
type CORS struct {
	allowAll bool
	origins  map[string]struct{}
}

// NewCORS builds a policy for the given origins. "*" allows every origin.
func NewCORS(allowedOrigins []string) *CORS {
	c := &CORS{origins: make(map[string]struct{})}
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			c.allowAll = true
			continue
		}
		if o != "" {
			c.origins[o] = struct{}{}
		}
	}
	return c
}

func (c *CORS) allowed(origin string) bool {
	if c.allowAll {
		return true
	}
	_, ok := c.origins[origin]
	return ok
}

// Handler wraps next with the policy.
func (c *CORS) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			c.preflight(w, r, origin)
			return
		}

		if c.allowed(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}
		next.ServeHTTP(w, r)
	})
}

func (c *CORS) preflight(w http.ResponseWriter, r *http.Request, origin string) {
	h := w.Header()
	h.Add("Vary", "Origin")
	if !c.allowed(origin) {
		log.Warnf("Disallowed CORS origin %q", origin)
		http.Error(w, "Disallowed CORS origin", http.StatusBadRequest)
		return
	}

	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)
	if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
		h.Set("Access-Control-Allow-Headers", reqHeaders)
	}
	h.Set("Access-Control-Max-Age", corsMaxAge)
	h.Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
