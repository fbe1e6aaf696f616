package security

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Policy describes the response headers of the dashboard. Pages load htmx
// and Chart.js from their CDNs and talk only to this origin.
type Policy struct {
	// ScriptOrigins are the origins allowed next to 'self' for scripts.
	ScriptOrigins []string
	// HSTS is the Strict-Transport-Security max-age; zero disables it.
	HSTS time.Duration
}

// DashboardPolicy allows the CDNs the templates load from.
func DashboardPolicy() Policy {
	return Policy{
		ScriptOrigins: []string{"https://unpkg.com", "https://cdn.jsdelivr.net"},
		HSTS:          365 * 24 * time.Hour,
	}
}

// ContentSecurityPolicy renders the CSP header value.
func (p Policy) ContentSecurityPolicy() string {
	scripts := append([]string{"'self'"}, p.ScriptOrigins...)
	directives := []string{
		"default-src 'self'",
		"script-src " + strings.Join(scripts, " "),
		// Chart.js sizes canvases through inline styles.
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"connect-src 'self'",
		"object-src 'none'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}
	return strings.Join(directives, "; ")
}

// Headers sets the policy on every response. Responses default to
// no-store so dashboard polls and htmx partials always reach the server;
// StaticAssets overrides that for files under /static.
func Headers(p Policy) func(http.Handler) http.Handler {
	csp := p.ContentSecurityPolicy()
	hsts := ""
	if p.HSTS > 0 {
		hsts = fmt.Sprintf("max-age=%d; includeSubDomains", int(p.HSTS.Seconds()))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", csp)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("Cache-Control", "no-store")
			if hsts != "" && r.TLS != nil {
				h.Set("Strict-Transport-Security", hsts)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// StaticAssets lets browsers cache embedded assets for maxAge.
func StaticAssets(maxAge time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
			}
			next.ServeHTTP(w, r)
		})
	}
}
