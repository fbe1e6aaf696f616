package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"estoque/internal/log"
	"estoque/internal/middleware/auth"
	"estoque/internal/middleware/ratelimit"
	"estoque/internal/middleware/security"
	"estoque/internal/middleware/trace"
	"estoque/internal/services"
	appweb "estoque/web"
)

// DashboardSource provides aggregation snapshots.
type DashboardSource interface {
	Latest() (services.Snapshot, bool)
	Refresh(ctx context.Context, trigger string) (services.Snapshot, error)
}

// Options configures a Server.
type Options struct {
	Addr      string
	Records   *services.RecordService
	Dashboard DashboardSource
	Logger    *log.Logger

	// JWTSecret enables bearer token checks on /api when set.
	JWTSecret string
	RateLimit ratelimit.Config

	// Ready reports backend health for /readyz; nil means always ready.
	Ready func(ctx context.Context) error

	// Templates and Static default to the embedded web assets.
	Templates fs.FS
	Static    fs.FS
}

type Server struct {
	http.Server
	templates *template.Template
	records   *services.RecordService
	dashboard DashboardSource
	logger    *log.Logger
	ready     func(ctx context.Context) error

	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	startedAt time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Templates == nil {
		opts.Templates = appweb.TemplatesFS
	}
	if opts.Static == nil {
		sub, err := fs.Sub(appweb.StaticFS, "static")
		if err != nil {
			return nil, fmt.Errorf("mount static assets: %w", err)
		}
		opts.Static = sub
	}

	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(opts.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       time.Minute,
		},
		templates: tmpl,
		records:   opts.Records,
		dashboard: opts.Dashboard,
		logger:    opts.Logger,
		ready:     opts.Ready,
		limiter:   ratelimit.NewLimiter(opts.RateLimit),
		detector:  security.NewDetector(),
		tracer:    trace.NewMiddleware(),
		startedAt: time.Now(),
	}

	var verifier *auth.Verifier
	if opts.JWTSecret != "" {
		verifier = auth.NewVerifier(opts.JWTSecret)
	}
	s.Handler = s.routes(opts.Static, verifier)
	return s, nil
}

func (s *Server) routes(static fs.FS, verifier *auth.Verifier) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(log.HTTPMiddleware(s.logger, trace.RequestID, s.detector.ExtractClientIP))
	r.Use(s.detector.Middleware)
	r.Use(security.Headers(security.DashboardPolicy()))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.With(security.StaticAssets(time.Hour)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited))

		r.Get("/", s.handlePanel)
		r.Get("/graficos", s.handleCharts)
		r.Get("/ui/graficos/dados", s.handleDashboardAPI)
		r.Post("/ui/graficos/atualizar", s.handleDashboardRefreshAPI)

		r.Route("/api", func(api chi.Router) {
			if verifier != nil {
				api.Use(verifier.Middleware(s.handleUnauthorized))
			}
			api.Get("/dashboard", s.handleDashboardAPI)
			api.Post("/dashboard/refresh", s.handleDashboardRefreshAPI)
			api.Get("/painel", s.handlePanelAPI)
			mountAPI(api, s, s.receiptResource())
			mountAPI(api, s, s.withdrawalResource())
			mountAPI(api, s, s.itemResource())
		})

		mountUI(r, s, s.receiptResource())
		mountUI(r, s, s.withdrawalResource())
		mountUI(r, s, s.itemResource())
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Message: "rota não encontrada"})
	})
	return r
}

// Shutdown stops the rate limiter and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, envelope{Message: "muitas requisições, tente novamente em instantes"})
}

func (s *Server) handleUnauthorized(w http.ResponseWriter, r *http.Request, err error) {
	log.FromContext(r.Context()).WithComponent(log.ComponentAuth).WarnContext(r.Context(),
		"Rejected API request", log.FieldError, err, log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusUnauthorized, envelope{Message: "não autorizado"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	}})
}

// handleReady checks the backend and whether a snapshot exists yet.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := map[string]string{"templates": "ok", "backend": "ok", "dashboard": "ok"}
	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["backend"] = "failed: " + err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if s.dashboard != nil {
		if _, ok := s.dashboard.Latest(); !ok {
			checks["dashboard"] = "pending"
		}
	}

	writeJSON(w, status, envelope{Success: status == http.StatusOK, Data: map[string]any{
		"checks":       checks,
		"requests":     s.tracer.GetMetrics().TotalRequests,
		"rate_limited": s.limiter.GetMetrics().TotalHits,
		"suspicious":   s.detector.GetMetrics().SuspiciousRequests,
	}})
}
