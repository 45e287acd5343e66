package server

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/subplay/subplay/internal/analytics"
	"github.com/subplay/subplay/internal/docs"
	"github.com/subplay/subplay/internal/httputil"
	"github.com/subplay/subplay/internal/media"
	"github.com/subplay/subplay/internal/mount"
	"github.com/subplay/subplay/internal/player"
	"github.com/subplay/subplay/internal/ratelimit"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Mount       *mount.Mount
	Renderer    player.Renderer
	Media       *media.Handler
	Views       *analytics.Handler
	Pinger      Pinger
	WebFS       fs.FS
	BaseURL     string
	TrustProxy  bool
	CORSOrigins []string
	EnableDocs  bool
}

type Server struct {
	router      chi.Router
	mount       *mount.Mount
	renderer    player.Renderer
	media       *media.Handler
	views       *analytics.Handler
	pinger      Pinger
	webFS       fs.FS
	trustProxy  bool
	corsOrigins []string
	enableDocs  bool
	apiLimiter  *ratelimit.Limiter
}

// New builds the HTTP handler. ctx bounds background work such as rate
// limiter bookkeeping.
func New(ctx context.Context, cfg Config) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)
	r.Use(securityHeaders(SecurityConfig{BaseURL: cfg.BaseURL}))

	renderer := cfg.Renderer
	if renderer == nil {
		renderer = player.NewHTMLRenderer("")
	}

	corsOrigins := cfg.CORSOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	s := &Server{
		router:      r,
		mount:       cfg.Mount,
		renderer:    renderer,
		media:       cfg.Media,
		views:       cfg.Views,
		pinger:      cfg.Pinger,
		webFS:       cfg.WebFS,
		trustProxy:  cfg.TrustProxy,
		corsOrigins: corsOrigins,
		enableDocs:  cfg.EnableDocs,
		apiLimiter:  ratelimit.NewLimiter(ctx, 5, 20, cfg.TrustProxy),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/favicon.ico", s.handleFavicon)

	if s.enableDocs {
		docs.Register(s.router)
	}

	s.router.Group(func(r chi.Router) {
		r.Use(s.apiLimiter.Middleware)
		r.Get("/api/player", s.handlePlayerDescriptor)
		if s.views != nil {
			r.Get("/api/views", s.views.Views)
		}
	})

	if s.media != nil {
		s.router.Group(func(r chi.Router) {
			r.Use(corsMiddleware(s.corsOrigins))
			r.Get(player.MediaPath, s.media.Video)
			r.Options(player.MediaPath, noContent)
			r.Get(player.SubtitlePath, s.media.Subtitle)
			r.Options(player.SubtitlePath, noContent)
		})
	}

	if s.mount != nil {
		s.router.Get("/", s.handlePlayerPage)
		page := http.HandlerFunc(s.handlePlayerPage)
		s.router.NotFound(newSPAFileServer(s.webFS, page).ServeHTTP)
	}
}

func (s *Server) descriptor(r *http.Request) player.Descriptor {
	origin := player.OriginFromRequest(r, s.trustProxy)
	return player.NewDescriptor(player.DeriveURLs(origin))
}

func (s *Server) handlePlayerPage(w http.ResponseWriter, r *http.Request) {
	descriptor := s.descriptor(r)

	var page bytes.Buffer
	err := s.mount.Render(&page, httputil.Nonce(r.Context()), func(w io.Writer) error {
		return s.renderer.Render(w, descriptor)
	})
	if err != nil {
		log.WithError(err).Error("failed to render player page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(page.Bytes())
}

func (s *Server) handlePlayerDescriptor(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := (player.JSONRenderer{}).Render(w, s.descriptor(r)); err != nil {
		log.WithError(err).Warn("failed to write player descriptor")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": "database unreachable"})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	if s.webFS != nil {
		if _, err := fs.Stat(s.webFS, "favicon.ico"); err == nil {
			http.ServeFileFS(w, r, s.webFS, "favicon.ico")
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
