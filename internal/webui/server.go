// Package webui serves the fact-checker form over HTTP with gin.
//
// Each browser session (cookie fc_session) owns one factcheck.Form. The
// HTML page mirrors the form state; POST /api/submit is the JSON variant.
package webui

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/anatolykoptev/go_factcheck/internal/backend"
	"github.com/anatolykoptev/go_factcheck/internal/factcheck"
	"github.com/anatolykoptev/go_factcheck/internal/history"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	cookieName      = "fc_session"
	defaultTTL      = 30 * time.Minute
	defaultSessions = 10000
	janitorInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

// Config holds web UI settings.
type Config struct {
	CORSOrigins []string
	RatePerMin  int           // submits per client per minute; 0 disables
	SessionTTL  time.Duration // idle expiry; 0 means 30m
	MaxSessions int           // 0 means 10000
}

// Server is the web front end.
type Server struct {
	cfg      Config
	engine   *gin.Engine
	sessions *sessions
	limiter  *rateLimiter
	stop     chan struct{}
}

// New builds the router. rec may be nil.
func New(cfg Config, api backend.API, rec history.Recorder) *Server {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultSessions
	}
	s := &Server{
		cfg: cfg,
		sessions: newSessions(cfg.MaxSessions, func() *factcheck.Form {
			if rec == nil {
				return factcheck.New(api)
			}
			return factcheck.New(api, factcheck.WithRecorder(rec))
		}),
		limiter: newRateLimiter(cfg.RatePerMin),
		stop:    make(chan struct{}),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), cors.New(corsConfig(cfg.CORSOrigins)))
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.GET("/", s.index)
	r.POST("/", s.limiter.limit(), s.submitForm)
	r.GET("/api/state", s.state)
	r.POST("/api/submit", s.limiter.limit(), s.submitJSON)
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine = r

	go s.janitor()
	return s
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("webui: shutdown", slog.Any("error", err))
		}
	}()

	slog.Info("webui: listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops the session janitor and closes every session's form.
func (s *Server) Close() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	s.sessions.closeAll()
}

func (s *Server) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.sessions.expire(s.cfg.SessionTTL); n > 0 {
				slog.Debug("webui: sessions expired", slog.Int("count", n))
			}
			s.limiter.sweep(s.cfg.SessionTTL)
		case <-s.stop:
			return
		}
	}
}
