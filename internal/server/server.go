// Package server wires the session gate into the application front end.
package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/alexlup06-authgate/sessiongate-go/internal/config"
	"github.com/alexlup06-authgate/sessiongate-go/sessiongate"
	"github.com/alexlup06-authgate/sessiongate-go/sessiongate/gingate"
)

// CompleteOnboardingPath is the endpoint that writes the onboarding marker.
const CompleteOnboardingPath = "/api/onboarding/complete"

//go:embed templates/*.html
var templatesFS embed.FS

// Server represents the HTTP server
type Server struct {
	router  *gin.Engine
	config  *config.Config
	logger  zerolog.Logger
	gate    *sessiongate.Gate
	matcher *sessiongate.Matcher
	version string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	provider, err := newProvider(cfg, zlog)
	if err != nil {
		return nil, err
	}

	return NewWithProvider(cfg, zlog, version, provider)
}

// NewWithProvider creates a server around an explicit session provider.
func NewWithProvider(cfg *config.Config, zlog zerolog.Logger, version string, provider sessiongate.Provider) (*Server, error) {
	matcher := sessiongate.DefaultMatcher()

	gate, err := sessiongate.New(provider,
		sessiongate.WithLogger(zlog),
		sessiongate.WithMatcher(matcher),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session gate: %w", err)
	}

	s := &Server{
		config:  cfg,
		logger:  zlog,
		gate:    gate,
		matcher: matcher,
		version: version,
	}

	if err := s.setupRouter(); err != nil {
		return nil, err
	}

	return s, nil
}

// newProvider builds the AuthGate provider and its outbound HTTP client.
// Both are created once per server and shared by all requests.
func newProvider(cfg *config.Config, zlog zerolog.Logger) (*sessiongate.AuthGateProvider, error) {
	provider, err := sessiongate.NewAuthGateProvider(sessiongate.ProviderConfig{
		Issuer:            cfg.AuthGate.Issuer,
		Audience:          cfg.AuthGate.Audience,
		Keys:              cfg.AuthGate.KeyBytes(),
		AuthGateBaseURL:   cfg.AuthGate.BaseURL,
		HTTPClient:        &http.Client{Timeout: cfg.AuthGate.Timeout},
		ProtectedPrefixes: cfg.Server.ProtectedPrefixes,
		Logger:            zlog.With().Str("component", "authgate").Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	return provider, nil
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() error {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	s.router.SetHTMLTemplate(tmpl)

	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(gingate.Middleware(s.gate))

	s.router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, sessiongate.DashboardPath)
	})
	s.router.GET("/healthz", s.healthCheck)

	s.router.GET(sessiongate.DashboardPath, s.dashboard)
	s.router.GET(sessiongate.DashboardPath+"/*section", s.dashboard)
	s.router.GET(sessiongate.OnboardingPath, s.onboarding)

	complete := gin.WrapH(sessiongate.CompleteOnboardingHandler(s.logger))
	// The handler itself answers 405 for anything but POST.
	s.router.Any(CompleteOnboardingPath, complete)

	s.router.NoRoute(s.serveAsset)

	return nil
}

// healthCheck reports liveness and the running version
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"version":   s.version,
	})
}

type pageData struct {
	Authenticated bool
	Email         string
	Section       string
	CompletePath  string
	DashboardPath string
}

func (s *Server) page(c *gin.Context) pageData {
	data := pageData{
		Authenticated: sessiongate.IsAuthenticated(c.Request.Context()),
		CompletePath:  CompleteOnboardingPath,
		DashboardPath: sessiongate.DashboardPath,
	}
	if u, ok := gingate.User(c); ok {
		data.Email = u.Email
	}
	return data
}

func (s *Server) dashboard(c *gin.Context) {
	data := s.page(c)
	data.Section = trimSection(c.Param("section"))
	c.HTML(http.StatusOK, "dashboard.html", data)
}

func (s *Server) onboarding(c *gin.Context) {
	c.HTML(http.StatusOK, "onboarding.html", s.page(c))
}

func trimSection(section string) string {
	return strings.Trim(section, "/")
}

// serveAsset serves static files for paths the gate excludes and 404s the
// rest.
func (s *Server) serveAsset(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.Status(http.StatusNotFound)
		return
	}
	if !s.matcher.Excluded(c.Request.URL.Path) {
		c.String(http.StatusNotFound, "not found")
		return
	}
	http.FileServer(http.Dir(s.config.Server.StaticDir)).ServeHTTP(c.Writer, c.Request)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := s.config.Server.Addr

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-sigChan:
	}
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
