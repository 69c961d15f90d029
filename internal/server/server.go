// package server contains the router, middleware and handlers of the execution relay
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiovault/internal/services"
	"github.com/desertthunder/audiovault/internal/shared"
	"github.com/desertthunder/audiovault/internal/web"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows the path patterns it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Programs accepted by each relay endpoint.
var (
	DownloadPrograms = []string{"spotdl", "yt-dlp"}
	MetadataPrograms = []string{"eyeD3"}
)

// ServerOpts configures a [Server]. Runner is required.
type ServerOpts struct {
	Config shared.ServerConfig
	Mounts map[string]string
	Runner services.CommandRunner
	Logger *log.Logger
}

// Server is the execution relay: two command endpoints, static mounts and the UI bundle.
type Server struct {
	addr   string
	router *BasicRouter
	logger *log.Logger
}

// New builds the relay routes.
//
// Both command endpoints share one rate limiter and one execution slot.
func New(opts ServerOpts) *Server {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	router := NewBasicRouter()
	router.Use(Logging(opts.Logger), CORS())

	limit := rate.Inf
	if opts.Config.RateLimit > 0 {
		limit = rate.Limit(opts.Config.RateLimit)
	}
	burst := max(opts.Config.RateBurst, 1)
	relay := []Middleware{RateLimit(rate.NewLimiter(limit, burst)), Serialize()}

	download := NewRelayHandler(services.RelayDownloadPath, DownloadPrograms, opts.Runner, opts.Logger)
	metadata := NewRelayHandler(services.RelayMetadataPath, MetadataPrograms, opts.Runner, opts.Logger)
	metadata.ExpandGlobs = true

	router.Handle(http.MethodPost, services.RelayDownloadPath, Chain(download, relay...))
	router.Handle(http.MethodPost, services.RelayMetadataPath, Chain(metadata, relay...))
	router.Handler(NewMountsHandler(opts.Mounts))
	router.Handle(http.MethodGet, "/", web.NewSPAHandler(opts.Config.UIDir))

	return &Server{addr: opts.Config.Addr(), router: router, logger: opts.Logger}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Addr() string {
	return s.addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("relay listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down relay")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
