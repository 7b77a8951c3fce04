package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	tagUC interfaces.TagUseCase,
	repoUC interfaces.RepositoryUseCase,
	issueUC interfaces.IssueUseCase,
	opts ...Option,
) *Server {
	cfg := &config{
		addr: "localhost:8080",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get("/health", handleHealth)

	repoHandler := NewRepositoryHandler(tagUC, repoUC)
	issueHandler := NewIssueHandler(issueUC)

	router.Route("/api", func(r chi.Router) {
		r.Route("/repositories", func(r chi.Router) {
			r.Get("/", repoHandler.List)
			r.Post("/", repoHandler.Add)
			r.Post("/refresh", repoHandler.Refresh)
			r.Get("/history", repoHandler.History)
			r.Get("/{owner}/{repo}/tag", repoHandler.LatestTag)
		})
		r.Get("/issues/{owner}/{repo}/{number}", issueHandler.Get)
	})

	return &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}
}
