// Package router wires the HTTP API: account endpoints, the catalog proxy,
// health and metrics, all behind the common middleware chain.
package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/arrowflix/internal/gzippedhttp"
	"github.com/patric-chuzhbe/arrowflix/internal/logger"
	"github.com/patric-chuzhbe/arrowflix/internal/models"
	"github.com/patric-chuzhbe/arrowflix/internal/user"
)

// DefaultAPIPrefix is where the API is mounted unless WithAPIPrefix says otherwise.
const DefaultAPIPrefix = "/api"

// maxRequestBodyBytes caps JSON request bodies.
const maxRequestBodyBytes = 1 << 20

type accountService interface {
	Register(ctx context.Context, name, email, password string) (*user.User, error)
	Ping(ctx context.Context) error
}

type authenticator interface {
	Login(ctx context.Context, email, password string) (string, *user.User, error)
	Me(usr *user.User) user.PublicView
	AuthenticateUser(h http.Handler) http.Handler
}

type catalogProvider interface {
	Trending(ctx context.Context) (models.CatalogPage, error)
	TopRated(ctx context.Context) (models.CatalogPage, error)
	ByGenre(ctx context.Context, genreID int) (models.CatalogPage, error)
}

type metricsProvider interface {
	Handler() http.Handler
	HTTPMiddleware(h http.Handler) http.Handler
}

// Router holds the dependencies of the HTTP handlers.
type Router struct {
	accounts  accountService
	auth      authenticator
	catalog   catalogProvider
	validate  *validator.Validate
	apiPrefix string
	metrics   metricsProvider

	// metricsAccess guards GET /metrics, e.g. with a trusted subnet check.
	metricsAccess func(http.Handler) http.Handler
}

type Option func(*Router)

// WithAPIPrefix mounts the API under prefix.
func WithAPIPrefix(prefix string) Option {
	return func(r *Router) {
		r.apiPrefix = prefix
	}
}

// WithMetrics instruments every request and exposes GET /metrics.
func WithMetrics(metrics metricsProvider) Option {
	return func(r *Router) {
		r.metrics = metrics
	}
}

// WithMetricsAccess wraps the GET /metrics handler with guard.
func WithMetricsAccess(guard func(http.Handler) http.Handler) Option {
	return func(r *Router) {
		r.metricsAccess = guard
	}
}

// New builds the chi router.
func New(
	accounts accountService,
	theAuth authenticator,
	catalog catalogProvider,
	options ...Option,
) *chi.Mux {
	myRouter := &Router{
		accounts:  accounts,
		auth:      theAuth,
		catalog:   catalog,
		validate:  validator.New(),
		apiPrefix: DefaultAPIPrefix,
	}
	for _, option := range options {
		option(myRouter)
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		logger.WithLoggingHTTPMiddleware,
		middleware.Recoverer,
	)
	if myRouter.metrics != nil {
		router.Use(myRouter.metrics.HTTPMiddleware)
		metricsHandler := myRouter.metrics.Handler()
		if myRouter.metricsAccess != nil {
			metricsHandler = myRouter.metricsAccess(metricsHandler)
		}
		router.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	router.Route(myRouter.apiPrefix, func(api chi.Router) {
		api.Use(
			gzippedhttp.UngzipRequest,
			middleware.Compress(5, "application/json"),
		)

		api.Get(`/ping`, myRouter.GetPing)

		api.Post(`/auth/register`, myRouter.PostAuthregister)
		api.Post(`/auth/login`, myRouter.PostAuthlogin)
		api.With(theAuth.AuthenticateUser).Get(`/auth/me`, myRouter.GetAuthme)

		api.Get(`/movies/trending`, myRouter.GetMoviestrending)
		api.Get(`/movies/top-rated`, myRouter.GetMoviestoprated)
		api.Get(`/movies/genre/{id:[0-9]+}`, myRouter.GetMoviesgenre)
	})

	return router
}
