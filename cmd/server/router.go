package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"careport/internal/directory"
	"careport/internal/hostname"
	"careport/internal/identity"
	"careport/internal/microsite"
	"careport/internal/platform/config"
	"careport/internal/platform/middleware"
	"careport/internal/platform/postgres"
	platformredis "careport/internal/platform/redis"
	"careport/internal/rewrite"
)

// newRouter assembles the full edge routing surface. Order matters: the
// rewrite middleware must see the request before any route matching, and
// request metadata must be in place before the rewrite logs anything.
func newRouter(
	cfg config.Server,
	log *slog.Logger,
	classifier *hostname.Classifier,
	chain rewrite.Resolver,
	dir *directory.Service,
	idSvc *identity.Service,
	redisClient *platformredis.Client,
	pool *pgxpool.Pool,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			// Every tenant lives on its own subdomain; the identity bridge
			// must answer all of them. Credentials ride on the auth cookie.
			return true
		},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(rewrite.Middleware(classifier, chain, log))

	r.Get("/health", healthHandler(redisClient, pool))
	r.Handle("/metrics", promhttp.Handler())

	dirHandler := directory.NewHandler(dir, log)
	dirHandler.Register(r)
	r.Group(func(g chi.Router) {
		g.Use(middleware.RequireAdminToken(cfg.AdminToken, log))
		dirHandler.RegisterAdmin(g)
	})

	identity.NewHandler(idSvc, log).Register(r)
	microsite.NewHandler(dir, log).Register(r)

	// The bare-domain and reserved-subdomain marketplace surface. Static
	// assets and marketing pages sit behind the same process in development.
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"service":"careport","status":"ok"}`))
	})

	return r
}

func healthHandler(redisClient *platformredis.Client, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, `{"status":"degraded","component":"redis"}`, http.StatusServiceUnavailable)
				return
			}
		}
		if err := postgres.Health(r.Context(), pool); err != nil {
			http.Error(w, `{"status":"degraded","component":"postgres"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
