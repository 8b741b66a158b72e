// careport's edge server: classifies hostnames, resolves tenants, rewrites
// tenant requests onto microsite routes, and bridges identity across the
// platform's subdomains.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"careport/internal/audit"
	"careport/internal/directory"
	directorymetrics "careport/internal/directory/metrics"
	doctorstore "careport/internal/directory/store/doctor"
	hospitalstore "careport/internal/directory/store/hospital"
	"careport/internal/hostname"
	"careport/internal/identity"
	sessionstore "careport/internal/identity/store/session"
	userstore "careport/internal/identity/store/user"
	"careport/internal/platform/config"
	"careport/internal/platform/httpserver"
	"careport/internal/platform/logger"
	"careport/internal/platform/postgres"
	platformredis "careport/internal/platform/redis"
	"careport/internal/resolver"
	resolvermetrics "careport/internal/resolver/metrics"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Infrastructure clients. Both are optional: without them the process
	// runs entirely in memory, which is the development default.
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	// Audit pipeline: Kafka when brokers are configured, in-process otherwise.
	var sink audit.Sink = audit.NewMemorySink()
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
	}
	auditor := audit.NewPublisher(sink, log)

	// Tenant directory.
	var hospitals directory.HospitalStore = hospitalstore.NewInMemory()
	var doctors directory.DoctorStore = doctorstore.NewInMemory()
	if pool != nil {
		hospitals = hospitalstore.NewPostgres(pool)
		doctors = doctorstore.NewPostgres(pool)
	}
	dir := directory.NewService(hospitals, doctors, cfg.Routing.ReservedLabels,
		directory.WithLogger(log),
		directory.WithAudit(auditor),
		directory.WithMetrics(directorymetrics.New()),
	)
	if pool == nil {
		directory.SeedDevTenants(ctx, dir)
	}

	// Identity bridge.
	users := userstore.NewInMemory()
	if _, err := identity.SeedDevUsers(users); err != nil {
		log.Error("seed dev users failed", "error", err)
		os.Exit(1)
	}
	var sessions identity.SessionStore = sessionstore.NewInMemory()
	if redisClient != nil {
		sessions = sessionstore.NewRedis(redisClient.Client, cfg.Identity.TokenTTL)
	}
	tokens := identity.NewTokenService(cfg.Identity.JWTSigningKey, cfg.Identity.Issuer, cfg.Identity.TokenTTL)
	idSvc := identity.NewService(users, sessions, tokens,
		identity.WithLogger(log),
		identity.WithAudit(auditor),
	)

	// Edge routing: classifier, resolver chain, rewrite.
	classifier := hostname.New(cfg.Routing.ReservedLabels, cfg.Routing.InternalSuffixes, cfg.Routing.SubdomainRouting)
	chain := resolver.NewChain([]resolver.Strategy{
		resolver.NewHospitalBySubdomain(cfg.Routing.APIBaseURL, cfg.Routing.LookupTimeout),
		resolver.NewDoctorBySlug(cfg.Routing.APIBaseURL, cfg.Routing.LookupTimeout),
	},
		resolver.WithLogger(log),
		resolver.WithMetrics(resolvermetrics.New()),
	)

	router := newRouter(cfg, log, classifier, chain, dir, idSvc, redisClient, pool)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("careport edge listening",
			"addr", cfg.Addr,
			"subdomain_routing", cfg.Routing.SubdomainRouting,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("careport edge stopped")
}
