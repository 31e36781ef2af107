// Command server runs the TradeMate support platform API.
//
// Configuration is read from a YAML file (--config, TRADEMATE_CONFIG,
// ./config.yaml or /etc/trademate/config.yaml) and TRADEMATE_* environment
// variables. With no configuration at all the server listens on :8000 with
// an in-memory store and no authentication.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/trademate/supportdesk/pkg/auth"
	"github.com/trademate/supportdesk/pkg/auth/apikey"
	"github.com/trademate/supportdesk/pkg/auth/jwt"
	"github.com/trademate/supportdesk/pkg/auth/noop"
	"github.com/trademate/supportdesk/pkg/auth/partnerkey"
	"github.com/trademate/supportdesk/pkg/config"
	"github.com/trademate/supportdesk/pkg/debug"
	"github.com/trademate/supportdesk/pkg/observability"
	"github.com/trademate/supportdesk/pkg/platform"
	"github.com/trademate/supportdesk/pkg/storage"
	"github.com/trademate/supportdesk/pkg/storage/memory"
	"github.com/trademate/supportdesk/pkg/storage/postgres"
	"github.com/trademate/supportdesk/pkg/storage/sqlite"
	"github.com/trademate/supportdesk/pkg/transport"
	transporthttp "github.com/trademate/supportdesk/pkg/transport/http"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	debug.Init(cfg.Debug.Categories, cfg.Debug.Level, cfg.Debug.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		ServiceName: cfg.Observability.Tracing.ServiceName,
		SampleRatio: cfg.Observability.Tracing.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}

	svc := platform.New(store, platform.Config{
		EscalationKeywords: cfg.Platform.EscalationKeywords,
		BcryptCost:         cfg.Platform.BcryptCost,
		VerifyTokenSuffix:  cfg.WhatsApp.VerifyTokenSuffix,
	})

	chain, err := buildAuthChain(cfg.Auth, svc)
	if err != nil {
		return err
	}

	opts := []transporthttp.ServerOption{
		transporthttp.WithAddr(":" + strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithCORSOrigins(cfg.Server.CORSOrigins),
		transporthttp.WithLogger(slog.Default()),
	}
	if cfg.Observability.Metrics.Enabled {
		opts = append(opts,
			transporthttp.WithMetrics(cfg.Observability.Metrics.Path, promhttp.Handler()),
			transporthttp.WithMiddleware(observability.MetricsMiddleware),
		)
	}
	if cfg.Observability.Tracing.Endpoint != "" {
		opts = append(opts, transporthttp.WithMiddleware(observability.TracingMiddleware))
	}
	opts = append(opts, transporthttp.WithMiddleware(
		transport.Middleware(auth.Middleware(chain, buildLimiter(cfg.Auth.RateLimit), bypassEndpoints(cfg))),
	))

	srv := transporthttp.NewServer(svc, opts...)

	slog.Info("platform configured",
		"storage", cfg.Storage.Type,
		"auth", cfg.Auth.Type,
		"rate_limit", cfg.Auth.RateLimit.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
		"tracing", cfg.Observability.Tracing.Endpoint != "",
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
		return nil
	})
	return g.Wait()
}

// openStore creates the configured storage backend.
func openStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Type {
	case "", "memory":
		slog.Info("storage enabled", "type", "memory", "max_size", cfg.MaxSize)
		return memory.New(cfg.MaxSize), nil
	case "postgres":
		s, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		slog.Info("storage enabled", "type", "postgres", "max_conns", cfg.Postgres.MaxConns)
		return s, nil
	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		slog.Info("storage enabled", "type", "sqlite", "path", cfg.SQLite.Path)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// buildAuthChain assembles the authenticators for cfg.Type. Partner keys
// issued at onboarding are accepted by every type except "none".
func buildAuthChain(cfg config.AuthConfig, resolver partnerkey.KeyResolver) (*auth.AuthChain, error) {
	if cfg.Type == "" || cfg.Type == "none" {
		return &auth.AuthChain{
			Authenticators:  []auth.Authenticator{&noop.Authenticator{}},
			DefaultDecision: auth.Yes,
		}, nil
	}

	chain := &auth.AuthChain{
		Authenticators:  []auth.Authenticator{partnerkey.New(resolver, cfg.KeyCacheTTL)},
		DefaultDecision: auth.No,
	}

	switch cfg.Type {
	case "partnerkey":
	case "apikey":
		entries := make([]apikey.RawKeyEntry, 0, len(cfg.APIKeys))
		for _, k := range cfg.APIKeys {
			id := auth.Identity{
				Subject:     k.Subject,
				ServiceTier: k.ServiceTier,
				Scopes:      k.Scopes,
			}
			if k.PartnerID != "" {
				id.Metadata = map[string]string{auth.MetadataTenant: k.PartnerID}
			}
			entries = append(entries, apikey.RawKeyEntry{Key: k.Key, Identity: id})
		}
		chain.Authenticators = append(chain.Authenticators, apikey.New(entries))
	case "jwt":
		chain.Authenticators = append(chain.Authenticators, jwt.New(jwt.Config{
			Issuer:      cfg.JWT.Issuer,
			Audience:    cfg.JWT.Audience,
			JWKSURL:     cfg.JWT.JWKSURL,
			TenantClaim: cfg.JWT.TenantClaim,
			TierClaim:   cfg.JWT.TierClaim,
			CacheTTL:    cfg.JWT.CacheTTL,
		}))
	default:
		return nil, errors.New("unknown auth type " + strconv.Quote(cfg.Type))
	}
	return chain, nil
}

// buildLimiter returns nil when rate limiting is disabled. Tier limits come
// from the platform plans, overridden by configuration.
func buildLimiter(cfg config.RateLimitConfig) auth.RateLimiter {
	if !cfg.Enabled {
		return nil
	}
	tiers := make(map[string]auth.TierConfig)
	for _, p := range platform.Plans() {
		tiers[string(p.Tier)] = auth.TierConfig{RequestsPerMinute: p.RequestsPerMinute}
	}
	for tier, rpm := range cfg.Tiers {
		tiers[tier] = auth.TierConfig{RequestsPerMinute: rpm}
	}
	return auth.NewInProcessLimiter(tiers, cfg.DefaultRPM)
}

func bypassEndpoints(cfg *config.Config) []string {
	eps := append([]string(nil), auth.DefaultBypassEndpoints...)
	if p := cfg.Observability.Metrics.Path; p != "" && p != "/metrics" {
		eps = append(eps, p)
	}
	return eps
}
