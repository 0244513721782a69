// Command server runs the vexgate configuration gateway.
//
// Configuration is read from a YAML file (--config, VEXGATE_CONFIG,
// ./config.yaml or /etc/vexgate/config.yaml) and VEXGATE_* environment
// variables. See pkg/config for the full list.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/rhuss/vexgate/pkg/auth"
	"github.com/rhuss/vexgate/pkg/auth/jwt"
	"github.com/rhuss/vexgate/pkg/auth/kv"
	"github.com/rhuss/vexgate/pkg/auth/noop"
	"github.com/rhuss/vexgate/pkg/config"
	"github.com/rhuss/vexgate/pkg/credential"
	"github.com/rhuss/vexgate/pkg/debug"
	"github.com/rhuss/vexgate/pkg/engine"
	"github.com/rhuss/vexgate/pkg/observability"
	"github.com/rhuss/vexgate/pkg/storage"
	"github.com/rhuss/vexgate/pkg/storage/memory"
	"github.com/rhuss/vexgate/pkg/storage/postgres"
	"github.com/rhuss/vexgate/pkg/storage/redis"
	transporthttp "github.com/rhuss/vexgate/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string

	flagSet := pflag.NewFlagSet("vexgate", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	debug.Init(cfg.Logging.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", cfg.Storage.Type, err)
	}
	defer backend.Close()
	backend = storage.Instrument(cfg.Storage.Type, backend)

	authn, err := newAuthenticator(cfg.Auth, backend)
	if err != nil {
		return fmt.Errorf("creating %s authenticator: %w", cfg.Auth.Type, err)
	}

	eng, err := engine.New(authn, backend, engine.Config{
		ParallelLookup: cfg.Engine.ParallelLookup,
	})
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	metricsCfg := cfg.Observability.Metrics
	opts := []transporthttp.ServerOption{
		transporthttp.WithAddr(":" + strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithReadTimeout(cfg.Server.ReadTimeout),
		transporthttp.WithWriteTimeout(cfg.Server.WriteTimeout),
		transporthttp.WithRequestTimeout(cfg.Server.RequestTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(logger),
	}
	if metricsCfg.Enabled {
		opts = append(opts, transporthttp.WithHTTPMiddleware(observability.MetricsMiddleware))
		if metricsCfg.Port == 0 {
			opts = append(opts, transporthttp.WithMetrics(metricsCfg.Path, promhttp.Handler()))
		}
	}

	srv := transporthttp.NewServer(eng, opts...)
	srv.Adapter().AddReadinessCheck("storage", backend.HealthCheck)
	if j, ok := authn.(*jwt.Authenticator); ok {
		srv.Adapter().AddReadinessCheck("jwks", j.HealthCheck)
	}

	logger.Info("vexgate configured",
		slog.String("auth", cfg.Auth.Type),
		slog.String("storage", cfg.Storage.Type),
		slog.String("mode", eng.Mode()),
		slog.Any("debug", debug.Categories()),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(ctx)
	})

	if metricsCfg.Enabled && metricsCfg.Port != 0 {
		g.Go(func() error {
			return serveMetrics(ctx, logger, metricsCfg, cfg.Server.ShutdownTimeout)
		})
	}

	return g.Wait()
}

func newLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler), nil
}

func openBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage.Type {
	case "postgres":
		pg := cfg.Storage.Postgres
		store, err := postgres.New(ctx, postgres.Config{
			DSN:            pg.DSN,
			MaxConns:       pg.MaxConns,
			MigrateOnStart: pg.MigrateOnStart,
		})
		if err != nil {
			return nil, err
		}
		return store, nil

	case "redis":
		rc := cfg.Storage.Redis
		store, err := redis.New(ctx, redis.Config{
			Addr:             rc.Addr,
			Password:         rc.Password,
			DB:               rc.DB,
			CredentialPrefix: rc.CredentialPrefix,
			ProjectPrefix:    rc.ProjectPrefix,
		})
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		store := memory.New()
		if path := cfg.Storage.Memory.SeedFile; path != "" {
			digest, err := credential.ParseDigest(cfg.Auth.Digest)
			if err != nil {
				return nil, err
			}
			if err := store.SeedFile(path, digest); err != nil {
				return nil, err
			}
			creds, projects := store.Len()
			slog.Info("memory store seeded",
				slog.String("file", path),
				slog.Int("credentials", creds),
				slog.Int("projects", projects),
			)
		}
		return store, nil
	}
}

func newAuthenticator(cfg config.AuthConfig, creds storage.CredentialStore) (auth.Authenticator, error) {
	switch cfg.Type {
	case "jwt":
		return jwt.New(jwt.Config{
			Issuer:       cfg.JWT.Issuer,
			Audience:     cfg.JWT.Audience,
			JWKSURL:      cfg.JWT.JWKSURL,
			AccountClaim: cfg.JWT.AccountClaim,
			CacheTTL:     cfg.JWT.CacheTTL,
		}), nil

	case "none":
		slog.Warn("authentication disabled, every project is readable by anyone")
		return &noop.Authenticator{}, nil

	default:
		digest, err := credential.ParseDigest(cfg.Digest)
		if err != nil {
			return nil, err
		}
		return kv.New(creds, digest), nil
	}
}

// serveMetrics exposes the Prometheus registry on its own listener.
func serveMetrics(ctx context.Context, logger *slog.Logger, cfg config.MetricsConfig, shutdownTimeout time.Duration) error {
	mux := http.NewServeMux()
	mux.Handle("GET "+cfg.Path, promhttp.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", ":"+strconv.Itoa(cfg.Port))
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server starting", slog.String("addr", ln.Addr().String()), slog.String("path", cfg.Path))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
