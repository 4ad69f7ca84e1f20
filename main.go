// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"userprofiles/core/profile/adapters/persistence/pg"
	"userprofiles/core/profile/adapters/rest"
	"userprofiles/core/profile/domain"
	"userprofiles/modules/appconfig"
	"userprofiles/modules/clock"
	"userprofiles/modules/db/postgres"
	"userprofiles/modules/db/redis"
	"userprofiles/modules/db/redis/counter"
	"userprofiles/modules/logger"
	"userprofiles/modules/middleware"
	"userprofiles/modules/middleware/ratelimit"
	"userprofiles/modules/oapi"
	rl "userprofiles/modules/ratelimit"
	"userprofiles/modules/server"
	"userprofiles/modules/services"
	"userprofiles/modules/telemetry"
)

func main() {
	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	// cancel the context when these signals occur
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	// manual dependency injections, imo there's no need to over-engineer with DI frameworks like Fx or Wire

	// --- application config ----
	appConfig, err := appconfig.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", slog.Any("error", err))
		exitCode = 1
		return
	}

	log, flush, err := logger.Init(appConfig.Log, appConfig.Env)
	if err != nil {
		slog.ErrorContext(ctx, "logger setup error", slog.Any("error", err))
		exitCode = 1
		return
	}
	defer flush()
	slog.SetDefault(log)

	otelShutdown, err := telemetry.Init(ctx, appConfig.Otel)
	if err != nil {
		slog.ErrorContext(ctx, "telemetry not properly configured", slog.Any("error", err))
		exitCode = 1
		return
	}
	defer func() {
		if err := otelShutdown(context.WithoutCancel(ctx)); err != nil {
			slog.ErrorContext(ctx, "telemetry shutdown error", slog.Any("error", err))
		}
	}()

	// --- infrastructure ---

	connectionPool, err := postgres.New(
		ctx,
		&appConfig.Postgres,
		postgres.PostgresOptions{
			WriterOptions: []postgres.PgxConfigOption{
				postgres.WithConnectTimeout(5 * time.Second),
				postgres.WithMaxConnIdleTime(5 * time.Minute),
			},
			// assuming writer connection does not pass through pgBouncer,
			// so we can apply server-side prepared statements
			ReaderOptions: []postgres.PgxConfigOption{
				postgres.WithPgBouncerSimpleProtocol(),
				postgres.WithConnectTimeout(5 * time.Second),
				postgres.WithMaxConnIdleTime(5 * time.Minute),
			},
		},
	)
	if err != nil {
		slog.ErrorContext(ctx, "database error", slog.Any("error", err))
		exitCode = 1
		return
	}
	defer func() {
		if err := connectionPool.Shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.ErrorContext(ctx, "database shutdown error", slog.Any("error", err))
		}
	}()

	if err = connectionPool.HealthCheck(ctx); err != nil {
		slog.ErrorContext(ctx, "database health check failed", slog.Any("error", err))
		exitCode = 1
		return
	}

	if appConfig.Postgres.AutoMigrate {
		if err := connectionPool.MigrateUp(); err != nil {
			slog.ErrorContext(ctx, "database migration failed", slog.Any("error", err))
			exitCode = 1
			return
		}
	}

	// reader picks a replica per call, writer stays on the primary
	app := domain.NewApp(
		pg.NewPostgresProfileReader(connectionPool, pg.DefaultTable),
		pg.NewPostgresProfileWriter(connectionPool, pg.DefaultTable),
		domain.WithQueryTimeout(appConfig.Postgres.QueryTimeout),
	)

	// --- http layer ---

	// middlewares resolve the route pattern against this mux before it serves
	mux := http.NewServeMux()
	routeFn := middleware.MuxPattern(mux)

	globalMiddlewares := []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RequestLogger(routeFn),
	}

	httpMetrics, err := telemetry.NewHTTPMetrics()
	if err != nil {
		slog.WarnContext(ctx, "failed to initialize HTTP metrics, continuing without metrics", slog.Any("error", err))
		httpMetrics = nil
	}
	globalMiddlewares = append(globalMiddlewares, middleware.Telemetry(httpMetrics, routeFn))

	if appConfig.RateLimit.Enabled {
		factory, closeFn, err := limiterFactory(ctx, appConfig)
		if err != nil {
			slog.ErrorContext(ctx, "rate limiter setup error", slog.Any("error", err))
			exitCode = 1
			return
		}
		defer closeFn()

		slog.Debug("app rate limit config", slog.Any("rate_limit_config", appConfig.RateLimit))

		rtp, err := ratelimit.ParsePolicy(
			factory,
			&appConfig.RateLimit.RestHTTPConfig,
			func(r *http.Request) ratelimit.RouteInfo {
				return ratelimit.RouteInfo{
					ID:     ratelimit.Pattern(routeFn(r)),
					Method: r.Method,
					Path:   r.URL.Path,
				}
			},
			ratelimit.KeyStrategies(appConfig.RateLimit.TrustedProxies),
		)
		if err != nil {
			slog.ErrorContext(ctx, "ratelimit config not properly parsed", slog.Any("error", err))
			exitCode = 1
			return
		}
		globalMiddlewares = append(globalMiddlewares, ratelimit.NewRateLimitMiddleware(rtp))
	}

	globalMiddlewares = append(globalMiddlewares, middleware.Recover())

	profileSvc := services.NewProfileAPIService(
		rest.NewProfileAPI(app, connectionPool),
		oapi.FS,
		oapi.ProfileSpecPath,
	)

	srv, err := server.New(
		appConfig.HTTP.Host, appConfig.HTTP.Port,
		server.WithMux(mux),
		server.WithReadTimeout(appConfig.HTTP.ReadTimeout),
		server.WithWriteTimeout(appConfig.HTTP.WriteTimeout),
		server.WithServices(profileSvc),
		server.WithGlobalMiddlewares(globalMiddlewares...),
	)
	if err != nil {
		slog.ErrorContext(ctx, "init server error", slog.Any("error", err))
		exitCode = 1
		return
	}

	if err := srv.Run(ctx); err != nil {
		slog.ErrorContext(ctx, "running server error", slog.Any("error", err))
		exitCode = 1
		return
	}
}

// limiterFactory picks the limiter backend. Redis counters are shared by
// every replica of the service, in-memory buckets are per process.
func limiterFactory(ctx context.Context, cfg *appconfig.Config) (rl.LimiterFactory, func(), error) {
	if cfg.RateLimit.Backend != ratelimit.BackendRedis {
		return rl.TokenBucketFactory(clock.Real), func() {}, nil
	}

	redisClient, err := redis.NewRueidisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	store := counter.NewRedisCounterStore(redisClient, cfg.Redis.KeyPrefix)
	return rl.SlidingWindowFactory(clock.Real, store, cfg.Env), redisClient.Close, nil
}
