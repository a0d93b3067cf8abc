package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/dmitrymomot/interviewkit/pkg/config"
	"github.com/dmitrymomot/interviewkit/pkg/cookie"
	"github.com/dmitrymomot/interviewkit/pkg/httpserver"
	"github.com/dmitrymomot/interviewkit/pkg/logger"
	"github.com/dmitrymomot/interviewkit/pkg/pg"
	"github.com/dmitrymomot/interviewkit/pkg/preference"
	"github.com/dmitrymomot/interviewkit/pkg/redis"
	"github.com/dmitrymomot/interviewkit/pkg/requestid"
	"github.com/dmitrymomot/interviewkit/pkg/sessionguard"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}

	var (
		logCfg    logger.Config
		httpCfg   httpserver.Config
		redisCfg  redis.Config
		pgCfg     pg.Config
		cookieCfg cookie.Config
		guardCfg  sessionguard.Config
		prefCfg   preference.Config
		appCfg    appConfig
	)
	config.MustLoad(&logCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&cookieCfg)
	config.MustLoad(&guardCfg)
	config.MustLoad(&prefCfg)
	config.MustLoad(&appCfg)

	log := logger.New(append(logger.FromConfig(logCfg),
		logger.WithContextExtractors(requestid.LogExtractor),
	)...)
	logger.SetAsDefault(log)

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return err
	}

	probes := []httpserver.Probe{{Name: "redis", Check: redis.Healthcheck(redisClient)}}

	var sessions sessionProvider
	if pgCfg.Enabled() {
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := pg.Migrate(ctx, pool, sessionguard.Migrations(), ".", pgCfg, log); err != nil {
			return err
		}

		provider := sessionguard.NewPostgresProvider(pool, sessionguard.WithProviderLogger(log))
		if err := provider.Start(ctx); err != nil {
			return errors.Join(errors.New("start session listener"), err)
		}
		defer func() { _ = provider.Close() }()

		sessions = provider
		probes = append(probes, httpserver.Probe{Name: "postgres", Check: pg.Healthcheck(pool)})
		log.InfoContext(ctx, "sessions backed by postgres")
	} else {
		sessions = sessionguard.NewRedisProvider(redisClient, sessionguard.WithProviderLogger(log))
		log.InfoContext(ctx, "sessions backed by redis")
	}

	a := &app{
		log:      log,
		cfg:      appCfg,
		cookies:  cookies,
		sessions: sessions,
		guard:    append(guardCfg.Options(), sessionguard.WithLogger(log)),
		prefCfg:  prefCfg,
		probes:   probes,
	}

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, a.routes())
}
