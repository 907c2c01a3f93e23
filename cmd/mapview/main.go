package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"campus_map/internal/adapters/campusapi"
	server "campus_map/internal/adapters/http_server"
	"campus_map/internal/adapters/observability"
	redisad "campus_map/internal/adapters/redis"
	"campus_map/internal/adapters/scene"
	"campus_map/internal/app"
	"campus_map/internal/domain"
	"campus_map/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// session store
	store := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer store.Close()
	if err := store.Ping(ctx); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
	}
	log.Info().Msg("redis connection ok")

	// campus backend
	campus, err := campusapi.New(cfg.CampusBase, cfg.CampusRPS, cfg.CampusTimeout, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize campus API client")
	}

	factory := func(ns app.NewSession) (*app.Controller, app.Renderer) {
		sc := scene.New(ns.Geo)
		api := campus.WithUpstream(ns.Upstream)
		d := app.Deps{
			Map:          sc,
			Page:         sc,
			Notifier:     sc,
			Geo:          sc,
			Facilities:   api,
			Reservations: api,
			Log:          log.Logger,
		}
		if cfg.RouteWalk {
			d.Routes = api
		}
		return app.NewController(ns.Host, d), sc
	}
	sessions := app.NewSessionService(store, factory, cfg.SessionTTL, log.Logger)

	cookie, err := server.NewSessionCookie(cfg.SessionSecret, cfg.SessionTTL, cfg.AppEnv != "dev")
	if err != nil {
		log.Fatal().Err(err).Msg("session cookie setup failed")
	}

	// http
	reg := observability.InitRegistry()
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Sessions:       sessions,
		Cookie:         cookie,
		DefaultLang:    domain.ParseLang(cfg.DefaultLang),
		UpstreamCookie: "session",
	}, cfg.UIRatePerSec)

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	metricsSrv := observability.Serve(cfg.MetricsAddr, reg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("map view API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if metricsSrv != nil {
		g.Go(func() error {
			log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		return sessions.RunSweeper(gctx, time.Minute, cfg.SessionIdle)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		err := httpSrv.Shutdown(shutdownCtx)
		if metricsSrv != nil {
			err = errors.Join(err, metricsSrv.Shutdown(shutdownCtx))
		}
		return err
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("stopped")
}
