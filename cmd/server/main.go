package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/memodb-io/notespace/internal/bootstrap"
	"github.com/memodb-io/notespace/internal/config"
	mq "github.com/memodb-io/notespace/internal/infra/queue"
	"github.com/memodb-io/notespace/internal/modules/handler"
	"github.com/memodb-io/notespace/internal/modules/repo"
	"github.com/memodb-io/notespace/internal/modules/service"
	"github.com/memodb-io/notespace/internal/router"
	"github.com/memodb-io/notespace/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// @title						Notespace API
// @version					1.0
// @description				Projects, memberships, notes and assets for a multi-user knowledge base.
// @BasePath					/api/v1
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				Bearer ns_sess_xxx session token.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	inj := bootstrap.BuildContainer()
	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer func() { _ = log.Sync() }()

	if cfg.App.Env == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Telemetry.Enabled {
		if _, err := telemetry.SetupTracing(cfg); err != nil {
			log.Sugar().Warnw("tracing disabled", "err", err)
		}
		if _, err := telemetry.SetupMetrics(cfg); err != nil {
			log.Sugar().Warnw("metrics disabled", "err", err)
		} else if err := telemetry.InitCacheMetrics(); err != nil {
			log.Sugar().Warnw("cache metrics disabled", "err", err)
		}
	}

	db := do.MustInvoke[*gorm.DB](inj)
	if err := bootstrap.EnsurePersonalSpaces(ctx, db, do.MustInvoke[repo.ProjectRepo](inj), log); err != nil {
		return fmt.Errorf("personal space backfill: %w", err)
	}

	engine, err := router.NewRouter(router.RouterDeps{
		Config:            cfg,
		Log:               log,
		Accounts:          do.MustInvoke[service.AccountService](inj),
		AccountHandler:    do.MustInvoke[*handler.AccountHandler](inj),
		ProjectHandler:    do.MustInvoke[*handler.ProjectHandler](inj),
		MembershipHandler: do.MustInvoke[*handler.MembershipHandler](inj),
		NoteHandler:       do.MustInvoke[*handler.NoteHandler](inj),
		AssetHandler:      do.MustInvoke[*handler.AssetHandler](inj),
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Sugar().Infow("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		log.Info("shutting down")
		err := srv.Shutdown(shutdownCtx)
		if perr := do.MustInvoke[*mq.Publisher](inj).Close(); perr != nil {
			log.Sugar().Warnw("close publisher", "err", perr)
		}
		if rerr := do.MustInvoke[*redis.Client](inj).Close(); rerr != nil {
			log.Sugar().Warnw("close redis", "err", rerr)
		}
		if cfg.Telemetry.Enabled {
			_ = telemetry.ShutdownMetrics(shutdownCtx)
			_ = telemetry.Shutdown(shutdownCtx)
		}
		return err
	})
	return g.Wait()
}
