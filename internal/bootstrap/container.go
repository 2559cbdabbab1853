package bootstrap

import (
	"context"
	"time"

	"github.com/memodb-io/notespace/internal/config"
	"github.com/memodb-io/notespace/internal/infra/blob"
	"github.com/memodb-io/notespace/internal/infra/cache"
	"github.com/memodb-io/notespace/internal/infra/db"
	"github.com/memodb-io/notespace/internal/infra/httpclient"
	"github.com/memodb-io/notespace/internal/infra/logger"
	mq "github.com/memodb-io/notespace/internal/infra/queue"
	"github.com/memodb-io/notespace/internal/modules/handler"
	"github.com/memodb-io/notespace/internal/modules/repo"
	"github.com/memodb-io/notespace/internal/modules/service"
	"github.com/memodb-io/notespace/internal/pkg/captcha"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled {
			if err := db.RegisterOpenTelemetryPlugin(d); err != nil {
				log.Sugar().Warnw("gorm tracing disabled", "err", err)
			}
		}
		if cfg.Database.AutoMigrate {
			if err := Migrate(context.Background(), d, log); err != nil {
				return nil, err
			}
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		rdb, err := cache.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled {
			if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
				log.Sugar().Warnw("redis tracing disabled", "err", err)
			}
		}
		return rdb, nil
	})
	do.Provide(inj, func(i *do.Injector) (*cache.RedisStore, error) {
		return cache.NewRedisStore(do.MustInvoke[*redis.Client](i)), nil
	})

	// RabbitMQ
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		return mq.Dial(do.MustInvoke[*config.Config](i))
	})
	do.Provide(inj, func(i *do.Injector) (*mq.Publisher, error) {
		return mq.NewPublisher(
			do.MustInvoke[*amqp.Connection](i),
			do.MustInvoke[*zap.Logger](i),
			do.MustInvoke[*config.Config](i),
		)
	})

	// S3
	do.Provide(inj, func(i *do.Injector) (*blob.S3Deps, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return blob.NewS3(context.Background(), cfg)
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.MembershipRepo, error) {
		return repo.NewMembershipRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.NoteRepo, error) {
		return repo.NewNoteRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.AssetRepo, error) {
		return repo.NewAssetRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (*service.UserHooks, error) {
		return service.DefaultUserHooks(do.MustInvoke[repo.ProjectRepo](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.VisibleNotesCache, error) {
		cfg := do.MustInvoke[*config.Config](i)
		notes := do.MustInvoke[repo.NoteRepo](i)
		return service.NewVisibleNotesCache(
			do.MustInvoke[*cache.RedisStore](i),
			notes.ListVisible,
			time.Duration(cfg.Cache.VisibleNotesTTLSec)*time.Second,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.MembershipRepo](i),
			do.MustInvoke[service.VisibleNotesCache](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.MembershipService, error) {
		return service.NewMembershipService(
			do.MustInvoke[repo.MembershipRepo](i),
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[service.VisibleNotesCache](i),
			do.MustInvoke[*mq.Publisher](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.NoteService, error) {
		return service.NewNoteService(
			do.MustInvoke[repo.NoteRepo](i),
			do.MustInvoke[repo.MembershipRepo](i),
			do.MustInvoke[service.VisibleNotesCache](i),
			do.MustInvoke[*mq.Publisher](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.AssetService, error) {
		return service.NewAssetService(
			do.MustInvoke[repo.AssetRepo](i),
			do.MustInvoke[repo.MembershipRepo](i),
			do.MustInvoke[*blob.S3Deps](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.AccountService, error) {
		return service.NewAccountService(
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[*service.UserHooks](i),
			do.MustInvoke[*cache.RedisStore](i),
			captcha.New(captcha.DefaultOptions()),
			do.MustInvoke[*mq.Publisher](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*service.MailDispatcher, error) {
		log := do.MustInvoke[*zap.Logger](i)
		return service.NewMailDispatcher(
			httpclient.NewMailClient(do.MustInvoke[*config.Config](i), log),
			log,
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*service.CacheInvalidator, error) {
		return service.NewCacheInvalidator(
			do.MustInvoke[repo.MembershipRepo](i),
			do.MustInvoke[service.VisibleNotesCache](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.AccountHandler, error) {
		return handler.NewAccountHandler(
			do.MustInvoke[service.AccountService](i),
			do.MustInvoke[*config.Config](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(do.MustInvoke[service.ProjectService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.MembershipHandler, error) {
		return handler.NewMembershipHandler(do.MustInvoke[service.MembershipService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.NoteHandler, error) {
		return handler.NewNoteHandler(do.MustInvoke[service.NoteService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.AssetHandler, error) {
		return handler.NewAssetHandler(do.MustInvoke[service.AssetService](i)), nil
	})
	return inj
}
