package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/memodb-io/notespace/internal/bootstrap"
	"github.com/memodb-io/notespace/internal/config"
	mq "github.com/memodb-io/notespace/internal/infra/queue"
	"github.com/memodb-io/notespace/internal/modules/service"
	"github.com/memodb-io/notespace/internal/telemetry"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/samber/do"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// The worker replays note and membership change events into cache invalidations,
// covering writers whose synchronous invalidation failed, and delivers queued
// verification mail through the configured relay.
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

	if cfg.Telemetry.Enabled {
		if _, err := telemetry.SetupTracing(cfg); err != nil {
			log.Sugar().Warnw("tracing disabled", "err", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = telemetry.Shutdown(shutdownCtx)
		}()
	}

	conn := do.MustInvoke[*amqp.Connection](inj)
	defer conn.Close()

	invalidations, err := mq.NewConsumer(conn, cfg.RabbitMQ.Queue.CacheInvalidation, cfg.RabbitMQ.Prefetch, log, cfg,
		mq.Binding{Exchange: cfg.RabbitMQ.Exchange.Events, RoutingKey: service.RoutingNoteChanged},
		mq.Binding{Exchange: cfg.RabbitMQ.Exchange.Events, RoutingKey: service.RoutingMembershipChanged},
	)
	if err != nil {
		return fmt.Errorf("start invalidation consumer: %w", err)
	}
	defer invalidations.Close()

	inv := do.MustInvoke[*service.CacheInvalidator](inj)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Sugar().Infow("consuming", "queue", cfg.RabbitMQ.Queue.CacheInvalidation)
		return invalidations.Handle(gctx, func(ctx context.Context, d mq.Delivery) error {
			return inv.Handle(ctx, d.RoutingKey, d.Body)
		})
	})

	if cfg.Mail.RelayURL != "" {
		mails, err := mq.NewConsumer(conn, cfg.RabbitMQ.Queue.MailDelivery, cfg.RabbitMQ.Prefetch, log, cfg,
			mq.Binding{Exchange: cfg.RabbitMQ.Exchange.Mail, RoutingKey: service.RoutingMailVerification},
		)
		if err != nil {
			return fmt.Errorf("start mail consumer: %w", err)
		}
		defer mails.Close()

		dispatcher := do.MustInvoke[*service.MailDispatcher](inj)
		g.Go(func() error {
			log.Sugar().Infow("consuming", "queue", cfg.RabbitMQ.Queue.MailDelivery)
			return mails.Handle(gctx, func(ctx context.Context, d mq.Delivery) error {
				return dispatcher.Handle(ctx, d.RoutingKey, d.Body)
			})
		})
	} else {
		log.Warn("mail.relayURL not set, verification mail stays queued")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
