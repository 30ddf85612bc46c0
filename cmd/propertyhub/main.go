package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"propertyhub/internal/app/commands"
	"propertyhub/internal/app/dto"
	availabilityapp "propertyhub/internal/app/handlers/availability"
	bookingapp "propertyhub/internal/app/handlers/booking"
	pricingapp "propertyhub/internal/app/handlers/pricing"
	"propertyhub/internal/app/middleware"
	"propertyhub/internal/app/outbox"
	"propertyhub/internal/app/policies"
	"propertyhub/internal/app/queries"
	"propertyhub/internal/infra/bookingapi"
	"propertyhub/internal/infra/broker/kafka"
	"propertyhub/internal/infra/config"
	mongostore "propertyhub/internal/infra/db/mongo"
	"propertyhub/internal/infra/db/postgres"
	ginserver "propertyhub/internal/infra/http/gin"
	"propertyhub/internal/infra/inbox"
	"propertyhub/internal/infra/obs"
	infraoutbox "propertyhub/internal/infra/outbox"
	"propertyhub/internal/infra/security"
	"propertyhub/internal/infra/storage/memory"
	"propertyhub/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	app.startBackground(ctx, cfg, logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: app.checks}, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "booking_source", cfg.BookingSource)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	checks   []obs.ReadinessCheck

	worker   *infraoutbox.Worker
	consumer *kafka.Consumer
	closers  []func(context.Context) error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{}
	now := func() time.Time { return time.Now().UTC() }

	var mongoClient *mongostore.Client
	if cfg.MongoURI != "" {
		client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		mongoClient = client
		app.closers = append(app.closers, client.Close)
		app.checks = append(app.checks, obs.ReadinessCheck{Name: "mongo", Check: client.Ping})
	}

	var restClient *bookingapi.Client
	if cfg.BookingAPIURL != "" {
		restClient = bookingapi.NewClient(cfg.BookingAPIURL, cfg.BookingAPIToken, cfg.BookingAPITimeout, logger)
	}
	ledger := memory.NewBookingLedger(false)

	source, err := app.buildSource(ctx, cfg, mongoClient, restClient, ledger, logger)
	if err != nil {
		return nil, err
	}
	snapshots := memory.NewSnapshotCache(source, cfg.SnapshotTTL)

	var creator policies.BookingCreator = ledger
	if restClient != nil {
		creator = restClient
	} else {
		logger.Warn("BOOKING_API_URL not set, bookings are kept in memory")
	}

	var idempotency middleware.IdempotencyStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	if mongoClient != nil {
		store, err := mongostore.NewIdempotencyStore(ctx, mongoClient.DB, cfg.IdempotencyTTL)
		if err != nil {
			return nil, err
		}
		idempotency = store
	}

	box, err := app.buildOutbox(ctx, cfg, mongoClient, logger)
	if err != nil {
		return nil, err
	}

	var receipts policies.QuoteArchive
	if cfg.S3Endpoint != "" {
		archive, err := s3.NewQuoteArchive(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, logger)
		if err != nil {
			return nil, err
		}
		receipts = archive
		app.checks = append(app.checks, obs.ReadinessCheck{Name: "s3", Check: archive.Ping})
	}

	checker := &availabilityapp.Checker{Source: snapshots, Now: now, Logger: logger}
	pricer := pricingapp.Pricer{DefaultTaxPercent: cfg.PlatformTaxPercent, Currency: cfg.Currency}

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler[availabilityapp.GetBookedDatesQuery, dto.BookedDates](queryBus, &availabilityapp.GetBookedDatesHandler{
		Checker:     checker,
		HorizonDays: cfg.HorizonDays,
	})
	queries.RegisterHandler[availabilityapp.CheckAvailabilityQuery, dto.AvailabilityDecision](queryBus, &availabilityapp.CheckAvailabilityHandler{Checker: checker})
	queries.RegisterHandler[pricingapp.GetQuoteQuery, dto.Quote](queryBus, &pricingapp.GetQuoteHandler{Checker: checker, Pricer: pricer})

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler[bookingapp.RequestBookingCommand, *dto.BookingConfirmation](commandBus, &bookingapp.RequestBookingHandler{
		Checker:   checker,
		Pricer:    pricer,
		Creator:   creator,
		Snapshots: snapshots,
		Receipts:  receipts,
		Outbox:    box,
		Encoder:   outbox.JSONEventEncoder{Source: "propertyhub"},
		Now:       now,
		Logger:    logger,
	})
	commands.RegisterHandler[availabilityapp.InvalidateSnapshotCommand, struct{}](commandBus, &availabilityapp.InvalidationHandler{
		Invalidator: snapshots,
		Logger:      logger,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Logging(logger),
		middleware.OutboxFlush(box, logger),
		middleware.Authorization(middleware.GuestAuthorizer{}),
		middleware.Validation(middleware.SelfValidation),
		middleware.Idempotency(idempotency, nil, now),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(middleware.SelfValidation),
	)

	var verifier ginserver.TokenVerifier
	if cfg.JWTSecret != "" {
		verifier = security.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	} else {
		logger.Warn("AUTH_JWT_SECRET not set, booking requests will be rejected as unauthenticated")
	}

	app.handlers = ginserver.Handlers{
		Availability:   ginserver.AvailabilityHandler{Queries: queryBusWithMiddleware},
		Quote:          ginserver.QuoteHandler{Queries: queryBusWithMiddleware},
		Booking:        ginserver.BookingHandler{Commands: commandBusWithMiddleware},
		AuthMiddleware: ginserver.AuthMiddleware{Verifier: verifier, Logger: logger}.Handle,
	}

	if len(cfg.KafkaBrokers) > 0 {
		var dedupe kafka.Inbox
		if mongoClient != nil {
			store, err := inbox.NewStore(ctx, mongoClient.DB, cfg.KafkaGroupID, 0)
			if err != nil {
				return nil, err
			}
			dedupe = store
		}
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, nil, &kafka.BookingEventsHandler{
			Bus:    commandBusWithMiddleware,
			Inbox:  dedupe,
			Logger: logger,
		}, logger)
		if err != nil {
			return nil, err
		}
		app.consumer = consumer
		app.closers = append(app.closers, func(context.Context) error { return consumer.Close() })
	}
	return app, nil
}

func (a *application) buildSource(ctx context.Context, cfg config.Config, mongoClient *mongostore.Client, restClient *bookingapi.Client, ledger *memory.BookingLedger, logger *slog.Logger) (policies.IntervalSource, error) {
	switch cfg.BookingSource {
	case config.SourceREST:
		return restClient, nil
	case config.SourceMongo:
		src := mongostore.NewIntervalSource(mongoClient.DB)
		if err := src.EnsureIndexes(ctx); err != nil {
			logger.Warn("booking index creation failed", "error", err)
		}
		return src, nil
	case config.SourcePostgres:
		pool, err := postgres.NewPool(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { pool.Close(); return nil })
		a.checks = append(a.checks, obs.ReadinessCheck{Name: "postgres", Check: pool.Ping})
		return postgres.NewIntervalSource(pool), nil
	default:
		return ledger, nil
	}
}

// buildOutbox picks the durable Mongo outbox when Mongo and Kafka are both
// configured; otherwise events are flushed in-process after each command.
func (a *application) buildOutbox(ctx context.Context, cfg config.Config, mongoClient *mongostore.Client, logger *slog.Logger) (outbox.Outbox, error) {
	var publisher *infraoutbox.CloudEventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, "propertyhub", nil)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return producer.Close() })
		publisher = &infraoutbox.CloudEventPublisher{Producer: producer, TopicPrefix: cfg.KafkaTopicPrefix}
	}

	if publisher != nil && mongoClient != nil {
		store, err := infraoutbox.NewStore(ctx, mongoClient.DB)
		if err != nil {
			return nil, err
		}
		a.worker = &infraoutbox.Worker{
			Store:     store,
			Publisher: publisher,
			Interval:  cfg.OutboxPollInterval,
			Backoff:   cfg.RetryBackoff,
			Logger:    logger,
		}
		a.checks = append(a.checks, obs.ReadinessCheck{
			Name:  "outbox",
			Check: infraoutbox.BacklogCheck(store, int64(cfg.OutboxBacklogLimit)),
		})
		return store, nil
	}

	box := &memory.Outbox{Logger: logger}
	if publisher != nil {
		box.Publisher = publisher
	}
	return box, nil
}

func (a *application) startBackground(ctx context.Context, cfg config.Config, logger *slog.Logger) {
	if a.worker != nil {
		go func() {
			if err := a.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}
	if a.consumer != nil {
		topics := []string{cfg.KafkaTopicPrefix + "booking.events.v1"}
		go func() {
			if err := a.consumer.Run(ctx, topics); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("booking events consumer stopped", "error", err)
			}
		}()
	}
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("shutdown step failed", "error", err)
		}
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
