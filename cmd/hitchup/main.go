package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"hitchup/internal/app/commands"
	availabilityapp "hitchup/internal/app/handlers/availability"
	rentalsapp "hitchup/internal/app/handlers/rentals"
	trailersapp "hitchup/internal/app/handlers/trailers"
	"hitchup/internal/app/middleware"
	appoutbox "hitchup/internal/app/outbox"
	"hitchup/internal/app/queries"
	authsvc "hitchup/internal/app/services/auth"
	"hitchup/internal/app/services/authz"
	"hitchup/internal/app/services/editor"
	"hitchup/internal/app/uow"
	domainauth "hitchup/internal/domain/auth"
	"hitchup/internal/domain/trailers"
	domainuser "hitchup/internal/domain/user"
	"hitchup/internal/infra/broker/kafka"
	"hitchup/internal/infra/config"
	mongodb "hitchup/internal/infra/db/mongo"
	"hitchup/internal/infra/export"
	ginserver "hitchup/internal/infra/http/gin"
	"hitchup/internal/infra/inbox"
	"hitchup/internal/infra/obs"
	infraoutbox "hitchup/internal/infra/outbox"
	"hitchup/internal/infra/security"
	"hitchup/internal/infra/storage/memory"
	"hitchup/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
		cfg.StorageMode = "memory"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := getenv("TRAILERS_FIXTURES", "")
	if fixturesPath == "" {
		fixturesPath = defaultTrailerFixturesPath()
	}
	if err := app.loadTrailerFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("trailer fixtures load failed", "error", err, "path", fixturesPath)
	}

	app.startWorkers(ctx, cfg, logger)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers   ginserver.Handlers
	selections *editor.Service
	trailers   trailers.Repository
	ready      func() error

	outboxWorker   *infraoutbox.Worker
	consumer       *kafka.Consumer
	snapshotWorker *export.SnapshotWorker
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		factory      uow.UoWFactory
		trailersRepo trailers.Repository
		box          appoutbox.Outbox
		outboxStore  *infraoutbox.Store
		idStore      middleware.IdempotencyStore
		dedupe       kafka.DedupeStore
		users        domainuser.Repository
		sessions     domainauth.SessionStore
		ready        = func() error { return nil }
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		trailersRepo = mongodb.NewTrailerRepository(client.DB)
		factory = mongodb.Factory{
			DB:            client.DB,
			TrailersRepo:  trailersRepo,
			TemplatesRepo: mongodb.NewTemplateRepository(client.DB),
			BlockedRepo:   mongodb.NewBlockedPeriodRepository(client.DB),
			RentalsRepo:   mongodb.NewRentalRepository(client.DB),
		}
		idStore = mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		outboxStore = infraoutbox.NewStore(client.DB)
		box = outboxStore
		dedupe = inbox.NewStore(client.DB, cfg.ConsumerGroup)
		users = mongodb.NewUserRepository(client.DB)
		sessions = mongodb.NewSessionStore(client.DB)
		ready = func() error {
			return client.Ping(context.Background())
		}
	default:
		trailersRepo = memory.NewTrailerRepository()
		factory = memory.Factory{
			TrailersRepo:  trailersRepo,
			TemplatesRepo: memory.NewTemplateRepository(),
			BlockedRepo:   memory.NewBlockedPeriodRepository(),
			RentalsRepo:   memory.NewRentalRepository(),
		}
		idStore = memory.NewIdempotencyStore()
		box = memory.NewOutbox()
		users = memory.NewUserRepository()
		sessions = memory.NewSessionStore()
	}

	authService := &authsvc.Service{
		Users:     users,
		Sessions:  sessions,
		Passwords: security.BcryptHasher{},
		Tokens:    security.RandomTokenGenerator{},
		Logger:    logger,
	}

	guard := availabilityapp.NewMutationGuard()
	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, availabilityapp.BlockRangeCommand{}.Key(), &availabilityapp.BlockRangeHandler{
		UoWFactory: factory,
		Guard:      guard,
		Outbox:     box,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, availabilityapp.UnblockRangeCommand{}.Key(), &availabilityapp.UnblockRangeHandler{
		UoWFactory: factory,
		Guard:      guard,
		Outbox:     box,
		Encoder:    encoder,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, availabilityapp.UpdateTemplateCommand{}.Key(), &availabilityapp.UpdateTemplateHandler{
		UoWFactory: factory,
		Outbox:     box,
		Encoder:    encoder,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(), &availabilityapp.GetCalendarHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, availabilityapp.GetTemplateQuery{}.Key(), &availabilityapp.GetTemplateHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, rentalsapp.GetRentalQuery{}.Key(), &rentalsapp.GetRentalHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, rentalsapp.ListTrailerRentalsQuery{}.Key(), &rentalsapp.ListTrailerRentalsHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, trailersapp.ListOwnerTrailersQuery{}.Key(), &trailersapp.ListOwnerTrailersHandler{UoWFactory: factory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(commandValidator{}),
		middleware.Authorization(authz.OwnerAuthorizer{Factory: factory}),
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(box),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	selections := editor.NewService(commandBusWithMiddleware, factory, logger)
	selections.TTL = cfg.SessionTTL

	app := application{
		handlers: ginserver.Handlers{
			Availability: ginserver.AvailabilityHandler{
				Queries:  queryBusWithMiddleware,
				Commands: commandBusWithMiddleware,
				Logger:   logger,
			},
			Selection: ginserver.SelectionHandler{Service: selections, Logger: logger},
			Rental:    ginserver.RentalHandler{Queries: queryBusWithMiddleware, Logger: logger},
			Trailer:   ginserver.TrailerHandler{Queries: queryBusWithMiddleware, Logger: logger},
			Feed:      ginserver.CalendarFeedHandler{Factory: factory, Logger: logger},
			Auth:      ginserver.AuthHandler{Service: authService, Logger: logger},
			AuthMiddleware: ginserver.AuthMiddleware{
				Service: authService,
				Logger:  logger,
			}.Handle,
		},
		selections: selections,
		trailers:   trailersRepo,
		ready:      ready,
	}

	if cfg.KafkaEnabled() {
		if outboxStore == nil {
			logger.Warn("kafka brokers configured but storage mode has no durable outbox, events will not be published")
		} else {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, fmt.Errorf("kafka producer: %w", err)
			}
			app.outboxWorker = &infraoutbox.Worker{
				Store:       outboxStore,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
		}

		projector := &kafka.BookingProjector{Factory: factory, Dedupe: dedupe, Logger: logger}
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, nil, projector)
		if err != nil {
			return application{}, fmt.Errorf("kafka consumer: %w", err)
		}
		app.consumer = consumer
	}

	if cfg.SnapshotsEnabled() {
		uploader, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			return application{}, fmt.Errorf("s3 client: %w", err)
		}
		app.snapshotWorker = &export.SnapshotWorker{
			Factory:  factory,
			Uploader: uploader,
			Interval: cfg.SnapshotInterval,
			Logger:   logger,
		}
	}

	return app, nil
}

func (a application) startWorkers(ctx context.Context, cfg config.Config, logger *slog.Logger) {
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := a.selections.Sweep(); n > 0 {
					logger.Debug("expired selection sessions dropped", "count", n)
				}
			}
		}
	}()

	if a.outboxWorker != nil {
		go func() {
			if err := a.outboxWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}
	if a.consumer != nil {
		go func() {
			defer a.consumer.Close()
			if err := a.consumer.Run(ctx, []string{cfg.BookingTopic}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("booking consumer stopped", "error", err)
			}
		}()
	}
	if a.snapshotWorker != nil {
		go a.snapshotWorker.Run(ctx)
	}
}

func (a application) loadTrailerFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("trailer fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("trailer fixtures file empty", "path", path)
		return nil
	}

	var fixtures []trailerFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		trailer, err := trailers.NewTrailer(trailers.CreateParams{
			ID:          trailers.TrailerID(fx.ID),
			Owner:       trailers.OwnerID(fx.Owner),
			Title:       fx.Title,
			Description: fx.Description,
			City:        fx.City,
			Now:         now,
		})
		if err != nil {
			logger.Error("fixture invalid", "trailer_id", fx.ID, "error", err)
			continue
		}
		trailer.List(now)
		if err := a.trailers.Save(ctx, trailer); err != nil {
			logger.Error("cannot store fixture trailer", "trailer_id", fx.ID, "error", err)
			continue
		}
		logger.Info("trailer fixture imported", "trailer_id", trailer.ID)
	}
	return nil
}

type trailerFixture struct {
	ID          string `json:"id"`
	Owner       string `json:"owner"`
	Title       string `json:"title"`
	Description string `json:"description"`
	City        string `json:"city"`
}

func defaultTrailerFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "trailers.json"),
		filepath.Join("backend", "data", "trailers.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}

// commandValidator runs a command's own Validate method, when it has one,
// before the rest of the pipeline spends any work on it.
type commandValidator struct{}

func (commandValidator) Validate(_ context.Context, message any) error {
	if v, ok := message.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
