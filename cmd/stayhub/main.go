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

	"stayhub/internal/app/commands"
	bookingapp "stayhub/internal/app/handlers/booking"
	listingapp "stayhub/internal/app/handlers/listings"
	userapp "stayhub/internal/app/handlers/users"
	"stayhub/internal/app/middleware"
	appoutbox "stayhub/internal/app/outbox"
	"stayhub/internal/app/policies"
	"stayhub/internal/app/queries"
	authsvc "stayhub/internal/app/services/auth"
	domainauth "stayhub/internal/domain/auth"
	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	domainuser "stayhub/internal/domain/user"
	"stayhub/internal/infra/broker/kafka"
	"stayhub/internal/infra/config"
	mongodb "stayhub/internal/infra/db/mongo"
	"stayhub/internal/infra/geo"
	ginserver "stayhub/internal/infra/http/gin"
	"stayhub/internal/infra/obs"
	infraoutbox "stayhub/internal/infra/outbox"
	"stayhub/internal/infra/payments/stripe"
	"stayhub/internal/infra/security"
	"stayhub/internal/infra/storage/memory"
	"stayhub/internal/infra/storage/s3"
	"stayhub/internal/infra/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback in-memory configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
		cfg.Currency = getenv("CURRENCY", "USD")
		cfg.SessionTTL = 24 * time.Hour
		cfg.OutboxPollInterval = 500 * time.Millisecond
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Checks: app.readiness,
	}, app.handlers)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers  ginserver.Handlers
	worker    *infraoutbox.Worker
	readiness map[string]obs.ReadinessCheck
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		listings  domainlisting.Repository
		users     domainuser.Repository
		bookings  domainbooking.Repository
		sessions  domainauth.SessionStore
		box       appoutbox.Outbox
		flusher   middleware.OutboxFlusher
		idStore   middleware.IdempotencyStore
		worker    *infraoutbox.Worker
		readiness = map[string]obs.ReadinessCheck{}
	)

	if cfg.MongoURI != "" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, err
		}
		readiness["mongo"] = client.Ping
		listings = mongodb.NewListingRepository(client.DB)
		users = mongodb.NewUserRepository(client.DB)
		bookings = mongodb.NewBookingRepository(client.DB)
		sessions = mongodb.NewSessionStore(client.DB)
		idStore = mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		store := infraoutbox.NewStore(client.DB)
		box, flusher = store, store
		worker = &infraoutbox.Worker{
			Store:       store,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
	} else {
		logger.Warn("MONGO_URI not set, using in-memory storage")
		listings = memory.NewListingRepository()
		users = memory.NewUserRepository()
		bookings = memory.NewBookingRepository()
		sessions = memory.NewSessionStore()
		idStore = memory.NewIdempotencyStore()
		store := memory.NewOutboxStore()
		box, flusher = store, store
		worker = &infraoutbox.Worker{
			Store:       store,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return application{}, err
		}
		worker.Producer = producer
	} else {
		logger.Warn("KAFKA_BROKERS not set, outbox worker disabled")
		worker = nil
	}

	var payments policies.PaymentGateway
	if cfg.StripeSecretKey != "" {
		payments = &stripe.Gateway{
			Client:    &http.Client{Timeout: 15 * time.Second},
			APIBase:   cfg.StripeAPIBase,
			SecretKey: cfg.StripeSecretKey,
			ClientID:  cfg.StripeClientID,
			Logger:    logger,
		}
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, charges are simulated")
		payments = memory.NewPaymentGateway()
	}

	var geocoder policies.Geocoder
	if cfg.GeocodeAPIKey != "" {
		geocoder = &geo.GoogleGeocoder{
			Client:  &http.Client{Timeout: 10 * time.Second},
			APIBase: cfg.GeocodeAPIBase,
			APIKey:  cfg.GeocodeAPIKey,
		}
	} else {
		geocoder = memory.Geocoder{}
	}

	var images policies.ImageStore
	if uploader, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger); err != nil {
		logger.Warn("s3 uploader unavailable, listing photos disabled", "error", err)
	} else {
		images = uploader
	}

	authService := &authsvc.Service{
		Users:      users,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Currency:   cfg.Currency,
		Logger:     logger,
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.SettleBookingCommand{}.Key(), &bookingapp.SettleBookingHandler{
		Listings: listings,
		Users:    users,
		Bookings: bookings,
		Payments: payments,
		Outbox:   box,
		Logger:   logger,
		Currency: cfg.Currency,
	})
	commands.RegisterHandler(commandBus, listingapp.HostListingCommand{}.Key(), &listingapp.HostListingHandler{
		Listings: listings,
		Users:    users,
		Geocoder: geocoder,
		Images:   images,
		Outbox:   box,
	})
	commands.RegisterHandler(commandBus, userapp.ConnectWalletCommand{}.Key(), &userapp.ConnectWalletHandler{
		Users:    users,
		Payments: payments,
	})
	commands.RegisterHandler(commandBus, userapp.DisconnectWalletCommand{}.Key(), &userapp.DisconnectWalletHandler{
		Users:    users,
		Payments: payments,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, listingapp.GetListingQuery{}.Key(), &listingapp.GetListingHandler{
		Listings: listings,
		Bookings: bookings,
	})
	queries.RegisterHandler(queryBus, listingapp.SearchCatalogQuery{}.Key(), &listingapp.SearchCatalogHandler{
		Listings: listings,
		Geocoder: geocoder,
	})
	queries.RegisterHandler(queryBus, userapp.GetUserQuery{}.Key(), &userapp.GetUserHandler{
		Users:    users,
		Bookings: bookings,
		Listings: listings,
	})

	validator := validation.New()
	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(validator),
		middleware.Idempotency(idStore, nil),
		middleware.OutboxFlush(flusher),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	authMW := ginserver.AuthMiddleware{Service: authService, Logger: logger}

	return application{
		handlers: ginserver.Handlers{
			Booking: ginserver.BookingHandler{Commands: commandBusWithMiddleware, Logger: logger},
			Listing: ginserver.ListingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
			User:    ginserver.UserHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
			Auth:    &ginserver.AuthHandler{Service: authService, Logger: logger},
			AuthMiddleware: authMW.Handle,
		},
		worker:    worker,
		readiness: readiness,
	}, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
