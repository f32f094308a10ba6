package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/servipro/marketplace-api/config"
	"github.com/servipro/marketplace-api/internal/email"
	"github.com/servipro/marketplace-api/internal/handler"
	authhandler "github.com/servipro/marketplace-api/internal/handler/auth"
	bookinghandler "github.com/servipro/marketplace-api/internal/handler/booking"
	cataloghandler "github.com/servipro/marketplace-api/internal/handler/catalog"
	messagehandler "github.com/servipro/marketplace-api/internal/handler/message"
	reviewhandler "github.com/servipro/marketplace-api/internal/handler/review"
	userhandler "github.com/servipro/marketplace-api/internal/handler/user"
	"github.com/servipro/marketplace-api/internal/middleware"
	"github.com/servipro/marketplace-api/internal/repository"
	"github.com/servipro/marketplace-api/internal/repository/memory"
	"github.com/servipro/marketplace-api/internal/repository/postgres"
	"github.com/servipro/marketplace-api/internal/router"
	authsvc "github.com/servipro/marketplace-api/internal/service/auth"
	bookingsvc "github.com/servipro/marketplace-api/internal/service/booking"
	catalogsvc "github.com/servipro/marketplace-api/internal/service/catalog"
	"github.com/servipro/marketplace-api/internal/service/event"
	messagingsvc "github.com/servipro/marketplace-api/internal/service/messaging"
	"github.com/servipro/marketplace-api/internal/service/notification"
	reviewsvc "github.com/servipro/marketplace-api/internal/service/review"
	usersvc "github.com/servipro/marketplace-api/internal/service/user"
	"github.com/servipro/marketplace-api/pkg/auth"
	"github.com/servipro/marketplace-api/pkg/logger"
	"github.com/servipro/marketplace-api/pkg/metrics"
)

type repos struct {
	users         repository.UserRepository
	services      repository.ServiceRepository
	bookings      repository.BookingRepository
	messages      repository.MessageRepository
	reviews       repository.ReviewRepository
	outbox        repository.OutboxRepository
	notifications repository.NotificationRepository
}

func main() {
	configPath := flag.String("config", "config/config.yml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot := logger.New(nil)
		boot.Fatal(err, "failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := logger.New(&logger.Config{Level: level, Pretty: cfg.Log.Pretty, Output: os.Stdout})

	var db *sqlx.DB
	var r repos
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		store := memory.NewStore()
		r = repos{
			users:         store.Users(),
			services:      store.Services(),
			bookings:      store.Bookings(),
			messages:      store.Messages(),
			reviews:       store.Reviews(),
			outbox:        store.Outbox(),
			notifications: store.Notifications(),
		}
		log.Warn("running with in-memory storage, data will not survive a restart")
	default:
		db, err = postgres.NewDB(cfg.Database, log)
		if err != nil {
			log.Fatal(err, "failed to connect to database")
		}
		defer db.Close()
		r = repos{
			users:         postgres.NewUserRepository(db),
			services:      postgres.NewServiceRepository(db),
			bookings:      postgres.NewBookingRepository(db),
			messages:      postgres.NewMessageRepository(db),
			reviews:       postgres.NewReviewRepository(db),
			outbox:        postgres.NewOutboxRepository(db),
			notifications: postgres.NewNotificationRepository(db),
		}
	}

	m := metrics.New(cfg.Metrics.Namespace)
	tokens := auth.NewTokenService(cfg.JWT)

	var sender email.Sender
	if cfg.SMTP.Host != "" {
		sender = email.NewSMTPSender(cfg.SMTP)
	} else {
		sender = email.NewLogSender(log)
	}

	events := event.NewService(r.outbox, log)
	notifier := notification.NewService(r.notifications, sender, log)

	handlers := router.Handlers{
		Health:  handler.NewHealth(db),
		Auth:    authhandler.NewHandler(authsvc.NewService(r.users, tokens, log)),
		User:    userhandler.NewHandler(usersvc.NewService(r.users)),
		Catalog: cataloghandler.NewHandler(catalogsvc.NewService(r.services)),
		Booking: bookinghandler.NewHandler(bookingsvc.NewService(
			r.bookings, r.services, r.users, events, notifier, m)),
		Message: messagehandler.NewHandler(messagingsvc.NewService(r.messages, r.users, events)),
		Review: reviewhandler.NewHandler(reviewsvc.NewService(
			r.reviews, r.bookings, r.users, r.services, events)),
	}

	authMW := middleware.NewAuthMiddleware(tokens, r.users)
	engine := router.New(cfg.Router, log, authMW, handlers)

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server listening", "addr", srv.Addr, "backend", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "graceful shutdown failed")
	}
}
