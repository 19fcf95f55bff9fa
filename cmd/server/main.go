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

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/kiddeo/kiddeo-core/internal/cart"
	"github.com/kiddeo/kiddeo-core/internal/config"
	"github.com/kiddeo/kiddeo-core/internal/database"
	"github.com/kiddeo/kiddeo-core/internal/handler"
	"github.com/kiddeo/kiddeo-core/internal/logger"
	"github.com/kiddeo/kiddeo-core/internal/middleware"
	"github.com/kiddeo/kiddeo-core/internal/queue"
	"github.com/kiddeo/kiddeo-core/internal/repository"
	"github.com/kiddeo/kiddeo-core/internal/router"
	"github.com/kiddeo/kiddeo-core/internal/search"
)

func main() {
	cfg := config.Load()

	log, closeLog, err := logger.New(config.LoadLogConfig(), os.Stdout)
	if err != nil {
		log.Warn("fluent forwarding disabled", "err", err)
	}
	defer func() { _ = closeLog() }()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Error("database unavailable", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if cfg.DBEnsure {
		if err := database.EnsureSchema(ctx, db); err != nil {
			log.Error("schema bootstrap failed", "err", err)
			os.Exit(1)
		}
	}

	rdb := config.NewRedisClient(log)
	if rdb != nil {
		defer rdb.Close()
	}

	places := search.NewPlaceSource(repository.NewVenuePartnerRepo(db))
	searchSvc := search.NewService(
		repository.NewCityRepo(db),
		places,
		config.LoadSearchConfig(),
		log,
		search.NewListingSource(repository.NewListingRepo(db)),
		search.NewEventSource(repository.NewAfishaEventRepo(db)),
		places,
		search.NewContentSource(repository.NewContentRepo(db)),
		search.NewCollectionSource(repository.NewCollectionRepo(db)),
	)

	cartCfg := config.LoadCartConfig()
	var store cart.Store = cart.NewMemoryStore()
	if rdb != nil {
		store = cart.NewRedisStore(rdb, cartCfg.KeyPrefix, cartCfg.TTL)
	} else {
		log.Warn("carts kept in memory; they will not survive a restart")
	}
	cartSvc := cart.NewService(
		store,
		repository.NewTicketTypeRepo(db),
		repository.NewProductRepo(db),
		queue.NewPublisher(cfg.RabbitMQURL, log),
		log,
	)

	if cfg.ConsumerOn {
		go func() {
			if err := queue.StartCheckoutConsumer(ctx, cfg.RabbitMQURL, log); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("checkout consumer stopped", "err", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLog(log))
	e.Use(echomw.Recover())

	router.RegisterRoutes(e)
	router.RegisterSearch(e,
		&handler.SearchHandler{Search: searchSvc, Log: log},
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log),
	)
	router.RegisterCatalog(e, &handler.CatalogHandler{Tickets: cartSvc, Log: log})
	router.RegisterCart(e,
		&handler.SessionHandler{JWTSecret: cfg.JWTSecret, GuestTTL: time.Duration(cfg.GuestTTLMin) * time.Minute, Log: log},
		&handler.CartHandler{Cart: cartSvc, Log: log},
		cfg.JWTSecret,
	)

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "redis", rdb != nil)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}
