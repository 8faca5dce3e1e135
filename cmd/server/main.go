package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/food_order/internal/config"
	"github.com/Skotchmaster/food_order/internal/db"
	"github.com/Skotchmaster/food_order/internal/feed"
	"github.com/Skotchmaster/food_order/internal/logging"
	loggingmw "github.com/Skotchmaster/food_order/internal/middleware/logging"
	"github.com/Skotchmaster/food_order/internal/mykafka"
	"github.com/Skotchmaster/food_order/internal/repo"
	"github.com/Skotchmaster/food_order/internal/search"
	"github.com/Skotchmaster/food_order/internal/service"
	"github.com/Skotchmaster/food_order/internal/session"
	httpserver "github.com/Skotchmaster/food_order/internal/transport/http"
)

func main() {
	cfg := config.Load()

	log := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(log)
	if err := cfg.Validate(); err != nil {
		log.Error("config_invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Error("db_open_failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Error("db_migrate_failed", "error", err)
		os.Exit(1)
	}
	if n, err := db.Seed(ctx, gdb, db.DefaultMenu); err != nil {
		log.Error("db_seed_failed", "error", err)
		os.Exit(1)
	} else if n > 0 {
		log.Info("menu_seeded", "items", n)
	}
	rp := repo.New(gdb)

	sessions, closeSessions := newSessionStore(ctx, cfg, log)
	defer closeSessions()

	hub := feed.NewHub()
	producer := mykafka.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()
	if producer.Enabled() {
		consumer := mykafka.NewConsumer(cfg.KafkaBrokers, hub, log)
		defer consumer.Close()
		go consumer.Run(ctx)
	} else {
		log.Info("kafka_disabled")
	}

	searcher := newSearcher(ctx, cfg, log, rp)

	authSvc := &service.AuthService{
		Repo:          rp,
		JWTSecret:     cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		Events:        producer,
	}
	menuSvc := &service.MenuService{Repo: rp, Search: searcher}
	cartSvc := &service.CartService{Repo: rp, Sessions: sessions, Events: producer, Notifier: hub}
	orderSvc := &service.OrderService{Repo: rp, Events: producer, Notifier: hub}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(log))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:  &httpserver.AuthHTTP{Svc: authSvc},
		MenuHandler:  &httpserver.MenuHTTP{Svc: menuSvc},
		CartHandler:  &httpserver.CartHTTP{Svc: cartSvc},
		OrderHandler: &httpserver.OrderHTTP{Svc: orderSvc, Hub: hub},
		AdminHandler: &httpserver.AdminHTTP{Auth: authSvc, Menu: menuSvc, Orders: orderSvc},
		JWTSecret:    cfg.JWTAccessSecret,
		Refresher:    authSvc,
		Roles:        authSvc,
		CSRF:         cfg.CSRFEnabled,
		Ready:        func(ctx context.Context) error { return db.Ping(ctx, gdb) },
	})

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:     e,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
		// ends open order streams once shutdown starts
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		log.Info("http_listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_server_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server_shutdown_error", "error", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("db_close_error", "error", err)
		}
	}
	log.Info("shutdown complete")
}

// newSessionStore uses Redis when REDIS_ADDR is set and reachable, memory
// otherwise.
func newSessionStore(ctx context.Context, cfg config.Config, log *slog.Logger) (session.Store, func()) {
	if cfg.RedisAddr == "" {
		log.Info("sessions_in_memory")
		return session.NewMemoryStore(), func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis_unavailable", "addr", cfg.RedisAddr, "error", err)
		client.Close()
		return session.NewMemoryStore(), func() {}
	}

	log.Info("sessions_in_redis", "addr", cfg.RedisAddr)
	return session.NewRedisStore(client), func() { client.Close() }
}

// newSearcher uses Elasticsearch when ES_URL is set and reachable, and
// indexes the current menu into it. The menu table is searched otherwise.
func newSearcher(ctx context.Context, cfg config.Config, log *slog.Logger, rp *repo.GormRepo) search.Searcher {
	fallback := search.NewDBSearcher(rp)
	if cfg.ESURL == "" {
		return fallback
	}

	client, err := search.NewClient(log, cfg.ESURL, cfg.ESUser, cfg.ESPassword)
	if err != nil {
		log.Warn("es_unavailable", "error", err)
		return fallback
	}
	es := search.NewESSearcher(client, cfg.ESIndex)

	items, err := rp.ListMenu(ctx)
	if err == nil {
		err = search.IndexAll(ctx, es, items)
	}
	if err != nil {
		log.Warn("es_index_failed", "error", err)
	}
	return es
}
