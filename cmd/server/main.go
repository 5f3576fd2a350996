package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hacksawright/cinema-management/internal/booking"
	"github.com/hacksawright/cinema-management/internal/config"
	"github.com/hacksawright/cinema-management/internal/database"
	"github.com/hacksawright/cinema-management/internal/handler"
	"github.com/hacksawright/cinema-management/internal/ledger"
	"github.com/hacksawright/cinema-management/internal/middleware"
	"github.com/hacksawright/cinema-management/internal/payment"
	"github.com/hacksawright/cinema-management/internal/queue"
	"github.com/hacksawright/cinema-management/internal/repository"
	"github.com/hacksawright/cinema-management/internal/router"
	queue_publisher "github.com/hacksawright/cinema-management/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories.
	movies := repository.NewMovieRepo(db)
	auditoriums := repository.NewAuditoriumRepo(db)
	showings := repository.NewShowingRepo(db)
	orders := repository.NewOrderRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	catalog := repository.NewCatalog(movies, auditoriums, showings)

	// Seat ledger.  The memory backend keeps holds in process, which is
	// enough for a single instance; mysql survives restarts and scales
	// out.
	var led ledger.Ledger
	switch cfg.LedgerStore {
	case "memory":
		led = ledger.NewMemory(catalog)
	default:
		led = ledger.NewSQL(db, catalog)
	}

	// Events are optional: without a broker URL the booking service
	// simply skips publishing.
	var events booking.EventPublisher
	if cfg.AMQPURL != "" {
		events = queue_publisher.Broker{}
		go func() {
			if err := queue.StartOrderConsumer(); err != nil {
				log.Printf("order consumer stopped: %v", err)
			}
		}()
	}

	svc := booking.NewService(catalog, orders, led, payment.NewOffline(), events)
	svc.HoldTTL = time.Duration(cfg.HoldTTLMin) * time.Minute

	// Expired holds vanish lazily on read; the sweeper just keeps the
	// backing store from accumulating dead rows.
	go sweep(led)

	e := echo.New()

	// Redis-backed rate limiting and response caching degrade to no-ops
	// when Redis is unreachable.
	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewCatalogHandler(movies, auditoriums, showings, svc))
	router.RegisterCustomer(e, handler.NewOrderHandler(svc), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(cfg, movies, auditoriums, showings, orders, users, svc), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s ledger=%s)", addr, cfg.Env, cfg.LedgerStore)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// sweep reclaims expired holds once a minute.
func sweep(led ledger.Ledger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		switch l := led.(type) {
		case *ledger.Memory:
			l.Sweep(ctx)
		case *ledger.SQL:
			if _, err := l.SweepExpired(ctx); err != nil {
				log.Printf("sweep: %v", err)
			}
		}
		cancel()
	}
}
