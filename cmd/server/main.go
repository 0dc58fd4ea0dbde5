package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/config"
	"github.com/iliyamo/restaurant-table-reservation/internal/database"
	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/router"
	"github.com/iliyamo/restaurant-table-reservation/internal/scheduler"
	notifier "github.com/iliyamo/restaurant-table-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting and caching disabled")
	}

	reservations := repository.NewReservationRepo(db)
	tables := repository.NewTableRepo(db)
	hours := repository.NewHoursRepo(db)
	bills := repository.NewBillRepo(db)
	customers := repository.NewCustomerRepo(db)
	reports := repository.NewReportRepo(db)

	svc := booking.New(reservations, tables, hours, bills, customers, reports, notifier.NewAMQP())

	sched := scheduler.New(svc)
	sched.Start(context.Background())
	defer sched.Stop()

	// The consumer simulates delivery by appending to logs/notifications.log.
	go func() {
		if err := queue.StartNotifyConsumer(); err != nil {
			log.Printf("notify consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	deps := router.Deps{
		Auth:         handler.NewAuthHandler(cfg, customers),
		Reservations: handler.NewReservationHandler(svc, reservations, bills),
		AdminTables:  handler.NewAdminTableHandler(svc, tables),
		AdminHours:   handler.NewAdminHoursHandler(svc, hours),
		AdminReports: handler.NewAdminReportHandler(reports),
		JWTSecret:    cfg.JWTSecret,
		Redis:        rdb,
		RateLimit:    config.LoadRateLimitConfig(),
		Cache:        config.LoadCacheConfig(),
	}
	router.RegisterRoutes(e)
	router.RegisterAuth(e, deps)
	router.RegisterReservations(e, deps)
	router.RegisterAdmin(e, deps)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
