package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-session-scheduler/internal/config"
	"github.com/iliyamo/conference-session-scheduler/internal/database"
	"github.com/iliyamo/conference-session-scheduler/internal/handler"
	"github.com/iliyamo/conference-session-scheduler/internal/ledger"
	"github.com/iliyamo/conference-session-scheduler/internal/middleware"
	"github.com/iliyamo/conference-session-scheduler/internal/queue"
	"github.com/iliyamo/conference-session-scheduler/internal/repository"
	"github.com/iliyamo/conference-session-scheduler/internal/router"
	queue_publisher "github.com/iliyamo/conference-session-scheduler/internal/service"
)

func main() {
	// Load .env if present; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting and the
	// schedule response cache.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	events := repository.NewEventRepo(db)
	rooms := repository.NewRoomRepo(db)
	timeSlots := repository.NewTimeSlotRepo(db)
	talks := repository.NewTalkRepo(db)
	talkSlots := repository.NewTalkSlotRepo(db)
	store := repository.NewLedgerStore(db)

	signer := ledger.NewTokenSigner(cfg.JWTSecret, cfg.ConfirmationSalt, cfg.ConfirmationDays)
	lg := ledger.New(store, signer, queue_publisher.Notifier{})

	// The notification consumer drains the mail queue in the
	// background and reconnects on broker failures.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users), cfg.JWTSecret)

	scheduleH := handler.NewScheduleHandler(events, rooms, timeSlots, talks, talkSlots)
	var cacheMW echo.MiddlewareFunc
	if rdb != nil {
		cacheMW = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}
	router.RegisterPublic(e, scheduleH, cacheMW)

	router.RegisterOrganizer(e, handler.NewOrganizerHandler(events, rooms, timeSlots, talks, talkSlots), cfg.JWTSecret)

	reservationH := handler.NewReservationHandler(users, events, talks, store, lg)
	var limiter echo.MiddlewareFunc
	if rdb != nil {
		limiter = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	}
	router.RegisterAttendee(e, reservationH, cfg.JWTSecret, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
