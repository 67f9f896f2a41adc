package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/study-room-reservation/internal/config"
	"github.com/iliyamo/study-room-reservation/internal/database"
	"github.com/iliyamo/study-room-reservation/internal/handler"
	"github.com/iliyamo/study-room-reservation/internal/lifecycle"
	"github.com/iliyamo/study-room-reservation/internal/middleware"
	"github.com/iliyamo/study-room-reservation/internal/queue"
	"github.com/iliyamo/study-room-reservation/internal/repository"
	"github.com/iliyamo/study-room-reservation/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("main: no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("main: database connection failed: %v", err)
	}
	defer db.Close()

	// Redis is optional; a nil client turns the rate limiter and the
	// response cache into pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("main: redis unavailable, rate limiting and caching disabled")
	}

	students := repository.NewStudentRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	seats := repository.NewSeatRepo(db)
	bookings := repository.NewBookingRepo(db)
	engine := lifecycle.New(repository.NewLifecycleStore(db))

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := students.EnsureDefaults(seedCtx, cfg.BcryptCost); err != nil {
		log.Printf("main: seeding default accounts failed: %v", err)
	}
	cancel()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	auth := handler.NewAuthHandler(cfg, students, tokens)
	booking := handler.NewBookingHandler(engine, students, bookings, rooms, seats)
	browse := handler.NewBrowseHandler(rooms, seats, bookings)
	adminRooms := handler.NewAdminRoomHandler(rooms)
	adminSeats := handler.NewAdminSeatHandler(engine, seats, rooms)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterStudent(e, booking, browse, cfg.JWTSecret, config.LoadCacheConfig(), rdb)
	router.RegisterAdmin(e, auth, adminRooms, adminSeats, cfg.JWTSecret)

	// The consumer keeps its own reconnect loop and never stops the
	// server when the broker is down.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("main: booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
