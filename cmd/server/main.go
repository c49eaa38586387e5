package main

import (
	"log"
	"net/http"

	"github.com/robfig/cron/v3"

	"investa-backend/internal/api"
	"investa-backend/internal/config"
	"investa-backend/internal/database"
	"investa-backend/internal/ledger"
	"investa-backend/internal/notify"
	"investa-backend/internal/worker"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	// Connect to Redis
	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("Could not connect to redis: %v", err)
	}

	notifier, err := notify.New(cfg.BotToken)
	if err != nil {
		log.Fatalf("Could not create notifier: %v", err)
	}

	svc := ledger.NewService(db)

	// Scheduler: accrue interest every minute
	c := cron.New()
	accruer := worker.NewAccruer(svc, rdb)
	if err := accruer.Register(c, cfg.AccrualSchedule); err != nil {
		log.Fatalf("Could not schedule accrual worker: %v", err)
	}
	c.Start()

	server := api.NewServer(svc, notifier)

	log.Printf("Service started on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, server); err != nil {
		log.Fatalf("HTTP server stopped: %v", err)
	}
}
