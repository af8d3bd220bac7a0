package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/coral-stay/api/internal/config"
	"github.com/coral-stay/api/internal/router"
	"github.com/coral-stay/api/internal/service"
	"github.com/coral-stay/api/internal/store"
	"github.com/coral-stay/api/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	st := store.New(pool)
	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("Unable to ensure schema: %v", err)
	}

	// WebSocket hub for the live staff order queue
	hub := ws.NewHub()
	go hub.Run()

	orders := service.NewOrderService(st, &ws.QueueBroadcaster{Hub: hub}, 10*time.Second)
	leave := service.NewLeaveService(st, 10*time.Second)

	// Warm the live views before accepting traffic so the first queue
	// snapshot and the admin's pending list are complete.
	if err := orders.LoadActive(ctx); err != nil {
		log.Fatalf("Unable to load active orders: %v", err)
	}
	if err := leave.LoadPending(ctx); err != nil {
		log.Fatalf("Unable to load pending leave requests: %v", err)
	}

	r := router.New(cfg, st, orders, leave, hub)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
