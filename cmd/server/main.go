// cmd/server/main.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"

	_ "github.com/lib/pq"

	"biblioteca/internal/catalog"
	"biblioteca/internal/config"
	"biblioteca/internal/membership"
	"biblioteca/internal/server"
	"biblioteca/internal/storage/memory"
	"biblioteca/internal/storage/postgres"
	"biblioteca/internal/telemetry"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if cfg.OTLPEndpoint != "" {
		shutdown, err := telemetry.Init(ctx, cfg.OTLPEndpoint, "biblioteca")
		if err != nil {
			log.Fatalf("Failed to initialize telemetry: %v", err)
		}
		defer shutdown(ctx)
	}

	var (
		userStore membership.UserStore
		itemStore catalog.ItemStore
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := postgres.InitSchema(ctx, db); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		userStore = postgres.NewUserStore(db)
		itemStore = postgres.NewItemStore(db)
	} else {
		log.Println("DATABASE_URL not set, using in-memory storage")
		userStore = memory.NewUserStore()
		itemStore = memory.NewItemStore()
	}

	if cfg.SeedDemoUsers {
		if err := membership.Seed(ctx, userStore); err != nil {
			log.Fatalf("Failed to seed demo accounts: %v", err)
		}
	}

	sessions := membership.NewSessionManager(cfg.SessionTTL)
	members := membership.NewService(userStore, sessions)
	items := catalog.NewService(itemStore)

	handler := server.New(members, items)

	fmt.Printf("🚀 Starting Biblioteca API on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
