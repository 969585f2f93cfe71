package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ignite/assoc-admin/internal/migrate"
	"github.com/ignite/assoc-admin/internal/repository/postgres"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}
	listOnly := len(os.Args) > 1 && os.Args[1] == "--list"

	db, err := postgres.Open(dsn, 2, 1)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}
	log.Println("Connected to database")

	runner, err := migrate.NewRunner(db)
	if err != nil {
		log.Fatal(err)
	}

	if listOnly {
		pending, err := runner.Pending(ctx)
		if err != nil {
			log.Fatal(err)
		}
		for _, m := range pending {
			fmt.Println(" ", m.Name)
		}
		fmt.Printf("Pending: %d migrations\n", len(pending))
		return
	}

	applied, err := runner.Up(ctx)
	for _, name := range applied {
		fmt.Printf("  %s ... OK\n", name)
	}
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Printf("Done: %d applied", len(applied))
}
