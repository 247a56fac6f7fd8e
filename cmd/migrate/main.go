package main

import (
	"flag"
	"fmt"
	"log"

	"binroute-backend/internal/config"
	"binroute-backend/internal/database"
)

func main() {
	seed := flag.Bool("seed", false, "seed demo users, bins and trucks after migrating")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migration completed successfully!")

	if *seed || cfg.SeedDemoData {
		if err := database.SeedDemoData(db); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	}

	var summary struct {
		Users      int `db:"users"`
		Bins       int `db:"bins"`
		NeedPickup int `db:"need_pickup"`
		Trucks     int `db:"trucks"`
		RoutePlans int `db:"route_plans"`
	}
	err = db.Get(&summary, `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM bins) AS bins,
			(SELECT COUNT(*) FROM bins WHERE status = 'needs_pickup') AS need_pickup,
			(SELECT COUNT(*) FROM trucks) AS trucks,
			(SELECT COUNT(*) FROM route_plans) AS route_plans
	`)
	if err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}

	fmt.Println("\n============================================================")
	fmt.Println("DATABASE SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Users:                   %d\n", summary.Users)
	fmt.Printf("Bins:                    %d\n", summary.Bins)
	fmt.Printf("Bins flagged for pickup: %d\n", summary.NeedPickup)
	fmt.Printf("Trucks:                  %d\n", summary.Trucks)
	fmt.Printf("Route plans:             %d\n", summary.RoutePlans)
	fmt.Println("============================================================")
}
