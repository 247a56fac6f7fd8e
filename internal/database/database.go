package database

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("🔌 DATABASE CONNECTION ATTEMPT")
	log.Printf("   📍 Database URL length: %d characters", len(dbURL))
	log.Printf("   📍 URL prefix: %s...", dbURL[:min(30, len(dbURL))])
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Println("❌ DATABASE CONNECTION FAILED AT sqlx.Connect()")
		log.Printf("   Error type: %T", err)
		log.Printf("   Error message: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Println("❌ DATABASE CONNECTION FAILED AT Ping()")
		log.Printf("   Error message: %v", err)
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ DATABASE CONNECTION SUCCESSFUL")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('operator', 'admin')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create bins table
		`CREATE TABLE IF NOT EXISTS bins (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			latest_fill_pct DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (latest_fill_pct BETWEEN 0 AND 100),
			status TEXT NOT NULL DEFAULT 'normal' CHECK(status IN ('normal', 'needs_pickup')),
			latest_reading_at BIGINT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create route_plans table (one row per planned tour)
		`CREATE TABLE IF NOT EXISTS route_plans (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			depot_lat DOUBLE PRECISION NOT NULL,
			depot_lng DOUBLE PRECISION NOT NULL,
			threshold DOUBLE PRECISION NOT NULL,
			max_stops INT CHECK (max_stops IS NULL OR max_stops > 0),
			total_distance_km DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('planned', 'completed')),
			version INT NOT NULL DEFAULT 1,
			completed_at BIGINT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create route_plan_stops table
		// bin_id has no foreign key: stops outlive deleted bins
		`CREATE TABLE IF NOT EXISTS route_plan_stops (
			route_plan_id TEXT NOT NULL,
			sequence_order INT NOT NULL,
			bin_id TEXT NOT NULL,
			name TEXT NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			distance_from_prev_km DOUBLE PRECISION NOT NULL CHECK (distance_from_prev_km >= 0),
			serviced_at BIGINT,
			PRIMARY KEY (route_plan_id, sequence_order),
			FOREIGN KEY (route_plan_id) REFERENCES route_plans(id) ON DELETE CASCADE
		)`,

		// Create trucks table
		`CREATE TABLE IF NOT EXISTS trucks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			plate_number TEXT NOT NULL,
			capacity_litres INT NOT NULL CHECK (capacity_litres >= 1),
			fuel_type TEXT NOT NULL DEFAULT 'diesel' CHECK(fuel_type IN ('diesel', 'petrol', 'electric', 'hybrid')),
			status TEXT NOT NULL DEFAULT 'available' CHECK(status IN ('available', 'in_service', 'maintenance')),
			latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			current_route_id TEXT,
			last_service_at BIGINT,
			odometer_km DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (odometer_km >= 0),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (current_route_id) REFERENCES route_plans(id) ON DELETE SET NULL
		)`,

		// Create FCM tokens table
		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL CHECK(device_type IN ('ios', 'android', 'web')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create indexes
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_bins_user_id ON bins(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bins_user_status ON bins(user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_route_plans_user_created ON route_plans(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_route_plan_stops_bin_id ON route_plan_stops(bin_id)`,
		`CREATE INDEX IF NOT EXISTS idx_trucks_user_id ON trucks(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_trucks_status ON trucks(status)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_trucks_user_plate ON trucks(user_id, plate_number)`,
		`CREATE INDEX IF NOT EXISTS idx_fcm_tokens_user_id ON fcm_tokens(user_id)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// isUniqueViolation reports a Postgres unique_violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// isForeignKeyViolation reports a Postgres foreign_key_violation (SQLSTATE 23503)
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
