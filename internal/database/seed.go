package database

import (
	"fmt"
	"log"
	"time"

	"binroute-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

const (
	demoOperatorEmail = "operator@binroute.dev"
	demoAdminEmail    = "admin@binroute.dev"
)

// SeedUsers creates a demo operator and admin when the users table is empty
func SeedUsers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding demo users...")

	users := []struct {
		email, password, name, role string
	}{
		{demoOperatorEmail, "operator123", "Demo Operator", models.RoleOperator},
		{demoAdminEmail, "admin123", "Admin User", models.RoleAdmin},
	}

	now := time.Now().Unix()
	for _, u := range users {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", u.email, err)
		}

		_, err = db.NamedExec(`
			INSERT INTO users (id, email, password, name, role, created_at, updated_at)
			VALUES (:id, :email, :password, :name, :role, :created_at, :updated_at)
		`, models.User{
			ID:        uuid.New().String(),
			Email:     u.email,
			Password:  string(hashed),
			Name:      u.name,
			Role:      u.role,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		log.Printf("  ✓ Created user: %s (%s)", u.email, u.role)
	}

	log.Println("✓ Successfully seeded demo users")
	log.Printf("  📧 Operator: %s / operator123", demoOperatorEmail)
	log.Printf("  📧 Admin:    %s / admin123", demoAdminEmail)
	return nil
}

// SeedBins gives the demo operator a set of downtown San Jose bins
func SeedBins(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM bins"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Bins already seeded, skipping...")
		return nil
	}

	var operatorID string
	if err := db.Get(&operatorID, "SELECT id FROM users WHERE email = $1", demoOperatorEmail); err != nil {
		return fmt.Errorf("demo operator missing, seed users first: %w", err)
	}

	bins := []struct {
		name     string
		lat, lng float64
		fill     float64
	}{
		{"325 S 1st St", 37.3329, -121.8866, 45},
		{"151 W Mission St", 37.3343, -121.8936, 23},
		{"180 Park Ave", 37.3351, -121.8894, 12},
		{"345 E Santa Clara St", 37.3357, -121.8826, 56},
		{"201 S 2nd St", 37.3326, -121.8863, 91},
		{"88 W San Carlos St", 37.3307, -121.8901, 82},
		{"123 N 4th St", 37.3389, -121.8822, 63},
		{"789 E Julian St", 37.3442, -121.8793, 71},
		{"654 E St John St", 37.3473, -121.8786, 95},
		{"258 W St James St", 37.3385, -121.8972, 86},
		{"741 S 5th St", 37.3267, -121.8807, 44},
		{"963 E Empire St", 37.3531, -121.8771, 31},
		{"267 W San Carlos St", 37.3297, -121.8954, 25},
		{"489 N 8th St", 37.3467, -121.8752, 17},
		{"692 E William St", 37.3421, -121.8767, 41},
		{"894 N 10th St", 37.3523, -121.8714, 36},
		{"296 E Santa Clara St", 37.3359, -121.8841, 22},
		{"498 S Market St", 37.3278, -121.8877, 59},
		{"691 N 13th St", 37.3501, -121.8652, 97},
		{"893 S 14th St", 37.3256, -121.8631, 81},
		{"195 N 15th St", 37.3434, -121.8601, 72},
		{"397 E Julian St", 37.3443, -121.8823, 85},
	}

	log.Printf("🌱 Seeding %d bins...", len(bins))

	now := time.Now().Unix()
	for _, b := range bins {
		status := models.BinStatusNormal
		if b.fill >= models.DefaultThreshold {
			status = models.BinStatusNeedsPickup
		}

		_, err := db.Exec(`
			INSERT INTO bins (id, user_id, name, latitude, longitude, latest_fill_pct, status,
				latest_reading_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, uuid.New().String(), operatorID, b.name, b.lat, b.lng, b.fill, status, now, now, now)
		if err != nil {
			return err
		}
	}

	log.Printf("✓ Successfully seeded %d bins", len(bins))
	return nil
}

// SeedTrucks adds a small demo fleet for the operator
func SeedTrucks(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM trucks"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Trucks already seeded, skipping...")
		return nil
	}

	var operatorID string
	if err := db.Get(&operatorID, "SELECT id FROM users WHERE email = $1", demoOperatorEmail); err != nil {
		return fmt.Errorf("demo operator missing, seed users first: %w", err)
	}

	now := time.Now().Unix()
	trucks := []models.Truck{
		{Name: "Rear Loader 1", PlateNumber: "8BRT101", CapacityLitres: 16000, FuelType: "diesel", Status: models.TruckStatusAvailable},
		{Name: "Rear Loader 2", PlateNumber: "8BRT102", CapacityLitres: 16000, FuelType: "diesel", Status: models.TruckStatusMaintenance},
		{Name: "City eTruck", PlateNumber: "8BRT201", CapacityLitres: 9000, FuelType: "electric", Status: models.TruckStatusAvailable},
	}

	for i := range trucks {
		t := &trucks[i]
		t.ID = uuid.New().String()
		t.UserID = operatorID
		t.Latitude, t.Longitude = 37.3329, -121.8866
		t.CreatedAt, t.UpdatedAt = now, now

		_, err := db.NamedExec(`
			INSERT INTO trucks (`+truckColumns+`)
			VALUES (:id, :user_id, :name, :plate_number, :capacity_litres, :fuel_type, :status,
				:latitude, :longitude, :current_route_id, :last_service_at, :odometer_km,
				:created_at, :updated_at)
		`, t)
		if err != nil {
			return err
		}
	}

	log.Printf("✓ Successfully seeded %d trucks", len(trucks))
	return nil
}

// SeedDemoData runs every seeder in dependency order
func SeedDemoData(db *sqlx.DB) error {
	if err := SeedUsers(db); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	if err := SeedBins(db); err != nil {
		return fmt.Errorf("failed to seed bins: %w", err)
	}
	if err := SeedTrucks(db); err != nil {
		return fmt.Errorf("failed to seed trucks: %w", err)
	}
	return nil
}
