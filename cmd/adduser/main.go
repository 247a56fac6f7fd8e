package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"binroute-backend/internal/config"
	"binroute-backend/internal/database"
	"binroute-backend/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Creates one account without going through the admin API, e.g. the first
// admin of a fresh deployment. The password is read from ADDUSER_PASSWORD.
func main() {
	email := flag.String("email", "", "login email (required)")
	name := flag.String("name", "", "display name (required)")
	role := flag.String("role", models.RoleAdmin, "operator or admin")
	flag.Parse()

	password := os.Getenv("ADDUSER_PASSWORD")
	if *email == "" || *name == "" || password == "" {
		flag.Usage()
		log.Fatal("email, name and ADDUSER_PASSWORD are required")
	}
	if !models.IsValidRole(*role) {
		log.Fatalf("Role must be 'operator' or 'admin', got %q", *role)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now().Unix()
	user := models.User{
		ID:        uuid.New().String(),
		Email:     strings.ToLower(strings.TrimSpace(*email)),
		Password:  string(hashed),
		Name:      strings.TrimSpace(*name),
		Role:      *role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := database.NewUserStore(db).CreateUser(ctx, &user); err != nil {
		log.Fatalf("❌ Failed to create %s: %v", user.Email, err)
	}

	log.Printf("✅ Created user: %s (%s)", user.Email, user.Role)
}
