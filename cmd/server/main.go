package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"binroute-backend/internal/config"
	"binroute-backend/internal/database"
	"binroute-backend/internal/handlers"
	"binroute-backend/internal/locks"
	"binroute-backend/internal/middleware"
	"binroute-backend/internal/services"
	"binroute-backend/internal/websocket"
)

const separator = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

func fatal(title string, err error) {
	log.Println(separator)
	log.Printf("❌ FATAL ERROR: %s", title)
	log.Printf("   Error: %v", err)
	log.Println(separator)
	log.Fatal(err)
}

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 BINROUTE BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fatal("Invalid configuration", err)
	}
	if cfg.JWTSecret == "" {
		log.Println("⚠️  APP_JWT_SECRET not set, authenticated endpoints will reject every request")
	}

	log.Println("🔌 Connecting to database...")
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		fatal("Database connection failed", err)
	}
	defer db.Close()

	log.Println("🔄 Running database migrations...")
	if err := database.Migrate(db); err != nil {
		fatal("Database migrations failed", err)
	}
	log.Println("✅ Database migrations completed")

	if cfg.SeedDemoData {
		log.Println("🌱 Seeding database with demo data...")
		if err := database.SeedDemoData(db); err != nil {
			fatal("Demo data seeding failed", err)
		}
	}

	// Plan lock: Redis when several instances share the database
	var locker locks.Locker
	if cfg.RedisURL != "" {
		redisLocker, err := locks.NewRedisLockerFromURL(ctx, cfg.RedisURL)
		if err != nil {
			fatal("Redis connection failed", err)
		}
		defer redisLocker.Close()
		locker = redisLocker
		log.Println("✅ Route plan locking via Redis")
	} else {
		locker = locks.NewKeyedMutex()
		log.Println("✅ Route plan locking in-process (single instance)")
	}

	// Push notifications are optional
	var push services.PushSender
	switch {
	case cfg.FirebaseCredentialsB64 != "":
		fcmService, err := services.NewFCMServiceFromBase64(ctx, cfg.FirebaseCredentialsB64)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from base64: %v (push notifications disabled)", err)
		} else {
			push = fcmService
			log.Println("✅ Firebase Cloud Messaging initialized from base64 credentials")
		}
	case cfg.FirebaseCredentialsFile != "":
		fcmService, err := services.NewFCMService(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from file: %v (push notifications disabled)", err)
		} else {
			push = fcmService
			log.Println("✅ Firebase Cloud Messaging initialized from file")
		}
	default:
		log.Println("ℹ️  No Firebase credentials, push notifications disabled")
	}

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	log.Println("✅ WebSocket hub started")

	binStore := database.NewBinStore(db)
	planStore := database.NewRoutePlanStore(db)
	truckStore := database.NewTruckStore(db)
	userStore := database.NewUserStore(db)

	notifier := services.NewNotifier(wsHub, push, userStore)
	planner := services.NewRoutePlanner(binStore, planStore, locker, notifier)
	planner.SetDefaultThreshold(cfg.DefaultThreshold)
	planner.Optimizer().Verbose = cfg.RouteDebug

	auth := middleware.NewJWTAuth(cfg.JWTSecret)

	router := handlers.NewRouter(handlers.RouterDeps{
		Auth:      auth,
		Planner:   planner,
		Bins:      binStore,
		Trucks:    truckStore,
		Users:     userStore,
		FCMTokens: userStore,
		WebSocket: websocket.HandleWebSocket(wsHub, auth),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("🛑 Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️  Graceful shutdown failed: %v", err)
		}
	}()

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Server starting on http://localhost:%s", cfg.Port)
	log.Println("🔌 Ready to accept requests!")
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal("Server failed to start", err)
	}
}
