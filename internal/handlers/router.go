package handlers

import (
	"net/http"

	"binroute-backend/internal/middleware"
	"binroute-backend/internal/models"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDeps are the collaborators the HTTP surface is built from
type RouterDeps struct {
	Auth      *middleware.JWTAuth
	Planner   RoutePlanService
	Bins      BinRepository
	Trucks    TruckRepository
	Users     UserRepository
	FCMTokens FCMTokenRegistry
	// WebSocket is mounted at /ws when non-nil
	WebSocket http.Handler
}

// NewRouter mounts every endpoint on a chi router
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// WebSocket endpoint (authentication handled in handler via query param)
	if deps.WebSocket != nil {
		r.Handle("/ws", deps.WebSocket)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", Login(deps.Users, deps.Auth))

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Middleware)

			r.Get("/auth/status", GetAuthStatus(deps.Users))

			r.Get("/bins", GetBins(deps.Bins))
			r.Post("/bins", CreateBin(deps.Bins))
			r.Get("/bins/{id}", GetBin(deps.Bins))
			r.Patch("/bins/{id}", UpdateBin(deps.Bins))
			r.Delete("/bins/{id}", DeleteBin(deps.Bins))

			r.Post("/routes", CreateRoutePlan(deps.Planner))
			r.Get("/routes", ListRoutePlans(deps.Planner))
			r.Get("/routes/{id}", GetRoutePlan(deps.Planner))
			r.Delete("/routes/{id}", DeleteRoutePlan(deps.Planner))
			r.Patch("/routes/{id}/stops/{binId}/complete", CompleteStop(deps.Planner))

			r.Get("/trucks", GetTrucks(deps.Trucks))
			r.Post("/trucks", CreateTruck(deps.Trucks))
			r.Get("/trucks/{id}", GetTruck(deps.Trucks))
			r.Put("/trucks/{id}", UpdateTruck(deps.Trucks))
			r.Delete("/trucks/{id}", DeleteTruck(deps.Trucks))

			r.Post("/devices/fcm-token", RegisterFCMToken(deps.FCMTokens))
		})

		// User management (admin only)
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Middleware)
			r.Use(middleware.RequireRole(models.RoleAdmin))

			r.Post("/users", CreateUser(deps.Users))
		})
	})

	return r
}
