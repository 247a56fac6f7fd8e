package handlers

import (
	"context"
	"log"
	"net/http"

	"binroute-backend/internal/models"
	"binroute-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// RoutePlanService is implemented by services.RoutePlanner
type RoutePlanService interface {
	CreateRoutePlan(ctx context.Context, userID string, req models.CreateRoutePlanRequest) (*models.RoutePlan, error)
	GetRoutePlan(ctx context.Context, userID, planID string) (*models.RoutePlan, error)
	ListRoutePlans(ctx context.Context, userID string) ([]models.RoutePlan, error)
	DeleteRoutePlan(ctx context.Context, userID, planID string) error
	CompleteStop(ctx context.Context, userID, planID, binID string) (*models.RoutePlan, error)
}

// CreateRoutePlan builds a tour over the user's bins that need pickup
// POST /api/routes
func CreateRoutePlan(planner RoutePlanService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req models.CreateRoutePlanRequest
		if !decodeBody(w, r, &req) {
			return
		}

		log.Printf("📥 REQUEST: POST /api/routes - Plan route for %s", user.Email)

		plan, err := planner.CreateRoutePlan(r.Context(), user.UserID, req)
		if err != nil {
			respondServiceError(w, err, "Failed to create route plan")
			return
		}

		utils.RespondJSON(w, http.StatusCreated, plan)
	}
}

// ListRoutePlans returns the user's plans, newest first
// GET /api/routes
func ListRoutePlans(planner RoutePlanService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}

		plans, err := planner.ListRoutePlans(r.Context(), user.UserID)
		if err != nil {
			respondServiceError(w, err, "Failed to fetch route plans")
			return
		}

		utils.RespondJSON(w, http.StatusOK, plans)
	}
}

// GetRoutePlan GET /api/routes/{id}
func GetRoutePlan(planner RoutePlanService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}

		plan, err := planner.GetRoutePlan(r.Context(), user.UserID, chi.URLParam(r, "id"))
		if err != nil {
			respondServiceError(w, err, "Failed to fetch route plan")
			return
		}

		utils.RespondJSON(w, http.StatusOK, plan)
	}
}

// DeleteRoutePlan DELETE /api/routes/{id}
func DeleteRoutePlan(planner RoutePlanService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}

		planID := chi.URLParam(r, "id")
		if err := planner.DeleteRoutePlan(r.Context(), user.UserID, planID); err != nil {
			respondServiceError(w, err, "Failed to delete route plan")
			return
		}

		log.Printf("🗑️  Route plan %s deleted by %s", planID, user.Email)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Route plan deleted",
		})
	}
}

// CompleteStop marks one stop serviced and returns the updated plan.
// Repeating the call for a serviced stop returns the plan unchanged.
// PATCH /api/routes/{id}/stops/{binId}/complete
func CompleteStop(planner RoutePlanService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}

		planID := chi.URLParam(r, "id")
		binID := chi.URLParam(r, "binId")

		plan, err := planner.CompleteStop(r.Context(), user.UserID, planID, binID)
		if err != nil {
			respondServiceError(w, err, "Failed to complete stop")
			return
		}

		utils.RespondJSON(w, http.StatusOK, plan)
	}
}
