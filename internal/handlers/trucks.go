package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"binroute-backend/internal/models"
	"binroute-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// TruckRepository is implemented by database.TruckStore
type TruckRepository interface {
	ListTrucks(ctx context.Context, userID string, filter models.TruckFilter) ([]models.Truck, error)
	GetTruck(ctx context.Context, userID, truckID string) (*models.Truck, error)
	CreateTruck(ctx context.Context, truck *models.Truck) error
	UpdateTruck(ctx context.Context, truck *models.Truck) error
	DeleteTruck(ctx context.Context, userID, truckID string) error
}

// GetTrucks GET /api/trucks?status=&minCapacity=&q=
func GetTrucks(trucks TruckRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}

		query := r.URL.Query()
		filter := models.TruckFilter{
			Status: query.Get("status"),
			Query:  query.Get("q"),
		}
		if raw := query.Get("minCapacity"); raw != "" {
			minCapacity, err := strconv.Atoi(raw)
			if err != nil {
				utils.RespondError(w, http.StatusBadRequest, "minCapacity must be an integer")
				return
			}
			filter.MinCapacity = minCapacity
		}

		list, err := trucks.ListTrucks(r.Context(), user.UserID, filter)
		if err != nil {
			respondServiceError(w, err, "Failed to fetch trucks")
			return
		}

		utils.RespondJSON(w, http.StatusOK, list)
	}
}

// GetTruck GET /api/trucks/{id}
func GetTruck(trucks TruckRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}

		truck, err := trucks.GetTruck(r.Context(), user.UserID, chi.URLParam(r, "id"))
		if err != nil {
			respondServiceError(w, err, "Failed to fetch truck")
			return
		}

		utils.RespondJSON(w, http.StatusOK, truck)
	}
}

// CreateTruck POST /api/trucks
func CreateTruck(trucks TruckRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req models.CreateTruckRequest
		if !decodeBody(w, r, &req) {
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.PlateNumber = strings.TrimSpace(req.PlateNumber)

		if err := models.Validate(&req); err != nil {
			respondServiceError(w, err, "Failed to create truck")
			return
		}

		now := time.Now().Unix()
		truck := models.Truck{
			ID:             uuid.New().String(),
			UserID:         user.UserID,
			Name:           req.Name,
			PlateNumber:    req.PlateNumber,
			CapacityLitres: req.CapacityLitres,
			FuelType:       models.DefaultFuelType,
			Status:         models.TruckStatusAvailable,
			LastServiceAt:  req.LastServiceAt,
			OdometerKm:     req.OdometerKm,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if req.FuelType != "" {
			truck.FuelType = req.FuelType
		}
		if req.Status != "" {
			truck.Status = req.Status
		}
		if req.Location != nil {
			truck.Latitude = req.Location.Lat
			truck.Longitude = req.Location.Lng
		}

		if err := trucks.CreateTruck(r.Context(), &truck); err != nil {
			respondServiceError(w, err, "Failed to create truck")
			return
		}

		log.Printf("🚚 Truck created: %s (%s)", truck.PlateNumber, truck.ID)
		utils.RespondJSON(w, http.StatusCreated, truck)
	}
}

// UpdateTruck applies a partial update
// PUT /api/trucks/{id}
func UpdateTruck(trucks TruckRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req models.UpdateTruckRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.PlateNumber != nil {
			trimmed := strings.TrimSpace(*req.PlateNumber)
			req.PlateNumber = &trimmed
		}
		if err := models.Validate(&req); err != nil {
			respondServiceError(w, err, "Failed to update truck")
			return
		}

		truck, err := trucks.GetTruck(r.Context(), user.UserID, chi.URLParam(r, "id"))
		if err != nil {
			respondServiceError(w, err, "Failed to update truck")
			return
		}

		req.Apply(truck)
		truck.UpdatedAt = time.Now().Unix()

		if err := trucks.UpdateTruck(r.Context(), truck); err != nil {
			respondServiceError(w, err, "Failed to update truck")
			return
		}

		utils.RespondJSON(w, http.StatusOK, truck)
	}
}

// DeleteTruck DELETE /api/trucks/{id}
func DeleteTruck(trucks TruckRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}

		if err := trucks.DeleteTruck(r.Context(), user.UserID, chi.URLParam(r, "id")); err != nil {
			respondServiceError(w, err, "Failed to delete truck")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Truck deleted",
		})
	}
}
