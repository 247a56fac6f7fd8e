package handlers

import (
	"context"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"binroute-backend/internal/models"
	"binroute-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// BinRepository is implemented by database.BinStore
type BinRepository interface {
	ListBins(ctx context.Context, userID string) ([]models.Bin, error)
	GetBin(ctx context.Context, userID, binID string) (*models.Bin, error)
	CreateBin(ctx context.Context, bin *models.Bin) error
	UpdateBin(ctx context.Context, bin *models.Bin) error
	DeleteBin(ctx context.Context, userID, binID string) error
}

// GetBins GET /api/bins
func GetBins(bins BinRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}

		list, err := bins.ListBins(r.Context(), user.UserID)
		if err != nil {
			respondServiceError(w, err, "Failed to fetch bins")
			return
		}

		responses := make([]models.BinResponse, len(list))
		for i := range list {
			responses[i] = list[i].ToBinResponse()
		}

		utils.RespondJSON(w, http.StatusOK, responses)
	}
}

// GetBin GET /api/bins/{id}
func GetBin(bins BinRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}

		bin, err := bins.GetBin(r.Context(), user.UserID, chi.URLParam(r, "id"))
		if err != nil {
			respondServiceError(w, err, "Failed to fetch bin")
			return
		}

		utils.RespondJSON(w, http.StatusOK, bin.ToBinResponse())
	}
}

// CreateBin POST /api/bins
func CreateBin(bins BinRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req models.CreateBinRequest
		if !decodeBody(w, r, &req) {
			return
		}
		req.Name = strings.TrimSpace(req.Name)

		if err := models.Validate(&req); err != nil {
			respondServiceError(w, err, "Failed to create bin")
			return
		}

		now := time.Now().Unix()
		bin := models.Bin{
			ID:        uuid.New().String(),
			UserID:    user.UserID,
			Name:      req.Name,
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
			Status:    models.BinStatusNormal,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if req.Status != "" {
			bin.Status = req.Status
		}
		if req.LatestFillPct != nil {
			bin.LatestFillPct = *req.LatestFillPct
			bin.LatestReadingAt = &now
		}

		if err := bins.CreateBin(r.Context(), &bin); err != nil {
			respondServiceError(w, err, "Failed to create bin")
			return
		}

		log.Printf("✅ Bin created: %s (%s)", bin.Name, bin.ID)
		utils.RespondJSON(w, http.StatusCreated, bin.ToBinResponse())
	}
}

// UpdateBin applies field edits and sensor readings.
// PATCH /api/bins/{id}
func UpdateBin(bins BinRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req models.UpdateBinRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := models.Validate(&req); err != nil {
			respondServiceError(w, err, "Failed to update bin")
			return
		}

		bin, err := bins.GetBin(r.Context(), user.UserID, chi.URLParam(r, "id"))
		if err != nil {
			respondServiceError(w, err, "Failed to update bin")
			return
		}

		now := time.Now()
		if err := applyBinUpdate(bin, &req, now); err != nil {
			respondServiceError(w, err, "Failed to update bin")
			return
		}

		if err := bins.UpdateBin(r.Context(), bin); err != nil {
			respondServiceError(w, err, "Failed to update bin")
			return
		}

		utils.RespondJSON(w, http.StatusOK, bin.ToBinResponse())
	}
}

// applyBinUpdate copies set fields onto bin. A fill reading is clamped to
// 0-100 and stamped with reading_at_iso, or now when absent.
func applyBinUpdate(bin *models.Bin, req *models.UpdateBinRequest, now time.Time) error {
	if req.Name != nil {
		bin.Name = strings.TrimSpace(*req.Name)
	}
	if req.Latitude != nil {
		bin.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		bin.Longitude = *req.Longitude
	}
	if req.Status != nil {
		bin.Status = *req.Status
	}

	if req.LatestFillPct != nil {
		readingAt := now.Unix()
		if req.ReadingAtIso != nil {
			t, err := time.Parse(time.RFC3339, *req.ReadingAtIso)
			if err != nil {
				return models.NewValidationError("reading_at_iso must be an RFC 3339 timestamp")
			}
			readingAt = t.Unix()
		}
		bin.LatestFillPct = math.Max(0, math.Min(100, *req.LatestFillPct))
		bin.LatestReadingAt = &readingAt
	}

	bin.UpdatedAt = now.Unix()
	return nil
}

// DeleteBin DELETE /api/bins/{id}
func DeleteBin(bins BinRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}

		if err := bins.DeleteBin(r.Context(), user.UserID, chi.URLParam(r, "id")); err != nil {
			respondServiceError(w, err, "Failed to delete bin")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Bin deleted",
		})
	}
}
