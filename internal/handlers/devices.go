package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"binroute-backend/internal/models"
	"binroute-backend/pkg/utils"
)

// FCMTokenRegistry is implemented by database.UserStore
type FCMTokenRegistry interface {
	UpsertFCMToken(ctx context.Context, userID, token, deviceType string, now int64) error
}

type RegisterFCMTokenRequest struct {
	Token      string `json:"token" validate:"required"`
	DeviceType string `json:"device_type" validate:"required,oneof=ios android web"`
}

// RegisterFCMToken registers a Firebase Cloud Messaging token
// POST /api/devices/fcm-token
func RegisterFCMToken(tokens FCMTokenRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req RegisterFCMTokenRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := models.Validate(&req); err != nil {
			respondServiceError(w, err, "Failed to register FCM token")
			return
		}

		if err := tokens.UpsertFCMToken(r.Context(), user.UserID, req.Token, req.DeviceType, time.Now().Unix()); err != nil {
			respondServiceError(w, err, "Failed to register FCM token")
			return
		}

		log.Printf("📱 FCM token registered: %s (%s)", user.Email, req.DeviceType)

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "FCM token registered successfully",
		})
	}
}
