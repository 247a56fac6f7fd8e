package handlers

import (
	"errors"
	"log"
	"net/http"

	"binroute-backend/internal/middleware"
	"binroute-backend/internal/models"
	"binroute-backend/pkg/utils"
)

// respondServiceError maps the models error taxonomy onto HTTP statuses.
// Unclassified errors are logged and reported as fallback.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		utils.RespondError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, models.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, models.PublicMessage(err, "Not found"))
	case errors.Is(err, models.ErrConflict):
		utils.RespondError(w, http.StatusConflict, models.PublicMessage(err, "Resource was modified concurrently, please retry"))
	default:
		log.Printf("❌ %s: %v", fallback, err)
		utils.RespondError(w, http.StatusInternalServerError, fallback)
	}
}

// requireUser loads the authenticated user or writes a 401
func requireUser(w http.ResponseWriter, r *http.Request) (middleware.UserClaims, bool) {
	claims, ok := middleware.GetUserFromContext(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return claims, ok
}

// decodeBody decodes the JSON body or writes a 400
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := utils.DecodeJSON(r, dst); err != nil {
		log.Printf("❌ Invalid request body: %v", err)
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
