package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"binroute-backend/internal/middleware"
	"binroute-backend/internal/models"
	"binroute-backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// UserRepository is implemented by database.UserStore
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	OK    bool                 `json:"ok"`
	Token string               `json:"token,omitempty"`
	User  *models.UserResponse `json:"user,omitempty"`
}

// Login POST /api/auth/login
func Login(users UserRepository, auth *middleware.JWTAuth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeBody(w, r, &req) {
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))

		log.Printf("🔐 Login attempt for: %s", email)

		user, err := users.GetUserByEmail(r.Context(), email)
		if errors.Is(err, models.ErrNotFound) {
			log.Printf("❌ User not found: %s", email)
			utils.RespondJSON(w, http.StatusUnauthorized, LoginResponse{OK: false})
			return
		}
		if err != nil {
			respondServiceError(w, err, "Failed to log in")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			log.Printf("❌ Invalid password for: %s", email)
			utils.RespondJSON(w, http.StatusUnauthorized, LoginResponse{OK: false})
			return
		}

		token, err := auth.IssueToken(middleware.UserClaims{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
		})
		if err != nil {
			log.Printf("❌ Failed to create token: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create token")
			return
		}

		userResponse := user.ToUserResponse()
		log.Printf("✅ Login successful: %s (%s)", user.Email, user.Role)

		utils.RespondJSON(w, http.StatusOK, LoginResponse{
			OK:    true,
			Token: token,
			User:  &userResponse,
		})
	}
}

// GetAuthStatus returns the authenticated user
// GET /api/auth/status
func GetAuthStatus(users UserRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireUser(w, r)
		if !ok {
			return
		}

		user, err := users.GetUserByID(r.Context(), claims.UserID)
		if errors.Is(err, models.ErrNotFound) {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if err != nil {
			respondServiceError(w, err, "Failed to fetch user")
			return
		}

		userResponse := user.ToUserResponse()
		utils.RespondJSON(w, http.StatusOK, LoginResponse{OK: true, User: &userResponse})
	}
}
