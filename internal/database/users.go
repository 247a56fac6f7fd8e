package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"binroute-backend/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// UserStore reads and writes users and their push tokens
type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, email, password, name, role, created_at, updated_at`

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *UserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// CreateUser inserts user; a taken email yields an ErrConflict
func (s *UserStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :email, :password, :name, :role, :created_at, :updated_at)
	`, user)
	if isUniqueViolation(err) {
		return models.Conflict("User with this email already exists")
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpsertFCMToken registers token for userID, moving it over if another
// user had registered the same device before
func (s *UserStore) UpsertFCMToken(ctx context.Context, userID, token, deviceType string, now int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fcm_tokens (user_id, token, device_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT(token) DO UPDATE SET
			user_id = excluded.user_id,
			device_type = excluded.device_type,
			updated_at = excluded.updated_at
	`, userID, token, deviceType, now, now)
	if err != nil {
		return fmt.Errorf("failed to register FCM token: %w", err)
	}
	return nil
}

// ListFCMTokens returns userID's tokens, most recently updated first
func (s *UserStore) ListFCMTokens(ctx context.Context, userID string) ([]models.FCMToken, error) {
	tokens := []models.FCMToken{}
	err := s.db.SelectContext(ctx, &tokens, `
		SELECT id, user_id, token, device_type, created_at, updated_at
		FROM fcm_tokens
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list FCM tokens: %w", err)
	}
	return tokens, nil
}

// DeleteFCMTokens forgets tokens FCM no longer accepts
func (s *UserStore) DeleteFCMTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM fcm_tokens WHERE token = ANY($1)`, pq.Array(tokens))
	if err != nil {
		return fmt.Errorf("failed to delete FCM tokens: %w", err)
	}
	return nil
}
