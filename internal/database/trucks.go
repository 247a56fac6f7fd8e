package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"binroute-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// ErrDuplicatePlate is returned when a user already owns a truck with the plate
var ErrDuplicatePlate = models.Conflict("Plate number already exists for this user")

// TruckStore reads and writes the trucks table
type TruckStore struct {
	db *sqlx.DB
}

func NewTruckStore(db *sqlx.DB) *TruckStore {
	return &TruckStore{db: db}
}

const truckColumns = `id, user_id, name, plate_number, capacity_litres, fuel_type, status,
	latitude, longitude, current_route_id, last_service_at, odometer_km, created_at, updated_at`

// ListTrucks returns the user's trucks matching filter, newest first
func (s *TruckStore) ListTrucks(ctx context.Context, userID string, filter models.TruckFilter) ([]models.Truck, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.MinCapacity > 0 {
		args = append(args, filter.MinCapacity)
		conditions = append(conditions, fmt.Sprintf("capacity_litres >= $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR plate_number ILIKE $%d)", n, n))
	}

	query := `SELECT ` + truckColumns + ` FROM trucks WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY created_at DESC`

	trucks := []models.Truck{}
	if err := s.db.SelectContext(ctx, &trucks, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list trucks: %w", err)
	}
	return trucks, nil
}

func (s *TruckStore) GetTruck(ctx context.Context, userID, truckID string) (*models.Truck, error) {
	var truck models.Truck
	err := s.db.GetContext(ctx, &truck, `
		SELECT `+truckColumns+`
		FROM trucks
		WHERE id = $1 AND user_id = $2
	`, truckID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFound("Truck not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get truck: %w", err)
	}
	return &truck, nil
}

func (s *TruckStore) CreateTruck(ctx context.Context, truck *models.Truck) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO trucks (`+truckColumns+`)
		VALUES (:id, :user_id, :name, :plate_number, :capacity_litres, :fuel_type, :status,
			:latitude, :longitude, :current_route_id, :last_service_at, :odometer_km,
			:created_at, :updated_at)
	`, truck)
	if isUniqueViolation(err) {
		return ErrDuplicatePlate
	}
	if err != nil {
		return fmt.Errorf("failed to create truck: %w", err)
	}
	return nil
}

// ErrUnknownRoutePlan is returned when current_route_id is missing or
// belongs to another user
var ErrUnknownRoutePlan = models.NewValidationError("current_route_id does not reference an existing route plan")

// UpdateTruck overwrites every mutable column of truck. A set
// current_route_id must name a plan owned by the truck's user.
func (s *TruckStore) UpdateTruck(ctx context.Context, truck *models.Truck) error {
	if truck.CurrentRouteID != nil {
		var owned bool
		err := s.db.GetContext(ctx, &owned,
			`SELECT EXISTS (SELECT 1 FROM route_plans WHERE id = $1 AND user_id = $2)`,
			*truck.CurrentRouteID, truck.UserID)
		if err != nil {
			return fmt.Errorf("failed to check route plan: %w", err)
		}
		if !owned {
			return ErrUnknownRoutePlan
		}
	}

	result, err := s.db.NamedExecContext(ctx, `
		UPDATE trucks
		SET name = :name, plate_number = :plate_number, capacity_litres = :capacity_litres,
			fuel_type = :fuel_type, status = :status, latitude = :latitude, longitude = :longitude,
			current_route_id = :current_route_id, last_service_at = :last_service_at,
			odometer_km = :odometer_km, updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id
	`, truck)
	if isUniqueViolation(err) {
		return ErrDuplicatePlate
	}
	if isForeignKeyViolation(err) {
		return ErrUnknownRoutePlan
	}
	if err != nil {
		return fmt.Errorf("failed to update truck: %w", err)
	}
	return requireRow(result, "Truck not found")
}

func (s *TruckStore) DeleteTruck(ctx context.Context, userID, truckID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM trucks WHERE id = $1 AND user_id = $2`, truckID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete truck: %w", err)
	}
	return requireRow(result, "Truck not found")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes q match literally inside an ILIKE pattern
func escapeLike(q string) string {
	return likeEscaper.Replace(q)
}
