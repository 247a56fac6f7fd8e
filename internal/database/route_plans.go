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

// RoutePlanStore persists route plans and their stops in Postgres
type RoutePlanStore struct {
	db *sqlx.DB
}

func NewRoutePlanStore(db *sqlx.DB) *RoutePlanStore {
	return &RoutePlanStore{db: db}
}

type routePlanRow struct {
	ID              string  `db:"id"`
	UserID          string  `db:"user_id"`
	DepotLat        float64 `db:"depot_lat"`
	DepotLng        float64 `db:"depot_lng"`
	Threshold       float64 `db:"threshold"`
	MaxStops        *int    `db:"max_stops"`
	TotalDistanceKm float64 `db:"total_distance_km"`
	Status          string  `db:"status"`
	Version         int     `db:"version"`
	CompletedAt     *int64  `db:"completed_at"`
	CreatedAt       int64   `db:"created_at"`
	UpdatedAt       int64   `db:"updated_at"`
}

type stopRow struct {
	RoutePlanID        string  `db:"route_plan_id"`
	SequenceOrder      int     `db:"sequence_order"`
	BinID              string  `db:"bin_id"`
	Name               string  `db:"name"`
	Latitude           float64 `db:"latitude"`
	Longitude          float64 `db:"longitude"`
	DistanceFromPrevKm float64 `db:"distance_from_prev_km"`
	ServicedAt         *int64  `db:"serviced_at"`
}

const routePlanColumns = `id, user_id, depot_lat, depot_lng, threshold, max_stops,
	total_distance_km, status, version, completed_at, created_at, updated_at`

const stopColumns = `route_plan_id, sequence_order, bin_id, name, latitude, longitude,
	distance_from_prev_km, serviced_at`

func (r *routePlanRow) toModel(stops []stopRow) models.RoutePlan {
	plan := models.RoutePlan{
		ID:              r.ID,
		UserID:          r.UserID,
		Depot:           models.Coordinate{Lat: r.DepotLat, Lng: r.DepotLng},
		Threshold:       r.Threshold,
		MaxStops:        r.MaxStops,
		Stops:           make([]models.Stop, len(stops)),
		TotalDistanceKm: r.TotalDistanceKm,
		Status:          r.Status,
		Version:         r.Version,
		CompletedAt:     r.CompletedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	for i, s := range stops {
		plan.Stops[i] = models.Stop{
			BinID:              s.BinID,
			Name:               s.Name,
			Location:           models.Coordinate{Lat: s.Latitude, Lng: s.Longitude},
			DistanceFromPrevKm: s.DistanceFromPrevKm,
			ServicedAt:         s.ServicedAt,
		}
	}
	return plan
}

// CreateRoutePlan inserts the plan and all its stops in one transaction
func (s *RoutePlanStore) CreateRoutePlan(ctx context.Context, plan *models.RoutePlan) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO route_plans (`+routePlanColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		plan.ID, plan.UserID, plan.Depot.Lat, plan.Depot.Lng, plan.Threshold, plan.MaxStops,
		plan.TotalDistanceKm, plan.Status, plan.Version, plan.CompletedAt, plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert route plan: %w", err)
	}

	for i, stop := range plan.Stops {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO route_plan_stops (`+stopColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			plan.ID, i+1, stop.BinID, stop.Name, stop.Location.Lat, stop.Location.Lng,
			stop.DistanceFromPrevKm, stop.ServicedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert stop %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit route plan: %w", err)
	}
	return nil
}

// GetRoutePlan loads one plan with its stops in visit order
func (s *RoutePlanStore) GetRoutePlan(ctx context.Context, userID, planID string) (*models.RoutePlan, error) {
	var row routePlanRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+routePlanColumns+`
		FROM route_plans
		WHERE id = $1 AND user_id = $2
	`, planID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFound("Route plan not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route plan: %w", err)
	}

	var stops []stopRow
	err = s.db.SelectContext(ctx, &stops, `
		SELECT `+stopColumns+`
		FROM route_plan_stops
		WHERE route_plan_id = $1
		ORDER BY sequence_order ASC
	`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to get route plan stops: %w", err)
	}

	plan := row.toModel(stops)
	return &plan, nil
}

// ListRoutePlans returns the user's plans, newest first
func (s *RoutePlanStore) ListRoutePlans(ctx context.Context, userID string) ([]models.RoutePlan, error) {
	var rows []routePlanRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+routePlanColumns+`
		FROM route_plans
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list route plans: %w", err)
	}

	plans := make([]models.RoutePlan, 0, len(rows))
	if len(rows) == 0 {
		return plans, nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}

	var stops []stopRow
	err = s.db.SelectContext(ctx, &stops, `
		SELECT `+stopColumns+`
		FROM route_plan_stops
		WHERE route_plan_id = ANY($1)
		ORDER BY route_plan_id, sequence_order ASC
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list route plan stops: %w", err)
	}

	byPlan := make(map[string][]stopRow, len(rows))
	for _, st := range stops {
		byPlan[st.RoutePlanID] = append(byPlan[st.RoutePlanID], st)
	}

	for i := range rows {
		plans = append(plans, rows[i].toModel(byPlan[rows[i].ID]))
	}
	return plans, nil
}

// DeleteRoutePlan removes the plan; stops cascade
func (s *RoutePlanStore) DeleteRoutePlan(ctx context.Context, userID, planID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM route_plans WHERE id = $1 AND user_id = $2`, planID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete route plan: %w", err)
	}
	return requireRow(result, "Route plan not found")
}

// SaveRoutePlan writes stop service times and plan status guarded by the
// plan version, and resets bin in the same transaction when non-nil. The
// reset is skipped when the stored reading is newer than bin.LatestReadingAt.
func (s *RoutePlanStore) SaveRoutePlan(ctx context.Context, plan *models.RoutePlan, bin *models.Bin) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE route_plans
		SET status = $1, completed_at = $2, updated_at = $3, version = version + 1
		WHERE id = $4 AND user_id = $5 AND version = $6
	`, plan.Status, plan.CompletedAt, plan.UpdatedAt, plan.ID, plan.UserID, plan.Version)
	if err != nil {
		return fmt.Errorf("failed to update route plan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update route plan: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("route plan %s was modified concurrently: %w", plan.ID, models.ErrConflict)
	}

	for i, stop := range plan.Stops {
		if stop.ServicedAt == nil {
			continue
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE route_plan_stops
			SET serviced_at = $1
			WHERE route_plan_id = $2 AND sequence_order = $3 AND serviced_at IS NULL
		`, *stop.ServicedAt, plan.ID, i+1)
		if err != nil {
			return fmt.Errorf("failed to update stop %d: %w", i+1, err)
		}
	}

	// A reading stamped after the pickup wins over the reset
	if bin != nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE bins
			SET latest_fill_pct = $1, status = $2, latest_reading_at = $3, updated_at = $4
			WHERE id = $5 AND user_id = $6
				AND (latest_reading_at IS NULL OR latest_reading_at <= $3)
		`, bin.LatestFillPct, bin.Status, bin.LatestReadingAt, bin.UpdatedAt, bin.ID, bin.UserID)
		if err != nil {
			return fmt.Errorf("failed to reset bin %s: %w", bin.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit route plan: %w", err)
	}

	plan.Version++
	return nil
}
