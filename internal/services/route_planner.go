package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"binroute-backend/internal/locks"
	"binroute-backend/internal/models"

	"github.com/google/uuid"
)

// BinStore is the slice of the bin repository the planner needs
type BinStore interface {
	ListBins(ctx context.Context, userID string) ([]models.Bin, error)
	// GetBin returns an error matching models.ErrNotFound when the bin is gone
	GetBin(ctx context.Context, userID, binID string) (*models.Bin, error)
}

// RoutePlanStore persists route plans. All lookups are scoped to the owner.
type RoutePlanStore interface {
	CreateRoutePlan(ctx context.Context, plan *models.RoutePlan) error
	GetRoutePlan(ctx context.Context, userID, planID string) (*models.RoutePlan, error)
	ListRoutePlans(ctx context.Context, userID string) ([]models.RoutePlan, error)
	DeleteRoutePlan(ctx context.Context, userID, planID string) error
	// SaveRoutePlan writes plan stop state and status, plus bin when non-nil,
	// atomically. It fails with models.ErrConflict if plan.Version is stale
	// and bumps plan.Version on success.
	SaveRoutePlan(ctx context.Context, plan *models.RoutePlan, bin *models.Bin) error
}

// RouteEvents is told about lifecycle changes after they are persisted
type RouteEvents interface {
	RoutePlanCreated(ctx context.Context, plan *models.RoutePlan)
	StopServiced(ctx context.Context, plan *models.RoutePlan, binID string)
	RoutePlanCompleted(ctx context.Context, plan *models.RoutePlan)
}

// RoutePlanner creates route plans and runs the stop completion lifecycle
type RoutePlanner struct {
	bins             BinStore
	plans            RoutePlanStore
	locker           locks.Locker
	events           RouteEvents
	optimizer        *RouteOptimizer
	defaultThreshold float64
	now              func() time.Time
}

// NewRoutePlanner wires a planner. events may be nil.
func NewRoutePlanner(bins BinStore, plans RoutePlanStore, locker locks.Locker, events RouteEvents) *RoutePlanner {
	if locker == nil {
		locker = locks.NewKeyedMutex()
	}
	return &RoutePlanner{
		bins:             bins,
		plans:            plans,
		locker:           locker,
		events:           events,
		optimizer:        NewRouteOptimizer(),
		defaultThreshold: models.DefaultThreshold,
		now:              time.Now,
	}
}

// SetDefaultThreshold overrides the fill threshold used when a request has none
func (p *RoutePlanner) SetDefaultThreshold(threshold float64) {
	p.defaultThreshold = threshold
}

// SetClock overrides time.Now
func (p *RoutePlanner) SetClock(now func() time.Time) {
	p.now = now
}

// Optimizer exposes the route optimizer, e.g. to enable verbose logging
func (p *RoutePlanner) Optimizer() *RouteOptimizer {
	return p.optimizer
}

// CreateRoutePlan validates the request, selects candidate bins of userID and
// persists a planned tour. Nothing is written on validation failure.
func (p *RoutePlanner) CreateRoutePlan(
	ctx context.Context,
	userID string,
	req models.CreateRoutePlanRequest,
) (*models.RoutePlan, error) {
	if err := models.Validate(&req); err != nil {
		return nil, err
	}

	depot := models.Coordinate{Lat: *req.Depot.Lat, Lng: *req.Depot.Lng}

	threshold := p.defaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	maxStops := Unbounded
	if stopCap := req.StopCap(); stopCap != nil {
		maxStops = *stopCap
	}

	bins, err := p.bins.ListBins(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bins: %w", err)
	}

	candidates, err := SelectCandidates(bins, threshold)
	if err != nil {
		return nil, err
	}

	log.Printf("🚛 Planning route for user %s: %d of %d bins need pickup (threshold %.0f%%)",
		userID, len(candidates), len(bins), threshold)

	result := p.optimizer.BuildRoute(depot, candidates, maxStops)
	if len(result.Stops) == 0 {
		return nil, ErrNoCandidates
	}

	now := p.now().Unix()
	plan := &models.RoutePlan{
		ID:              uuid.New().String(),
		UserID:          userID,
		Depot:           depot,
		Threshold:       threshold,
		MaxStops:        req.StopCap(),
		Stops:           result.Stops,
		TotalDistanceKm: result.TotalDistanceKm,
		Status:          models.RoutePlanStatusPlanned,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := p.plans.CreateRoutePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create route plan: %w", err)
	}

	log.Printf("✅ Route plan %s created: %d stops, %.3f km", plan.ID, len(plan.Stops), plan.TotalDistanceKm)

	if p.events != nil {
		p.events.RoutePlanCreated(ctx, plan)
	}

	return plan, nil
}

// GetRoutePlan returns one plan owned by userID
func (p *RoutePlanner) GetRoutePlan(ctx context.Context, userID, planID string) (*models.RoutePlan, error) {
	plan, err := p.plans.GetRoutePlan(ctx, userID, planID)
	if err != nil {
		return nil, wrapPlanLookup(err)
	}
	return plan, nil
}

// ListRoutePlans returns userID's plans, newest first
func (p *RoutePlanner) ListRoutePlans(ctx context.Context, userID string) ([]models.RoutePlan, error) {
	plans, err := p.plans.ListRoutePlans(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list route plans: %w", err)
	}
	return plans, nil
}

// DeleteRoutePlan removes a plan owned by userID
func (p *RoutePlanner) DeleteRoutePlan(ctx context.Context, userID, planID string) error {
	unlock, err := p.locker.Lock(ctx, planLockKey(planID))
	if err != nil {
		return fmt.Errorf("failed to lock route plan: %w", err)
	}
	defer unlock()

	if err := p.plans.DeleteRoutePlan(ctx, userID, planID); err != nil {
		return wrapPlanLookup(err)
	}
	return nil
}

// CompleteStop marks the stop for binID serviced, resets the bin if it still
// exists, and completes the plan once every stop is serviced. Completing an
// already serviced stop returns the plan unchanged. Calls on the same plan
// are serialized through the planner's Locker, which is released before
// events are sent.
func (p *RoutePlanner) CompleteStop(ctx context.Context, userID, planID, binID string) (*models.RoutePlan, error) {
	unlock, err := p.locker.Lock(ctx, planLockKey(planID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock route plan: %w", err)
	}
	defer unlock()

	plan, err := p.plans.GetRoutePlan(ctx, userID, planID)
	if err != nil {
		return nil, wrapPlanLookup(err)
	}

	now := p.now().Unix()
	changed, err := plan.MarkStopServiced(binID, now)
	if err != nil {
		return nil, err
	}
	if !changed {
		return plan, nil
	}

	// The stop only references the bin by id; a deleted bin is not an error
	var resetBin *models.Bin
	bin, err := p.bins.GetBin(ctx, userID, binID)
	switch {
	case err == nil:
		bin.ResetAfterPickup(now)
		resetBin = bin
	case errors.Is(err, models.ErrNotFound):
		log.Printf("⚠️  Bin %s no longer exists, skipping reset for route plan %s", binID, planID)
	default:
		return nil, fmt.Errorf("failed to load bin %s: %w", binID, err)
	}

	if err := p.plans.SaveRoutePlan(ctx, plan, resetBin); err != nil {
		return nil, fmt.Errorf("failed to save route plan: %w", err)
	}
	// events may block on FCM; the plan is persisted so release the lock first
	unlock()

	log.Printf("✅ Stop %s serviced on route plan %s (%d/%d)", binID, planID, plan.ServicedCount(), len(plan.Stops))

	if p.events != nil {
		p.events.StopServiced(ctx, plan, binID)
		if plan.Status == models.RoutePlanStatusCompleted {
			log.Printf("🏁 Route plan %s completed", planID)
			p.events.RoutePlanCompleted(ctx, plan)
		}
	}

	return plan, nil
}

func planLockKey(planID string) string {
	return "route_plan:" + planID
}

func wrapPlanLookup(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.NotFound("Route plan not found")
	}
	return fmt.Errorf("failed to load route plan: %w", err)
}
