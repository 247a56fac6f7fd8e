package models

// Route plan status values. planned -> completed is one-way.
const (
	RoutePlanStatusPlanned   = "planned"
	RoutePlanStatusCompleted = "completed"
)

// DefaultThreshold is the fill percentage used when a request omits one
const DefaultThreshold = 80.0

// Stop is one visit in a RoutePlan. BinID is a lookup key only: the bin may
// have been deleted since the plan was built, so callers must tolerate a
// missing bin. Name and Location are snapshots taken at planning time.
type Stop struct {
	BinID              string     `json:"bin_id"`
	Name               string     `json:"name"`
	Location           Coordinate `json:"location"`
	DistanceFromPrevKm float64    `json:"distance_from_prev_km"`
	ServicedAt         *int64     `json:"serviced_at"` // Unix timestamp, nil until serviced
}

// RoutePlan is a single-vehicle tour from a depot. Stops are stored in visit
// order and are never reordered after creation.
type RoutePlan struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Depot           Coordinate `json:"depot"`
	Threshold       float64    `json:"threshold"`
	MaxStops        *int       `json:"max_stops,omitempty"`
	Stops           []Stop     `json:"stops"`
	TotalDistanceKm float64    `json:"total_distance_km"`
	Status          string     `json:"status"`
	Version         int        `json:"version"`
	CompletedAt     *int64     `json:"completed_at,omitempty"` // Unix timestamp
	CreatedAt       int64      `json:"created_at"`             // Unix timestamp
	UpdatedAt       int64      `json:"updated_at"`             // Unix timestamp
}

// FindStop returns the index of the stop for binID, or -1
func (p *RoutePlan) FindStop(binID string) int {
	for i := range p.Stops {
		if p.Stops[i].BinID == binID {
			return i
		}
	}
	return -1
}

// AllServiced reports whether every stop has been serviced
func (p *RoutePlan) AllServiced() bool {
	for i := range p.Stops {
		if p.Stops[i].ServicedAt == nil {
			return false
		}
	}
	return true
}

// MarkStopServiced stamps the stop for binID and re-derives the plan status.
// It returns false without touching the plan when the stop was already
// serviced, and a not-found error when binID is not on this tour.
func (p *RoutePlan) MarkStopServiced(binID string, at int64) (bool, error) {
	idx := p.FindStop(binID)
	if idx < 0 {
		return false, NotFound("Stop not found in this route")
	}

	stop := &p.Stops[idx]
	if stop.ServicedAt != nil {
		return false, nil
	}

	stop.ServicedAt = &at
	p.UpdatedAt = at

	if p.Status != RoutePlanStatusCompleted && p.AllServiced() {
		p.Status = RoutePlanStatusCompleted
		p.CompletedAt = &at
	}

	return true, nil
}

// ServicedCount returns the number of stops already serviced
func (p *RoutePlan) ServicedCount() int {
	n := 0
	for i := range p.Stops {
		if p.Stops[i].ServicedAt != nil {
			n++
		}
	}
	return n
}

// CreateRoutePlanRequest is the request body for POST /api/routes.
// Threshold is any finite number: above 100 only bins flagged needs_pickup
// qualify. The stop cap is accepted as maxStops or max_stops.
type CreateRoutePlanRequest struct {
	Depot         *DepotInput `json:"depot" validate:"required"`
	Threshold     *float64    `json:"threshold,omitempty" validate:"omitempty,finite"`
	MaxStops      *int        `json:"maxStops,omitempty" validate:"omitempty,gt=0"`
	MaxStopsSnake *int        `json:"max_stops,omitempty" validate:"omitempty,gt=0"`
}

// StopCap returns the requested stop cap, or nil when unbounded
func (r *CreateRoutePlanRequest) StopCap() *int {
	if r.MaxStops != nil {
		return r.MaxStops
	}
	return r.MaxStopsSnake
}

// DepotInput keeps lat/lng as pointers so a missing coordinate is
// distinguishable from 0
type DepotInput struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}
