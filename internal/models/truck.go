package models

// Truck status values
const (
	TruckStatusAvailable   = "available"
	TruckStatusInService   = "in_service"
	TruckStatusMaintenance = "maintenance"
)

const DefaultFuelType = "diesel"

// Truck is a collection vehicle. Plate numbers are unique per user.
type Truck struct {
	ID             string  `json:"id" db:"id"`
	UserID         string  `json:"user_id" db:"user_id"`
	Name           string  `json:"name" db:"name"`
	PlateNumber    string  `json:"plate_number" db:"plate_number"`
	CapacityLitres int     `json:"capacity_litres" db:"capacity_litres"`
	FuelType       string  `json:"fuel_type" db:"fuel_type"`
	Status         string  `json:"status" db:"status"`
	Latitude       float64 `json:"latitude" db:"latitude"`
	Longitude      float64 `json:"longitude" db:"longitude"`
	CurrentRouteID *string `json:"current_route_id,omitempty" db:"current_route_id"`
	LastServiceAt  *int64  `json:"last_service_at,omitempty" db:"last_service_at"` // Unix timestamp
	OdometerKm     float64 `json:"odometer_km" db:"odometer_km"`
	CreatedAt      int64   `json:"created_at" db:"created_at"` // Unix timestamp
	UpdatedAt      int64   `json:"updated_at" db:"updated_at"` // Unix timestamp
}

// TruckFilter narrows GET /api/trucks
type TruckFilter struct {
	Status      string
	MinCapacity int
	Query       string // case-insensitive match on name or plate
}

// CreateTruckRequest is the request body for POST /api/trucks
type CreateTruckRequest struct {
	Name           string      `json:"name"`
	PlateNumber    string      `json:"plate_number" validate:"required"`
	CapacityLitres int         `json:"capacity_litres" validate:"required,min=1"`
	FuelType       string      `json:"fuel_type" validate:"omitempty,oneof=diesel petrol electric hybrid"`
	Status         string      `json:"status" validate:"omitempty,oneof=available in_service maintenance"`
	Location       *Coordinate `json:"location,omitempty"`
	LastServiceAt  *int64      `json:"last_service_at,omitempty"`
	OdometerKm     float64     `json:"odometer_km" validate:"gte=0"`
}

// UpdateTruckRequest is the request body for PUT /api/trucks/:id.
// Only non-nil fields are applied.
type UpdateTruckRequest struct {
	Name           *string     `json:"name,omitempty"`
	PlateNumber    *string     `json:"plate_number,omitempty" validate:"omitempty,min=1"`
	CapacityLitres *int        `json:"capacity_litres,omitempty" validate:"omitempty,min=1"`
	FuelType       *string     `json:"fuel_type,omitempty" validate:"omitempty,oneof=diesel petrol electric hybrid"`
	Status         *string     `json:"status,omitempty" validate:"omitempty,oneof=available in_service maintenance"`
	Location       *Coordinate `json:"location,omitempty"`
	LastServiceAt  *int64      `json:"last_service_at,omitempty"`
	OdometerKm     *float64    `json:"odometer_km,omitempty" validate:"omitempty,gte=0"`
	CurrentRouteID *string     `json:"current_route_id,omitempty"`
}

// Apply copies the set fields of req onto t
func (req *UpdateTruckRequest) Apply(t *Truck) {
	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.PlateNumber != nil {
		t.PlateNumber = *req.PlateNumber
	}
	if req.CapacityLitres != nil {
		t.CapacityLitres = *req.CapacityLitres
	}
	if req.FuelType != nil {
		t.FuelType = *req.FuelType
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Location != nil {
		t.Latitude = req.Location.Lat
		t.Longitude = req.Location.Lng
	}
	if req.LastServiceAt != nil {
		t.LastServiceAt = req.LastServiceAt
	}
	if req.OdometerKm != nil {
		t.OdometerKm = *req.OdometerKm
	}
	if req.CurrentRouteID != nil {
		if *req.CurrentRouteID == "" {
			t.CurrentRouteID = nil
		} else {
			t.CurrentRouteID = req.CurrentRouteID
		}
	}
}
