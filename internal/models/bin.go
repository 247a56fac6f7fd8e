package models

import "time"

// Bin status values
const (
	BinStatusNormal      = "normal"
	BinStatusNeedsPickup = "needs_pickup"
)

// Coordinate is a WGS84 point in decimal degrees
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Bin struct {
	ID              string  `json:"id" db:"id"`
	UserID          string  `json:"user_id" db:"user_id"`
	Name            string  `json:"name" db:"name"`
	Latitude        float64 `json:"latitude" db:"latitude"`
	Longitude       float64 `json:"longitude" db:"longitude"`
	LatestFillPct   float64 `json:"latest_fill_pct" db:"latest_fill_pct"`
	Status          string  `json:"status" db:"status"`
	LatestReadingAt *int64  `json:"latest_reading_at,omitempty" db:"latest_reading_at"` // Unix timestamp
	CreatedAt       int64   `json:"created_at" db:"created_at"`                         // Unix timestamp
	UpdatedAt       int64   `json:"updated_at" db:"updated_at"`                         // Unix timestamp
}

// Location returns the bin position as a Coordinate
func (b *Bin) Location() Coordinate {
	return Coordinate{Lat: b.Latitude, Lng: b.Longitude}
}

// ResetAfterPickup models the physical emptying of the bin
func (b *Bin) ResetAfterPickup(at int64) {
	b.LatestFillPct = 0
	b.Status = BinStatusNormal
	b.LatestReadingAt = &at
	b.UpdatedAt = at
}

// BinResponse is what we send to the client with ISO timestamps
type BinResponse struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Location           Coordinate `json:"location"`
	LatestFillPct      float64    `json:"latest_fill_pct"`
	Status             string     `json:"status"`
	LatestReadingAtIso *string    `json:"latest_reading_at_iso,omitempty"`
	CreatedAt          int64      `json:"created_at"`
	UpdatedAt          int64      `json:"updated_at"`
}

// CreateBinRequest is the request body for POST /api/bins
type CreateBinRequest struct {
	Name          string   `json:"name" validate:"required"`
	Latitude      *float64 `json:"latitude" validate:"required,latitude"`
	Longitude     *float64 `json:"longitude" validate:"required,longitude"`
	LatestFillPct *float64 `json:"latest_fill_pct,omitempty" validate:"omitempty,gte=0,lte=100"`
	Status        string   `json:"status" validate:"omitempty,oneof=normal needs_pickup"`
}

// UpdateBinRequest is the request body for PATCH /api/bins/:id.
// A non-nil LatestFillPct is treated as a fresh sensor reading.
type UpdateBinRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Latitude      *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	LatestFillPct *float64 `json:"latest_fill_pct,omitempty"`
	Status        *string  `json:"status,omitempty" validate:"omitempty,oneof=normal needs_pickup"`
	ReadingAtIso  *string  `json:"reading_at_iso,omitempty"`
}

// ToBinResponse converts a Bin to BinResponse
func (b *Bin) ToBinResponse() BinResponse {
	resp := BinResponse{
		ID:            b.ID,
		Name:          b.Name,
		Location:      b.Location(),
		LatestFillPct: b.LatestFillPct,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}

	if b.LatestReadingAt != nil {
		iso := time.Unix(*b.LatestReadingAt, 0).UTC().Format(time.RFC3339)
		resp.LatestReadingAtIso = &iso
	}

	return resp
}
