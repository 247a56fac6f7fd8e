package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestValidateRoutePlanRequest(t *testing.T) {
	tests := []struct {
		name string
		req  CreateRoutePlanRequest
		want string
	}{
		{"missing depot", CreateRoutePlanRequest{}, "Valid depot {lat,lng} is required"},
		{"missing lat", CreateRoutePlanRequest{Depot: &DepotInput{Lng: ptr(1.0)}}, "Valid depot {lat,lng} is required"},
		{"latitude out of range", CreateRoutePlanRequest{Depot: &DepotInput{Lat: ptr(90.5), Lng: ptr(1.0)}}, "Valid depot {lat,lng} is required"},
		{"longitude out of range", CreateRoutePlanRequest{Depot: &DepotInput{Lat: ptr(1.0), Lng: ptr(-180.5)}}, "Valid depot {lat,lng} is required"},
		{"infinite threshold", CreateRoutePlanRequest{Depot: &DepotInput{Lat: ptr(0.0), Lng: ptr(0.0)}, Threshold: ptr(math.Inf(1))}, "threshold must be a finite number"},
		{"NaN threshold", CreateRoutePlanRequest{Depot: &DepotInput{Lat: ptr(0.0), Lng: ptr(0.0)}, Threshold: ptr(math.NaN())}, "threshold must be a finite number"},
		{"zero snake case max stops", CreateRoutePlanRequest{Depot: &DepotInput{Lat: ptr(0.0), Lng: ptr(0.0)}, MaxStopsSnake: ptr(0)}, "max_stops must be greater than 0"},
		{"zero max stops", CreateRoutePlanRequest{Depot: &DepotInput{Lat: ptr(0.0), Lng: ptr(0.0)}, MaxStops: ptr(0)}, "maxStops must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.req)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestValidateAcceptsBoundaryValues(t *testing.T) {
	req := CreateRoutePlanRequest{
		Depot:     &DepotInput{Lat: ptr(-90.0), Lng: ptr(180.0)},
		Threshold: ptr(0.0),
		MaxStops:  ptr(1),
	}
	assert.NoError(t, Validate(&req))

	req.Threshold = ptr(100.0)
	assert.NoError(t, Validate(&req))

	// out-of-range thresholds are meaningful: above 100 only flagged bins qualify
	req.Threshold = ptr(101.0)
	assert.NoError(t, Validate(&req))
	req.Threshold = ptr(-5.0)
	assert.NoError(t, Validate(&req))
}

func TestStopCap(t *testing.T) {
	req := CreateRoutePlanRequest{}
	assert.Nil(t, req.StopCap())

	req.MaxStopsSnake = ptr(4)
	assert.Equal(t, 4, *req.StopCap())

	req.MaxStops = ptr(2)
	assert.Equal(t, 2, *req.StopCap())
}

func TestValidateJoinsFieldErrors(t *testing.T) {
	err := Validate(&CreateTruckRequest{FuelType: "coal"})
	require.Error(t, err)
	assert.Equal(t,
		"plate_number is required; capacity_litres is required; fuel_type must be one of: diesel petrol electric hybrid",
		err.Error())
}

func TestValidateBinRequest(t *testing.T) {
	err := Validate(&CreateBinRequest{Name: "Corner", Latitude: ptr(37.3), Longitude: ptr(-121.9), LatestFillPct: ptr(120.0)})
	require.Error(t, err)
	assert.Equal(t, "latest_fill_pct must be at most 100", err.Error())

	err = Validate(&CreateBinRequest{Name: "Corner", Latitude: ptr(137.3), Longitude: ptr(-121.9)})
	require.Error(t, err)
	assert.Equal(t, "latitude must be a valid latitude", err.Error())
}
