package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoStopPlan() RoutePlan {
	return RoutePlan{
		ID:     "plan-1",
		Status: RoutePlanStatusPlanned,
		Stops:  []Stop{{BinID: "A"}, {BinID: "B"}},
	}
}

func TestMarkStopServiced(t *testing.T) {
	plan := twoStopPlan()

	changed, err := plan.MarkStopServiced("B", 100)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, int64(100), *plan.Stops[1].ServicedAt)
	assert.Nil(t, plan.Stops[0].ServicedAt)
	assert.Equal(t, RoutePlanStatusPlanned, plan.Status)
	assert.Equal(t, 1, plan.ServicedCount())
	assert.False(t, plan.AllServiced())

	changed, err = plan.MarkStopServiced("B", 200)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, int64(100), *plan.Stops[1].ServicedAt)

	changed, err = plan.MarkStopServiced("A", 300)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, RoutePlanStatusCompleted, plan.Status)
	require.NotNil(t, plan.CompletedAt)
	assert.Equal(t, int64(300), *plan.CompletedAt)
	assert.Equal(t, int64(300), plan.UpdatedAt)
}

func TestMarkStopServicedUnknownBin(t *testing.T) {
	plan := twoStopPlan()

	changed, err := plan.MarkStopServiced("Z", 100)
	assert.False(t, changed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Stop not found in this route", err.Error())
	assert.Zero(t, plan.ServicedCount())
}

func TestEmptyPlanIsAllServiced(t *testing.T) {
	plan := RoutePlan{}
	assert.True(t, plan.AllServiced())
	assert.Equal(t, -1, plan.FindStop("A"))
}

func TestBinResetAfterPickup(t *testing.T) {
	b := Bin{ID: "A", LatestFillPct: 93, Status: BinStatusNeedsPickup, Latitude: 1, Longitude: 2}
	b.ResetAfterPickup(1700000000)

	assert.Zero(t, b.LatestFillPct)
	assert.Equal(t, BinStatusNormal, b.Status)
	require.NotNil(t, b.LatestReadingAt)
	assert.Equal(t, int64(1700000000), *b.LatestReadingAt)
	assert.Equal(t, Coordinate{Lat: 1, Lng: 2}, b.Location())

	resp := b.ToBinResponse()
	require.NotNil(t, resp.LatestReadingAtIso)
	assert.Equal(t, "2023-11-14T22:13:20Z", *resp.LatestReadingAtIso)
}
