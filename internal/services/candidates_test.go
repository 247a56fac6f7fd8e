package services

import (
	"testing"

	"binroute-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectCandidates(t *testing.T) {
	bins := []models.Bin{
		{ID: "low", LatestFillPct: 10, Status: models.BinStatusNormal},
		{ID: "at-threshold", LatestFillPct: 80, Status: models.BinStatusNormal},
		{ID: "flagged", LatestFillPct: 5, Status: models.BinStatusNeedsPickup},
		{ID: "full", LatestFillPct: 100, Status: models.BinStatusNormal},
		{ID: "just-below", LatestFillPct: 79.9, Status: models.BinStatusNormal},
	}

	candidates, err := SelectCandidates(bins, 80)
	require.NoError(t, err)

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{"at-threshold", "flagged", "full"}, ids)
}

func TestSelectCandidatesThresholdZeroTakesEverything(t *testing.T) {
	bins := []models.Bin{
		{ID: "a", LatestFillPct: 0},
		{ID: "b", LatestFillPct: 42},
	}

	candidates, err := SelectCandidates(bins, 0)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}

func TestSelectCandidatesNoneEligible(t *testing.T) {
	tests := []struct {
		name string
		bins []models.Bin
	}{
		{"no bins", nil},
		{"all below threshold", []models.Bin{{ID: "a", LatestFillPct: 10}, {ID: "b", LatestFillPct: 50}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates, err := SelectCandidates(tt.bins, 80)
			assert.Nil(t, candidates)
			require.Error(t, err)
			assert.True(t, models.IsValidation(err))
			assert.Equal(t, "No bins require pickup at this time", err.Error())
		})
	}
}
