package services

import (
	"fmt"
	"math/rand"
	"testing"

	"binroute-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bin(id string, lat, lng float64) models.Bin {
	return models.Bin{ID: id, Name: "Bin " + id, Latitude: lat, Longitude: lng, LatestFillPct: 90}
}

func stopIDs(stops []models.Stop) []string {
	ids := make([]string, len(stops))
	for i, s := range stops {
		ids[i] = s.BinID
	}
	return ids
}

func TestBuildRouteVisitsNearestFirst(t *testing.T) {
	depot := models.Coordinate{Lat: 0, Lng: 0}
	candidates := []models.Bin{bin("B", 0, 2), bin("A", 0, 1)}

	result := NewRouteOptimizer().BuildRoute(depot, candidates, Unbounded)

	require.Len(t, result.Stops, 2)
	assert.Equal(t, []string{"A", "B"}, stopIDs(result.Stops))
	assert.Equal(t, 111.195, result.Stops[0].DistanceFromPrevKm)
	assert.Equal(t, 111.195, result.Stops[1].DistanceFromPrevKm)
	// out 111.195, across 111.195, back 222.390
	assert.InDelta(t, 444.78, result.TotalDistanceKm, 0.001)
	assert.InDelta(t, 2*Distance(depot, models.Coordinate{Lat: 0, Lng: 2}), result.TotalDistanceKm, 0.001)
}

func TestBuildRouteStopSnapshot(t *testing.T) {
	candidates := []models.Bin{bin("A", 37.3329, -121.8866)}

	result := NewRouteOptimizer().BuildRoute(models.Coordinate{Lat: 37.33, Lng: -121.88}, candidates, Unbounded)

	require.Len(t, result.Stops, 1)
	stop := result.Stops[0]
	assert.Equal(t, "A", stop.BinID)
	assert.Equal(t, "Bin A", stop.Name)
	assert.Equal(t, models.Coordinate{Lat: 37.3329, Lng: -121.8866}, stop.Location)
	assert.Nil(t, stop.ServicedAt)
}

func TestBuildRouteCapOne(t *testing.T) {
	depot := models.Coordinate{Lat: 0, Lng: 0}
	candidates := []models.Bin{bin("far", 0, 3), bin("near", 0, 1), bin("mid", 0, 2)}

	result := NewRouteOptimizer().BuildRoute(depot, candidates, 1)

	require.Len(t, result.Stops, 1)
	assert.Equal(t, "near", result.Stops[0].BinID)
	// the return leg still counts
	assert.InDelta(t, 222.39, result.TotalDistanceKm, 0.001)
}

func TestBuildRouteCapZero(t *testing.T) {
	candidates := []models.Bin{bin("A", 0, 1), bin("B", 0, 2)}

	result := NewRouteOptimizer().BuildRoute(models.Coordinate{Lat: 5, Lng: 5}, candidates, 0)

	assert.Empty(t, result.Stops)
	assert.Zero(t, result.TotalDistanceKm)
}

func TestBuildRouteNoCandidates(t *testing.T) {
	result := NewRouteOptimizer().BuildRoute(models.Coordinate{Lat: 1, Lng: 1}, nil, Unbounded)

	assert.Empty(t, result.Stops)
	assert.Zero(t, result.TotalDistanceKm)
}

func TestBuildRouteCapLargerThanCandidates(t *testing.T) {
	candidates := []models.Bin{bin("A", 0, 1), bin("B", 0, 2), bin("C", 1, 1)}
	depot := models.Coordinate{}

	capped := NewRouteOptimizer().BuildRoute(depot, candidates, 10)
	unbounded := NewRouteOptimizer().BuildRoute(depot, candidates, Unbounded)

	assert.Equal(t, unbounded, capped)
	assert.Len(t, capped.Stops, 3)
}

func TestBuildRouteTieGoesToFirstCandidate(t *testing.T) {
	depot := models.Coordinate{Lat: 0, Lng: 0}
	// (0,1) and (1,0) are exactly the same distance from the origin
	east := bin("east", 0, 1)
	north := bin("north", 1, 0)
	require.Equal(t, Distance(depot, east.Location()), Distance(depot, north.Location()))

	first := NewRouteOptimizer().BuildRoute(depot, []models.Bin{east, north}, 1)
	second := NewRouteOptimizer().BuildRoute(depot, []models.Bin{north, east}, 1)

	assert.Equal(t, "east", first.Stops[0].BinID)
	assert.Equal(t, "north", second.Stops[0].BinID)
}

func TestBuildRouteVerboseMatchesQuiet(t *testing.T) {
	candidates := []models.Bin{bin("A", 0, 2), bin("B", 0, 1)}

	quiet := NewRouteOptimizer().BuildRoute(models.Coordinate{}, candidates, Unbounded)
	verbose := (&RouteOptimizer{Verbose: true}).BuildRoute(models.Coordinate{}, candidates, Unbounded)

	assert.Equal(t, quiet, verbose)
}

func TestBuildRouteDoesNotMutateCandidates(t *testing.T) {
	candidates := []models.Bin{bin("A", 0, 2), bin("B", 0, 1), bin("C", 0, 3)}
	before := append([]models.Bin(nil), candidates...)

	NewRouteOptimizer().BuildRoute(models.Coordinate{}, candidates, Unbounded)

	assert.Equal(t, before, candidates)
}

func TestBuildRouteProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	optimizer := NewRouteOptimizer()

	for round := 0; round < 50; round++ {
		depot := models.Coordinate{Lat: 37 + rng.Float64(), Lng: -122 + rng.Float64()}
		n := rng.Intn(12)
		candidates := make([]models.Bin, n)
		for i := range candidates {
			candidates[i] = bin(fmt.Sprintf("b%d", i), 37+rng.Float64(), -122+rng.Float64())
		}

		caps := []int{Unbounded, 0, 1, n / 2, n, n + 3}
		for _, maxStops := range caps {
			t.Run(fmt.Sprintf("round %d cap %d", round, maxStops), func(t *testing.T) {
				result := optimizer.BuildRoute(depot, candidates, maxStops)

				want := n
				if maxStops != Unbounded && maxStops < n {
					want = maxStops
				}
				require.Len(t, result.Stops, want)

				// every candidate at most once
				seen := make(map[string]bool)
				for _, s := range result.Stops {
					assert.False(t, seen[s.BinID], "bin %s visited twice", s.BinID)
					seen[s.BinID] = true
				}

				// every leg is non-negative and rounded to 3 decimals
				legSum := 0.0
				for _, s := range result.Stops {
					assert.GreaterOrEqual(t, s.DistanceFromPrevKm, 0.0)
					assert.InDelta(t, roundKm(s.DistanceFromPrevKm), s.DistanceFromPrevKm, 1e-9)
					legSum += s.DistanceFromPrevKm
				}

				// total is the legs plus the return leg, within rounding
				last := depot
				if len(result.Stops) > 0 {
					last = result.Stops[len(result.Stops)-1].Location
				}
				expected := legSum + Distance(last, depot)
				assert.InDelta(t, expected, result.TotalDistanceKm, 0.0005*float64(len(result.Stops)+2))

				// each step picked the nearest remaining candidate
				remaining := make(map[string]models.Bin, n)
				for _, c := range candidates {
					remaining[c.ID] = c
				}
				current := depot
				for _, s := range result.Stops {
					chosen := Distance(current, s.Location)
					for _, other := range remaining {
						assert.LessOrEqual(t, chosen, Distance(current, other.Location())+1e-9)
					}
					delete(remaining, s.BinID)
					current = s.Location
				}
			})
		}
	}
}
