package services

import (
	"log"

	"binroute-backend/internal/models"
)

// Unbounded disables the stop cap in BuildRoute
const Unbounded = -1

// RouteResult is the ordered tour produced by BuildRoute
type RouteResult struct {
	Stops           []models.Stop
	TotalDistanceKm float64
}

// RouteOptimizer orders candidate bins into a single-vehicle tour
type RouteOptimizer struct {
	// Verbose logs every selection step
	Verbose bool
}

// NewRouteOptimizer creates a new route optimizer
func NewRouteOptimizer() *RouteOptimizer {
	return &RouteOptimizer{}
}

// BuildRoute runs greedy nearest-neighbor from the depot, visiting at most
// maxStops candidates (Unbounded for no cap). Each leg is rounded to 3
// decimals; the total accumulates unrounded legs plus the return leg to the
// depot and is rounded once at the end.
//
// Ties go to the candidate that appears first in candidates, so output is
// deterministic for a given input order. O(n^2) in the candidate count.
func (ro *RouteOptimizer) BuildRoute(
	depot models.Coordinate,
	candidates []models.Bin,
	maxStops int,
) RouteResult {
	limit := len(candidates)
	if maxStops >= 0 && maxStops < limit {
		limit = maxStops
	}

	if ro.Verbose {
		log.Printf("🎯 Starting route optimization from (%.6f, %.6f)", depot.Lat, depot.Lng)
		log.Printf("   Candidates: %d, stop limit: %d", len(candidates), limit)
	}

	// visited is indexed like candidates so the scan keeps input order
	visited := make([]bool, len(candidates))
	stops := make([]models.Stop, 0, limit)
	current := depot
	total := 0.0

	for len(stops) < limit {
		bestIdx := -1
		bestDistance := 0.0

		for i := range candidates {
			if visited[i] {
				continue
			}
			d := Distance(current, candidates[i].Location())
			if bestIdx < 0 || d < bestDistance {
				bestIdx = i
				bestDistance = d
			}
		}

		visited[bestIdx] = true
		next := &candidates[bestIdx]
		stops = append(stops, models.Stop{
			BinID:              next.ID,
			Name:               next.Name,
			Location:           next.Location(),
			DistanceFromPrevKm: roundKm(bestDistance),
		})
		total += bestDistance
		current = next.Location()

		if ro.Verbose {
			log.Printf("   Step %d: Selected bin %s (%.0f%% full, distance: %.3f km)",
				len(stops), next.Name, next.LatestFillPct, bestDistance)
		}
	}

	// Return leg has no Stop but always counts toward the total
	total += Distance(current, depot)

	result := RouteResult{
		Stops:           stops,
		TotalDistanceKm: roundKm(total),
	}

	if ro.Verbose {
		log.Printf("✅ Route optimization complete: %d stops, %.3f km", len(stops), result.TotalDistanceKm)
	}

	return result
}
