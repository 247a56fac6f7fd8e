package services

import "binroute-backend/internal/models"

// ErrNoCandidates rejects route creation when nothing needs a pickup
var ErrNoCandidates = &models.ValidationError{Message: "No bins require pickup at this time"}

// IsCandidate reports whether a bin should be routed: flagged for pickup
// explicitly, or at/over the fill threshold.
func IsCandidate(bin *models.Bin, threshold float64) bool {
	return bin.Status == models.BinStatusNeedsPickup || bin.LatestFillPct >= threshold
}

// SelectCandidates filters bins down to the ones eligible for routing,
// keeping input order.
func SelectCandidates(bins []models.Bin, threshold float64) ([]models.Bin, error) {
	candidates := make([]models.Bin, 0, len(bins))
	for i := range bins {
		if IsCandidate(&bins[i], threshold) {
			candidates = append(candidates, bins[i])
		}
	}

	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	return candidates, nil
}
