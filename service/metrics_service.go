package service

import (
	"fmt"

	"jansetu/repository"
)

// MetricsService recomputes an authority's derived performance metrics.
// It runs inside the transaction that triggered it (a resolution or a
// rating) so it always reads current counters, and it writes the score
// only; the counters themselves are maintained incrementally by their
// single writers.
type MetricsService struct{}

// NewMetricsService creates a new metrics service
func NewMetricsService() *MetricsService {
	return &MetricsService{}
}

// PerformanceScore is the canonical composite formula:
//
//	score = resolutionRate*0.5 + (averageRating/5*100)*0.5
//
// with resolutionRate = resolved/total*100 (0 when total is 0) and
// averageRating on the 1-5 scale (0 when unrated). Clamped to [0,100].
// Applied identically from every trigger.
func PerformanceScore(resolved, total int, averageRating float64) float64 {
	var resolutionRate float64
	if total > 0 {
		resolutionRate = float64(resolved) / float64(total) * 100
	}
	score := resolutionRate*0.5 + (averageRating/5*100)*0.5
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// RecomputeAuthorityScore recalculates and stores the performance score
// for an authority using the handle (transaction) it is given
func (s *MetricsService) RecomputeAuthorityScore(q repository.DBTX, authorityID int64) error {
	authorityRepo := repository.NewAuthorityRepository(q)
	ratingRepo := repository.NewRatingRepository(q)

	authority, err := authorityRepo.GetByID(authorityID)
	if err != nil {
		return fmt.Errorf("failed to load authority for metrics: %w", err)
	}
	avgRating, err := ratingRepo.GetAuthorityAverage(authorityID)
	if err != nil {
		return fmt.Errorf("failed to load average rating: %w", err)
	}

	score := PerformanceScore(authority.ResolvedComplaints, authority.TotalComplaints, avgRating)
	if err := authorityRepo.UpdatePerformanceScore(authorityID, score); err != nil {
		return fmt.Errorf("failed to store performance score: %w", err)
	}
	return nil
}
