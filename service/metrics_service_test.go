package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerformanceScore(t *testing.T) {
	tests := []struct {
		name          string
		resolved      int
		total         int
		averageRating float64
		want          float64
	}{
		{"no complaints no ratings", 0, 0, 0, 0},
		{"all resolved perfect ratings", 10, 10, 5, 100},
		{"all resolved no ratings", 10, 10, 0, 50},
		{"half resolved no ratings", 5, 10, 0, 25},
		{"half resolved mid ratings", 5, 10, 3, 55},
		{"unresolved backlog with ratings", 0, 10, 4, 40},
		{"single resolved single top rating", 1, 1, 5, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := PerformanceScore(tc.resolved, tc.total, tc.averageRating)
			assert.InDelta(t, tc.want, got, 0.0001)
		})
	}
}

func TestPerformanceScoreClamped(t *testing.T) {
	// counter drift must never push the score outside [0,100]
	assert.Equal(t, float64(100), PerformanceScore(20, 10, 5))
	assert.Equal(t, float64(0), PerformanceScore(0, 10, -3))
}
