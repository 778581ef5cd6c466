package history

import (
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTrackEmpty(t *testing.T) {
	points := Track(nil)
	require.NotNil(t, points)
	assert.Empty(t, points)
}

func TestTrackAscending(t *testing.T) {
	in := []domain.Assessment{
		{Date: day(2024, 2, 1), WeightKg: 78, BodyFatPercentage: 18},
		{Date: day(2024, 1, 1), WeightKg: 80, BodyFatPercentage: 20},
	}

	points := Track(in)
	require.Len(t, points, 2)

	assert.Equal(t, day(2024, 1, 1), points[0].Date)
	require.NotNil(t, points[0].LeanMassKg)
	assert.InDelta(t, 64.0, *points[0].LeanMassKg, 1e-9)

	assert.Equal(t, day(2024, 2, 1), points[1].Date)
	require.NotNil(t, points[1].LeanMassKg)
	assert.InDelta(t, 63.96, *points[1].LeanMassKg, 1e-9)

	assert.Equal(t, day(2024, 2, 1), in[0].Date, "input must not be reordered")
}

func TestTrackLeanMassNull(t *testing.T) {
	testCases := []struct {
		name string
		bf   float64
	}{
		{"zero body fat", 0},
		{"negative body fat", -1.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			points := Track([]domain.Assessment{{Date: day(2024, 1, 1), WeightKg: 70, BodyFatPercentage: tc.bf}})
			require.Len(t, points, 1)
			assert.Nil(t, points[0].LeanMassKg)
		})
	}
}

func TestTrackStableOnEqualDates(t *testing.T) {
	same := day(2024, 3, 1)
	in := []domain.Assessment{
		{Date: same, WeightKg: 1},
		{Date: day(2024, 1, 1), WeightKg: 2},
		{Date: same, WeightKg: 3},
		{Date: same, WeightKg: 4},
	}

	points := Track(in)
	weights := make([]float64, len(points))
	for i, p := range points {
		weights[i] = p.WeightKg
	}
	assert.Equal(t, []float64{2, 1, 3, 4}, weights)
}
