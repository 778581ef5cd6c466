// Package history turns a student's assessments into a trend series.
package history

import (
	"sort"
	"time"

	"alcyxob/fitness-coach/internal/domain"
)

// Point is one entry of the series. LeanMassKg is nil when the body-fat
// percentage is not positive, meaning there is not enough data to derive it.
type Point struct {
	Date              time.Time `json:"date"`
	WeightKg          float64   `json:"weightKg"`
	BodyFatPercentage float64   `json:"bodyFatPercentage"`
	LeanMassKg        *float64  `json:"leanMassKg"`
}

// Track returns the assessments as points in ascending date order. Equal
// dates keep input order. The input slice is left untouched.
func Track(assessments []domain.Assessment) []Point {
	points := make([]Point, 0, len(assessments))
	for _, a := range assessments {
		p := Point{
			Date:              a.Date,
			WeightKg:          a.WeightKg,
			BodyFatPercentage: a.BodyFatPercentage,
		}
		if a.BodyFatPercentage > 0 {
			lean := a.WeightKg * (1 - a.BodyFatPercentage/100)
			p.LeanMassKg = &lean
		}
		points = append(points, p)
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}
