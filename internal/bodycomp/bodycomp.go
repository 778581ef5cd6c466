// Package bodycomp estimates body composition from seven-site skinfold
// measurements using the generalized body-density equations and the Siri
// conversion to body-fat percentage.
package bodycomp

import (
	"math"

	"alcyxob/fitness-coach/internal/domain"
)

// coefficients of body density = a - b·Σ + c·Σ² - d·age
type coefficients struct {
	a, b, c, d float64
}

var (
	maleCoefficients   = coefficients{a: 1.112, b: 0.00043499, c: 0.00000055, d: 0.00028826}
	femaleCoefficients = coefficients{a: 1.097, b: 0.00046971, c: 0.00000056, d: 0.00012828}
)

const maxAgeYears = 120

// Input is one skinfold sample with the subject data the equations need.
type Input struct {
	WeightKg  float64
	HeightCm  float64
	AgeYears  int
	Sex       domain.Sex // empty selects the male set
	Skinfolds domain.Skinfolds
}

// Result holds unrounded derived values. Round only for display.
type Result struct {
	SkinfoldSum       float64 `json:"skinfoldSum"`
	BodyDensity       float64 `json:"bodyDensity"`
	BodyFatPercentage float64 `json:"bodyFatPercentage"`
	FatMassKg         float64 `json:"fatMassKg"`
	LeanMassKg        float64 `json:"leanMassKg"`
}

// Calculate runs the seven-site estimate. Invalid input yields a
// *domain.ValidationError listing every offending field.
func Calculate(in Input) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}

	co := maleCoefficients
	if in.Sex == domain.SexFemale {
		co = femaleCoefficients
	}

	sum := in.Skinfolds.Sum()
	density := co.a - co.b*sum + co.c*sum*sum - co.d*float64(in.AgeYears)
	bf := BodyFatFromDensity(density)
	fat := in.WeightKg * bf / 100

	return Result{
		SkinfoldSum:       sum,
		BodyDensity:       density,
		BodyFatPercentage: bf,
		FatMassKg:         fat,
		LeanMassKg:        in.WeightKg - fat,
	}, nil
}

// BodyFatFromDensity applies the Siri equation.
func BodyFatFromDensity(density float64) float64 {
	return (4.95/density - 4.50) * 100
}

// Masses splits weight into fat and lean mass for a stored body-fat percentage.
func Masses(weightKg, bodyFatPercentage float64) (fatKg, leanKg float64) {
	fatKg = weightKg * bodyFatPercentage / 100
	return fatKg, weightKg - fatKg
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func validate(in Input) error {
	fields := map[string]string{}

	positive := func(name string, v float64) {
		if !finite(v) {
			fields[name] = "must be a finite number"
		} else if v <= 0 {
			fields[name] = "must be greater than 0"
		}
	}
	positive("weightKg", in.WeightKg)
	positive("heightCm", in.HeightCm)

	if in.AgeYears <= 0 || in.AgeYears > maxAgeYears {
		fields["ageYears"] = "must be between 1 and 120"
	}

	switch in.Sex {
	case "", domain.SexMale, domain.SexFemale:
	default:
		fields["sex"] = "must be male or female"
	}

	sites := []struct {
		name string
		v    float64
	}{
		{"chest", in.Skinfolds.Chest},
		{"abdominal", in.Skinfolds.Abdominal},
		{"thigh", in.Skinfolds.Thigh},
		{"tricep", in.Skinfolds.Tricep},
		{"subscapular", in.Skinfolds.Subscapular},
		{"suprailiac", in.Skinfolds.Suprailiac},
		{"midaxillary", in.Skinfolds.Midaxillary},
	}
	for _, s := range sites {
		if !finite(s.v) {
			fields["skinfolds."+s.name] = "must be a finite number"
		} else if s.v < 0 {
			fields["skinfolds."+s.name] = "must not be negative"
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
