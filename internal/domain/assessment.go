package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Skinfolds holds the seven caliper measurements, in millimetres.
type Skinfolds struct {
	Chest       float64 `bson:"chestMm" json:"chest" validate:"finite,gte=0"`
	Abdominal   float64 `bson:"abdominalMm" json:"abdominal" validate:"finite,gte=0"`
	Thigh       float64 `bson:"thighMm" json:"thigh" validate:"finite,gte=0"`
	Tricep      float64 `bson:"tricepMm" json:"tricep" validate:"finite,gte=0"`
	Subscapular float64 `bson:"subscapularMm" json:"subscapular" validate:"finite,gte=0"`
	Suprailiac  float64 `bson:"suprailiacMm" json:"suprailiac" validate:"finite,gte=0"`
	Midaxillary float64 `bson:"midaxillaryMm" json:"midaxillary" validate:"finite,gte=0"`
}

// Sum returns the seven-site total.
func (s Skinfolds) Sum() float64 {
	return s.Chest + s.Abdominal + s.Thigh + s.Tricep + s.Subscapular + s.Suprailiac + s.Midaxillary
}

// Assessment is a body-composition measurement owned by one student.
// Assessments are immutable once stored.
type Assessment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID `bson:"studentId" json:"studentId"`
	Date      time.Time          `bson:"date" json:"date"`
	WeightKg  float64            `bson:"weightKg" json:"weightKg"`
	HeightCm  float64            `bson:"heightCm" json:"heightCm"`
	Skinfolds Skinfolds          `bson:",inline" json:"skinfolds"`

	// Inputs used for the estimate, kept so stored percentages can be reproduced.
	AgeYears int `bson:"ageYears" json:"ageYears"`
	Sex      Sex `bson:"sex" json:"sex"`

	// Derived; never supplied by callers.
	BodyDensity       float64 `bson:"bodyDensity" json:"bodyDensity"`
	BodyFatPercentage float64 `bson:"bodyFatPercentage" json:"bodyFatPercentage"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
