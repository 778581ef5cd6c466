package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutPlan is a titled list of exercises owned by one student.
// Titles are free text, conventionally a weekday name.
type WorkoutPlan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID `bson:"studentId" json:"studentId"`
	Title     string             `bson:"title" json:"title"`
	// Weekday is the canonical slot (0 = Monday) derived from Title at write
	// time; nil when the title names no weekday.
	Weekday   *int      `bson:"weekday,omitempty" json:"weekday,omitempty"`
	Content   string    `bson:"content" json:"-"` // JSON array of Exercise
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Exercise is one entry of a plan's content payload.
type Exercise struct {
	Name     string `json:"name" validate:"required"`
	Sets     Count  `json:"sets" validate:"gte=0"`
	Reps     Count  `json:"reps" validate:"gte=0"`
	MediaURL string `json:"mediaUrl,omitempty"`
}

// Count is a non-negative target (sets or repetitions). Older payloads store
// it as a numeric string, so both "3" and 3 decode.
type Count int

func (c *Count) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*c = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("count %q is not a whole number", s)
		}
		*c = Count(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = Count(n)
	return nil
}

// EncodeExercises serialises an exercise list into a plan content payload.
func EncodeExercises(exercises []Exercise) (string, error) {
	if exercises == nil {
		exercises = []Exercise{}
	}
	b, err := json.Marshal(exercises)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeExercises parses a plan's content payload. Malformed payloads yield a
// *DataIntegrityError.
func (w *WorkoutPlan) DecodeExercises() ([]Exercise, error) {
	var exercises []Exercise
	if err := json.Unmarshal([]byte(w.Content), &exercises); err != nil {
		return nil, &DataIntegrityError{Entity: "workout", ID: w.ID.Hex(), Err: err}
	}
	if exercises == nil {
		exercises = []Exercise{}
	}
	return exercises, nil
}

// WorkoutLog records that a student finished a plan. Append-only.
type WorkoutLog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID   primitive.ObjectID `bson:"studentId" json:"studentId"`
	WorkoutID   primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	CompletedAt time.Time          `bson:"completedAt" json:"completedAt"`
}
