package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainerStudentLink grants a trainer capability over a student's records.
// The pair (TrainerID, StudentID) is unique.
type TrainerStudentLink struct {
	TrainerID primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	StudentID primitive.ObjectID `bson:"studentId" json:"studentId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
