package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role distinguishes trainers from students. It is a closed set: anything
// other than the constants below is treated as an unknown role.
type Role string

const (
	RoleTrainer Role = "TRAINER"
	RoleStudent Role = "STUDENT"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTrainer, RoleStudent:
		return true
	}
	return false
}

// Sex selects the skinfold coefficient set used for body-composition estimates.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// User is an Identity: either a trainer or a student account.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // never exposed
	Role         Role               `bson:"role" json:"role"`

	// --- Profile (all optional) ---
	Phone            string   `bson:"phone,omitempty" json:"phone,omitempty"`
	Address          string   `bson:"address,omitempty" json:"address,omitempty"`
	Age              *int     `bson:"age,omitempty" json:"age,omitempty"`
	HeightCm         *float64 `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	WeightKg         *float64 `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	Sex              Sex      `bson:"sex,omitempty" json:"sex,omitempty"`
	TrainingLocation string   `bson:"trainingLocation,omitempty" json:"trainingLocation,omitempty"`

	// Trainer-only: professional license (CREF).
	LicenseID string `bson:"licenseId,omitempty" json:"licenseId,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// ProfilePatch carries the profile fields a user may change about themselves.
// Nil pointers leave the stored value untouched.
type ProfilePatch struct {
	Name             *string  `json:"name" validate:"omitnil,min=1,max=120"`
	Phone            *string  `json:"phone" validate:"omitnil,max=40"`
	Address          *string  `json:"address" validate:"omitnil,max=200"`
	Age              *int     `json:"age" validate:"omitnil,gte=1,lte=120"`
	HeightCm         *float64 `json:"heightCm" validate:"omitnil,finite,gt=0,lte=300"`
	WeightKg         *float64 `json:"weightKg" validate:"omitnil,finite,gt=0,lte=500"`
	Sex              *Sex     `json:"sex" validate:"omitnil,sex"`
	TrainingLocation *string  `json:"trainingLocation" validate:"omitnil,max=200"`
	LicenseID        *string  `json:"licenseId" validate:"omitnil,max=40"`
}

// Apply copies the non-nil fields of p onto u.
func (p ProfilePatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.Age != nil {
		u.Age = p.Age
	}
	if p.HeightCm != nil {
		u.HeightCm = p.HeightCm
	}
	if p.WeightKg != nil {
		u.WeightKg = p.WeightKg
	}
	if p.Sex != nil {
		u.Sex = *p.Sex
	}
	if p.TrainingLocation != nil {
		u.TrainingLocation = *p.TrainingLocation
	}
	if p.LicenseID != nil {
		u.LicenseID = *p.LicenseID
	}
}

// Actor is the authenticated identity performing an operation. It is resolved
// once per request and passed explicitly to every guard and service call.
type Actor struct {
	ID   primitive.ObjectID
	Role Role
}
