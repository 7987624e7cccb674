package model

import (
	"github.com/SkyePiper/esd-tracker-backend/internal/permission"
)

// User represents a record in the 'user' table. The password field holds
// the argon2id hash, never plaintext, and is excluded from JSON output.
type User struct {
	ID               int64                 `json:"id"`
	Created          string                `json:"created" validate:"required,iso8601"`
	Forename         string                `json:"forename" validate:"required,min=1"`
	Surname          string                `json:"surname" validate:"required,min=1"`
	Email            string                `json:"email" validate:"required,email"`
	LastTrainingDate string                `json:"lastTrainingDate" validate:"required,iso8601"`
	NextTrainingDate string                `json:"nextTrainingDate" validate:"required,iso8601"`
	Permissions      permission.Permission `json:"permissions" validate:"gte=0"`
	Password         string                `json:"-" validate:"required"`
}

// Validate checks the record's field constraints. It reports the first
// failure as an InvalidFormat error naming the offending field.
func (u *User) Validate() error {
	return validateStruct(u)
}

// UserUpdate is a partial update to a user. Nil fields keep the currently
// stored value.
type UserUpdate struct {
	Forename         *string                `json:"forename" validate:"omitempty,min=1"`
	Surname          *string                `json:"surname" validate:"omitempty,min=1"`
	Email            *string                `json:"email" validate:"omitempty,email"`
	LastTrainingDate *string                `json:"lastTrainingDate" validate:"omitempty,iso8601"`
	NextTrainingDate *string                `json:"nextTrainingDate" validate:"omitempty,iso8601"`
	Permissions      *permission.Permission `json:"permissions" validate:"omitempty,gte=0"`
}

// Validate checks the set fields of the update payload.
func (u *UserUpdate) Validate() error {
	return validateStruct(u)
}

// Apply overlays the set fields onto rec. The id, created timestamp and
// password are never touched by an update payload.
func (u UserUpdate) Apply(rec *User) {
	if u.Forename != nil {
		rec.Forename = *u.Forename
	}
	if u.Surname != nil {
		rec.Surname = *u.Surname
	}
	if u.Email != nil {
		rec.Email = *u.Email
	}
	if u.LastTrainingDate != nil {
		rec.LastTrainingDate = *u.LastTrainingDate
	}
	if u.NextTrainingDate != nil {
		rec.NextTrainingDate = *u.NextTrainingDate
	}
	if u.Permissions != nil {
		rec.Permissions = *u.Permissions
	}
}
