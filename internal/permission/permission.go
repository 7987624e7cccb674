// Package permission defines the permission bitmask carried by every user
// record and the gate every controller operation passes through.
package permission

import (
	"github.com/SkyePiper/esd-tracker-backend/internal/apperr"
)

// Permission is a bitmask of capabilities. A user's permissions field is
// the OR of the bits granted to them.
type Permission int64

const (
	// Administer bypasses every gate check.
	Administer Permission = 1 << iota
	GetUser
	CreateUser
	// UpdateSelf allows a user to update most of their own record.
	UpdateSelf
	UpdateOtherUsers
	DeleteUsers
	GetTrainingSession
	CreateTrainingSession
	UpdateTrainingSessions
	DeleteTrainingSessions
)

// All lists every defined permission in declaration order.
var All = []Permission{
	Administer,
	GetUser,
	CreateUser,
	UpdateSelf,
	UpdateOtherUsers,
	DeleteUsers,
	GetTrainingSession,
	CreateTrainingSession,
	UpdateTrainingSessions,
	DeleteTrainingSessions,
}

var displayNames = map[Permission]string{
	Administer:             "Administer",
	GetUser:                "Get User",
	CreateUser:             "Create User",
	UpdateSelf:             "Update Self",
	UpdateOtherUsers:       "Update Other Users",
	DeleteUsers:            "Delete Users",
	GetTrainingSession:     "Get Training Session",
	CreateTrainingSession:  "Create Training Session",
	UpdateTrainingSessions: "Update Training Sessions",
	DeleteTrainingSessions: "Delete Training Sessions",
}

// DisplayName returns the human-readable name for a single permission bit.
func (p Permission) DisplayName() string {
	if name, ok := displayNames[p]; ok {
		return name
	}
	return "Unknown"
}

// Has reports whether p contains any bit of other.
func (p Permission) Has(other Permission) bool {
	return p&other != 0
}

// Check succeeds when the caller's bitmask overlaps any of the required
// permissions or carries Administer. Any single matching bit is
// sufficient; all-of semantics are deliberately not supported.
func Check(have Permission, required ...Permission) error {
	for _, r := range append(required, Administer) {
		if have&r != 0 {
			return nil
		}
	}
	return apperr.New(apperr.Unauthorized, "missing required permission")
}
