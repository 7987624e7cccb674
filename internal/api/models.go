package api

import (
	"github.com/SkyePiper/esd-tracker-backend/internal/model"
	"github.com/SkyePiper/esd-tracker-backend/internal/permission"
)

// loginPayload is the credentials body for POST /login.
type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// createUserPayload is the body for POST /users: the user fields plus the
// plaintext password, which only ever exists in transit.
type createUserPayload struct {
	Forename         string                `json:"forename"`
	Surname          string                `json:"surname"`
	Email            string                `json:"email"`
	LastTrainingDate string                `json:"lastTrainingDate"`
	NextTrainingDate string                `json:"nextTrainingDate"`
	Permissions      permission.Permission `json:"permissions"`
	Password         string                `json:"password"`
}

func (p createUserPayload) user() model.User {
	return model.User{
		Forename:         p.Forename,
		Surname:          p.Surname,
		Email:            p.Email,
		LastTrainingDate: p.LastTrainingDate,
		NextTrainingDate: p.NextTrainingDate,
		Permissions:      p.Permissions,
	}
}

// minimisedUser is the reduced user view for listings that only need a
// display name and contact address.
type minimisedUser struct {
	ID       int64  `json:"id"`
	Forename string `json:"forename"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
}

func minimiseUsers(users []model.User) []minimisedUser {
	out := make([]minimisedUser, len(users))
	for i, u := range users {
		out[i] = minimisedUser{ID: u.ID, Forename: u.Forename, Surname: u.Surname, Email: u.Email}
	}
	return out
}

// markAttendancePayload is the body for POST /attendance.
type markAttendancePayload struct {
	SessionID  int64                `json:"sessionId"`
	UserEmail  string               `json:"userEmail"`
	Attendance model.AttendanceType `json:"attendance"`
}

// enumEntry is one value of an enumeration endpoint response.
type enumEntry struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}
