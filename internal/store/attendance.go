package store

import (
	"context"

	"github.com/SkyePiper/esd-tracker-backend/internal/model"
	"github.com/SkyePiper/esd-tracker-backend/internal/schema"
)

var attendanceSchema = schema.Table{
	Name: "user_session_inter",
	Columns: []schema.Column{
		{Name: "user_id", Type: schema.Integer, ForeignKeyTable: "user", ForeignKeyColumn: "id"},
		{Name: "training_session_id", Type: schema.Integer, ForeignKeyTable: "training_session", ForeignKeyColumn: "id"},
		{Name: "user_attendance_type", Type: schema.Integer},
	},
}

// AttendanceLinks is the record store for the 'user_session_inter' table,
// the composite-key link between users and training sessions. Each
// (user, session) pair holds at most one row; changing attendance rewrites
// that row rather than appending history.
type AttendanceLinks struct {
	*Table[model.Attendance]
}

// NewAttendanceLinks builds the attendance link store.
func NewAttendanceLinks(db *DB) (*AttendanceLinks, error) {
	fields := []Field[model.Attendance]{
		{Column: "user_id", Ref: func(a *model.Attendance) any { return &a.UserID }},
		{Column: "training_session_id", Ref: func(a *model.Attendance) any { return &a.TrainingSessionID }},
		{Column: "user_attendance_type", Ref: func(a *model.Attendance) any { return &a.Type }},
	}

	tbl, err := NewTable(db, attendanceSchema, fields, nil)
	if err != nil {
		return nil, err
	}
	return &AttendanceLinks{Table: tbl}, nil
}

// Keys builds the composite key map for one (user, session) pair.
func Keys(userID, sessionID int64) map[string]int64 {
	return map[string]int64{
		"user_id":             userID,
		"training_session_id": sessionID,
	}
}

// ByUser returns every attendance record for one user.
func (a *AttendanceLinks) ByUser(ctx context.Context, userID int64) ([]model.Attendance, error) {
	return a.GetManyByField(ctx, "user_id", userID)
}

// BySession returns every attendance record for one training session.
func (a *AttendanceLinks) BySession(ctx context.Context, sessionID int64) ([]model.Attendance, error) {
	return a.GetManyByField(ctx, "training_session_id", sessionID)
}

// Mark records how a user relates to a session. A first mark inserts the
// link row; a repeat mark overwrites the stored attendance type in place.
func (a *AttendanceLinks) Mark(ctx context.Context, userID, sessionID int64, t model.AttendanceType) (model.Attendance, error) {
	rec := model.Attendance{
		UserID:            userID,
		TrainingSessionID: sessionID,
		Type:              t,
	}
	return a.Upsert(ctx, rec, Keys(userID, sessionID), func(cur *model.Attendance) {
		cur.Type = t
	})
}
