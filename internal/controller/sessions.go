package controller

import (
	"context"

	"github.com/SkyePiper/esd-tracker-backend/internal/apperr"
	"github.com/SkyePiper/esd-tracker-backend/internal/model"
	"github.com/SkyePiper/esd-tracker-backend/internal/permission"
	"github.com/SkyePiper/esd-tracker-backend/internal/store"
	"github.com/SkyePiper/esd-tracker-backend/internal/timeutil"
)

// TrainingSessions exposes the training session and attendance operations.
type TrainingSessions struct {
	sessions   *store.Sessions
	users      *store.Users
	attendance *store.AttendanceLinks
}

// NewTrainingSessions builds the training session controller.
func NewTrainingSessions(sessions *store.Sessions, users *store.Users, attendance *store.AttendanceLinks) *TrainingSessions {
	return &TrainingSessions{sessions: sessions, users: users, attendance: attendance}
}

// GetAll returns every training session. Requires GetTrainingSession.
func (c *TrainingSessions) GetAll(ctx context.Context, caller model.User) ([]model.TrainingSession, error) {
	if err := permission.Check(caller.Permissions, permission.GetTrainingSession); err != nil {
		return nil, err
	}
	return c.sessions.GetAll(ctx)
}

// GetByID returns one training session by id. Requires GetTrainingSession.
func (c *TrainingSessions) GetByID(ctx context.Context, caller model.User, id int64) (model.TrainingSession, error) {
	if err := permission.Check(caller.Permissions, permission.GetTrainingSession); err != nil {
		return model.TrainingSession{}, err
	}
	return c.sessions.GetByID(ctx, id)
}

// Add creates a new training session. Requires CreateTrainingSession. The
// created timestamp defaults to now when the payload leaves it empty.
func (c *TrainingSessions) Add(ctx context.Context, caller model.User, rec model.TrainingSession) (model.TrainingSession, error) {
	if err := permission.Check(caller.Permissions, permission.CreateTrainingSession); err != nil {
		return model.TrainingSession{}, err
	}

	if rec.Created == "" {
		rec.Created = timeutil.NowString()
	}
	if err := rec.Validate(); err != nil {
		return model.TrainingSession{}, err
	}

	return c.sessions.Add(ctx, rec)
}

// Update applies a partial update to a training session. Requires
// UpdateTrainingSessions.
func (c *TrainingSessions) Update(ctx context.Context, caller model.User, id int64, upd model.TrainingSessionUpdate) (model.TrainingSession, error) {
	if err := permission.Check(caller.Permissions, permission.UpdateTrainingSessions); err != nil {
		return model.TrainingSession{}, err
	}

	if err := upd.Validate(); err != nil {
		return model.TrainingSession{}, err
	}

	return c.sessions.Update(ctx, id, func(cur *model.TrainingSession) {
		upd.Apply(cur)
	})
}

// Delete removes a training session. Requires DeleteTrainingSessions.
func (c *TrainingSessions) Delete(ctx context.Context, caller model.User, id int64) error {
	if err := permission.Check(caller.Permissions, permission.DeleteTrainingSessions); err != nil {
		return err
	}
	return c.sessions.Delete(ctx, id)
}

// SessionAttendance returns the attendee list for one session, each entry
// joined with the user's identifying details. A session nobody has touched
// yields an empty list, not an error. Requires GetTrainingSession.
func (c *TrainingSessions) SessionAttendance(ctx context.Context, caller model.User, sessionID int64) ([]model.SessionAttendee, error) {
	if err := permission.Check(caller.Permissions, permission.GetTrainingSession); err != nil {
		return nil, err
	}

	links, err := c.attendance.BySession(ctx, sessionID)
	if apperr.IsKind(err, apperr.RecordNotFound) {
		return []model.SessionAttendee{}, nil
	}
	if err != nil {
		return nil, err
	}

	attendees := make([]model.SessionAttendee, 0, len(links))
	for _, link := range links {
		user, err := c.users.GetByID(ctx, link.UserID)
		if err != nil {
			return nil, err
		}
		attendees = append(attendees, model.SessionAttendee{
			TrainingSessionID: link.TrainingSessionID,
			Forename:          user.Forename,
			Surname:           user.Surname,
			Email:             user.Email,
			AttendanceType:    link.Type,
		})
	}
	return attendees, nil
}

// UserAttendance returns every attendance record of one user. A user with
// no records is RecordNotFound; callers distinguish empty histories from
// unknown users by the user endpoints. Requires GetTrainingSession.
func (c *TrainingSessions) UserAttendance(ctx context.Context, caller model.User, userID int64) ([]model.Attendance, error) {
	if err := permission.Check(caller.Permissions, permission.GetTrainingSession); err != nil {
		return nil, err
	}
	return c.attendance.ByUser(ctx, userID)
}

// AttendanceMark is the result of marking attendance: the stored record
// plus the attendee and session details resolved along the way, so callers
// can notify without further permission-gated lookups.
type AttendanceMark struct {
	Record          model.Attendance
	Forename        string
	Email           string
	SessionDatetime string
}

// MarkAttendance records how the user with the given email relates to a
// session. The first mark creates the link row; later marks overwrite it,
// so a user moving from signed up to attended keeps a single record.
// Requires GetTrainingSession.
func (c *TrainingSessions) MarkAttendance(ctx context.Context, caller model.User, sessionID int64, email string, t model.AttendanceType) (AttendanceMark, error) {
	if err := permission.Check(caller.Permissions, permission.GetTrainingSession); err != nil {
		return AttendanceMark{}, err
	}

	if !t.Valid() {
		return AttendanceMark{}, apperr.InvalidField("attendance",
			"invalid value for attendance: expected attendance, given %d", t)
	}

	user, err := c.users.GetByEmail(ctx, email)
	if err != nil {
		return AttendanceMark{}, err
	}

	session, err := c.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return AttendanceMark{}, err
	}

	rec, err := c.attendance.Mark(ctx, user.ID, session.ID, t)
	if err != nil {
		return AttendanceMark{}, err
	}

	return AttendanceMark{
		Record:          rec,
		Forename:        user.Forename,
		Email:           user.Email,
		SessionDatetime: session.Datetime,
	}, nil
}
