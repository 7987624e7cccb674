package model

// AttendanceType records how a user relates to a training session. The
// values are bitmask-style, one active value per record.
type AttendanceType int64

const (
	SignedUp AttendanceType = 1 << iota
	NoLongerAttending
	Attended
	NoShow
)

// AttendanceTypes lists every defined attendance value in declaration order.
var AttendanceTypes = []AttendanceType{
	SignedUp,
	NoLongerAttending,
	Attended,
	NoShow,
}

var attendanceNames = map[AttendanceType]string{
	SignedUp:          "Signed Up",
	NoLongerAttending: "No Longer Attending",
	Attended:          "Attended",
	NoShow:            "No Show",
}

// Valid reports whether a is exactly one of the defined values.
func (a AttendanceType) Valid() bool {
	_, ok := attendanceNames[a]
	return ok
}

// DisplayName returns the human-readable name of the attendance value.
func (a AttendanceType) DisplayName() string {
	if name, ok := attendanceNames[a]; ok {
		return name
	}
	return "Unknown"
}

// Attendance represents a record in the 'user_session_inter' table. It is
// identified by the (user_id, training_session_id) composite key and
// carries no surrogate id of its own.
type Attendance struct {
	UserID            int64          `json:"userId" validate:"gte=0"`
	TrainingSessionID int64          `json:"trainingSessionId" validate:"gte=0"`
	Type              AttendanceType `json:"attendanceType" validate:"attendance"`
}

// Validate checks the record's field constraints.
func (a *Attendance) Validate() error {
	return validateStruct(a)
}

// AttendanceUpdate is a partial update to an attendance record. Nil fields
// keep the currently stored value; the composite key is never updatable.
type AttendanceUpdate struct {
	Type *AttendanceType `json:"attendanceType" validate:"omitempty,attendance"`
}

// Apply overlays the set fields onto rec.
func (u AttendanceUpdate) Apply(rec *Attendance) {
	if u.Type != nil {
		rec.Type = *u.Type
	}
}

// SessionAttendee is the joined view of one attendance record with the
// identifying details of the user it belongs to.
type SessionAttendee struct {
	TrainingSessionID int64          `json:"trainingSessionId"`
	Forename          string         `json:"forename"`
	Surname           string         `json:"surname"`
	Email             string         `json:"email"`
	AttendanceType    AttendanceType `json:"attendanceType"`
}
