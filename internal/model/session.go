package model

// TrainingSession represents a record in the 'training_session' table.
type TrainingSession struct {
	ID       int64  `json:"id"`
	Created  string `json:"created" validate:"required,iso8601"`
	Datetime string `json:"datetime" validate:"required,iso8601"`
}

// Validate checks the record's field constraints.
func (s *TrainingSession) Validate() error {
	return validateStruct(s)
}

// TrainingSessionUpdate is a partial update to a training session. Nil
// fields keep the currently stored value.
type TrainingSessionUpdate struct {
	Datetime *string `json:"datetime" validate:"omitempty,iso8601"`
}

// Validate checks the set fields of the update payload.
func (u *TrainingSessionUpdate) Validate() error {
	return validateStruct(u)
}

// Apply overlays the set fields onto rec.
func (u TrainingSessionUpdate) Apply(rec *TrainingSession) {
	if u.Datetime != nil {
		rec.Datetime = *u.Datetime
	}
}
