package store

import (
	"github.com/SkyePiper/esd-tracker-backend/internal/model"
	"github.com/SkyePiper/esd-tracker-backend/internal/schema"
)

var trainingSessionSchema = schema.Table{
	Name: "training_session",
	Columns: []schema.Column{
		{Name: "id", Type: schema.Integer, PrimaryKey: true},
		{Name: "created", Type: schema.Text},
		{Name: "datetime", Type: schema.Text},
	},
}

// Sessions is the record store for the 'training_session' table.
type Sessions struct {
	*Table[model.TrainingSession]
}

// NewSessions builds the training session store. No seed records; the
// table starts empty.
func NewSessions(db *DB) (*Sessions, error) {
	fields := []Field[model.TrainingSession]{
		{Column: "id", Ref: func(s *model.TrainingSession) any { return &s.ID }},
		{Column: "created", Ref: func(s *model.TrainingSession) any { return &s.Created }},
		{Column: "datetime", Ref: func(s *model.TrainingSession) any { return &s.Datetime }},
	}

	tbl, err := NewTable(db, trainingSessionSchema, fields, nil)
	if err != nil {
		return nil, err
	}
	return &Sessions{Table: tbl}, nil
}
