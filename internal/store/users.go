package store

import (
	"context"

	"github.com/SkyePiper/esd-tracker-backend/internal/model"
	"github.com/SkyePiper/esd-tracker-backend/internal/schema"
	"github.com/SkyePiper/esd-tracker-backend/internal/timeutil"
)

var userSchema = schema.Table{
	Name: "user",
	Columns: []schema.Column{
		{Name: "id", Type: schema.Integer, PrimaryKey: true},
		{Name: "created", Type: schema.Text},
		{Name: "forename", Type: schema.Text},
		{Name: "surname", Type: schema.Text},
		{Name: "email", Type: schema.Text, Unique: true},
		{Name: "last_training_date", Type: schema.Text},
		{Name: "next_training_date", Type: schema.Text},
		{Name: "permissions", Type: schema.Integer},
		{Name: "password", Type: schema.Text},
	},
}

// AdminSeed carries the credentials the fallback administrator account is
// created with when the user table is first built.
type AdminSeed struct {
	Email        string
	PasswordHash string
}

// Users is the record store for the 'user' table.
type Users struct {
	*Table[model.User]
}

// NewUsers builds the user store. The seed inserts the fallback admin as
// the first record; Add assigns it id 0 on the freshly created table. Its
// permissions bitmask is left empty because deletion of user 0 is refused
// outright, independent of permissions.
func NewUsers(db *DB, admin AdminSeed) (*Users, error) {
	fields := []Field[model.User]{
		{Column: "id", Ref: func(u *model.User) any { return &u.ID }},
		{Column: "created", Ref: func(u *model.User) any { return &u.Created }},
		{Column: "forename", Ref: func(u *model.User) any { return &u.Forename }},
		{Column: "surname", Ref: func(u *model.User) any { return &u.Surname }},
		{Column: "email", Ref: func(u *model.User) any { return &u.Email }},
		{Column: "last_training_date", Ref: func(u *model.User) any { return &u.LastTrainingDate }},
		{Column: "next_training_date", Ref: func(u *model.User) any { return &u.NextTrainingDate }},
		{Column: "permissions", Ref: func(u *model.User) any { return &u.Permissions }},
		{Column: "password", Ref: func(u *model.User) any { return &u.Password }},
	}

	seed := func(ctx context.Context, t *Table[model.User]) error {
		now := timeutil.NowString()
		_, err := t.Add(ctx, model.User{
			Created:          now,
			Forename:         "Admin",
			Surname:          "Admin",
			Email:            admin.Email,
			LastTrainingDate: now,
			NextTrainingDate: now,
			Permissions:      0,
			Password:         admin.PasswordHash,
		})
		return err
	}

	tbl, err := NewTable(db, userSchema, fields, seed)
	if err != nil {
		return nil, err
	}
	return &Users{Table: tbl}, nil
}

// GetByEmail returns the user with the given email address.
func (u *Users) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return u.GetByField(ctx, "email", email)
}
