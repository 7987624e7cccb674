// Package controller holds the permission-gated business operations. Each
// method takes the authenticated caller, checks their permissions bitmask
// and then drives the record stores. Controllers return domain errors; the
// HTTP layer maps them to status codes.
package controller

import (
	"context"

	"github.com/SkyePiper/esd-tracker-backend/internal/apperr"
	"github.com/SkyePiper/esd-tracker-backend/internal/auth"
	"github.com/SkyePiper/esd-tracker-backend/internal/model"
	"github.com/SkyePiper/esd-tracker-backend/internal/permission"
	"github.com/SkyePiper/esd-tracker-backend/internal/store"
	"github.com/SkyePiper/esd-tracker-backend/internal/timeutil"
)

// Users exposes the user management operations.
type Users struct {
	users *store.Users
}

// NewUsers builds the user controller.
func NewUsers(users *store.Users) *Users {
	return &Users{users: users}
}

// GetAll returns every user. Requires GetUser.
func (c *Users) GetAll(ctx context.Context, caller model.User) ([]model.User, error) {
	if err := permission.Check(caller.Permissions, permission.GetUser); err != nil {
		return nil, err
	}
	return c.users.GetAll(ctx)
}

// GetByID returns one user by id. Requires GetUser.
func (c *Users) GetByID(ctx context.Context, caller model.User, id int64) (model.User, error) {
	if err := permission.Check(caller.Permissions, permission.GetUser); err != nil {
		return model.User{}, err
	}
	return c.users.GetByID(ctx, id)
}

// GetByEmail returns one user by email address. Requires GetUser.
func (c *Users) GetByEmail(ctx context.Context, caller model.User, email string) (model.User, error) {
	if err := permission.Check(caller.Permissions, permission.GetUser); err != nil {
		return model.User{}, err
	}
	return c.users.GetByEmail(ctx, email)
}

// Add creates a new user. Requires CreateUser. The plaintext password is
// hashed here; the created timestamp and training dates default to now
// when the payload leaves them empty.
func (c *Users) Add(ctx context.Context, caller model.User, rec model.User, password string) (model.User, error) {
	if err := permission.Check(caller.Permissions, permission.CreateUser); err != nil {
		return model.User{}, err
	}

	now := timeutil.NowString()
	if rec.Created == "" {
		rec.Created = now
	}
	if rec.LastTrainingDate == "" {
		rec.LastTrainingDate = now
	}
	if rec.NextTrainingDate == "" {
		rec.NextTrainingDate = now
	}

	if password == "" {
		return model.User{}, apperr.InvalidField("password", "invalid value for password: expected required, given empty")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.User{}, err
	}
	rec.Password = hash

	if err := rec.Validate(); err != nil {
		return model.User{}, err
	}

	return c.users.Add(ctx, rec)
}

// Update applies a partial update to the user with the given id. Updating
// yourself requires UpdateSelf and silently drops any change to the
// training dates; those are maintained by others. Updating anyone else
// requires UpdateOtherUsers.
func (c *Users) Update(ctx context.Context, caller model.User, id int64, upd model.UserUpdate) (model.User, error) {
	if caller.ID == id {
		if err := permission.Check(caller.Permissions, permission.UpdateSelf); err != nil {
			return model.User{}, err
		}
		upd.LastTrainingDate = nil
		upd.NextTrainingDate = nil
	} else {
		if err := permission.Check(caller.Permissions, permission.UpdateOtherUsers); err != nil {
			return model.User{}, err
		}
	}

	if err := upd.Validate(); err != nil {
		return model.User{}, err
	}

	return c.users.Update(ctx, id, func(cur *model.User) {
		upd.Apply(cur)
	})
}

// Delete removes the user with the given id. Requires DeleteUsers. User 0
// is the fallback administrator and can never be deleted, whoever asks.
func (c *Users) Delete(ctx context.Context, caller model.User, id int64) error {
	if err := permission.Check(caller.Permissions, permission.DeleteUsers); err != nil {
		return err
	}
	if id == 0 {
		return apperr.New(apperr.RecordStillExists, "cannot delete the admin user")
	}
	return c.users.Delete(ctx, id)
}
