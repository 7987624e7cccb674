package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SkyePiper/esd-tracker-backend/internal/apperr"
	"github.com/SkyePiper/esd-tracker-backend/internal/model"
	"github.com/SkyePiper/esd-tracker-backend/internal/timeutil"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestStores(t *testing.T) (*Users, *Sessions, *AttendanceLinks) {
	t.Helper()
	db := openTestDB(t)
	ctx := context.Background()

	users, err := NewUsers(db, AdminSeed{Email: "admin@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	sessions, err := NewSessions(db)
	require.NoError(t, err)
	attendance, err := NewAttendanceLinks(db)
	require.NoError(t, err)

	require.NoError(t, users.Init(ctx))
	require.NoError(t, sessions.Init(ctx))
	require.NoError(t, attendance.Init(ctx))

	return users, sessions, attendance
}

func testUser(email string) model.User {
	now := timeutil.NowString()
	return model.User{
		Created:          now,
		Forename:         "Test",
		Surname:          "User",
		Email:            email,
		LastTrainingDate: now,
		NextTrainingDate: now,
		Permissions:      0,
		Password:         "hash",
	}
}

func testSession() model.TrainingSession {
	return model.TrainingSession{Created: timeutil.NowString(), Datetime: "2026-01-10T18:00:00+00:00"}
}

func TestInitSeedsAdminAtIDZero(t *testing.T) {
	users, _, _ := newTestStores(t)
	ctx := context.Background()

	admin, err := users.GetByID(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", admin.Email)
	assert.Equal(t, "Admin", admin.Forename)
	assert.EqualValues(t, 0, admin.Permissions)
}

func TestInitSeedsOnlyOnce(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	users, err := NewUsers(db, AdminSeed{Email: "admin@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	require.NoError(t, users.Init(ctx))
	require.NoError(t, users.Init(ctx))

	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestNextIDEmptyTable(t *testing.T) {
	_, sessions, _ := newTestStores(t)

	id, err := sessions.NextID(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, id)
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	_, sessions, _ := newTestStores(t)
	ctx := context.Background()

	first, err := sessions.Add(ctx, testSession())
	require.NoError(t, err)
	second, err := sessions.Add(ctx, testSession())
	require.NoError(t, err)

	assert.EqualValues(t, 0, first.ID)
	assert.EqualValues(t, 1, second.ID)

	next, err := sessions.NextID(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, next)
}

func TestAddRoundTripsAllFields(t *testing.T) {
	users, _, _ := newTestStores(t)
	ctx := context.Background()

	in := testUser("roundtrip@example.com")
	in.Permissions = 6

	out, err := users.Add(ctx, in)
	require.NoError(t, err)

	got, err := users.GetByID(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Forename, got.Forename)
	assert.Equal(t, in.Surname, got.Surname)
	assert.Equal(t, in.Email, got.Email)
	assert.Equal(t, in.Created, got.Created)
	assert.Equal(t, in.LastTrainingDate, got.LastTrainingDate)
	assert.Equal(t, in.NextTrainingDate, got.NextTrainingDate)
	assert.Equal(t, in.Permissions, got.Permissions)
	assert.Equal(t, in.Password, got.Password)
}

func TestGetByIDMissing(t *testing.T) {
	_, sessions, _ := newTestStores(t)

	_, err := sessions.GetByID(context.Background(), 42)
	assert.True(t, apperr.IsKind(err, apperr.RecordNotFound))
}

func TestGetByEmail(t *testing.T) {
	users, _, _ := newTestStores(t)
	ctx := context.Background()

	added, err := users.Add(ctx, testUser("find-me@example.com"))
	require.NoError(t, err)

	got, err := users.GetByEmail(ctx, "find-me@example.com")
	require.NoError(t, err)
	assert.Equal(t, added.ID, got.ID)

	_, err = users.GetByEmail(ctx, "nobody@example.com")
	assert.True(t, apperr.IsKind(err, apperr.RecordNotFound))
}

func TestGetAllEmptyIsOK(t *testing.T) {
	_, sessions, _ := newTestStores(t)

	all, err := sessions.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdatePreservesUnmergedFields(t *testing.T) {
	users, _, _ := newTestStores(t)
	ctx := context.Background()

	added, err := users.Add(ctx, testUser("update@example.com"))
	require.NoError(t, err)

	updated, err := users.Update(ctx, added.ID, func(u *model.User) {
		u.Forename = "Changed"
	})
	require.NoError(t, err)

	assert.Equal(t, "Changed", updated.Forename)
	assert.Equal(t, added.Surname, updated.Surname)
	assert.Equal(t, added.Email, updated.Email)
	assert.Equal(t, added.Created, updated.Created)
	assert.Equal(t, added.ID, updated.ID)
}

func TestUpdateMissingRecord(t *testing.T) {
	users, _, _ := newTestStores(t)

	_, err := users.Update(context.Background(), 99, func(u *model.User) {})
	assert.True(t, apperr.IsKind(err, apperr.RecordNotFound))
}

func TestDeleteRemovesRecord(t *testing.T) {
	users, _, _ := newTestStores(t)
	ctx := context.Background()

	added, err := users.Add(ctx, testUser("delete@example.com"))
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, added.ID))

	_, err = users.GetByID(ctx, added.ID)
	assert.True(t, apperr.IsKind(err, apperr.RecordNotFound))
}

func TestDuplicateEmailIsConstraintViolation(t *testing.T) {
	users, _, _ := newTestStores(t)
	ctx := context.Background()

	_, err := users.Add(ctx, testUser("dup@example.com"))
	require.NoError(t, err)

	_, err = users.Add(ctx, testUser("dup@example.com"))
	assert.True(t, apperr.IsKind(err, apperr.ConstraintViolation))
}

func TestConcurrentAddsGetDistinctIDs(t *testing.T) {
	_, sessions, _ := newTestStores(t)
	ctx := context.Background()

	const workers = 16
	ids := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := sessions.Add(ctx, testSession())
			assert.NoError(t, err)
			ids <- rec.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)
}

func TestCompositeKeyOperations(t *testing.T) {
	users, sessions, attendance := newTestStores(t)
	ctx := context.Background()

	user, err := users.Add(ctx, testUser("attendee@example.com"))
	require.NoError(t, err)
	session, err := sessions.Add(ctx, testSession())
	require.NoError(t, err)

	rec, err := attendance.Mark(ctx, user.ID, session.ID, model.SignedUp)
	require.NoError(t, err)
	assert.Equal(t, model.SignedUp, rec.Type)

	got, err := attendance.GetByKeys(ctx, Keys(user.ID, session.ID))
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)
	assert.Equal(t, session.ID, got.TrainingSessionID)

	require.NoError(t, attendance.DeleteWithKeys(ctx, Keys(user.ID, session.ID)))

	_, err = attendance.GetByKeys(ctx, Keys(user.ID, session.ID))
	assert.True(t, apperr.IsKind(err, apperr.RecordNotFound))
}

func TestUpsertInsertsThenUpdatesInPlace(t *testing.T) {
	users, sessions, attendance := newTestStores(t)
	ctx := context.Background()

	user, err := users.Add(ctx, testUser("upsert@example.com"))
	require.NoError(t, err)
	session, err := sessions.Add(ctx, testSession())
	require.NoError(t, err)

	first, err := attendance.Mark(ctx, user.ID, session.ID, model.SignedUp)
	require.NoError(t, err)
	assert.Equal(t, model.SignedUp, first.Type)

	second, err := attendance.Mark(ctx, user.ID, session.ID, model.Attended)
	require.NoError(t, err)
	assert.Equal(t, model.Attended, second.Type)

	// Still a single row for the pair.
	count, err := attendance.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestGetManyByFieldEmptyIsNotFound(t *testing.T) {
	_, _, attendance := newTestStores(t)

	_, err := attendance.ByUser(context.Background(), 5)
	assert.True(t, apperr.IsKind(err, apperr.RecordNotFound))
}

func TestGetManyByFieldReturnsAllMatches(t *testing.T) {
	users, sessions, attendance := newTestStores(t)
	ctx := context.Background()

	user, err := users.Add(ctx, testUser("many@example.com"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		session, err := sessions.Add(ctx, testSession())
		require.NoError(t, err)
		_, err = attendance.Mark(ctx, user.ID, session.ID, model.SignedUp)
		require.NoError(t, err)
	}

	records, err := attendance.ByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	bySession, err := attendance.BySession(ctx, records[0].TrainingSessionID)
	require.NoError(t, err)
	assert.Len(t, bySession, 1)
}

func TestForeignKeysEnabledOnEveryConnection(t *testing.T) {
	db := openTestDB(t)

	var on int
	require.NoError(t, db.conn.QueryRowContext(context.Background(), "PRAGMA foreign_keys").Scan(&on))
	assert.Equal(t, 1, on)
}

func TestMarkRejectsDanglingReferences(t *testing.T) {
	_, _, attendance := newTestStores(t)

	_, err := attendance.Mark(context.Background(), 999, 999, model.SignedUp)
	assert.True(t, apperr.IsKind(err, apperr.ConstraintViolation))

	count, err := attendance.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestDeleteReferencedUserLeavesNoOrphans(t *testing.T) {
	users, sessions, attendance := newTestStores(t)
	ctx := context.Background()

	user, err := users.Add(ctx, testUser("referenced@example.com"))
	require.NoError(t, err)
	session, err := sessions.Add(ctx, testSession())
	require.NoError(t, err)
	_, err = attendance.Mark(ctx, user.ID, session.ID, model.SignedUp)
	require.NoError(t, err)

	err = users.Delete(ctx, user.ID)
	assert.True(t, apperr.IsKind(err, apperr.ConstraintViolation))

	// Both the user and the attendance row survive intact.
	_, err = users.GetByID(ctx, user.ID)
	assert.NoError(t, err)
	_, err = attendance.GetByKeys(ctx, Keys(user.ID, session.ID))
	assert.NoError(t, err)
}

func TestNewTableRejectsMismatchedBindings(t *testing.T) {
	db := openTestDB(t)

	_, err := NewTable(db, userSchema, []Field[model.User]{
		{Column: "id", Ref: func(u *model.User) any { return &u.ID }},
	}, nil)
	assert.Error(t, err)
}
