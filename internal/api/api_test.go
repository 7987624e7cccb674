package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SkyePiper/esd-tracker-backend/internal/auth"
	"github.com/SkyePiper/esd-tracker-backend/internal/config"
	"github.com/SkyePiper/esd-tracker-backend/internal/controller"
	"github.com/SkyePiper/esd-tracker-backend/internal/email"
	"github.com/SkyePiper/esd-tracker-backend/internal/model"
	"github.com/SkyePiper/esd-tracker-backend/internal/permission"
	"github.com/SkyePiper/esd-tracker-backend/internal/realtime"
	"github.com/SkyePiper/esd-tracker-backend/internal/store"
	"github.com/SkyePiper/esd-tracker-backend/internal/timeutil"
)

type testApp struct {
	server *httptest.Server
	users  *store.Users
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "api.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	adminHash, err := auth.HashPassword("admin-password")
	require.NoError(t, err)

	ctx := context.Background()
	users, err := store.NewUsers(db, store.AdminSeed{Email: "admin@example.com", PasswordHash: adminHash})
	require.NoError(t, err)
	sessions, err := store.NewSessions(db)
	require.NoError(t, err)
	attendance, err := store.NewAttendanceLinks(db)
	require.NoError(t, err)
	require.NoError(t, users.Init(ctx))
	require.NoError(t, sessions.Init(ctx))
	require.NoError(t, attendance.Init(ctx))

	cfg := &config.Config{
		JwtSecret: "api-test-secret",
		TokenTTL:  time.Hour,
	}

	srv := NewServer(cfg,
		controller.NewUsers(users),
		controller.NewTrainingSessions(sessions, users, attendance),
		auth.NewService(users, cfg.JwtSecret, cfg.TokenTTL),
		realtime.NewBroker(),
		email.NewService(email.Config{}))

	router := chi.NewRouter()
	srv.RegisterRoutes(router)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return &testApp{server: ts, users: users}
}

// seedUser inserts a user directly through the store so tests can mint
// callers with specific permission bitmasks.
func (a *testApp) seedUser(t *testing.T, email, password string, perms permission.Permission) model.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	now := timeutil.NowString()
	user, err := a.users.Add(context.Background(), model.User{
		Created:          now,
		Forename:         "Api",
		Surname:          "Tester",
		Email:            email,
		LastTrainingDate: now,
		NextTrainingDate: now,
		Permissions:      perms,
		Password:         hash,
	})
	require.NoError(t, err)
	return user
}

type testEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (*http.Response, testEnvelope) {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		js, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(js)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env testEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func (a *testApp) login(t *testing.T, email, password string) string {
	t.Helper()
	resp, env := a.do(t, http.MethodPost, "/login", "", loginPayload{Email: email, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var token auth.Token
	require.NoError(t, json.Unmarshal(env.Data, &token))
	require.NotEmpty(t, token.AccessToken)
	require.Equal(t, "bearer", token.TokenType)
	return token.AccessToken
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)

	resp, env := app.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", env.Status)
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "user@example.com", "pass123", 0)

	resp, env := app.do(t, http.MethodPost, "/login", "", loginPayload{Email: "user@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Invalid username or password", env.Message)
}

func TestLoginUnknownEmailSameMessage(t *testing.T) {
	app := newTestApp(t)

	resp, env := app.do(t, http.MethodPost, "/login", "", loginPayload{Email: "ghost@example.com", Password: "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid username or password", env.Message)
}

func TestAuthenticatedRoutesRejectMissingToken(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.do(t, http.MethodGet, "/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEnumsArePublic(t *testing.T) {
	app := newTestApp(t)

	resp, env := app.do(t, http.MethodGet, "/enums/permissions", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var perms []enumEntry
	require.NoError(t, json.Unmarshal(env.Data, &perms))
	require.Len(t, perms, 10)
	assert.Equal(t, enumEntry{Name: "Administer", Value: 1}, perms[0])

	resp, env = app.do(t, http.MethodGet, "/enums/user_session_attendance", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var types []enumEntry
	require.NoError(t, json.Unmarshal(env.Data, &types))
	require.Len(t, types, 4)
	assert.Equal(t, enumEntry{Name: "Signed Up", Value: 1}, types[0])
	assert.Equal(t, enumEntry{Name: "No Show", Value: 8}, types[3])
}

func TestUserCRUDOverHTTP(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "boss@example.com", "pass123", permission.Administer)
	token := app.login(t, "boss@example.com", "pass123")

	// Create.
	resp, env := app.do(t, http.MethodPost, "/users", token, createUserPayload{
		Forename: "New", Surname: "Hire", Email: "hire@example.com",
		Permissions: permission.GetUser, Password: "secret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created model.User
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "hire@example.com", created.Email)

	// The password hash never leaves the server.
	assert.NotContains(t, string(env.Data), "password")
	assert.NotContains(t, string(env.Data), "argon2id")

	// Read.
	resp, env = app.do(t, http.MethodGet, fmt.Sprintf("/users/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got model.User
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, created.ID, got.ID)

	// Update.
	resp, env = app.do(t, http.MethodPatch, fmt.Sprintf("/users/%d", created.ID), token,
		map[string]string{"forename": "Renamed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Renamed", got.Forename)

	// Delete.
	resp, _ = app.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = app.do(t, http.MethodGet, fmt.Sprintf("/users/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteAdminOverHTTPRefused(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "boss@example.com", "pass123", permission.Administer)
	token := app.login(t, "boss@example.com", "pass123")

	resp, _ := app.do(t, http.MethodDelete, "/users/0", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPermissionDeniedOverHTTP(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "limited@example.com", "pass123", permission.UpdateSelf)
	token := app.login(t, "limited@example.com", "pass123")

	resp, env := app.do(t, http.MethodGet, "/users", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "You do not have the permissions to access that resource", env.Message)
}

func TestMinimisedUsers(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "reader@example.com", "pass123", permission.GetUser)
	token := app.login(t, "reader@example.com", "pass123")

	resp, env := app.do(t, http.MethodGet, "/users/minimised", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var users []minimisedUser
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 2) // admin + reader
	assert.NotContains(t, string(env.Data), "permissions")
}

func TestAttendanceFlowOverHTTP(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "coordinator@example.com", "pass123",
		permission.GetTrainingSession|permission.CreateTrainingSession)
	attendee := app.seedUser(t, "attendee@example.com", "pass456", 0)
	token := app.login(t, "coordinator@example.com", "pass123")

	// Create a session.
	resp, env := app.do(t, http.MethodPost, "/training_sessions", token,
		map[string]string{"datetime": "2026-01-10T18:00:00+00:00"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session model.TrainingSession
	require.NoError(t, json.Unmarshal(env.Data, &session))

	// Sign the attendee up, then flip them to attended.
	resp, _ = app.do(t, http.MethodPost, "/training_sessions/attendance", token, markAttendancePayload{
		SessionID: session.ID, UserEmail: attendee.Email, Attendance: model.SignedUp,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = app.do(t, http.MethodPost, "/training_sessions/attendance", token, markAttendancePayload{
		SessionID: session.ID, UserEmail: attendee.Email, Attendance: model.Attended,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var record model.Attendance
	require.NoError(t, json.Unmarshal(env.Data, &record))
	assert.Equal(t, model.Attended, record.Type)

	// The session roster shows a single record in the final state.
	resp, env = app.do(t, http.MethodGet,
		fmt.Sprintf("/training_sessions/attendance/session/%d", session.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var attendees []model.SessionAttendee
	require.NoError(t, json.Unmarshal(env.Data, &attendees))
	require.Len(t, attendees, 1)
	assert.Equal(t, attendee.Email, attendees[0].Email)
	assert.Equal(t, model.Attended, attendees[0].AttendanceType)
}

func TestInvalidPathIDIsBadRequest(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "reader@example.com", "pass123", permission.GetUser)
	token := app.login(t, "reader@example.com", "pass123")

	resp, _ := app.do(t, http.MethodGet, "/users/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownBodyFieldIsRejected(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "boss@example.com", "pass123", permission.Administer)
	token := app.login(t, "boss@example.com", "pass123")

	resp, _ := app.do(t, http.MethodPost, "/training_sessions", token,
		map[string]string{"datetime": "2026-01-10T18:00:00+00:00", "bogus": "field"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTokenViaQueryParameter(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "reader@example.com", "pass123", permission.GetUser)
	token := app.login(t, "reader@example.com", "pass123")

	resp, _ := app.do(t, http.MethodGet, "/users?token="+token, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
