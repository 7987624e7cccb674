// Package api is the HTTP boundary: routing, auth middleware, request
// decoding and the response envelope. Handlers stay thin and delegate to
// the controllers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/SkyePiper/esd-tracker-backend/internal/apperr"
	"github.com/SkyePiper/esd-tracker-backend/internal/auth"
	"github.com/SkyePiper/esd-tracker-backend/internal/config"
	"github.com/SkyePiper/esd-tracker-backend/internal/controller"
	"github.com/SkyePiper/esd-tracker-backend/internal/email"
	"github.com/SkyePiper/esd-tracker-backend/internal/realtime"
)

// Server holds every dependency the HTTP handlers need. Dependencies are
// injected through NewServer so handlers can be exercised against fakes.
type Server struct {
	config   *config.Config
	users    *controller.Users
	sessions *controller.TrainingSessions
	auth     *auth.Service
	broker   *realtime.Broker
	email    *email.Service
}

// NewServer wires the handler dependencies into a Server.
func NewServer(cfg *config.Config, users *controller.Users, sessions *controller.TrainingSessions, authSvc *auth.Service, broker *realtime.Broker, emailSvc *email.Service) *Server {
	return &Server{
		config:   cfg,
		users:    users,
		sessions: sessions,
		auth:     authSvc,
		broker:   broker,
		email:    emailSvc,
	}
}

// envelope is the uniform response body: a status word, a human-readable
// message and the payload.
type envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// writeJSON sends data wrapped in a success envelope.
func (s *Server) writeJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	js, err := json.MarshalIndent(envelope{Status: "ok", Message: message, Data: data}, "", "\t")
	if err != nil {
		http.Error(w, "Internal Server Error: Failed to marshal JSON", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}

// errorJSON sends an error envelope. The HTTP status and, for the auth
// error kinds, the message are derived from the error's kind so clients
// see stable text regardless of the internal cause.
func (s *Server) errorJSON(w http.ResponseWriter, err error) {
	message := err.Error()
	switch apperr.KindOf(err) {
	case apperr.Unauthorized:
		message = "You do not have the permissions to access that resource"
	case apperr.InvalidCredentials:
		message = "Invalid username or password"
	case apperr.AuthExpired:
		message = "Authentication has timed out"
	}

	js, jsonErr := json.MarshalIndent(envelope{Status: "error", Message: message, Data: nil}, "", "\t")
	if jsonErr != nil {
		http.Error(w, "Internal Server Error: Failed to marshal JSON", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatus(err))
	w.Write(js)
}

// readJSON decodes the request body into dst, rejecting unknown fields.
func (s *Server) readJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Wrap(apperr.InvalidFormat, err, "invalid request body")
	}
	return nil
}
