package api

import (
	"net/http"

	"github.com/SkyePiper/esd-tracker-backend/internal/apperr"
)

// handleLogin exchanges credentials for a signed JWT.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := s.readJSON(r, &payload); err != nil {
		s.errorJSON(w, err)
		return
	}
	if payload.Email == "" || payload.Password == "" {
		s.errorJSON(w, apperr.New(apperr.InvalidCredentials, "email and password are required"))
		return
	}

	user, err := s.auth.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	token, err := s.auth.IssueToken(r.Context(), user.ID)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, "Logged in", token)
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, "Service is healthy", nil)
}
