package api

import (
	"net/http"

	"github.com/SkyePiper/esd-tracker-backend/internal/controller"
	"github.com/SkyePiper/esd-tracker-backend/internal/model"
	"github.com/SkyePiper/esd-tracker-backend/internal/realtime"
)

func (s *Server) handleGetSessions(w http.ResponseWriter, r *http.Request) {
	caller, err := s.callerFromContext(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	sessions, err := s.sessions.GetAll(r.Context(), caller)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, "Training sessions retrieved", sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	caller, err := s.callerFromContext(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	id, err := pathID(r, "sessionID")
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	session, err := s.sessions.GetByID(r.Context(), caller, id)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, "Training session retrieved", session)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	caller, err := s.callerFromContext(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	var payload model.TrainingSession
	if err := s.readJSON(r, &payload); err != nil {
		s.errorJSON(w, err)
		return
	}

	session, err := s.sessions.Add(r.Context(), caller, payload)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.broker.Broadcast(realtime.Event{Type: realtime.EventSessionCreated, Payload: session})

	s.writeJSON(w, http.StatusCreated, "Training session created", session)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	caller, err := s.callerFromContext(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	id, err := pathID(r, "sessionID")
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	var upd model.TrainingSessionUpdate
	if err := s.readJSON(r, &upd); err != nil {
		s.errorJSON(w, err)
		return
	}

	session, err := s.sessions.Update(r.Context(), caller, id, upd)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, "Training session updated", session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	caller, err := s.callerFromContext(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	id, err := pathID(r, "sessionID")
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	if err := s.sessions.Delete(r.Context(), caller, id); err != nil {
		s.errorJSON(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, "Training session deleted", nil)
}

func (s *Server) handleGetSessionAttendance(w http.ResponseWriter, r *http.Request) {
	caller, err := s.callerFromContext(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	id, err := pathID(r, "sessionID")
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	attendees, err := s.sessions.SessionAttendance(r.Context(), caller, id)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, "Session attendance retrieved", attendees)
}

func (s *Server) handleGetUserAttendance(w http.ResponseWriter, r *http.Request) {
	caller, err := s.callerFromContext(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	id, err := pathID(r, "userID")
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	records, err := s.sessions.UserAttendance(r.Context(), caller, id)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, "User attendance retrieved", records)
}

func (s *Server) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	caller, err := s.callerFromContext(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	var payload markAttendancePayload
	if err := s.readJSON(r, &payload); err != nil {
		s.errorJSON(w, err)
		return
	}

	mark, err := s.sessions.MarkAttendance(r.Context(), caller, payload.SessionID, payload.UserEmail, payload.Attendance)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.broker.NotifyUser(mark.Record.UserID, realtime.Event{Type: realtime.EventAttendanceMarked, Payload: mark.Record})

	// Notify by mail as well, when SMTP is configured. The controller
	// already resolved the attendee and session, so no further lookups are
	// needed; a send failure must not fail the request.
	if s.email.Enabled() {
		go func(m controller.AttendanceMark) {
			_ = s.email.SendAttendanceNotice(m.Email, m.Forename, m.SessionDatetime, m.Record.Type)
		}(mark)
	}

	s.writeJSON(w, http.StatusOK, "Attendance recorded", mark.Record)
}
