package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/SkyePiper/esd-tracker-backend/internal/apperr"
	"github.com/SkyePiper/esd-tracker-backend/internal/model"
)

// pathID parses a numeric id from the named URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, apperr.InvalidField(name, "invalid value for %s: expected integer, given %s", name, chi.URLParam(r, name))
	}
	return id, nil
}

func (s *Server) handleGetUsers(w http.ResponseWriter, r *http.Request) {
	caller, err := s.callerFromContext(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	users, err := s.users.GetAll(r.Context(), caller)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, "Users retrieved", users)
}

func (s *Server) handleGetUsersMinimised(w http.ResponseWriter, r *http.Request) {
	caller, err := s.callerFromContext(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	users, err := s.users.GetAll(r.Context(), caller)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, "Users retrieved", minimiseUsers(users))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
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

	user, err := s.users.GetByID(r.Context(), caller, id)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, "User retrieved", user)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	caller, err := s.callerFromContext(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	var payload createUserPayload
	if err := s.readJSON(r, &payload); err != nil {
		s.errorJSON(w, err)
		return
	}

	user, err := s.users.Add(r.Context(), caller, payload.user(), payload.Password)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, "User created", user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
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

	var upd model.UserUpdate
	if err := s.readJSON(r, &upd); err != nil {
		s.errorJSON(w, err)
		return
	}

	user, err := s.users.Update(r.Context(), caller, id, upd)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, "User updated", user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
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

	if err := s.users.Delete(r.Context(), caller, id); err != nil {
		s.errorJSON(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, "User deleted", nil)
}
