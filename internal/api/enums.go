package api

import (
	"net/http"

	"github.com/SkyePiper/esd-tracker-backend/internal/model"
	"github.com/SkyePiper/esd-tracker-backend/internal/permission"
)

// handleGetPermissions lists every permission bit with its display name.
// Public; clients use it to render permission pickers.
func (s *Server) handleGetPermissions(w http.ResponseWriter, r *http.Request) {
	entries := make([]enumEntry, len(permission.All))
	for i, p := range permission.All {
		entries[i] = enumEntry{Name: p.DisplayName(), Value: int64(p)}
	}
	s.writeJSON(w, http.StatusOK, "Permissions retrieved", entries)
}

// handleGetAttendanceTypes lists every attendance value with its display
// name. Public.
func (s *Server) handleGetAttendanceTypes(w http.ResponseWriter, r *http.Request) {
	entries := make([]enumEntry, len(model.AttendanceTypes))
	for i, t := range model.AttendanceTypes {
		entries[i] = enumEntry{Name: t.DisplayName(), Value: int64(t)}
	}
	s.writeJSON(w, http.StatusOK, "Attendance types retrieved", entries)
}
