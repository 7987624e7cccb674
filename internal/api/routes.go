package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RegisterRoutes wires up every endpoint and the middleware stack.
func (s *Server) RegisterRoutes(r *chi.Mux) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000", s.config.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Post("/login", s.handleLogin)
	r.Get("/healthz", s.handleHealth)
	r.Get("/enums/permissions", s.handleGetPermissions)
	r.Get("/enums/user_session_attendance", s.handleGetAttendanceTypes)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/notifications/stream", s.handleSSE)

		// User routes
		r.Get("/users", s.handleGetUsers)
		r.Get("/users/minimised", s.handleGetUsersMinimised)
		r.Get("/users/{userID}", s.handleGetUser)
		r.Post("/users", s.handleCreateUser)
		r.Patch("/users/{userID}", s.handleUpdateUser)
		r.Delete("/users/{userID}", s.handleDeleteUser)

		// Training session routes
		r.Get("/training_sessions", s.handleGetSessions)
		r.Get("/training_sessions/{sessionID}", s.handleGetSession)
		r.Post("/training_sessions", s.handleCreateSession)
		r.Patch("/training_sessions/{sessionID}", s.handleUpdateSession)
		r.Delete("/training_sessions/{sessionID}", s.handleDeleteSession)

		// Attendance routes
		r.Get("/training_sessions/attendance/session/{sessionID}", s.handleGetSessionAttendance)
		r.Get("/training_sessions/attendance/user/{userID}", s.handleGetUserAttendance)
		r.Post("/training_sessions/attendance", s.handleMarkAttendance)
	})
}
