package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/SkyePiper/esd-tracker-backend/internal/apperr"
	"github.com/SkyePiper/esd-tracker-backend/internal/model"
)

// contextKey is a private type for request context keys so they cannot
// collide with keys from other packages.
type contextKey string

const userContextKey = contextKey("user")

// authMiddleware guards the authenticated route group. It accepts a token
// from the Authorization header or, for connections that cannot set
// headers such as SSE, from the 'token' query parameter. The token is
// resolved to the current user record, which downstream handlers read from
// the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := ""

		authHeader := r.Header.Get("Authorization")
		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) == 2 && strings.ToLower(headerParts[0]) == "bearer" {
			tokenString = headerParts[1]
		}

		if tokenString == "" {
			tokenString = r.URL.Query().Get("token")
		}

		if tokenString == "" {
			s.errorJSON(w, apperr.New(apperr.InvalidCredentials, "authorization token is required"))
			return
		}

		user, err := s.auth.VerifyToken(r.Context(), tokenString)
		if err != nil {
			s.errorJSON(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerFromContext returns the authenticated user injected by
// authMiddleware. Only handlers behind the middleware may call it.
func (s *Server) callerFromContext(r *http.Request) (model.User, error) {
	user, ok := r.Context().Value(userContextKey).(model.User)
	if !ok {
		return model.User{}, apperr.New(apperr.InvalidCredentials, "could not retrieve user from context")
	}
	return user, nil
}
