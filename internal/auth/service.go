package auth

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SkyePiper/esd-tracker-backend/internal/apperr"
	"github.com/SkyePiper/esd-tracker-backend/internal/model"
	"github.com/SkyePiper/esd-tracker-backend/internal/store"
	"github.com/SkyePiper/esd-tracker-backend/internal/timeutil"
)

// Token is the login response body.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Data        Claims `json:"data"`
}

// Service authenticates credentials against the user store and issues and
// verifies JWTs.
type Service struct {
	users  *store.Users
	secret string
	ttl    time.Duration
}

// NewService builds the auth service. ttl is the lifetime of issued tokens.
func NewService(users *store.Users, secret string, ttl time.Duration) *Service {
	return &Service{users: users, secret: secret, ttl: ttl}
}

// randomDelay sleeps for a short random interval. Every authentication
// attempt pays it, success and failure alike, so response timing does not
// reveal whether the email existed or the password was wrong.
func randomDelay() {
	b := make([]byte, 1)
	if _, err := rand.Read(b); err != nil {
		b[0] = 0
	}
	time.Sleep(time.Second / time.Duration(int64(b[0])+2))
}

// Authenticate checks the credentials and returns the matching user. An
// unknown email and a wrong password produce the same InvalidCredentials
// error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	defer randomDelay()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		var zero model.User
		return zero, apperr.New(apperr.InvalidCredentials, "invalid username or password")
	}

	if !CheckPasswordHash(password, user.Password) {
		var zero model.User
		return zero, apperr.New(apperr.InvalidCredentials, "invalid username or password")
	}

	return user, nil
}

// IssueToken signs a JWT for the user. The user is re-resolved from the
// store first so a deleted account cannot be issued a token.
func (s *Service) IssueToken(ctx context.Context, userID int64) (Token, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Token{}, err
	}

	claims := &Claims{
		UserID:      user.ID,
		Forename:    user.Forename,
		Surname:     user.Surname,
		Email:       user.Email,
		Permissions: user.Permissions,
		Expires:     timeutil.Expiry(s.ttl),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	signed, err := signToken(claims, s.secret)
	if err != nil {
		return Token{}, err
	}

	return Token{AccessToken: signed, TokenType: "bearer", Data: *claims}, nil
}

// VerifyToken validates a presented token and resolves it to the current
// user record. Signature or format problems are InvalidCredentials; a
// token past its expiry claim is AuthExpired. The returned user carries
// the permissions stored now, not the snapshot in the token.
func (s *Service) VerifyToken(ctx context.Context, tokenString string) (model.User, error) {
	var zero model.User

	claims, err := parseToken(tokenString, s.secret)
	if err != nil {
		return zero, apperr.Wrap(apperr.InvalidCredentials, err, "invalid token")
	}

	future, err := timeutil.IsFuture(claims.Expires)
	if err != nil {
		return zero, apperr.Wrap(apperr.InvalidCredentials, err, "invalid token expiry")
	}
	if !future {
		return zero, apperr.New(apperr.AuthExpired, "authentication has timed out")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return zero, apperr.Wrap(apperr.InvalidCredentials, err, "token subject no longer exists")
	}
	return user, nil
}
