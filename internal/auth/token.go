package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SkyePiper/esd-tracker-backend/internal/permission"
)

// Claims is the JWT payload issued on login. Besides the user's identity
// it carries a snapshot of the permissions bitmask and an ISO-8601 expiry
// string. The snapshot is informational for the client; token verification
// always re-resolves the user, so the stored permissions are what gate
// requests.
type Claims struct {
	UserID      int64                 `json:"userId"`
	Forename    string                `json:"forename"`
	Surname     string                `json:"surname"`
	Email       string                `json:"email"`
	Permissions permission.Permission `json:"permissions"`
	Expires     string                `json:"expires"`
	jwt.RegisteredClaims
}

// signToken signs the claims with HS256.
func signToken(claims *Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// parseToken verifies the signature and decodes the claims. Expiry is
// checked by the caller against the Expires claim.
func parseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
