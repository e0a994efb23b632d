package utils

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"jansetu/models"
)

// GenerateJWT mints a signed token carrying the caller's identity. The
// authority_id claim is present only for authority accounts.
func GenerateJWT(userID int64, role models.Role, authorityID *int64, secret []byte, expiresInHours int) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     now.Add(time.Duration(expiresInHours) * time.Hour).Unix(),
		"iat":     now.Unix(),
	}
	if authorityID != nil {
		claims["authority_id"] = *authorityID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseJWT verifies the token signature and expiry and returns the
// identity it carries.
func ParseJWT(tokenString string, secret []byte) (models.Identity, error) {
	var identity models.Identity

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return identity, fmt.Errorf("%w: invalid token", models.ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity, fmt.Errorf("%w: invalid token claims", models.ErrUnauthorized)
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return identity, fmt.Errorf("%w: token missing user_id", models.ErrUnauthorized)
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return identity, fmt.Errorf("%w: token missing role", models.ErrUnauthorized)
	}
	role := models.Role(roleStr)
	switch role {
	case models.RoleCitizen, models.RoleAuthority, models.RoleAdmin:
	default:
		return identity, fmt.Errorf("%w: unknown role %q", models.ErrUnauthorized, roleStr)
	}

	identity.UserID = int64(userID)
	identity.Role = role
	if authorityID, ok := claims["authority_id"].(float64); ok {
		identity.AuthorityID = sql.NullInt64{Int64: int64(authorityID), Valid: true}
	}
	return identity, nil
}
