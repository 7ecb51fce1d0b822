// internal/utils/jwt.go
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/javajoker/placement-backend/internal/models"
)

const jwtIssuer = "placement-backend"

// JWTClaims are the claims the identity provider puts in access tokens.
type JWTClaims struct {
	UserID     string `json:"user_id"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	jwt.RegisteredClaims
}

var jwtSecret = []byte("your-secret-key-change-in-production")

func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

// GenerateJWT issues an access token for identity. The server itself only
// validates tokens; issuing is used by the operator CLI and tests.
func GenerateJWT(identity models.Identity, ttlHours int) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID:     identity.UserID.String(),
		Role:       string(identity.Role),
		Department: string(identity.Department),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    jwtIssuer,
			Subject:   identity.UserID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateJWT(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// Identity converts validated claims into the caller identity.
func (c *JWTClaims) Identity() (models.Identity, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return models.Identity{}, errors.New("invalid user id claim")
	}

	role := models.Role(c.Role)
	if !role.Valid() {
		return models.Identity{}, errors.New("invalid role claim")
	}

	identity := models.Identity{UserID: userID, Role: role}
	if c.Department != "" {
		dept, ok := models.NormalizeDepartment(c.Department)
		if !ok {
			return models.Identity{}, errors.New("invalid department claim")
		}
		identity.Department = dept
	}
	return identity, nil
}
