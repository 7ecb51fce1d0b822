package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/placement-backend/internal/models"
)

func withSecret(t *testing.T, secret string) {
	t.Helper()
	previous := string(jwtSecret)
	SetJWTSecret(secret)
	t.Cleanup(func() { SetJWTSecret(previous) })
}

func TestJWTRoundTrip(t *testing.T) {
	withSecret(t, "test-secret")

	identity := models.Identity{
		UserID:     uuid.New(),
		Role:       models.RoleHOD,
		Department: models.DepartmentCSE,
	}
	token, err := GenerateJWT(identity, 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, jwtIssuer, claims.Issuer)

	got, err := claims.Identity()
	require.NoError(t, err)
	assert.Equal(t, identity, got)
}

func TestJWTRejectsForeignSecret(t *testing.T) {
	withSecret(t, "first-secret")
	token, err := GenerateJWT(models.Identity{UserID: uuid.New(), Role: models.RoleStudent}, 1)
	require.NoError(t, err)

	SetJWTSecret("second-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestJWTRejectsExpired(t *testing.T) {
	withSecret(t, "test-secret")
	token, err := GenerateJWT(models.Identity{UserID: uuid.New(), Role: models.RoleStudent}, -1)
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestJWTRejectsNonHMAC(t *testing.T) {
	withSecret(t, "test-secret")
	token := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{UserID: uuid.NewString(), Role: "admin"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateJWT(signed)
	assert.Error(t, err)
}

func TestClaimsIdentity(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		name    string
		claims  JWTClaims
		want    models.Department
		wantErr bool
	}{
		{name: "student without department", claims: JWTClaims{UserID: id, Role: "student"}},
		{name: "department alias", claims: JWTClaims{UserID: id, Role: "faculty", Department: "comp"}, want: models.DepartmentCSE},
		{name: "bad user id", claims: JWTClaims{UserID: "not-a-uuid", Role: "student"}, wantErr: true},
		{name: "unknown role", claims: JWTClaims{UserID: id, Role: "dean"}, wantErr: true},
		{name: "unknown department", claims: JWTClaims{UserID: id, Role: "hod", Department: "physics"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := tt.claims.Identity()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, identity.Department)
		})
	}
}
