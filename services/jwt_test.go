package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService([]byte("test-secret"), "dreams-identity")
	userID := uuid.New()

	tokenStr, err := svc.GenerateToken(userID, time.Hour)
	require.NoError(t, err)

	token, err := svc.ParseJWT(tokenStr)
	require.NoError(t, err)
	sub, err := svc.Subject(token)
	require.NoError(t, err)
	assert.Equal(t, userID, sub)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService([]byte("test-secret"), "dreams-identity")

	expired, err := svc.GenerateToken(uuid.New(), -time.Minute)
	require.NoError(t, err)

	otherIssuer, err := NewJWTService([]byte("test-secret"), "someone-else").GenerateToken(uuid.New(), time.Hour)
	require.NoError(t, err)

	otherSecret, err := NewJWTService([]byte("other-secret"), "dreams-identity").GenerateToken(uuid.New(), time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uuid.NewString(),
		"iss": "dreams-identity",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong issuer", otherIssuer},
		{"wrong secret", otherSecret},
		{"no expiry", noExpiry},
		{"garbage", "not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ParseJWT(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestJWTService_SubjectMustBeProfileID(t *testing.T) {
	svc := NewJWTService([]byte("test-secret"), "")
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	token, err := svc.ParseJWT(tokenStr)
	require.NoError(t, err)
	_, err = svc.Subject(token)
	assert.Error(t, err)
}

func TestJWTService_NoSecret(t *testing.T) {
	_, err := NewJWTService(nil, "").ParseJWT("a.b.c")
	assert.Error(t, err)
}
