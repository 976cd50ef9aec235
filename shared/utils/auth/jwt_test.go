package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateJWT(userID, "maker@example.com", "EMP1001")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "maker@example.com", claims.Email)
	assert.Equal(t, "EMP1001", claims.EmployeeID)
}

func TestValidateJWTGarbage(t *testing.T) {
	_, err := ValidateJWT("not-a-token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("changeme123")
	require.NoError(t, err)
	assert.NotEqual(t, "changeme123", hash)

	assert.True(t, CheckPassword("changeme123", hash))
	assert.False(t, CheckPassword("wrong-password", hash))
}
