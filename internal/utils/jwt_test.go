package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-app-server/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	actor := models.Actor{ID: "doc-1", Role: models.RoleDoctor, Name: "House", Email: "house@clinic.test"}

	token, err := GenerateToken(actor, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, actor, claims.Actor())
}

func TestValidateTokenRejects(t *testing.T) {
	actor := models.Actor{ID: "p", Role: models.RolePatient}

	token, err := GenerateToken(actor, "secret", time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken(token, "other")
	assert.Error(t, err)

	expired, err := GenerateToken(actor, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(expired, "secret")
	assert.Error(t, err)

	_, err = ValidateToken("garbage", "secret")
	assert.Error(t, err)
}
