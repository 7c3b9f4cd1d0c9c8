package auth_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/pingme/pkg/auth"
)

func TestGenerateAndVerify(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Hour)

	token, err := manager.Generate("user-123")
	require.NoError(t, err)

	claims, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)

	exp, err := manager.Expiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)
}

func TestVerifyWithWrongSecret(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Hour)
	other := auth.NewJWTManager("other-secret", time.Hour)

	token, err := manager.Generate("user-123")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestVerifyExpiredToken(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", -time.Minute)

	token, err := manager.Generate("user-123")
	require.NoError(t, err)

	_, err = manager.Verify(token)
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws/group/x", nil)
	r.Header.Set("Authorization", "Bearer abc")

	token, err := auth.ExtractToken(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	// Для WebSocket токен приходит query-параметром
	r = httptest.NewRequest("GET", "/ws/group/x?token=xyz", nil)
	token, err = auth.ExtractToken(r)
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	r = httptest.NewRequest("GET", "/ws/group/x", nil)
	_, err = auth.ExtractToken(r)
	assert.Error(t, err)
}
