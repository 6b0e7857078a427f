package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("Car482")
	require.NoError(t, err)
	assert.NotEqual(t, "Car482", hash)
	assert.True(t, CheckPassword(hash, "Car482"))
	assert.False(t, CheckPassword(hash, "Car483"))
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestCheckPasswordUnsetHash(t *testing.T) {
	assert.False(t, CheckPassword("", "anything"))
}

func TestRoleFor(t *testing.T) {
	assert.Equal(t, RoleAdmin, RoleFor(true))
	assert.Equal(t, RoleUser, RoleFor(false))
	assert.True(t, Principal{Role: RoleAdmin}.IsAdmin())
	assert.False(t, Principal{Role: RoleUser}.IsAdmin())
}
