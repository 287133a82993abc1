package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"user", "coach", "admin"} {
		role, err := ParseRole(valid)
		require.NoError(t, err)
		assert.Equal(t, Role(valid), role)
	}

	_, err := ParseRole("superadmin")
	require.Error(t, err)
	_, err = ParseRole("")
	require.Error(t, err)
}

func TestRole_Capabilities(t *testing.T) {
	assert.False(t, RoleUser.CanCoach())
	assert.False(t, RoleUser.CanAdmin())

	assert.True(t, RoleCoach.CanCoach())
	assert.False(t, RoleCoach.CanAdmin())

	assert.True(t, RoleAdmin.CanCoach())
	assert.True(t, RoleAdmin.CanAdmin())
}
