package flags

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.json")
	s, err := Open(path)
	require.NoError(t, err)

	u := s.For("uid1")
	assert.False(t, u.Onboarded())

	require.NoError(t, u.MarkOnboarded())
	require.NoError(t, u.MarkAccountCreated())
	require.NoError(t, u.MarkAccountSetup())
	require.NoError(t, u.MarkLoggedIn())
	assert.True(t, u.Onboarded())
	assert.True(t, u.AccountSetup())

	require.NoError(t, u.Logout())
	assert.True(t, u.Onboarded(), "onboarding flag survives logout")
	assert.False(t, u.LoggedIn())
	assert.False(t, u.AccountCreated())
	assert.False(t, u.AccountSetup())
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.json")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.For("uid1").MarkAccountCreated())

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.True(t, reopened.For("uid1").AccountCreated())
	assert.False(t, reopened.For("uid2").AccountCreated())
}

func TestPresenceCheckIgnoresValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.json")
	s, err := Open(path)
	require.NoError(t, err)

	// The flags were always stored as strings and read by presence.
	require.NoError(t, s.Set(KeyOnboarded, "false"))
	assert.True(t, s.IsSet(KeyOnboarded))
}
