package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillcms/quillconf/internal/cvar"
)

func TestRevokeSessionsCommand(t *testing.T) {
	path := initializedDB(t)
	secret := rawGet(t, path, cvar.KeySecret)
	pswd := rawGet(t, path, cvar.KeyPassword)

	stdout, _, err := execRoot(t, "", "--db", path, "revoke-sessions")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	assert.NotEqual(t, secret, rawGet(t, path, cvar.KeySecret))
	assert.Equal(t, pswd, rawGet(t, path, cvar.KeyPassword), "auth-pswd must be untouched")
}

func TestResetPasswordCommand(t *testing.T) {
	path := initializedDB(t)
	secret := rawGet(t, path, cvar.KeySecret)

	_, _, err := execRoot(t, "", "--db", path, "reset-password")
	require.NoError(t, err)

	assert.NotEqual(t, secret, rawGet(t, path, cvar.KeySecret))
	assert.Equal(t, cvar.Sentinel, rawGet(t, path, cvar.KeyPassword))
}

func TestRevokeSessionsCommand_EmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")

	_, _, err := execRoot(t, "", "--db", path, "revoke-sessions")
	require.NoError(t, err)

	// No row was created: the store is still unpopulated.
	_, _, err = execRoot(t, "", "--db", path, "get", "lastmod")
	require.Error(t, err)
}

func TestCommands_RejectArgs(t *testing.T) {
	path := initializedDB(t)

	for _, verb := range []string{"set", "revoke-sessions", "reset-password"} {
		_, _, err := execRoot(t, "{}", "--db", path, verb, "unexpected")
		require.Error(t, err, "verb %q", verb)
	}
}
