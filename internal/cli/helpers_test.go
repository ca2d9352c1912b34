package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quillcms/quillconf/internal/cvar"
	"github.com/quillcms/quillconf/internal/store"
)

// execRoot runs the full CLI with the given stdin and arguments.
func execRoot(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// fullMappingJSON returns a JSON object with a valid value for every
// updatable key.
func fullMappingJSON(t *testing.T) string {
	t.Helper()
	m := map[string]string{
		"auth-suffix": "quill",
		"auth-realm":  "admin",
		"auth-limit":  "5",
		"page-limit":  "25",
		"auth-cost":   "10",
	}
	for _, key := range cvar.UpdatableKeys() {
		if _, ok := m[string(key)]; !ok {
			m[string(key)] = "/" + strings.TrimPrefix(string(key), "path-")
		}
	}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return string(data)
}

// initializedDB creates and initializes a store, returning its path.
func initializedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cvars.db")
	_, _, err := execRoot(t, fullMappingJSON(t), "--db", path, "init", "2022-05-01T13:25:00")
	require.NoError(t, err)
	return path
}

// rawGet reads any row, including privileged ones, for assertions.
func rawGet(t *testing.T, path string, key cvar.Key) string {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	txn, err := st.Begin(ctx, store.IntentRead)
	require.NoError(t, err)
	defer txn.Rollback()
	value, err := txn.Get(ctx, string(key))
	require.NoError(t, err)
	require.NoError(t, txn.Commit(ctx))
	return value
}
