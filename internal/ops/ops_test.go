package ops

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillcms/quillconf/internal/calendar"
	"github.com/quillcms/quillconf/internal/cvar"
	"github.com/quillcms/quillconf/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// testValues returns a valid canonical value for every updatable key.
func testValues() map[cvar.Key]string {
	values := map[cvar.Key]string{
		cvar.KeyAuthSuffix: "quill",
		cvar.KeyAuthRealm:  "admin",
		cvar.KeyAuthLimit:  "5",
		cvar.KeyPageLimit:  "25",
		cvar.KeyAuthCost:   "10",
	}
	for _, key := range cvar.UpdatableKeys() {
		if _, ok := values[key]; !ok {
			values[key] = "/" + strings.TrimPrefix(string(key), "path-")
		}
	}
	return values
}

func initialized(t *testing.T) *store.Store {
	t.Helper()
	st := openTestStore(t)
	when := calendar.DateTime{Year: 2022, Month: 5, Day: 1, Hour: 13, Minute: 25}
	require.NoError(t, Initialize(context.Background(), st, when, testValues()))
	return st
}

// rawGet reads any row, including privileged ones, for assertions.
func rawGet(t *testing.T, st *store.Store, key cvar.Key) string {
	t.Helper()
	ctx := context.Background()
	txn, err := st.Begin(ctx, store.IntentRead)
	require.NoError(t, err)
	defer txn.Rollback()
	value, err := txn.Get(ctx, string(key))
	require.NoError(t, err)
	require.NoError(t, txn.Commit(ctx))
	return value
}

func rawCount(t *testing.T, st *store.Store) int {
	t.Helper()
	ctx := context.Background()
	txn, err := st.Begin(ctx, store.IntentRead)
	require.NoError(t, err)
	defer txn.Rollback()
	count, err := txn.Count(ctx)
	require.NoError(t, err)
	require.NoError(t, txn.Commit(ctx))
	return count
}

func TestInitialize_PopulatesAllRows(t *testing.T) {
	st := initialized(t)

	assert.Equal(t, 19, rawCount(t, st))
	assert.Equal(t, "626e8a2c", rawGet(t, st, cvar.KeyEpoch)) // 2022-05-01T13:25:00
	assert.Equal(t, cvar.Sentinel, rawGet(t, st, cvar.KeyPassword))
	assert.NotEmpty(t, rawGet(t, st, cvar.KeySecret))
	assert.Equal(t, "/root", rawGet(t, st, cvar.KeyPathRoot))

	// Seed in [1,4096] plus the store's own commit bump.
	mod, err := cvar.ParseModHex(rawGet(t, st, cvar.KeyLastmod))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, mod, uint32(2))
	assert.LessOrEqual(t, mod, uint32(4097))
}

func TestInitialize_FailsOnPopulatedStore(t *testing.T) {
	st := initialized(t)
	epoch := rawGet(t, st, cvar.KeyEpoch)

	when := calendar.DateTime{Year: 2023, Month: 1, Day: 1}
	err := Initialize(context.Background(), st, when, testValues())
	require.Error(t, err)

	// Nothing changed, epoch included.
	assert.Equal(t, 19, rawCount(t, st))
	assert.Equal(t, epoch, rawGet(t, st, cvar.KeyEpoch))
}

func TestInitialize_InvalidDateTime(t *testing.T) {
	st := openTestStore(t)
	when := calendar.DateTime{Year: 2023, Month: 2, Day: 29}
	err := Initialize(context.Background(), st, when, testValues())
	require.Error(t, err)
	assert.Equal(t, 0, rawCount(t, st))
}

func TestInitialize_MissingValueLeavesStoreEmpty(t *testing.T) {
	st := openTestStore(t)
	values := testValues()
	delete(values, cvar.KeyPathFeed)

	when := calendar.DateTime{Year: 2022, Month: 5, Day: 1}
	err := Initialize(context.Background(), st, when, values)
	require.Error(t, err)
	assert.Equal(t, 0, rawCount(t, st))
}

func TestQuery_Epoch(t *testing.T) {
	st := initialized(t)

	res, err := Query(context.Background(), st, cvar.KeyEpoch)
	require.NoError(t, err)
	assert.Equal(t, "626e8a2c", res.Value)
	require.NotNil(t, res.Decoded)
	assert.Equal(t, "2022-05-01 13:25:00", res.Decoded.String())
}

func TestQuery_PlainKey(t *testing.T) {
	st := initialized(t)

	res, err := Query(context.Background(), st, cvar.KeyAuthCost)
	require.NoError(t, err)
	assert.Equal(t, "10", res.Value)
	assert.Nil(t, res.Decoded)
}

func TestQuery_PrivilegedAlwaysFails(t *testing.T) {
	ctx := context.Background()

	// Regardless of store state: empty...
	empty := openTestStore(t)
	_, err := Query(ctx, empty, cvar.KeySecret)
	assert.Error(t, err)
	_, err = Query(ctx, empty, cvar.KeyPassword)
	assert.Error(t, err)

	// ...and initialized.
	st := initialized(t)
	_, err = Query(ctx, st, cvar.KeySecret)
	assert.Error(t, err)
	_, err = Query(ctx, st, cvar.KeyPassword)
	assert.Error(t, err)
}

func TestQuery_UninitializedStore(t *testing.T) {
	st := openTestStore(t)
	_, err := Query(context.Background(), st, cvar.KeyEpoch)
	assert.Error(t, err)
}

func TestQuery_DoesNotBumpCounter(t *testing.T) {
	st := initialized(t)
	before := rawGet(t, st, cvar.KeyLastmod)

	_, err := Query(context.Background(), st, cvar.KeyLastmod)
	require.NoError(t, err)

	assert.Equal(t, before, rawGet(t, st, cvar.KeyLastmod))
}

func TestBump_RaisesToFloor(t *testing.T) {
	st := initialized(t)

	require.NoError(t, Bump(context.Background(), st, 0x10000))

	// Floor taken, then the commit bump adds one.
	mod, err := cvar.ParseModHex(rawGet(t, st, cvar.KeyLastmod))
	require.NoError(t, err)
	assert.Equal(t, uint32(0x10001), mod)
}

func TestBump_LowerFloorLeavesCounter(t *testing.T) {
	st := initialized(t)
	before, err := cvar.ParseModHex(rawGet(t, st, cvar.KeyLastmod))
	require.NoError(t, err)

	// Floor of 1 can never exceed the seed; only the commit bump runs.
	require.NoError(t, Bump(context.Background(), st, 1))

	after, err := cvar.ParseModHex(rawGet(t, st, cvar.KeyLastmod))
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}

func TestBump_EqualFloorLeavesCounter(t *testing.T) {
	st := initialized(t)
	before, err := cvar.ParseModHex(rawGet(t, st, cvar.KeyLastmod))
	require.NoError(t, err)

	require.NoError(t, Bump(context.Background(), st, before))

	after, err := cvar.ParseModHex(rawGet(t, st, cvar.KeyLastmod))
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}

func TestBump_UninitializedStore(t *testing.T) {
	st := openTestStore(t)
	err := Bump(context.Background(), st, 0xff)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestUpdate_OverwritesSubset(t *testing.T) {
	st := initialized(t)

	err := Update(context.Background(), st, map[cvar.Key]string{
		cvar.KeyAuthCost: "12",
		cvar.KeyPathFeed: "/rss",
	})
	require.NoError(t, err)

	assert.Equal(t, "12", rawGet(t, st, cvar.KeyAuthCost))
	assert.Equal(t, "/rss", rawGet(t, st, cvar.KeyPathFeed))
	// Untouched keys keep their values.
	assert.Equal(t, "/root", rawGet(t, st, cvar.KeyPathRoot))
	assert.Equal(t, "quill", rawGet(t, st, cvar.KeyAuthSuffix))
}

func TestUpdate_BumpsCounter(t *testing.T) {
	st := initialized(t)
	before, err := cvar.ParseModHex(rawGet(t, st, cvar.KeyLastmod))
	require.NoError(t, err)

	require.NoError(t, Update(context.Background(), st, map[cvar.Key]string{cvar.KeyAuthCost: "9"}))

	after, err := cvar.ParseModHex(rawGet(t, st, cvar.KeyLastmod))
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}

func TestUpdate_UninitializedStore(t *testing.T) {
	st := openTestStore(t)
	err := Update(context.Background(), st, map[cvar.Key]string{cvar.KeyAuthCost: "9"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
	assert.Equal(t, 0, rawCount(t, st))
}

func TestRevokeSessions_RotatesSecretOnly(t *testing.T) {
	st := initialized(t)
	secret := rawGet(t, st, cvar.KeySecret)
	pswd := rawGet(t, st, cvar.KeyPassword)

	require.NoError(t, RevokeSessions(context.Background(), st))

	assert.NotEqual(t, secret, rawGet(t, st, cvar.KeySecret))
	assert.Equal(t, pswd, rawGet(t, st, cvar.KeyPassword))
}

func TestRevokeSessions_EmptyStoreStaysEmpty(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, RevokeSessions(context.Background(), st))
	assert.Equal(t, 0, rawCount(t, st))
}

func TestResetPassword_RotatesSecretAndSentinel(t *testing.T) {
	st := initialized(t)

	// Simulate an externally established password.
	ctx := context.Background()
	txn, err := st.Begin(ctx, store.IntentWrite)
	require.NoError(t, err)
	_, err = txn.Update(ctx, string(cvar.KeyPassword), "$2y$10$externallyhashed")
	require.NoError(t, err)
	require.NoError(t, txn.Commit(ctx))

	secret := rawGet(t, st, cvar.KeySecret)
	require.NoError(t, ResetPassword(ctx, st))

	assert.NotEqual(t, secret, rawGet(t, st, cvar.KeySecret))
	assert.Equal(t, cvar.Sentinel, rawGet(t, st, cvar.KeyPassword))
}

func TestEndToEnd_InitializeQueryReinitialize(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	when := calendar.DateTime{Year: 2022, Month: 5, Day: 1, Hour: 13, Minute: 25}
	require.NoError(t, Initialize(ctx, st, when, testValues()))

	res, err := Query(ctx, st, cvar.KeyEpoch)
	require.NoError(t, err)
	assert.Equal(t, "626e8a2c", res.Value)
	require.NotNil(t, res.Decoded)
	assert.Equal(t, when, *res.Decoded)

	// A second initialize on the same store fails.
	err = Initialize(ctx, st, when, testValues())
	assert.Error(t, err)
}
