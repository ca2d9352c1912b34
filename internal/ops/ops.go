// Package ops implements the six administrative verbs. Each verb is a
// short script over one intent-scoped store transaction: validate
// preconditions, perform the reads and writes, commit. Failure at any
// point rolls the transaction back with no partial effect.
package ops

import (
	"context"
	"errors"
	"fmt"

	"github.com/quillcms/quillconf/internal/calendar"
	"github.com/quillcms/quillconf/internal/cvar"
	"github.com/quillcms/quillconf/internal/store"
)

// Initialize populates an empty store: the epoch encoded from the given
// wall-clock reading, a random counter seed, a fresh session secret, the
// password sentinel, and the 15 caller-supplied values (already through
// the codecs). Fails if the store holds any row.
func Initialize(ctx context.Context, st *store.Store, when calendar.DateTime, values map[cvar.Key]string) error {
	offset, err := calendar.Encode(when)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	seed, err := cvar.NewModSeed()
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	secret, err := cvar.NewSecret()
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	rows := make(map[cvar.Key]string, len(values)+4)
	for k, v := range values {
		rows[k] = v
	}
	rows[cvar.KeyEpoch] = cvar.FormatEpochHex(offset)
	rows[cvar.KeyLastmod] = cvar.FormatModHex(seed)
	rows[cvar.KeySecret] = secret
	rows[cvar.KeyPassword] = cvar.Sentinel

	txn, err := st.Begin(ctx, store.IntentWrite)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer txn.Rollback()

	count, err := txn.Count(ctx)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if count != 0 {
		return fmt.Errorf("initialize: store already holds %d rows", count)
	}

	// Insert in key order; the full key set is covered because values
	// carries exactly the updatable keys and the four reserved keys were
	// just filled in.
	for _, key := range cvar.Keys() {
		value, ok := rows[key]
		if !ok {
			return fmt.Errorf("initialize: no value for key %q", key)
		}
		if err := txn.Insert(ctx, string(key), value); err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
	}

	if err := txn.Commit(ctx); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	return nil
}

// Result is one queried value. Decoded is set only for the epoch key,
// carrying the calendar form of the stored offset.
type Result struct {
	Key     cvar.Key
	Value   string
	Decoded *calendar.DateTime
}

// Query reads one queryable key. Privileged keys fail before the store
// is touched; a missing row on a queryable key is a precondition error.
func Query(ctx context.Context, st *store.Store, key cvar.Key) (Result, error) {
	if !cvar.IsQueryable(key) {
		return Result{}, fmt.Errorf("query: key %q is not queryable", key)
	}

	txn, err := st.Begin(ctx, store.IntentRead)
	if err != nil {
		return Result{}, fmt.Errorf("query: %w", err)
	}
	defer txn.Rollback()

	value, err := txn.Get(ctx, string(key))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, fmt.Errorf("query: key %q not present; store not initialized?", key)
		}
		return Result{}, fmt.Errorf("query: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("query: %w", err)
	}

	res := Result{Key: key, Value: value}
	if key == cvar.KeyEpoch {
		offset, err := cvar.ParseEpochHex(value)
		if err != nil {
			return Result{}, fmt.Errorf("query: stored epoch: %w", err)
		}
		dt := calendar.Decode(offset)
		res.Decoded = &dt
	}
	return res, nil
}

// Bump raises the lastmod counter to floor when floor exceeds the
// current value; otherwise the stored floor-check value is left alone.
// Either way the store's own commit bump advances the counter once more.
func Bump(ctx context.Context, st *store.Store, floor uint32) error {
	txn, err := st.Begin(ctx, store.IntentCounterFloor)
	if err != nil {
		return fmt.Errorf("bump: %w", err)
	}
	defer txn.Rollback()

	value, err := txn.Get(ctx, string(cvar.KeyLastmod))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("bump: store not initialized")
		}
		return fmt.Errorf("bump: %w", err)
	}
	current, err := cvar.ParseModHex(value)
	if err != nil {
		return fmt.Errorf("bump: stored counter: %w", err)
	}

	if floor > current {
		if _, err := txn.Update(ctx, string(cvar.KeyLastmod), cvar.FormatModHex(floor)); err != nil {
			return fmt.Errorf("bump: %w", err)
		}
	}

	if err := txn.Commit(ctx); err != nil {
		return fmt.Errorf("bump: %w", err)
	}
	return nil
}

// Update overwrites exactly the given rows (already through the codecs).
// Fails unless the store is fully populated.
func Update(ctx context.Context, st *store.Store, values map[cvar.Key]string) error {
	txn, err := st.Begin(ctx, store.IntentWrite)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	defer txn.Rollback()

	count, err := txn.Count(ctx)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if want := len(cvar.Keys()); count != want {
		return fmt.Errorf("update: store holds %d of %d rows; not initialized", count, want)
	}

	for _, key := range cvar.Keys() {
		value, ok := values[key]
		if !ok {
			continue
		}
		matched, err := txn.Update(ctx, string(key), value)
		if err != nil {
			return fmt.Errorf("update: %w", err)
		}
		if !matched {
			return fmt.Errorf("update: key %q not present", key)
		}
	}

	if err := txn.Commit(ctx); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

// RevokeSessions rotates auth-secret, invalidating every outstanding
// session token. Nothing else is touched; on an uninitialized store the
// UPDATE matches no row and the store stays empty.
func RevokeSessions(ctx context.Context, st *store.Store) error {
	secret, err := cvar.NewSecret()
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	txn, err := st.Begin(ctx, store.IntentWrite)
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	defer txn.Rollback()

	if _, err := txn.Update(ctx, string(cvar.KeySecret), secret); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

// ResetPassword rotates auth-secret and sets auth-pswd back to the
// sentinel in the same transaction, forcing the password to be
// re-established before authentication succeeds again.
func ResetPassword(ctx context.Context, st *store.Store) error {
	secret, err := cvar.NewSecret()
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	txn, err := st.Begin(ctx, store.IntentWrite)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	defer txn.Rollback()

	if _, err := txn.Update(ctx, string(cvar.KeySecret), secret); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if _, err := txn.Update(ctx, string(cvar.KeyPassword), cvar.Sentinel); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}
