package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Intent declares what a transaction is allowed to do. The store uses
// it to reject out-of-scope writes and to decide whether the automatic
// counter bump runs at commit.
type Intent int

const (
	// IntentRead permits reads only.
	IntentRead Intent = iota
	// IntentCounterFloor permits updating exactly the lastmod row.
	IntentCounterFloor
	// IntentWrite permits inserting or updating any row.
	IntentWrite
)

func (i Intent) String() string {
	switch i {
	case IntentRead:
		return "read"
	case IntentCounterFloor:
		return "counter-floor"
	case IntentWrite:
		return "write"
	default:
		return fmt.Sprintf("intent(%d)", int(i))
	}
}

// counterName is the row the automatic commit bump advances.
const counterName = "lastmod"

// ErrNotFound is returned by Get when no row carries the requested name.
var ErrNotFound = errors.New("cvar not found")

// Txn is one intent-scoped transaction. At most one is open per
// invocation; commit is unconditional unless the caller aborts, in
// which case Rollback leaves no partial write.
type Txn struct {
	tx     *sql.Tx
	intent Intent
	done   bool
}

// Begin opens a transaction with the declared intent.
func (s *Store) Begin(ctx context.Context, intent Intent) (*Txn, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin %s transaction: %w", intent, err)
	}
	return &Txn{tx: tx, intent: intent}, nil
}

// Get returns the stored value for name. Returns ErrNotFound when the
// row does not exist.
func (t *Txn) Get(ctx context.Context, name string) (string, error) {
	var value string
	err := t.tx.QueryRowContext(ctx, `
		SELECT value FROM cvars WHERE name = ?
	`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", name, err)
	}
	return value, nil
}

// Count returns the number of stored rows. The table is either empty or
// fully populated, so callers use this as the initialization check.
func (t *Txn) Count(ctx context.Context) (int, error) {
	var count int
	if err := t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM cvars`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count cvars: %w", err)
	}
	return count, nil
}

// Insert creates a new row for name with a store-owned opaque id.
// Requires IntentWrite; duplicate names violate the UNIQUE constraint
// and surface as errors.
func (t *Txn) Insert(ctx context.Context, name, value string) error {
	if t.intent != IntentWrite {
		return fmt.Errorf("insert %q: not permitted in %s transaction", name, t.intent)
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO cvars (id, name, value) VALUES (?, ?, ?)
	`, uuid.NewString(), name, value)
	if err != nil {
		return fmt.Errorf("insert %q: %w", name, err)
	}
	return nil
}

// Update overwrites the value of an existing row and reports whether a
// row was matched. A missing row is not an error here: UPDATE against
// an empty table is how secret-rotation verbs stay invariant-preserving
// on an uninitialized store. Callers that require the row to exist
// check their precondition first.
func (t *Txn) Update(ctx context.Context, name, value string) (bool, error) {
	switch t.intent {
	case IntentWrite:
	case IntentCounterFloor:
		if name != counterName {
			return false, fmt.Errorf("update %q: only %q may change in a %s transaction", name, counterName, t.intent)
		}
	default:
		return false, fmt.Errorf("update %q: not permitted in %s transaction", name, t.intent)
	}

	res, err := t.tx.ExecContext(ctx, `
		UPDATE cvars SET value = ? WHERE name = ?
	`, value, name)
	if err != nil {
		return false, fmt.Errorf("update %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update %q: rows affected: %w", name, err)
	}
	return n > 0, nil
}

// Commit finishes the transaction. For any write intent the store first
// advances the lastmod counter by one, as its own policy; the verb that
// opened the transaction never sees or schedules this bump.
func (t *Txn) Commit(ctx context.Context) error {
	if t.intent != IntentRead {
		if err := t.bumpCounter(ctx); err != nil {
			return err
		}
	}
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit %s transaction: %w", t.intent, err)
	}
	t.done = true
	return nil
}

// Rollback aborts the transaction. No-op after a successful Commit, so
// it is safe to defer unconditionally.
func (t *Txn) Rollback() error {
	if t.done {
		return nil
	}
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback %s transaction: %w", t.intent, err)
	}
	return nil
}

// bumpCounter advances lastmod by one inside the open transaction.
// Skipped when the row does not exist, which is only reachable before
// initialization has populated the table.
func (t *Txn) bumpCounter(ctx context.Context) error {
	var value string
	err := t.tx.QueryRowContext(ctx, `
		SELECT value FROM cvars WHERE name = ?
	`, counterName).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("bump counter: read: %w", err)
	}

	n, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return fmt.Errorf("bump counter: stored value %q is not hex: %w", value, err)
	}

	next := strconv.FormatUint(uint64(uint32(n)+1), 16)
	if _, err := t.tx.ExecContext(ctx, `
		UPDATE cvars SET value = ? WHERE name = ?
	`, next, counterName); err != nil {
		return fmt.Errorf("bump counter: write: %w", err)
	}
	return nil
}
