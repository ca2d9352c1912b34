// Package store provides SQLite-backed durable storage for Quill
// configuration variables.
//
// The store holds one table, cvars, with one row per recognized key.
// Row identifiers are opaque UUIDs owned by the store; callers address
// rows by cvar name only.
//
// # Intent transactions
//
// All access goes through a Txn opened with a declared intent:
//
//   - IntentRead: reads only; any write is rejected
//   - IntentCounterFloor: may update exactly the lastmod counter row
//   - IntentWrite: may insert or update any row
//
// Committing a transaction opened with any write intent automatically
// advances the lastmod counter by one as the last statement before
// COMMIT. This is the store's own policy: every administrative mutation
// moves the cache-validation counter forward whether or not the verb
// touched it. The bump is skipped only when no lastmod row exists yet.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - Single connection: SQLite allows one writer; serializing through
//     one connection avoids SQLITE_BUSY between admin invocations
package store
