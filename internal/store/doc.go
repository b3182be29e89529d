// Package store provides SQLite-backed durable storage for rituals.
//
// The store is a single keyed table: ritual id → JSON-serialized Ritual.
// It offers exactly four operations:
//   - GetAll: every stored ritual, ordered by id (callers must not rely on it)
//   - Save: upsert one ritual, full overwrite
//   - Delete: remove one ritual, no-op if absent
//   - ImportBulk: upsert many rituals inside one transaction
//
// # Failure Mode
//
// Any backend failure (file cannot be created, database locked by another
// process, store closed, SQLite error) surfaces as a STORAGE_UNAVAILABLE
// model.Error. Nothing is swallowed and nothing is retried.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - one open connection: the repository is the only writer
//
// File-backed stores also hold an advisory lock on "<path>.lock" for their
// whole lifetime, so two processes never write the same database.
package store
