// Package slots provides the key/value media that hold encoded collections.
//
// # Overview
//
// A slot is a single named value. The Repository contract is deliberately
// small: Get returns (nil, nil) for an absent key, Set replaces the whole
// value in one operation, Delete is idempotent. Replacing a value is atomic
// in every implementation, which is what the local exam store relies on for
// its replace-all semantics.
//
// Implementations
//
//   - SQLiteRepository: on-device default, a "slots" table over dbx.DBTX
//   - RedisRepository:  a Redis string per slot
//   - MemoryRepository: process-local map, for tests and throwaway sessions
//   - Sealed:           decorator encrypting values at rest (see cryptox)
//
// Typical Usage
//
//	repo := slots.NewSQLiteRepository(db)
//	_ = repo.Set(ctx, "provas", blob)
//	blob, _ = repo.Get(ctx, "provas")
package slots
