// Package sqlite archives crawl results in a SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Every run is stored under its run ID:
//
//   - runs: repository, strategy, status, counters and timestamps
//   - touches: one row per touch record, in crawl order
//   - touch_counts: the touch count index snapshot
//   - skipped_commits: commits dropped by recoverable failures
//
// The archive is write-only from the miner's point of view; it is never
// consulted to skip work in a later run.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.touchminer/data/touchminer.db
package sqlite
