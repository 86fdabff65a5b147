// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TokenProvider: rotates credentials across outbound calls
//   - CommitSource: lists commit pages and resolves commit detail
//   - TrackedPathSource: loads the tracked paths or prefixes
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
// These are discovered by type assertion on the CommitSource and the
// miner degrades gracefully without them:
//
//   - HistoryProber: oldest commit date for timeline baselines
//   - PathHistoryLister: per-path commit listing strategy
//
// RecordSink implementations are optional; a run with no sinks still
// returns its CrawlResult to the caller.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
