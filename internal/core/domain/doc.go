// Package domain defines the core entities of the commit-history miner.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Repository: the owner/name target of a crawl
//   - CommitRef / CommitPage: work items produced by the commit list walk
//   - CommitDetail: author, timestamp and changed paths of one commit
//   - TrackedPathSet: the exact paths or prefixes considered source files
//   - TouchRecord / TouchCountIndex: the mined dataset
//   - CrawlResult: the per-run context handed to output sinks
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
