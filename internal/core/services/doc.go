// Package services implements the driving port interfaces.
//
// MinerService walks a repository's commit list, resolves each commit with
// bounded concurrency and aggregates the touches of tracked files in list
// order. SettingsService merges configuration sources, Emitter fans a
// finished run out to the record sinks, and Metrics counts crawl progress.
//
// Services depend only on domain and the port interfaces; adapters are
// injected by the CLI.
package services
