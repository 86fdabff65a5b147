// Package github reads commit history from the GitHub REST API.
//
// # Architecture
//
// The package implements the commit ports defined in [driven]:
//
//   - Connector: list pages, commit details, path history and the oldest-commit probe
//   - Client: credential rotation, retries, per-call timeouts and rate limiting
//   - RateLimiter: a pool-wide token bucket plus per-credential quota tracking
//   - parse helpers: field-by-field decoding of list and detail bodies
//
// # Authentication
//
// Every call draws a credential from a [driven.TokenProvider]. A go-github
// client is created lazily for each credential with an oauth2 static token
// source, so requests carry "Authorization: Bearer <token>" and the quota of
// one token never stalls another. An empty credential sends unauthenticated
// requests (60 per hour).
//
// # Wire Contract
//
// The list walk requests repos/{owner}/{repo}/commits?per_page=100&page=N with
// N starting at 1. Each listed sha is resolved with repos/{owner}/{repo}/commits/{sha},
// which returns the author name and date under "commit", the account login
// under "author" and the changed paths under "files". Any of these may be
// absent; missing values become empty strings or the zero time.
//
// # Rate Limiting
//
//  1. Proactive throttling: a token bucket allows about 1.2 requests per
//     second per credential in the pool.
//
//  2. Reactive handling: X-RateLimit-Remaining and X-RateLimit-Reset are
//     tracked per credential. A credential below its reserve waits for reset.
//
// # Error Handling
//
//   - Rate limits, 5xx responses, timeouts and transport errors are retried
//     with exponential backoff, each retry with the next credential
//   - A list page that fails or does not decode as an array returns a
//     [domain.FatalError] holding the upstream payload
//   - A detail response without a commit object returns [domain.ErrNoCommitObject]
//   - 401 responses match [domain.ErrAuthInvalid] and rate limits match
//     [domain.ErrRateLimited], which the health-aware rotation uses
//
// # Limitations
//
//   - Commits with more than 300 changed files are truncated by the API
//   - Only the default branch is walked
package github
