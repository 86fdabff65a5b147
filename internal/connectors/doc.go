// Package connectors holds the commit-history backends. Each subpackage
// implements driven.CommitSource for one hosting service and, where the
// service allows it, the optional HistoryProber and PathHistoryLister.
package connectors
