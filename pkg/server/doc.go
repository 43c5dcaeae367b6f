// Package server provides the shelfguard HTTP API: comparison runs,
// rule inspection, run history, health, and metrics. It also owns the
// live rule pack set through PackManager, which reloads packs on file
// changes, on a cron schedule, or on demand.
package server
