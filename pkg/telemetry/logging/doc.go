// Package logging provides structured logging for shelfguard on top of
// log/slog. Loggers are configured from config.LoggingConfig and carry
// run-scoped fields (run ID, market, SKU) propagated through context.
package logging
