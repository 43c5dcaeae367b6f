// Package cli provides shared helpers for shelfguard commands:
// signal-aware contexts, output formatting, and command error types.
package cli
