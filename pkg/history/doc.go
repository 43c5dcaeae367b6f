// Package history persists comparison runs so past evaluations can be
// listed and retrieved through the API. Two backends implement the
// Store interface: an embedded SQLite database for durable single-node
// deployments and an in-memory map for tests.
package history
