// Package telemetry groups shelfguard's observability packages:
// structured logging (telemetry/logging) and Prometheus metrics
// (telemetry/metrics).
package telemetry
