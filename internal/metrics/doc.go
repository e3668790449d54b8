// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Trade ingestion and parse error rates per provider
//   - Broker fan-out: published, delivered, lost in flight, subscribers
//   - Consensus signal counts by action
//   - Observed source-to-receipt trade latency
//
// Collectors live on a private registry so tests and multiple
// pipelines never collide; the Server exposes the registry over
// /metrics alongside a /healthz status endpoint.
package metrics
