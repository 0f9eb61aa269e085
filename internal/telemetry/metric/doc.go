// Package metric provides Prometheus metrics for wizcli.
//
// The CLI keeps a private registry of client-side request metrics:
//
//   - Request counters by command and outcome
//   - Request latency histograms by command
//
// There is no /metrics endpoint; the `stats` command renders a snapshot
// gathered from the registry.
package metric
