// Package api hosts the HTTP server and middleware in front of the fetch
// orchestrator. Notable routes:
//   - GET / renders the loading, topics, or error view and starts a fetch when idle.
//   - GET /fetch_again discards the cached outcome and refetches on a new session.
//   - GET /api/trends is the JSON flavour of GET /.
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
package api
