// Package app wires the dashboard together and manages its lifecycle.
//
// NewApplication takes an already loaded configuration and the embedded
// frontend, then builds every component in dependency order:
//
//	1. Logger and resolved paths (reports and logs directories are created)
//	2. OpenTelemetry providers and the Prometheus handler
//	3. WebSocket hub and session store
//	4. Domain services, with the hub as their event notifier
//	5. Router, handlers and the HTTP server
//
// # Routing
//
// The /ws endpoint sits outside the main middleware group so nothing wraps
// the ResponseWriter before the upgrade. Everything else runs through
// RequestID → RealIP → OTel → Logger → Recoverer → SecurityHeaders → CORS →
// RateLimit. Session-scoped API routes additionally get the session cookie
// middleware and a request timeout.
//
//	GET  /                     embedded index.html
//	GET  /static/*             embedded assets
//	GET  /metrics              Prometheus scrape endpoint
//	GET  /api/health[...]      health, readiness, liveness, version
//	     /api/dataset          load, preview, reset
//	     /api/explore          summary, value counts, correlation, charts
//	     /api/preprocess       cleaning steps and history
//	     /api/analysis         time series, correlation, clustering, distribution
//	     /api/report           Markdown report
//	     /api/reports          saved reports: list, download, delete
//	     /api/export           CSV / Excel / cluster downloads
//	     /api/charts           PNG charts
//	GET  /ws                   per-session live updates
//
// # Shutdown
//
// Run blocks until SIGINT/SIGTERM or a server failure, then Stop drains the
// HTTP server, closes websocket clients, stops the session janitor and
// flushes telemetry. Errors are returned, never passed to os.Exit.
package app
