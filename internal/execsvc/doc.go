// Package execsvc talks to the remote execution service that owns threads,
// runs and the assistant itself.
//
// Includes:
//   - Client: the thread/run contract consumed by the orchestration core.
//   - HTTPClient: net/http adapter for the service's REST surface.
//   - ExecutionError / ActiveRunError: the error taxonomy surfaced to callers.
//
// The wire format is the service's concern; responses are read tolerantly with
// gjson so unknown fields never break the adapter.
package execsvc
