// Package tracing is a thin wrapper around OpenTelemetry so the rest of the
// code-base can open and close spans without depending on the SDK surface.
// Applications that do not need tracing simply never call Init and all spans
// become no-ops.
package tracing
