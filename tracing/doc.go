// Package tracing wraps OpenTelemetry so that the supervisor and the runtime
// facade can record lifecycle spans without importing the upstream packages
// directly. Until Init or InitWithExporter is called spans are no-ops.
package tracing
