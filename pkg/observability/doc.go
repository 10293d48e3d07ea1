/*
Package observability provides tools for monitoring the waypoint engine.

It includes lifecycle hooks for audit logging, Prometheus collectors for dispatch
outcomes and OpenTelemetry spans around each dispatch. Hooks from this package never
influence a dispatch; combine them with domain.MergeHooks.
*/
package observability
