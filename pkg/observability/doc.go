/*
Package observability turns engine lifecycle events into Prometheus metrics.

Metrics.Hooks returns a domain.LifecycleHooks value that can be passed to the engine,
and Chain combines it with any other hooks the caller installs.
*/
package observability
