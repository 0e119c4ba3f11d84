/*
Package observability turns engine lifecycle hooks into Prometheus metrics and
structured log records.

Both outputs are plain domain.LifecycleHooks values and can be combined with
LifecycleHooks.Merge before being handed to tracery.WithLifecycleHooks.
*/
package observability
