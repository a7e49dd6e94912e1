// Package component defines lifecycle-managed services and a registry that
// starts, stops and health-checks them in a deterministic order.
//
// The CLI registers the publisher component, starts it (which builds and
// probes the configured backend), reports its health and stops it on exit.
package component
