// Package discovery resolves the base URLs under which backend plugins are
// reachable, both from inside the deployment and from the outside world.
//
// Publishers use it to compute links to published documentation. The static
// provider derives every plugin URL from a single configured base URL, with
// optional per-plugin overrides.
package discovery
