// Package ports defines the interfaces that connect the application layer
// to infrastructure adapters.
//
// # Port Interfaces
//
//   - [HTTPClient]: HTTP request abstraction used by the remote notes source
//   - [Refresher]: one pass of pulling remote data into the local cache
//   - [Watcher]: change notifications from a local store
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) provide the implementations.
package ports
