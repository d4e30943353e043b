// Package internal contains the implementation packages behind the signet
// CLI.
//
// # Package Organization
//
// The internal packages are organized by pipeline stage:
//
//   - compiler: Tokenizer, parser, optimizer and code generator for templates
//   - reactive: Signals, derived values and effects used by compiled output
//   - dom: HTML rendering of compiled templates for tests and previews
//   - scanner: Discovery of page templates and their routes
//   - registry: The set of known pages keyed by source file
//   - build: Worker-pool builds, incremental rebuilds and the route module
//   - cache: Content-addressed LRU cache of compiled modules
//   - watcher: Debounced file system monitoring
//   - websocket: Live-reload hub for connected browsers
//   - server: Development server, error overlay and health endpoint
//   - config, errors, logging, version: Shared infrastructure
//
// # Data Flow
//
// The scanner fills the registry, the builder compiles every registered page
// through the compiler and writes one module per page plus the route table.
// In watch and serve mode the watcher feeds change batches back into the
// builder, and the server broadcasts the outcome over the reload socket.
package internal
