// Package server implements the redirect catcher: a local HTTP listener that shows the
// OAuth authorization code from a redirect URL so it can be copied by hand.
//
// # Catch Handler
//
// [CatchHandler] answers every GET, on any path, with 200 and an HTML page holding the
// value of the code query parameter (empty when absent) and the full request path.
// After the response it prints a block to the console:
//
//	--- Incoming request ---
//	Path: /auth?code=abc123
//	Code: abc123
//	-------------------------
//
// The code and path are echoed verbatim by default. The listener is meant for a trusted
// local browser only; set page.escape to HTML-escape both values.
//
// # Router Infrastructure
//
// [Router] sends every path to one handler and filters by method. [Middleware] wraps
// handlers in reverse order (last added executes first). [Serialize] keeps request
// handling one at a time even though [net/http] serves connections concurrently.
//
// # Lifecycle
//
// [Server.Run] binds host:port, prints the listening URL, and serves until its context
// is cancelled (the CLI cancels on SIGINT/SIGTERM). It then closes the listener and
// prints "Server stopped". Bind failures are returned without retry.
package server
