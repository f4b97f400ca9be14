// Package listener is the thin HTTP boundary hosted by the runtime: it binds
// a TCP socket, runs its accept loop inside one fiber and, per request,
// synchronously calls the compile or run handler with the raw body.
//
// Request lines are scanned with fixed bounds (method and path are truncated
// rather than overflowing) and every response reports a Content-Length
// computed from the body actually sent.
package listener
