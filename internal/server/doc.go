// Package server implements the execution relay.
//
// # Endpoints
//
//	POST /download   {command}  spotdl or yt-dlp
//	POST /metadata   {command}  eyeD3, once per track matching a trailing glob
//	GET  /<mount>/   files from the configured host directories
//	GET  /           the UI bundle, falling back to index.html
//
// Commands are split into argv with go-shellwords and run without a shell.
// Shell operators and command substitution are refused with 403, as are
// programs outside the endpoint's allow-list. A failed run answers 500 with
// {"error": ...}; success answers {"success": true, "output": ...}.
//
// # Middleware
//
// [Middleware] wraps handlers in reverse order (last added executes first).
// Every route gets [Logging] and [CORS]. The command endpoints share one
// [RateLimit] token bucket and one [Serialize] slot so only one tool runs at
// a time.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib
// handler interface and adds routes, letting a handler such as
// [MountsHandler] register every path it serves.
package server
