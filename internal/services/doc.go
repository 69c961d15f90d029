// Package services wraps the systems audiovault drives from the outside.
//
// # Process Execution
//
// [Executor] runs spotdl, yt-dlp and eyeD3 from an argument vector with no
// shell in between. Only programs present in its allow-list can run; each run
// may carry a timeout and streams stdout line by line so callers can parse
// progress. [SplitCommand] turns a preview command line back into argv and
// refuses pipes, redirects, separators and command substitution.
//
// # Execution Relay Client
//
// [RelayClient] posts {"command": ...} to a relay's /download or /metadata
// endpoint and decodes {"success", "output"} or {"error"}.
//
// # Spotify Lookups
//
// [SpotifyResolver] authenticates with the client credentials flow and
// resolves an open.spotify.com URL to a track, album or playlist name.
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrCommandNotAllowed] : program not in the allow-list
//   - [shared.ErrUnsafeCommand] : command line contains shell operators
//   - [shared.ErrExecution] : non-zero exit, timeout, or a non-2xx relay answer
//   - [shared.ErrNetwork] : relay unreachable or unreadable
//   - [shared.ErrCancelled] : context cancelled while the process ran
//   - [shared.ErrAPIRequest], [shared.ErrNotFound] : Spotify API failures
package services
