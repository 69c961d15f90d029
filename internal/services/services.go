// package services wraps the external systems audiovault talks to:
// local tool processes, a remote execution relay and the Spotify Web API.
package services

import (
	"context"
)

// Relay endpoints. Download tools run on the first, tag editing on the second.
const (
	RelayDownloadPath = "/download"
	RelayMetadataPath = "/metadata"
)

// CommandRunner runs one argv and streams each output line to onLine.
//
// [Executor] is the process-backed implementation.
type CommandRunner interface {
	Run(ctx context.Context, argv []string, onLine func(string)) (*Result, error)
}

// CommandRelay submits a command string to an execution relay endpoint.
//
// [RelayClient] is the HTTP implementation.
type CommandRelay interface {
	Execute(ctx context.Context, path, command string) (*RelayResponse, error)
}

// NameResolver looks up a human-readable name for a catalogue URL.
type NameResolver interface {
	Resolve(ctx context.Context, rawURL string) (string, error)
}

// RelayRequest is the body accepted by the relay endpoints.
type RelayRequest struct {
	Command string `json:"command"`
}

// RelayResponse is the body returned by the relay endpoints.
type RelayResponse struct {
	Success bool   `json:"success,omitempty"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}
