package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiovault/internal/services"
	"github.com/desertthunder/audiovault/internal/shared"
)

const maxRequestBody = 64 << 10

// RelayHandler runs the command posted to one relay endpoint.
//
// The command string is split into argv without a shell and must start with
// one of the endpoint's programs. With ExpandGlobs set, a trailing track
// pattern such as "/audio/*.mp3" runs the program once per matching track.
type RelayHandler struct {
	ExpandGlobs bool

	path     string
	programs []string
	runner   services.CommandRunner
	logger   *log.Logger
}

// NewRelayHandler creates a handler for path accepting only programs.
func NewRelayHandler(path string, programs []string, runner services.CommandRunner, logger *log.Logger) *RelayHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &RelayHandler{
		path:     path,
		programs: programs,
		runner:   runner,
		logger:   shared.WithLogger(logger, "endpoint", path),
	}
}

func (h *RelayHandler) Routes() []string {
	return []string{h.path}
}

func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req services.RelayRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Command) == "" {
		writeError(w, http.StatusBadRequest, "command required")
		return
	}

	argv, err := services.SplitCommand(req.Command)
	if err != nil {
		h.logger.Warn("rejected command", "command", req.Command, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	if !slices.Contains(h.programs, argv[0]) {
		h.logger.Warn("program not allowed", "program", argv[0])
		writeError(w, http.StatusForbidden, "command not allowed: "+argv[0])
		return
	}

	runs := [][]string{argv}
	if h.ExpandGlobs {
		if runs, err = services.ExpandTrackGlob(argv); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
	}

	var output strings.Builder
	for _, run := range runs {
		res, err := h.runner.Run(r.Context(), run, nil)
		if err != nil {
			h.logger.Error("command failed", "argv", run, "error", err)
			writeError(w, statusFor(err), err.Error())
			return
		}
		output.WriteString(res.Output)
	}

	writeJSON(w, http.StatusOK, services.RelayResponse{Success: true, Output: output.String()})
}

// statusFor maps an error to the relay's HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrUnsafeCommand), errors.Is(err, shared.ErrCommandNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, services.RelayResponse{Error: msg})
}
