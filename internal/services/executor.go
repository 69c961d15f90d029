package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiovault/internal/shared"
	"github.com/mattn/go-shellwords"
)

const maxStderrTail = 2048

// Result is the outcome of one finished process.
type Result struct {
	Output   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// ExecutorOpts configures an [Executor].
type ExecutorOpts struct {
	// Binaries maps each allowed program name to the binary that runs it.
	Binaries map[string]string
	// Timeout bounds each run. Zero means no limit.
	Timeout time.Duration
	Logger  *log.Logger
}

// Executor runs allow-listed tools directly from an argument vector, never through a shell.
type Executor struct {
	binaries map[string]string
	timeout  time.Duration
	logger   *log.Logger
}

// NewExecutor creates an Executor. Programs missing from opts.Binaries are refused.
func NewExecutor(opts ExecutorOpts) *Executor {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	binaries := make(map[string]string, len(opts.Binaries))
	for name, bin := range opts.Binaries {
		if bin == "" {
			bin = name
		}
		binaries[name] = bin
	}

	return &Executor{binaries: binaries, timeout: opts.Timeout, logger: opts.Logger}
}

// Allowed reports whether program may be run.
func (e *Executor) Allowed(program string) bool {
	_, ok := e.binaries[program]
	return ok
}

// Run executes argv, calling onLine for each stdout line as it arrives.
//
// Carriage returns also end a line so that in-place progress bars are seen.
// A non-zero exit wraps [shared.ErrExecution]; cancellation wraps [shared.ErrCancelled].
func (e *Executor) Run(ctx context.Context, argv []string, onLine func(string)) (*Result, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("%w: empty command", shared.ErrInvalidInput)
	}

	bin, ok := e.binaries[argv[0]]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrCommandNotAllowed, argv[0])
	}

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, bin, argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrExecution, err)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger := shared.WithLogger(e.logger, "program", argv[0])
	logger.Debug("starting process", "argv", argv)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start %s: %v", shared.ErrExecution, argv[0], err)
	}

	output := collectLines(stdout, onLine)
	waitErr := cmd.Wait()

	result := &Result{
		Output:   output,
		Stderr:   tail(stderr.String(), maxStderrTail),
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	switch {
	case waitErr == nil:
		logger.Debug("process finished", "duration", result.Duration)
		return result, nil
	case errors.Is(ctx.Err(), context.Canceled):
		return result, fmt.Errorf("%w: %s", shared.ErrCancelled, argv[0])
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return result, fmt.Errorf("%w: %s timed out after %s", shared.ErrExecution, argv[0], e.timeout)
	default:
		logger.Warn("process failed", "exit", result.ExitCode, "stderr", result.Stderr)
		msg := strings.TrimSpace(result.Stderr)
		if msg == "" {
			msg = waitErr.Error()
		}
		return result, fmt.Errorf("%w: %s exited with status %d: %s", shared.ErrExecution, argv[0], result.ExitCode, msg)
	}
}

// collectLines reads r to EOF, passing each line to onLine and returning all of it.
func collectLines(r io.Reader, onLine func(string)) string {
	var out strings.Builder

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(scanLines)
	for sc.Scan() {
		line := sc.Text()
		out.WriteString(line)
		out.WriteByte('\n')
		if onLine != nil && line != "" {
			onLine(line)
		}
	}
	if sc.Err() != nil {
		// Drain so the child does not block on a full pipe.
		_, _ = io.Copy(io.Discard, r)
	}
	return out.String()
}

// scanLines is [bufio.ScanLines] that also splits on a bare '\r'.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance = i + 1
		if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			advance++
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// SplitCommand tokenizes a preview-form command line into argv without a shell.
//
// Quotes and backslash escapes are honoured. Pipes, redirects, command
// separators and command substitution are refused with [shared.ErrUnsafeCommand].
func SplitCommand(line string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return nil, fmt.Errorf("%w: empty command", shared.ErrInvalidInput)
	}

	if pos := substitutionIndex(line); pos >= 0 {
		return nil, fmt.Errorf("%w: command substitution at position %d", shared.ErrUnsafeCommand, pos)
	}

	p := shellwords.NewParser()
	p.ParseEnv = false
	p.ParseBacktick = false

	args, err := p.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if p.Position >= 0 {
		return nil, fmt.Errorf("%w: shell operator at position %d", shared.ErrUnsafeCommand, p.Position)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: empty command", shared.ErrInvalidInput)
	}
	return args, nil
}

// substitutionIndex returns the offset of the first unescaped backtick or "$(" outside single quotes, or -1.
func substitutionIndex(line string) int {
	var escaped, single, double bool
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && !single:
			escaped = true
		case c == '\'' && !double:
			single = !single
		case c == '"' && !single:
			double = !double
		case single:
		case c == '`':
			return i
		case c == '$' && i+1 < len(line) && line[i+1] == '(':
			return i
		}
	}
	return -1
}
