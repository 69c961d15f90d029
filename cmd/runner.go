package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiovault/internal/command"
	"github.com/desertthunder/audiovault/internal/repositories"
	"github.com/desertthunder/audiovault/internal/services"
	"github.com/desertthunder/audiovault/internal/shared"
	"github.com/desertthunder/audiovault/internal/tasks"
	"github.com/urfave/cli/v3"
)

const (
	defaultConfigPath = "config.toml"
	defaultWorkers    = 4
	updateBuffer      = 64
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	executor   services.CommandRunner
	relay      services.CommandRelay
	resolver   services.NameResolver
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	getenv     func(string) string

	// built records which services came from the config rather than from RunnerOpts.
	built struct{ executor, relay bool }
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Executor, Relay and Resolver are built from Config when nil.
type RunnerOpts struct {
	Config     *shared.Config
	Executor   services.CommandRunner
	Relay      services.CommandRelay
	Resolver   services.NameResolver
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Getenv     func(string) string
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}

	r := &Runner{
		config:     opts.Config,
		executor:   opts.Executor,
		relay:      opts.Relay,
		resolver:   opts.Resolver,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		getenv:     opts.Getenv,
	}
	r.wireServices()
	return r
}

// wireServices fills in the executor and relay client from the current config.
// Services passed in through [RunnerOpts] are never replaced.
func (r *Runner) wireServices() {
	if r.built.executor {
		r.executor = nil
	}
	if r.built.relay {
		r.relay = nil
	}

	if r.executor == nil {
		r.built.executor = true
		r.executor = services.NewExecutor(services.ExecutorOpts{
			Binaries: r.config.Tools.Binaries(),
			Timeout:  r.config.Server.ExecTimeout(),
			Logger:   r.logger,
		})
	}
	if r.relay == nil && r.config.Tracker.RelayURL != "" {
		r.built.relay = true
		r.relay = services.NewRelayClient(r.config.Tracker.RelayURL, r.httpClient)
	}
}

// before loads the configuration named by --config and applies global flags.
//
// A missing config file is not an error; the embedded defaults are used.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
		r.logger.Debug("loaded config", "path", path)
	}

	if err := r.config.ApplyEnv(r.getenv); err != nil {
		return ctx, err
	}
	if mode := cmd.String("mode"); mode != "" {
		r.config.Tracker.Mode = mode
	}
	if err := r.config.Validate(); err != nil {
		return ctx, err
	}

	r.wireServices()
	return ctx, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, spotifyCommand, youtubeCommand, playlistCommand, metadataCommand, folderCommand, settingsCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// trackerOpts configures newTracker.
type trackerOpts struct {
	updates  chan<- tasks.Update
	extended bool
	logger   *log.Logger
}

// newTracker builds a tracker whose sources follow the configured mode.
func (r *Runner) newTracker(opts trackerOpts) (*tasks.Tracker, error) {
	factory, err := tasks.NewSourceFactory(tasks.FactoryOpts{
		Mode:     r.config.Tracker.Mode,
		Runner:   r.executor,
		Relay:    r.relay,
		Workers:  defaultWorkers,
		Extended: opts.extended,
	})
	if err != nil {
		return nil, err
	}

	logger := opts.logger
	if logger == nil {
		logger = r.logger
	}
	return tasks.NewTracker(tasks.TrackerOpts{Sources: factory, Updates: opts.updates, Logger: logger}), nil
}

// metadataSource runs an eyeD3 command the way the configured mode runs tagging.
//
// In simulate mode nothing is executed.
func (r *Runner) metadataSource(c command.Command) tasks.Source {
	switch r.config.Tracker.Mode {
	case shared.ModeExec:
		return tasks.Batch{Runner: r.executor, Pattern: c, Workers: defaultWorkers}
	case shared.ModeRelay:
		return tasks.Relay{Client: r.relay, Path: services.RelayMetadataPath, Commands: []command.Command{c}}
	default:
		return tasks.Done
	}
}

// openStore opens the settings database. The returned close func must be called when done.
func (r *Runner) openStore(ctx context.Context) (*repositories.SettingsRepository, func() error, error) {
	db, err := shared.OpenDatabase(ctx, r.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open settings store: %w", err)
	}
	return repositories.NewSettingsRepository(db), db.Close, nil
}

// withStore runs fn with an open settings store.
func (r *Runner) withStore(ctx context.Context, fn func(*repositories.SettingsRepository) error) error {
	store, closeFn, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(store)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// writeCommands prints the preview of each command, one per line.
func (r *Runner) writeCommands(cmds ...command.Command) error {
	return r.writePlain("%s\n", strings.Join(command.Strings(cmds), "\n"))
}
