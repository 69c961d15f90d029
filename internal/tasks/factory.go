package tasks

import (
	"fmt"
	"time"

	"github.com/desertthunder/audiovault/internal/command"
	"github.com/desertthunder/audiovault/internal/services"
	"github.com/desertthunder/audiovault/internal/shared"
)

// SourceFactory chooses how each kind of stage work is carried out.
type SourceFactory interface {
	Download(cmd command.Command) Source
	Lyrics(dir string) Source
	Thumbnails(dir string) Source
	Playlist(name, dir string) Source
}

// Pacing holds the simulated step and period of each kind of work.
type Pacing struct {
	Download   Ticker
	Lyrics     Ticker
	Thumbnails Ticker
	Playlist   Ticker
}

// DefaultPacing mirrors the control panel's timings.
func DefaultPacing() Pacing {
	return Pacing{
		Download:   Ticker{Step: 2, Period: 300 * time.Millisecond},
		Lyrics:     Ticker{Step: 5, Period: 200 * time.Millisecond},
		Thumbnails: Ticker{Step: 5, Period: 150 * time.Millisecond},
		Playlist:   Ticker{Step: 10, Period: 200 * time.Millisecond},
	}
}

// SimulatedSources produces timer-driven progress without running anything.
type SimulatedSources struct {
	Pacing Pacing
}

func (s SimulatedSources) Download(command.Command) Source { return s.Pacing.Download }
func (s SimulatedSources) Lyrics(string) Source            { return s.Pacing.Lyrics }
func (s SimulatedSources) Thumbnails(string) Source        { return s.Pacing.Thumbnails }
func (s SimulatedSources) Playlist(string, string) Source  { return s.Pacing.Playlist }

// ExecSources runs the tools locally.
type ExecSources struct {
	Runner services.CommandRunner
	// Workers bounds concurrent per-track eyeD3 runs.
	Workers int
	// Extended writes #EXTM3U playlists.
	Extended bool
}

func (s ExecSources) Download(cmd command.Command) Source {
	return Process{Runner: s.Runner, Command: cmd}
}

func (s ExecSources) Lyrics(dir string) Source {
	return Batch{Runner: s.Runner, Pattern: command.LyricsPreview(dir), Workers: s.Workers}
}

// Thumbnails completes at once: yt-dlp embeds them while downloading.
func (s ExecSources) Thumbnails(string) Source { return Done }

func (s ExecSources) Playlist(name, dir string) Source {
	return PlaylistWriter{Dir: dir, Name: name, Extended: s.Extended}
}

// RelaySources sends download and tagging commands to a remote relay.
//
// Playlists are written locally, so dir must be reachable from this host.
type RelaySources struct {
	Client   services.CommandRelay
	Extended bool
}

func (s RelaySources) Download(cmd command.Command) Source {
	return Relay{Client: s.Client, Path: services.RelayDownloadPath, Commands: []command.Command{cmd}}
}

func (s RelaySources) Lyrics(dir string) Source {
	return Relay{Client: s.Client, Path: services.RelayMetadataPath, Commands: []command.Command{command.LyricsPreview(dir)}}
}

func (s RelaySources) Thumbnails(string) Source { return Done }

func (s RelaySources) Playlist(name, dir string) Source {
	return PlaylistWriter{Dir: dir, Name: name, Extended: s.Extended}
}

// FactoryOpts selects and configures a [SourceFactory].
type FactoryOpts struct {
	Mode     string
	Runner   services.CommandRunner
	Relay    services.CommandRelay
	Workers  int
	Extended bool
}

// NewSourceFactory picks the factory for a configured tracker mode.
func NewSourceFactory(opts FactoryOpts) (SourceFactory, error) {
	switch opts.Mode {
	case shared.ModeSimulate:
		return SimulatedSources{Pacing: DefaultPacing()}, nil
	case shared.ModeExec:
		if opts.Runner == nil {
			return nil, fmt.Errorf("%w: exec mode needs a command runner", shared.ErrInvalidConfig)
		}
		return ExecSources{Runner: opts.Runner, Workers: opts.Workers, Extended: opts.Extended}, nil
	case shared.ModeRelay:
		if opts.Relay == nil {
			return nil, fmt.Errorf("%w: relay mode needs a relay client", shared.ErrInvalidConfig)
		}
		return RelaySources{Client: opts.Relay, Extended: opts.Extended}, nil
	default:
		return nil, fmt.Errorf("%w: unknown tracker mode %q", shared.ErrInvalidConfig, opts.Mode)
	}
}
