package tasks

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/desertthunder/audiovault/internal/command"
	"github.com/desertthunder/audiovault/internal/services"
	"github.com/desertthunder/audiovault/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Source produces the progress of one stage.
//
// Run reports percentages through report and returns nil once the work is
// done. It must return promptly after ctx is cancelled.
type Source interface {
	Run(ctx context.Context, report func(int)) error
}

// SourceFunc adapts a function to [Source].
type SourceFunc func(ctx context.Context, report func(int)) error

func (f SourceFunc) Run(ctx context.Context, report func(int)) error { return f(ctx, report) }

// Done is a source that finishes immediately.
var Done Source = SourceFunc(func(ctx context.Context, report func(int)) error { return ctx.Err() })

// Ticker advances by Step every Period and finishes on reaching 100.
type Ticker struct {
	Step   int
	Period time.Duration
}

func (t Ticker) Run(ctx context.Context, report func(int)) error {
	step, period := t.Step, t.Period
	if step <= 0 {
		step = 1
	}
	if period <= 0 {
		period = time.Millisecond
	}

	tick := time.NewTicker(period)
	defer tick.Stop()

	progress := 0
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", shared.ErrCancelled, ctx.Err())
		case <-tick.C:
			progress += step
			if progress >= 100 {
				return nil
			}
			report(progress)
		}
	}
}

// Process runs Command locally and reports the progress parsed from its output.
type Process struct {
	Runner  services.CommandRunner
	Command command.Command
}

func (p Process) Run(ctx context.Context, report func(int)) error {
	_, err := p.Runner.Run(ctx, p.Command.Argv(), func(line string) {
		if pct, ok := ParseProgress(line); ok {
			report(pct)
		}
	})
	return err
}

// Relay submits Commands to a relay endpoint one after the other.
//
// The relay answers only when a command has finished, so progress moves in
// steps of one command.
type Relay struct {
	Client   services.CommandRelay
	Path     string
	Commands []command.Command
}

func (r Relay) Run(ctx context.Context, report func(int)) error {
	for i, c := range r.Commands {
		if _, err := r.Client.Execute(ctx, r.Path, c.ShellString()); err != nil {
			return err
		}
		report((i + 1) * 100 / len(r.Commands))
	}
	return nil
}

// Batch expands a directory-wide eyeD3 Pattern into one run per track and
// executes them on up to Workers goroutines.
type Batch struct {
	Runner  services.CommandRunner
	Pattern command.Command
	Workers int
}

func (b Batch) Run(ctx context.Context, report func(int)) error {
	argvs, err := services.ExpandTrackGlob(b.Pattern.Argv())
	if err != nil {
		return err
	}

	workers := b.Workers
	if workers <= 0 {
		workers = 1
	}

	var finished atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, argv := range argvs {
		g.Go(func() error {
			if _, err := b.Runner.Run(gctx, argv, nil); err != nil {
				return err
			}
			n := finished.Add(1)
			report(int(n) * 100 / len(argvs))
			return nil
		})
	}
	return g.Wait()
}

// PlaylistWriter writes an m3u listing of every mp3 under Dir to Dir/Name.m3u.
type PlaylistWriter struct {
	Dir      string
	Name     string
	Extended bool
}

// Path is the playlist file written.
func (w PlaylistWriter) Path() string {
	return command.PlaylistPath(w.Name, w.Dir)
}

func (w PlaylistWriter) Run(ctx context.Context, report func(int)) error {
	tracks, err := findTracks(w.Dir)
	if err != nil {
		return err
	}

	f, err := os.Create(w.Path())
	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	if w.Extended {
		buf.WriteString("#EXTM3U\n")
	}

	for i, track := range tracks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrCancelled, err)
		}
		if w.Extended {
			title := strings.TrimSuffix(filepath.Base(track), filepath.Ext(track))
			fmt.Fprintf(buf, "#EXTINF:-1,%s\n", title)
		}
		buf.WriteString(track + "\n")
		report((i + 1) * 100 / len(tracks))
	}

	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to write playlist: %w", err)
	}
	return f.Close()
}

// findTracks returns every .mp3 below dir in lexical order.
func findTracks(dir string) ([]string, error) {
	var tracks []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".mp3") {
			tracks = append(tracks, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sort.Strings(tracks)
	return tracks, nil
}
