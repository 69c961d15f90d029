// package tasks runs the three stages of an audio job and tracks their progress.
//
// The core type is Tracker, which owns one job session and drives each active
// stage from its own goroutine. Stage mutations emit updates via a channel for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiovault/internal/command"
	"github.com/desertthunder/audiovault/internal/models"
	"github.com/desertthunder/audiovault/internal/shared"
)

// TrackerOpts configures a [Tracker].
type TrackerOpts struct {
	Sources SourceFactory
	// Updates receives every stage mutation. Sends never block; a full channel drops the update.
	Updates chan<- Update
	Logger  *log.Logger
}

// stageRun is the handle of one stage goroutine.
type stageRun struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (r *stageRun) stop() {
	r.cancel()
	<-r.done
}

// Tracker is the job status tracker.
//
// All session state is guarded by mu. Every stage goroutine is registered in
// runs; a goroutine may only mutate its stage while it is still the
// registered run of the current session.
type Tracker struct {
	mu      sync.Mutex
	session models.Session
	runs    map[models.Stage]*stageRun
	wg      sync.WaitGroup

	sources SourceFactory
	updates chan<- Update
	logger  *log.Logger
	now     func() time.Time
}

// NewTracker creates a Tracker with an idle session.
func NewTracker(opts TrackerOpts) *Tracker {
	if opts.Sources == nil {
		opts.Sources = SimulatedSources{Pacing: DefaultPacing()}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	t := &Tracker{
		runs:    make(map[models.Stage]*stageRun),
		sources: opts.Sources,
		updates: opts.Updates,
		logger:  opts.Logger,
		now:     time.Now,
	}
	t.session = idleSession()
	return t
}

func idleSession() models.Session {
	return models.Session{
		Download: models.PendingProcess(""),
		Embed:    models.PendingProcess(msgWaiting),
		Playlist: models.PendingProcess(msgWaiting),
	}
}

// StartDownload begins a new session that runs cmd.
//
// It is refused with [shared.ErrJobInProgress] while a download is active.
// Stage goroutines left from the previous session are stopped before the
// new one starts, and the embed and playlist stages are reset to pending.
// onComplete runs once the download finishes successfully. For playlist
// downloads the playlist stage is then marked ready.
func (t *Tracker) StartDownload(ctx context.Context, cmd command.Command, typ models.DownloadType, onComplete func()) error {
	if cmd.IsZero() {
		return fmt.Errorf("%w: empty command", shared.ErrInvalidInput)
	}

	t.mu.Lock()
	if t.session.Download.Status == models.StatusActive {
		t.mu.Unlock()
		return fmt.Errorf("%w: download already running", shared.ErrJobInProgress)
	}

	stale := t.runs
	t.runs = make(map[models.Stage]*stageRun)

	t.session = idleSession()
	t.session.ID = shared.GenerateID()
	t.session.Type = typ
	t.session.StartedAt = t.now()
	t.session.CurrentCommand = cmd.String()
	t.session.Download = startedInfo(downloadMessages)

	id := t.session.ID
	run, runCtx := newStageRun(ctx)
	t.runs[models.StageDownload] = run

	for _, stage := range models.Stages {
		t.emitLocked(stage)
	}
	t.mu.Unlock()

	for _, r := range stale {
		r.stop()
	}

	t.logger.Info("download started", "session", id, "type", typ, "command", cmd.String())

	onDone := func() {
		if typ == models.DownloadPlaylist {
			t.markPlaylistReady(id)
		}
		if onComplete != nil {
			onComplete()
		}
	}
	t.wg.Add(1)
	go t.runStage(runCtx, id, models.StageDownload, run, t.sources.Download(cmd), downloadMessages, onDone)
	return nil
}

// EmbedLyrics embeds the lyrics files in dir into their tracks.
func (t *Tracker) EmbedLyrics(ctx context.Context, dir string) error {
	return t.startEmbed(ctx, t.sources.Lyrics(dir), lyricsMessages)
}

// EmbedThumbnails finishes thumbnail processing for the tracks in dir.
func (t *Tracker) EmbedThumbnails(ctx context.Context, dir string) error {
	return t.startEmbed(ctx, t.sources.Thumbnails(dir), thumbnailMessages)
}

func (t *Tracker) startEmbed(ctx context.Context, src Source, msgs stageMessages) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session.Download.Status != models.StatusComplete {
		return fmt.Errorf("%w: download has not completed", shared.ErrStageNotReady)
	}
	if _, busy := t.runs[models.StageEmbed]; busy {
		return fmt.Errorf("%w: embedding already running", shared.ErrJobInProgress)
	}

	t.session.Embed = startedInfo(msgs)
	t.emitLocked(models.StageEmbed)

	run, runCtx := newStageRun(ctx)
	t.runs[models.StageEmbed] = run
	t.wg.Add(1)
	go t.runStage(runCtx, t.session.ID, models.StageEmbed, run, src, msgs, nil)
	return nil
}

// CreatePlaylist starts writing the m3u playlist name in dir.
//
// The returned true only means the request was accepted; completion is
// observed through the playlist stage. An empty name fails validation
// without touching any stage.
func (t *Tracker) CreatePlaylist(ctx context.Context, name, dir string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("%w: playlist name required", shared.ErrValidation)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session.Download.Status == models.StatusActive {
		return false, fmt.Errorf("%w: wait for the download to finish", shared.ErrJobInProgress)
	}
	if _, busy := t.runs[models.StagePlaylist]; busy {
		return false, fmt.Errorf("%w: playlist already being created", shared.ErrJobInProgress)
	}

	if t.session.ID == "" {
		t.session.ID = shared.GenerateID()
		t.session.StartedAt = t.now()
	}
	t.session.CurrentCommand = command.Playlist(name, dir).String()
	t.session.Playlist = startedInfo(playlistMessages)
	t.emitLocked(models.StagePlaylist)

	run, runCtx := newStageRun(ctx)
	t.runs[models.StagePlaylist] = run
	t.wg.Add(1)
	go t.runStage(runCtx, t.session.ID, models.StagePlaylist, run, t.sources.Playlist(name, dir), playlistMessages, nil)
	return true, nil
}

// Cancel stops the goroutine driving stage and waits for it to exit.
// A running stage ends in error with the message "Cancelled". A stage with
// no goroutine, such as a playlist stage waiting for a name, is left as is.
func (t *Tracker) Cancel(stage models.Stage) {
	t.mu.Lock()
	run := t.runs[stage]
	delete(t.runs, stage)

	info := t.session.Stage(stage)
	if run != nil && info.Status == models.StatusActive {
		t.session.SetStage(stage, cancelledInfo(info.Progress))
		t.emitLocked(stage)
	}
	t.mu.Unlock()

	if run != nil {
		run.stop()
		t.logger.Debug("stage cancelled", "stage", stage)
	}
}

// CancelAll cancels every stage.
func (t *Tracker) CancelAll() {
	for _, stage := range models.Stages {
		t.Cancel(stage)
	}
}

// Close cancels all work and waits for every stage goroutine to return, so
// no update is sent once it returns. The tracker must not be used afterwards.
func (t *Tracker) Close() {
	t.CancelAll()
	t.wg.Wait()
}

// Wait blocks until the goroutine driving stage has exited or ctx is done.
// It returns at once when the stage has no goroutine.
func (t *Tracker) Wait(ctx context.Context, stage models.Stage) error {
	t.mu.Lock()
	run := t.runs[stage]
	t.mu.Unlock()

	if run == nil {
		return nil
	}

	select {
	case <-run.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a copy of the session.
func (t *Tracker) Snapshot() models.Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.session
	s.Download.Status = s.Download.Status.Normalize()
	s.Embed.Status = s.Embed.Status.Normalize()
	s.Playlist.Status = s.Playlist.Status.Normalize()
	return s
}

// CurrentCommand returns the preview of the most recently started command.
func (t *Tracker) CurrentCommand() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.CurrentCommand
}

func newStageRun(parent context.Context) (*stageRun, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	return &stageRun{cancel: cancel, done: make(chan struct{})}, ctx
}

// runStage drives one stage from src until it finishes, fails or is cancelled.
func (t *Tracker) runStage(ctx context.Context, id string, stage models.Stage, run *stageRun, src Source, msgs stageMessages, onDone func()) {
	defer t.wg.Done()
	defer close(run.done)
	defer run.cancel()

	err := src.Run(ctx, func(pct int) { t.report(id, stage, run, pct, msgs) })

	t.mu.Lock()
	if !t.ownsLocked(id, stage, run) {
		t.mu.Unlock()
		return
	}
	delete(t.runs, stage)

	info := t.session.Stage(stage)
	switch {
	case ctx.Err() != nil || errors.Is(err, shared.ErrCancelled):
		info = cancelledInfo(info.Progress)
	case err != nil:
		info = failedInfo(info.Progress, err)
		t.logger.Error("stage failed", "session", id, "stage", stage, "error", err)
	default:
		info = completedInfo(msgs)
	}
	t.session.SetStage(stage, info)
	t.emitLocked(stage)
	t.mu.Unlock()

	if info.Status == models.StatusComplete {
		t.logger.Info("stage complete", "session", id, "stage", stage)
		if onDone != nil {
			onDone()
		}
	}
}

// report applies a progress value from a source. Values are clamped, never
// move backwards, and stop short of 100 until the source returns.
func (t *Tracker) report(id string, stage models.Stage, run *stageRun, pct int, msgs stageMessages) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ownsLocked(id, stage, run) {
		return
	}

	info := t.session.Stage(stage)
	if info.Status != models.StatusActive {
		return
	}

	pct = min(models.ClampProgress(pct), 99)
	if pct <= info.Progress {
		return
	}

	t.session.SetStage(stage, progressInfo(msgs, pct))
	t.emitLocked(stage)
}

func (t *Tracker) markPlaylistReady(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session.ID != id || t.runs[models.StagePlaylist] != nil {
		return
	}
	if t.session.Playlist.Status != models.StatusPending {
		return
	}
	t.session.Playlist = readyPlaylistInfo()
	t.emitLocked(models.StagePlaylist)
}

func (t *Tracker) ownsLocked(id string, stage models.Stage, run *stageRun) bool {
	return t.session.ID == id && t.runs[stage] == run
}

// emitLocked sends the stage's current state without blocking.
func (t *Tracker) emitLocked(stage models.Stage) {
	if t.updates == nil {
		return
	}
	select {
	case t.updates <- Update{SessionID: t.session.ID, Stage: stage, Info: t.session.Stage(stage)}:
	default:
	}
}
