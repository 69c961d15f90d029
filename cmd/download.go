package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/audiovault/internal/command"
	"github.com/desertthunder/audiovault/internal/formatter"
	"github.com/desertthunder/audiovault/internal/models"
	"github.com/desertthunder/audiovault/internal/repositories"
	"github.com/desertthunder/audiovault/internal/services"
	"github.com/desertthunder/audiovault/internal/shared"
	"github.com/desertthunder/audiovault/internal/tasks"
	"github.com/desertthunder/audiovault/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/audiovault-tui.log"

// job describes one tracked download and the follow-up stages it needs.
type job struct {
	title        string
	download     command.Command
	preview      []command.Command
	typ          models.DownloadType
	dir          string
	embed        ui.EmbedKind
	playlistName string
}

// SpotifyDownload downloads a Spotify URL with spotdl, optionally embedding lyrics
// and writing a playlist afterwards.
func (r *Runner) SpotifyDownload(ctx context.Context, cmd *cli.Command) error {
	prefs := r.preferences(ctx)

	form := models.NewSpotifyForm(cmd.StringArg("url"))
	form.OutputDir = firstNonEmpty(cmd.String("output"), prefs.OutputDirectory, models.DefaultSpotifyDir)
	form.GenerateLyrics = cmd.Bool("lyrics") || cmd.Bool("embed-lyrics")
	form.EmbedLyrics = cmd.Bool("embed-lyrics")

	if err := applyDownloadOptions(cmd, &form.Bitrate, &form.Type); err != nil {
		return err
	}
	if err := form.Validate(); err != nil {
		return err
	}

	j := job{
		title:    "Spotify download",
		download: command.SpotifyDownload(form),
		preview:  command.Spotify(form),
		typ:      form.Type,
		dir:      form.OutputDir,
	}
	if form.EmbedLyrics {
		j.embed = ui.EmbedLyrics
	}
	if form.Type == models.DownloadPlaylist {
		j.playlistName = r.playlistName(ctx, cmd.String("name"), form.URL)
	}

	return r.runJob(ctx, cmd, j)
}

// YouTubeDownload downloads a YouTube URL with yt-dlp.
//
// --embed-thumbnail defaults to the saved thumbnailsEnabled preference.
func (r *Runner) YouTubeDownload(ctx context.Context, cmd *cli.Command) error {
	prefs := r.preferences(ctx)

	form := models.NewYouTubeForm(cmd.StringArg("url"))
	form.OutputDir = firstNonEmpty(cmd.String("output"), models.DefaultYouTubeDir)
	form.EmbedThumbnail = prefs.ThumbnailsEnabled
	if cmd.IsSet("embed-thumbnail") {
		form.EmbedThumbnail = cmd.Bool("embed-thumbnail")
	}
	form.WriteAllThumbnails = cmd.Bool("write-all-thumbnails")

	if err := applyDownloadOptions(cmd, &form.Bitrate, &form.Type); err != nil {
		return err
	}
	if err := form.Validate(); err != nil {
		return err
	}

	c := command.YouTube(form)
	j := job{
		title:    "YouTube download",
		download: c,
		preview:  []command.Command{c},
		typ:      form.Type,
		dir:      form.OutputDir,
	}
	if form.EmbedThumbnail {
		j.embed = ui.EmbedThumbnails
	}
	if form.Type == models.DownloadPlaylist {
		j.playlistName = cmd.String("name")
	}

	return r.runJob(ctx, cmd, j)
}

func applyDownloadOptions(cmd *cli.Command, bitrate *models.Bitrate, typ *models.DownloadType) error {
	b, err := models.ParseBitrate(cmd.String("bitrate"))
	if err != nil {
		return err
	}
	t, err := models.ParseDownloadType(cmd.String("type"))
	if err != nil {
		return err
	}
	*bitrate, *typ = b, t
	return nil
}

// playlistName returns name, or the Spotify name of url when credentials are configured.
func (r *Runner) playlistName(ctx context.Context, name, url string) string {
	if name != "" {
		return name
	}

	resolver, err := r.nameResolver(ctx)
	if err != nil {
		r.logger.Debug("playlist name lookup unavailable", "error", err)
		return ""
	}

	resolved, err := resolver.Resolve(ctx, url)
	if err != nil {
		r.logger.Warn("failed to resolve playlist name", "url", url, "error", err)
		return ""
	}
	return resolved
}

func (r *Runner) nameResolver(ctx context.Context) (services.NameResolver, error) {
	if r.resolver != nil {
		return r.resolver, nil
	}

	resolver, err := services.NewSpotifyResolver(ctx, r.config.Credentials.Spotify, services.SpotifyResolverOpts{
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	})
	if err != nil {
		return nil, err
	}
	r.resolver = resolver
	return resolver, nil
}

// preferences loads saved settings, falling back to defaults when the store is unavailable.
func (r *Runner) preferences(ctx context.Context) models.Settings {
	prefs := models.DefaultSettings()
	err := r.withStore(ctx, func(store *repositories.SettingsRepository) error {
		var err error
		prefs, err = store.UserSettings(ctx)
		return err
	})
	if err != nil {
		r.logger.Debug("using default settings", "error", err)
		return models.DefaultSettings()
	}
	return prefs
}

// runJob prints the preview commands and, unless --dry-run is set, runs the
// download and its follow-up stages in a tracker session.
func (r *Runner) runJob(ctx context.Context, cmd *cli.Command, j job) error {
	r.writePlainHeader(j.title)
	if err := r.writeCommands(j.preview...); err != nil {
		return err
	}
	if cmd.Bool("dry-run") {
		return nil
	}

	var (
		session models.Session
		err     error
	)
	if cmd.Bool("tui") {
		session, err = r.runJobTUI(ctx, j)
	} else {
		session, err = r.runJobPlain(ctx, j)
	}
	if err != nil {
		return err
	}

	if err := r.finishSession(cmd, session); err != nil {
		return err
	}
	return sessionError(session)
}

// runJobPlain runs every stage in turn and prints stage transitions as they happen.
func (r *Runner) runJobPlain(ctx context.Context, j job) (models.Session, error) {
	updates := make(chan tasks.Update, updateBuffer)
	tracker, err := r.newTracker(trackerOpts{updates: updates})
	if err != nil {
		return models.Session{}, err
	}

	printed := r.printUpdates(updates)
	defer func() {
		closeSession(tracker, updates)
		<-printed
	}()

	if err := tracker.StartDownload(ctx, j.download, j.typ, nil); err != nil {
		return models.Session{}, err
	}
	if err := tracker.Wait(ctx, models.StageDownload); err != nil {
		return tracker.Snapshot(), err
	}
	if tracker.Snapshot().Download.Status != models.StatusComplete {
		return tracker.Snapshot(), nil
	}

	switch j.embed {
	case ui.EmbedLyrics:
		err = tracker.EmbedLyrics(ctx, j.dir)
	case ui.EmbedThumbnails:
		err = tracker.EmbedThumbnails(ctx, j.dir)
	}
	if err != nil {
		return tracker.Snapshot(), err
	}
	if err := tracker.Wait(ctx, models.StageEmbed); err != nil {
		return tracker.Snapshot(), err
	}

	if j.typ == models.DownloadPlaylist {
		if _, err := tracker.CreatePlaylist(ctx, j.playlistName, j.dir); err != nil {
			if !errors.Is(err, shared.ErrValidation) {
				return tracker.Snapshot(), err
			}
			r.logger.Warn("playlist not written; pass --name or run `audiovault playlist create`", "error", err)
		}
		if err := tracker.Wait(ctx, models.StagePlaylist); err != nil {
			return tracker.Snapshot(), err
		}
	}

	return tracker.Snapshot(), nil
}

// printUpdates prints a stage line whenever a stage changes status. The returned channel closes when updates does.
func (r *Runner) printUpdates(updates <-chan tasks.Update) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		last := make(map[models.Stage]models.ProcessInfo)
		for u := range updates {
			prev, seen := last[u.Stage]
			last[u.Stage] = u.Info

			if seen && prev.Status == u.Info.Status && prev.Message == u.Info.Message {
				continue
			}
			if seen && prev.Status == models.StatusActive && u.Info.Status == models.StatusActive {
				continue
			}
			r.writePlain("%s\n", formatter.StageLine(u.Stage, u.Info))
		}
	}()
	return done
}

// runJobTUI starts the download and hands control to the stage monitor.
func (r *Runner) runJobTUI(ctx context.Context, j job) (models.Session, error) {
	fileLogger, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	updates := make(chan tasks.Update, updateBuffer)
	tracker, err := r.newTracker(trackerOpts{updates: updates, logger: fileLogger})
	if err != nil {
		return models.Session{}, err
	}
	defer closeSession(tracker, updates)

	if err := tracker.StartDownload(ctx, j.download, j.typ, nil); err != nil {
		return models.Session{}, err
	}

	theme := models.ThemeDark
	if err := r.withStore(ctx, func(store *repositories.SettingsRepository) error {
		saved, err := store.Theme(ctx)
		if err == nil {
			theme = saved
		}
		return err
	}); err != nil {
		r.logger.Debug("using default theme", "error", err)
	}

	return ui.Run(ctx, tracker, updates, ui.ModelOpts{
		Title:        j.title,
		Embed:        j.embed,
		Dir:          j.dir,
		PlaylistName: j.playlistName,
		Theme:        theme,
		OnThemeChange: func(t models.Theme) {
			if err := r.withStore(ctx, func(store *repositories.SettingsRepository) error {
				return store.SetTheme(ctx, t)
			}); err != nil {
				r.logger.Warn("failed to save theme", "error", err)
			}
		},
	})
}

// closeSession stops every stage and then closes updates, ending any reader
// ranging over it. Close waits for the stage goroutines, so no send follows.
func closeSession(tracker *tasks.Tracker, updates chan tasks.Update) {
	tracker.Close()
	close(updates)
}

// finishSession prints the final session and writes the --report file.
func (r *Runner) finishSession(cmd *cli.Command, session models.Session) error {
	if cmd.Bool("json") {
		if err := r.writeJSON(session, true); err != nil {
			return err
		}
	} else {
		data, err := formatter.Render(session, formatter.FormatText)
		if err != nil {
			return err
		}
		r.writePlainln("%s", data)
	}

	if path := cmd.String("report"); path != "" {
		if err := formatter.WriteSessionReport(session, path); err != nil {
			return err
		}
		r.logger.Info("report written", "path", path)
	}
	return nil
}

// sessionError reports the first failed stage as an execution error.
func sessionError(session models.Session) error {
	for _, stage := range models.Stages {
		if info := session.Stage(stage); info.Status == models.StatusError {
			return fmt.Errorf("%w: %s: %s", shared.ErrExecution, stage, info.Message)
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
