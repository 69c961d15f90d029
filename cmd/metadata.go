package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/audiovault/internal/command"
	"github.com/desertthunder/audiovault/internal/models"
	"github.com/desertthunder/audiovault/internal/services"
	"github.com/desertthunder/audiovault/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistCreate writes an m3u playlist for the tracks in a directory.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	dir := cmd.String("dir")
	if dir == "" {
		dir = r.preferences(ctx).OutputDirectory
	}

	r.writePlainHeader("Playlist")
	if err := r.writeCommands(command.Playlist(name, dir)); err != nil {
		return err
	}
	if cmd.Bool("dry-run") {
		return nil
	}

	tracker, err := r.newTracker(trackerOpts{extended: cmd.Bool("extended")})
	if err != nil {
		return err
	}
	defer tracker.Close()

	if _, err := tracker.CreatePlaylist(ctx, name, dir); err != nil {
		return err
	}
	if err := tracker.Wait(ctx, models.StagePlaylist); err != nil {
		return err
	}

	session := tracker.Snapshot()
	if err := r.finishSession(cmd, session); err != nil {
		return err
	}
	return sessionError(session)
}

// MetadataTag writes ID3 tags into one file.
//
// With no tag flags the artist and title come from an "Artist - Title" file name.
func (r *Runner) MetadataTag(ctx context.Context, cmd *cli.Command) error {
	file := cmd.StringArg("file")
	if file == "" {
		return fmt.Errorf("%w: file", shared.ErrMissingArgument)
	}

	tags := models.TrackTags{
		Title:  cmd.String("title"),
		Artist: cmd.String("artist"),
		Album:  cmd.String("album"),
		Year:   int(cmd.Int("year")),
		Genre:  cmd.String("genre"),
	}
	if tags.Title == "" && tags.Artist == "" && tags.Album == "" && tags.Genre == "" {
		tags = models.TagsFromFilename(file, tags.Year)
		r.logger.Debug("tags derived from file name", "artist", tags.Artist, "title", tags.Title)
	}
	if tags.IsEmpty() {
		return fmt.Errorf("%w: no tags to write", shared.ErrValidation)
	}

	c := command.Tags(tags, file)
	r.writePlainHeader("Tags")
	if err := r.writeCommands(c); err != nil {
		return err
	}
	if cmd.Bool("dry-run") {
		return nil
	}

	if err := r.metadataSource(c).Run(ctx, func(int) {}); err != nil {
		return err
	}
	r.logger.Info("tags written", "file", file)
	return nil
}

// MetadataCover embeds an image URL or file as the front cover of every mp3 in a directory.
func (r *Runner) MetadataCover(ctx context.Context, cmd *cli.Command) error {
	form := models.CoverForm{Source: cmd.StringArg("source"), Dir: cmd.String("dir")}
	if form.Dir == "" {
		form.Dir = r.preferences(ctx).OutputDirectory
	}
	if err := form.Validate(); err != nil {
		return err
	}

	r.writePlainHeader("Album art")
	if err := r.writeCommands(command.AlbumArt(form.Source, form.Dir)); err != nil {
		return err
	}
	if cmd.Bool("dry-run") {
		return nil
	}

	path, err := services.FetchCover(ctx, r.httpClient, form.Source, form.Dir)
	if err != nil {
		return err
	}

	if err := r.metadataSource(command.AlbumArt(path, form.Dir)).Run(ctx, func(int) {}); err != nil {
		return err
	}
	r.logger.Info("cover embedded", "image", path, "dir", form.Dir)
	return nil
}

// FolderCreate creates a folder under the parent directory.
func (r *Runner) FolderCreate(ctx context.Context, cmd *cli.Command) error {
	form := models.FolderForm{Name: cmd.StringArg("name"), Parent: cmd.String("parent")}
	if form.Parent == "" {
		form.Parent = r.preferences(ctx).OutputDirectory
	}
	if err := form.Validate(); err != nil {
		return err
	}

	if err := r.writeCommands(command.MakeDir(form.Name, form.Parent)); err != nil {
		return err
	}
	if err := os.MkdirAll(form.Path(), 0o755); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	r.logger.Info("folder created", "path", form.Path())
	return nil
}
