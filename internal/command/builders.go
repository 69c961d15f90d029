package command

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/audiovault/internal/models"
)

const (
	ProgramSpotDL = "spotdl"
	ProgramYTDLP  = "yt-dlp"
	ProgramEyeD3  = "eyeD3"
	ProgramFind   = "find"
	ProgramMkdir  = "mkdir"
)

// Spotify returns the download command and, when lyrics are both generated
// and embedded, a second eyeD3 command that embeds them.
func Spotify(form models.SpotifyForm) []Command {
	cmds := []Command{SpotifyDownload(form)}
	if form.GenerateLyrics && form.EmbedLyrics {
		cmds = append(cmds, LyricsPreview(form.OutputDir))
	}
	return cmds
}

// SpotifyDownload builds
//
//	spotdl download "<url>" --output "<dir>" --format mp3 --bitrate <b>k [--generate-lrc]
func SpotifyDownload(form models.SpotifyForm) Command {
	var lrc string
	if form.GenerateLyrics {
		lrc = "--generate-lrc"
	}

	return New(ProgramSpotDL,
		Flag("download"),
		Quoted(form.URL),
		Flag("--output"),
		Quoted(form.OutputDir),
		Flag("--format"),
		Flag("mp3"),
		Flag("--bitrate"),
		Flag(bitrate(form.Bitrate).String()),
	).Flags(lrc)
}

// LyricsPreview is the directory-wide lyrics embedding step shown to the user.
// Execution expands it into one [EmbedLyrics] per track.
func LyricsPreview(dir string) Command {
	return New(ProgramEyeD3,
		Arg{Prefix: "--add-lyrics=", Value: filepath.Join(dir, "*.lrc"), Quote: true},
		Quoted(filepath.Join(dir, "*.mp3")),
	)
}

// EmbedLyrics embeds the .lrc file next to track into track.
func EmbedLyrics(track string) Command {
	lrc := strings.TrimSuffix(track, filepath.Ext(track)) + ".lrc"
	return New(ProgramEyeD3,
		Arg{Prefix: "--add-lyrics=", Value: lrc, Quote: true},
		Quoted(track),
	)
}

// YouTube builds
//
//	yt-dlp <url> -x --audio-format mp3 --audio-quality <b>k <thumbFlags> <playlistFlag> -o "<dir>/%(title)s.%(ext)s"
func YouTube(form models.YouTubeForm) Command {
	return New(ProgramYTDLP,
		Flag(form.URL),
		Flag("-x"),
		Flag("--audio-format"),
		Flag("mp3"),
		Flag("--audio-quality"),
		Flag(bitrate(form.Bitrate).String()),
	).
		Flags(ThumbnailFlags(form.EmbedThumbnail, form.WriteAllThumbnails)...).
		Flags(PlaylistFlag(form.Type)).
		Append(Flag("-o"), Quoted(filepath.Join(form.OutputDir, "%(title)s.%(ext)s")))
}

// ThumbnailFlags returns the yt-dlp thumbnail flags for the two toggles.
func ThumbnailFlags(embed, writeAll bool) []string {
	var flags []string
	if writeAll {
		flags = append(flags, "--write-all-thumbnails")
	}
	if embed {
		flags = append(flags, "--embed-thumbnail")
	}
	return flags
}

// PlaylistFlag returns --yes-playlist for playlist downloads and --no-playlist otherwise.
func PlaylistFlag(typ models.DownloadType) string {
	if typ == models.DownloadPlaylist {
		return "--yes-playlist"
	}
	return "--no-playlist"
}

// Playlist is the display form of the m3u build:
//
//	find "<dir>" -name "*.mp3" > "<dir>/<name>.m3u"
//
// The playlist file itself is written natively, never by running this command.
func Playlist(name, dir string) Command {
	return New(ProgramFind,
		Quoted(dir),
		Flag("-name"),
		Quoted("*.mp3"),
		Flag(">"),
		Quoted(PlaylistPath(name, dir)),
	)
}

// PlaylistPath is the m3u file written for name in dir.
func PlaylistPath(name, dir string) string {
	return filepath.Join(dir, name+".m3u")
}

// AlbumArt is the directory-wide cover embedding step:
//
//	eyeD3 --add-image="<source>":FRONT_COVER "<dir>/*.mp3"
func AlbumArt(source, dir string) Command {
	return AlbumArtFor(source, filepath.Join(dir, "*.mp3"))
}

// AlbumArtFor embeds source as the front cover of one track.
func AlbumArtFor(source, track string) Command {
	return New(ProgramEyeD3,
		Arg{Prefix: "--add-image=", Value: source, Suffix: ":FRONT_COVER", Quote: true},
		Quoted(track),
	)
}

// Tags writes the non-empty fields of tags into file.
func Tags(tags models.TrackTags, file string) Command {
	cmd := New(ProgramEyeD3)
	for _, f := range []struct{ flag, value string }{
		{"--title", tags.Title},
		{"--artist", tags.Artist},
		{"--album", tags.Album},
	} {
		if f.value != "" {
			cmd = cmd.Append(Flag(f.flag), Quoted(f.value))
		}
	}
	if tags.Year > 0 {
		cmd = cmd.Append(Flag("--release-year"), Flag(strconv.Itoa(tags.Year)))
	}
	if tags.Genre != "" {
		cmd = cmd.Append(Flag("--genre"), Quoted(tags.Genre))
	}
	return cmd.Append(Quoted(file))
}

// MakeDir is the display form of folder creation.
func MakeDir(name, parent string) Command {
	return New(ProgramMkdir, Flag("-p"), Quoted(filepath.Join(parent, name)))
}

func bitrate(b models.Bitrate) models.Bitrate {
	if b == 0 {
		return models.DefaultBitrate
	}
	return b
}
