package models

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/audiovault/internal/shared"
)

const (
	DefaultSpotifyDir = "/audio"
	DefaultYouTubeDir = "/youtube"
)

// DownloadType selects single-item or playlist handling.
type DownloadType string

const (
	DownloadSingle   DownloadType = "single"
	DownloadPlaylist DownloadType = "playlist"
)

// ParseDownloadType parses "single" or "playlist".
func ParseDownloadType(s string) (DownloadType, error) {
	switch DownloadType(strings.ToLower(strings.TrimSpace(s))) {
	case DownloadSingle:
		return DownloadSingle, nil
	case DownloadPlaylist:
		return DownloadPlaylist, nil
	default:
		return "", fmt.Errorf("%w: download type %q", shared.ErrInvalidArgument, s)
	}
}

// Bitrate is an audio bitrate in kbps.
type Bitrate int

const (
	Bitrate128 Bitrate = 128
	Bitrate192 Bitrate = 192
	Bitrate256 Bitrate = 256
	Bitrate320 Bitrate = 320

	DefaultBitrate = Bitrate320
)

// String renders the bitrate in the tool flag form, e.g. "320k".
func (b Bitrate) String() string {
	return strconv.Itoa(int(b)) + "k"
}

// ParseBitrate accepts "320" or "320k". An empty string yields [DefaultBitrate].
func ParseBitrate(s string) (Bitrate, error) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "k")
	if s == "" {
		return DefaultBitrate, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: bitrate %q", shared.ErrInvalidArgument, s)
	}

	switch b := Bitrate(n); b {
	case Bitrate128, Bitrate192, Bitrate256, Bitrate320:
		return b, nil
	default:
		return 0, fmt.Errorf("%w: unsupported bitrate %d", shared.ErrInvalidArgument, n)
	}
}

// SpotifyForm holds the options for a spotdl download.
type SpotifyForm struct {
	URL            string
	OutputDir      string
	Bitrate        Bitrate
	GenerateLyrics bool
	EmbedLyrics    bool
	Type           DownloadType
}

// NewSpotifyForm returns a form with the default directory, bitrate and type.
func NewSpotifyForm(url string) SpotifyForm {
	return SpotifyForm{URL: url, OutputDir: DefaultSpotifyDir, Bitrate: DefaultBitrate, Type: DownloadSingle}
}

func (f SpotifyForm) Validate() error {
	if strings.TrimSpace(f.URL) == "" {
		return fmt.Errorf("%w: url required", shared.ErrValidation)
	}
	if f.OutputDir == "" {
		return fmt.Errorf("%w: output directory required", shared.ErrValidation)
	}
	return nil
}

// YouTubeForm holds the options for a yt-dlp audio extraction.
type YouTubeForm struct {
	URL                string
	OutputDir          string
	Bitrate            Bitrate
	EmbedThumbnail     bool
	WriteAllThumbnails bool
	Type               DownloadType
}

// NewYouTubeForm returns a form with the default directory, bitrate and type.
func NewYouTubeForm(url string) YouTubeForm {
	return YouTubeForm{URL: url, OutputDir: DefaultYouTubeDir, Bitrate: DefaultBitrate, Type: DownloadSingle, EmbedThumbnail: true}
}

func (f YouTubeForm) Validate() error {
	if strings.TrimSpace(f.URL) == "" {
		return fmt.Errorf("%w: url required", shared.ErrValidation)
	}
	if f.OutputDir == "" {
		return fmt.Errorf("%w: output directory required", shared.ErrValidation)
	}
	return nil
}

// CoverForm selects an image to embed as front cover into every mp3 in Dir.
type CoverForm struct {
	Source string
	Dir    string
}

func (f CoverForm) Validate() error {
	if strings.TrimSpace(f.Source) == "" {
		return fmt.Errorf("%w: image URL or file required", shared.ErrValidation)
	}
	return nil
}

// FolderForm names a folder to create under Parent.
type FolderForm struct {
	Name   string
	Parent string
}

func (f FolderForm) Validate() error {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return fmt.Errorf("%w: folder name required", shared.ErrValidation)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: folder name %q must be a single path element", shared.ErrValidation, name)
	}
	return nil
}

// Path returns the folder's full path.
func (f FolderForm) Path() string {
	return filepath.Join(f.Parent, strings.TrimSpace(f.Name))
}

// TrackTags are the editable ID3 fields of one track.
type TrackTags struct {
	Title  string
	Artist string
	Album  string
	Year   int
	Genre  string
}

// IsEmpty reports whether no field is set.
func (t TrackTags) IsEmpty() bool {
	return t == TrackTags{}
}

// TagsFromFilename derives artist and title from "Artist - Title.ext".
// Names without the separator become the title. year is used as the release year.
func TagsFromFilename(name string, year int) TrackTags {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	tags := TrackTags{Year: year}

	if artist, title, ok := strings.Cut(base, " - "); ok {
		tags.Artist = strings.TrimSpace(artist)
		tags.Title = strings.TrimSpace(title)
	} else {
		tags.Title = strings.TrimSpace(base)
	}
	return tags
}
