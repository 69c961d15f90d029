// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/audiovault/internal/models"
	"github.com/urfave/cli/v3"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   defaultConfigPath,
		},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "Override tracker mode (simulate, exec or relay)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

// sessionFlags are shared by every command that runs a tracked job.
func sessionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Print the synthesized commands without running them",
		},
		&cli.BoolFlag{
			Name:  "tui",
			Usage: "Monitor progress in the terminal UI",
		},
		&cli.StringFlag{
			Name:  "report",
			Usage: "Write the final session to a file (.txt, .md, .csv or .json)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the final session as JSON",
		},
	}
}

// downloadFlags are shared by the spotify and youtube download commands.
func downloadFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output directory (defaults to the saved output directory)",
		},
		&cli.StringFlag{
			Name:    "bitrate",
			Aliases: []string{"b"},
			Usage:   "Audio bitrate: 128, 192, 256 or 320",
			Value:   models.DefaultBitrate.String(),
		},
		&cli.StringFlag{
			Name:    "type",
			Aliases: []string{"t"},
			Usage:   "Download type: single or playlist",
			Value:   string(models.DownloadSingle),
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "Playlist name to write after a playlist download",
		},
	}, sessionFlags()...)
}

// serveCommand runs the execution relay.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the execution relay and static file server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config and PORT)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the UI in the default browser",
			},
		},
		Action: r.Serve,
	}
}

// spotifyCommand handles spotdl downloads
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify downloads with spotdl",
		Commands: []*cli.Command{
			{
				Name:  "download",
				Usage: "Download a track, album or playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "url"},
				},
				Flags: append(downloadFlags(),
					&cli.BoolFlag{
						Name:  "lyrics",
						Usage: "Generate .lrc lyrics files",
					},
					&cli.BoolFlag{
						Name:  "embed-lyrics",
						Usage: "Embed generated lyrics into the tracks",
					},
				),
				Action: r.SpotifyDownload,
			},
		},
	}
}

// youtubeCommand handles yt-dlp downloads
func youtubeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "youtube",
		Aliases: []string{"yt"},
		Usage:   "YouTube downloads with yt-dlp",
		Commands: []*cli.Command{
			{
				Name:  "download",
				Usage: "Download a video or playlist as mp3",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "url"},
				},
				Flags: append(downloadFlags(),
					&cli.BoolFlag{
						Name:  "embed-thumbnail",
						Usage: "Embed the thumbnail as cover art (defaults to the saved setting)",
					},
					&cli.BoolFlag{
						Name:  "write-all-thumbnails",
						Usage: "Keep every thumbnail next to the audio",
					},
				),
				Action: r.YouTubeDownload,
			},
		},
	}
}

// playlistCommand handles m3u playlists
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Write an m3u playlist of the mp3 files in a directory",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Directory to scan (defaults to the saved output directory)",
					},
					&cli.BoolFlag{
						Name:  "extended",
						Usage: "Write an #EXTM3U playlist",
					},
				}, sessionFlags()...),
				Action: r.PlaylistCreate,
			},
		},
	}
}

// metadataCommand handles eyeD3 tagging
func metadataCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "metadata",
		Aliases: []string{"meta"},
		Usage:   "Edit ID3 tags with eyeD3",
		Commands: []*cli.Command{
			{
				Name:  "tag",
				Usage: "Write tags to a file; without tag flags they come from \"Artist - Title\" in the filename",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "file"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Track title"},
					&cli.StringFlag{Name: "artist", Usage: "Track artist"},
					&cli.StringFlag{Name: "album", Usage: "Album name"},
					&cli.IntFlag{Name: "year", Usage: "Release year"},
					&cli.StringFlag{Name: "genre", Usage: "Genre"},
					&cli.BoolFlag{Name: "dry-run", Usage: "Print the eyeD3 command without running it"},
				},
				Action: r.MetadataTag,
			},
			{
				Name:  "cover",
				Usage: "Embed an image URL or file as front cover of every mp3 in a directory",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "source"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Directory of tracks (defaults to the saved output directory)",
					},
					&cli.BoolFlag{Name: "dry-run", Usage: "Print the eyeD3 command without running it"},
				},
				Action: r.MetadataCover,
			},
		},
	}
}

// folderCommand handles output folders
func folderCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "folder",
		Usage: "Folder operations",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a folder for downloads",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "parent",
						Aliases: []string{"p"},
						Usage:   "Parent directory (defaults to the saved output directory)",
					},
				},
				Action: r.FolderCreate,
			},
		},
	}
}

// settingsCommand handles stored preferences
func settingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change stored preferences",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print preferences and theme",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.SettingsShow,
			},
			{
				Name:  "set",
				Usage: "Set a preference: email, darkMode, outputDirectory or thumbnailsEnabled",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
					&cli.StringArg{Name: "value"},
				},
				Action: r.SettingsSet,
			},
			{
				Name:  "theme",
				Usage: "Print, set or toggle the UI theme",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "theme"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "toggle", Usage: "Switch between dark and light"},
				},
				Action: r.SettingsTheme,
			},
		},
	}
}

// setupCommand handles setup operations.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}
