package tasks

import (
	"fmt"

	"github.com/desertthunder/audiovault/internal/models"
)

// Update is sent on every stage mutation.
//
// Used to drive the CLI printer or the TUI without polling.
type Update struct {
	SessionID string
	Stage     models.Stage
	Info      models.ProcessInfo
}

const (
	msgWaiting       = "Waiting for download to complete"
	msgReadyPlaylist = "Ready to create playlist"
	msgCancelled     = "Cancelled"
)

// stageMessages are the start, progress and completion texts of one kind of work.
type stageMessages struct {
	start    string
	progress string // formatted with the percentage
	complete string
}

var (
	downloadMessages = stageMessages{
		start:    "Starting download...",
		progress: "Downloading... (%d%%)",
		complete: "Download complete",
	}
	lyricsMessages = stageMessages{
		start:    "Starting lyrics embedding...",
		progress: "Embedding lyrics (%d%%)...",
		complete: "Lyrics embedding complete",
	}
	thumbnailMessages = stageMessages{
		start:    "Processing thumbnails...",
		progress: "Embedding thumbnails (%d%%)...",
		complete: "Thumbnails embedded successfully",
	}
	playlistMessages = stageMessages{
		start:    "Creating playlist...",
		progress: "Creating playlist (%d%%)...",
		complete: "Playlist created successfully",
	}
)

func startedInfo(m stageMessages) models.ProcessInfo {
	return models.ProcessInfo{Status: models.StatusActive, Progress: 0, Message: m.start}
}

func progressInfo(m stageMessages, pct int) models.ProcessInfo {
	return models.ProcessInfo{Status: models.StatusActive, Progress: pct, Message: fmt.Sprintf(m.progress, pct)}
}

func completedInfo(m stageMessages) models.ProcessInfo {
	return models.ProcessInfo{Status: models.StatusComplete, Progress: 100, Message: m.complete}
}

func failedInfo(progress int, err error) models.ProcessInfo {
	return models.ProcessInfo{Status: models.StatusError, Progress: progress, Message: err.Error()}
}

func cancelledInfo(progress int) models.ProcessInfo {
	return models.ProcessInfo{Status: models.StatusError, Progress: progress, Message: msgCancelled}
}

func readyPlaylistInfo() models.ProcessInfo {
	return models.ProcessInfo{Status: models.StatusActive, Progress: 0, Message: msgReadyPlaylist}
}
