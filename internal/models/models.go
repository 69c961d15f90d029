// package models defines the job, form and settings types for audiovault
package models

import (
	"time"
)

// Status is the lifecycle state of one stage.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// Normalize maps the zero value to [StatusPending].
func (s Status) Normalize() Status {
	if s == "" {
		return StatusPending
	}
	return s
}

// IsFinished reports whether the stage reached a terminal state.
func (s Status) IsFinished() bool {
	return s == StatusComplete || s == StatusError
}

// Stage identifies one of the three job stages.
type Stage int

const (
	StageDownload Stage = iota
	StageEmbed
	StagePlaylist
)

// Stages lists every stage in display order.
var Stages = []Stage{StageDownload, StageEmbed, StagePlaylist}

func (s Stage) String() string {
	switch s {
	case StageDownload:
		return "download"
	case StageEmbed:
		return "embed"
	case StagePlaylist:
		return "playlist"
	default:
		return "unknown"
	}
}

// ProcessInfo is the observable state of one stage.
//
// Progress stays within 0..100 and equals 100 only when Status is complete.
type ProcessInfo struct {
	Status   Status `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// PendingProcess returns a pending stage at 0% with msg.
func PendingProcess(msg string) ProcessInfo {
	return ProcessInfo{Status: StatusPending, Progress: 0, Message: msg}
}

// ClampProgress bounds p to 0..100.
func ClampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// Session is a copy of one job's state: one ProcessInfo per stage plus the
// command most recently started.
type Session struct {
	ID             string       `json:"id"`
	Download       ProcessInfo  `json:"download"`
	Embed          ProcessInfo  `json:"embed"`
	Playlist       ProcessInfo  `json:"playlist"`
	CurrentCommand string       `json:"currentCommand"`
	Type           DownloadType `json:"type"`
	StartedAt      time.Time    `json:"startedAt"`
}

// Stage returns the ProcessInfo for s.
func (s Session) Stage(stage Stage) ProcessInfo {
	switch stage {
	case StageEmbed:
		return s.Embed
	case StagePlaylist:
		return s.Playlist
	default:
		return s.Download
	}
}

// SetStage replaces the ProcessInfo for stage.
func (s *Session) SetStage(stage Stage, info ProcessInfo) {
	switch stage {
	case StageEmbed:
		s.Embed = info
	case StagePlaylist:
		s.Playlist = info
	default:
		s.Download = info
	}
}
