package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/audiovault/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStageUpdate MsgKind = iota
	MsgUpdatesClosed
	MsgActionDone
	MsgTick
)

// stageUpdateMsg is the constructor for [MsgStageUpdate]
func stageUpdateMsg(update tasks.Update) Msg {
	return Msg{kind: MsgStageUpdate, data: update}
}

// updatesClosedMsg is the constructor for [MsgUpdatesClosed]
func updatesClosedMsg() Msg {
	return Msg{kind: MsgUpdatesClosed}
}

// actionDoneMsg is the constructor for [MsgActionDone]
func actionDoneMsg(action string, err error) Msg {
	return Msg{
		kind: MsgActionDone,
		data: struct {
			action string
			err    error
		}{action, err},
	}
}

// tickMsg is the constructor for [MsgTick]
func tickMsg(at time.Time) Msg {
	return Msg{kind: MsgTick, data: at}
}
