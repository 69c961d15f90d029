package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/audiovault/internal/models"
	"github.com/desertthunder/audiovault/internal/shared"
	"github.com/desertthunder/audiovault/internal/tasks"
)

const (
	refreshInterval = 250 * time.Millisecond
	defaultBarWidth = 30
	maxBarWidth     = 60
)

var _ Painter = (*Palette)(nil)

// EmbedKind selects what the embed key starts.
type EmbedKind int

const (
	EmbedNone EmbedKind = iota
	EmbedLyrics
	EmbedThumbnails
)

// Controller is the part of [tasks.Tracker] the monitor drives.
type Controller interface {
	Snapshot() models.Session
	EmbedLyrics(ctx context.Context, dir string) error
	EmbedThumbnails(ctx context.Context, dir string) error
	CreatePlaylist(ctx context.Context, name, dir string) (bool, error)
	CancelAll()
}

// ModelOpts configures the actions offered by a [Model].
type ModelOpts struct {
	Title        string
	Embed        EmbedKind
	Dir          string
	PlaylistName string
	Theme        models.Theme
	// OnThemeChange is called with the new theme after the theme key is pressed.
	OnThemeChange func(models.Theme)
}

// Model is the stage monitor.
type Model struct {
	ctx     context.Context
	ctrl    Controller
	updates <-chan tasks.Update
	opts    ModelOpts

	session models.Session
	bar     progress.Model
	help    help.Model
	keys    keyMap
	palette *Palette
	status  string
	err     error
}

// NewModel creates a monitor over ctrl that listens on updates.
func NewModel(ctx context.Context, ctrl Controller, updates <-chan tasks.Update, opts ModelOpts) *Model {
	if opts.Theme == "" {
		opts.Theme = models.ThemeDark
	}
	if opts.Title == "" {
		opts.Title = "audiovault"
	}

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = defaultBarWidth

	return &Model{
		ctx:     ctx,
		ctrl:    ctrl,
		updates: updates,
		opts:    opts,
		session: ctrl.Snapshot(),
		bar:     bar,
		help:    help.New(),
		keys:    newKeyMap(),
		palette: PaletteFor(opts.Theme),
	}
}

// Init starts listening for stage updates and schedules the first refresh.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForUpdate(), m.tick())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-50, 10), maxBarWidth)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		switch msg.kind {
		case MsgStageUpdate:
			m.session = m.ctrl.Snapshot()
			return m, m.waitForUpdate()
		case MsgUpdatesClosed:
			m.updates = nil
			m.session = m.ctrl.Snapshot()
			return m, nil
		case MsgTick:
			m.session = m.ctrl.Snapshot()
			return m, m.tick()
		case MsgActionDone:
			data := msg.data.(struct {
				action string
				err    error
			})
			m.err = data.err
			if data.err == nil {
				m.status = data.action + " started"
			} else {
				m.status = ""
			}
			m.session = m.ctrl.Snapshot()
			return m, nil
		}
	}

	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.embed):
		return m, m.startEmbed()
	case key.Matches(msg, m.keys.playlist):
		return m, m.createPlaylist()
	case key.Matches(msg, m.keys.cancel):
		m.ctrl.CancelAll()
		m.session = m.ctrl.Snapshot()
		m.status = "cancelled"
		m.err = nil
	case key.Matches(msg, m.keys.theme):
		m.opts.Theme = m.opts.Theme.Toggle()
		m.palette = PaletteFor(m.opts.Theme)
		if m.opts.OnThemeChange != nil {
			m.opts.OnThemeChange(m.opts.Theme)
		}
	}
	return m, nil
}

func (m *Model) startEmbed() tea.Cmd {
	kind, dir := m.opts.Embed, m.opts.Dir
	return func() tea.Msg {
		switch kind {
		case EmbedLyrics:
			return actionDoneMsg("lyrics embedding", m.ctrl.EmbedLyrics(m.ctx, dir))
		case EmbedThumbnails:
			return actionDoneMsg("thumbnail embedding", m.ctrl.EmbedThumbnails(m.ctx, dir))
		default:
			return actionDoneMsg("embedding", fmt.Errorf("%w: nothing to embed for this download", shared.ErrInvalidArgument))
		}
	}
}

func (m *Model) createPlaylist() tea.Cmd {
	name, dir := m.opts.PlaylistName, m.opts.Dir
	return func() tea.Msg {
		_, err := m.ctrl.CreatePlaylist(m.ctx, name, dir)
		return actionDoneMsg("playlist", err)
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	updates := m.updates
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return updatesClosedMsg()
		}
		return stageUpdateMsg(update)
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Session returns the state last rendered.
func (m *Model) Session() models.Session {
	return m.session
}

// View renders the header, one row per stage and the help line.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.palette.title.Render(m.opts.Title))
	b.WriteString("\n")

	if m.session.ID != "" {
		b.WriteString(m.palette.muted.Render("session " + m.session.ID))
		b.WriteString("\n")
	}
	if m.session.CurrentCommand != "" {
		b.WriteString("$ " + m.session.CurrentCommand + "\n")
	}
	b.WriteString("\n")

	for _, stage := range models.Stages {
		b.WriteString(m.renderStage(stage, m.session.Stage(stage)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(m.palette.err.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	case m.status != "":
		b.WriteString(m.palette.help.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderStage(stage models.Stage, info models.ProcessInfo) string {
	return fmt.Sprintf("%-9s %s %3d%%  %-18s %s",
		stage,
		m.bar.ViewAs(float64(info.Progress)/100),
		info.Progress,
		m.palette.Status(info.Status),
		info.Message,
	)
}

// Run starts the monitor program and blocks until the user quits.
//
// The final session is returned so callers can print or save it.
func Run(ctx context.Context, ctrl Controller, updates <-chan tasks.Update, opts ModelOpts) (models.Session, error) {
	model := NewModel(ctx, ctrl, updates, opts)
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return model.Session(), fmt.Errorf("failed to run TUI: %w", err)
	}
	if fm, ok := final.(*Model); ok {
		return fm.ctrl.Snapshot(), nil
	}
	return model.Session(), nil
}
