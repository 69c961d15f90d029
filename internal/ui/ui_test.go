package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/audiovault/internal/models"
	"github.com/desertthunder/audiovault/internal/shared"
	"github.com/desertthunder/audiovault/internal/tasks"
)

type fakeController struct {
	mu        sync.Mutex
	session   models.Session
	calls     []string
	err       error
	cancelled int
}

func (f *fakeController) Snapshot() models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *fakeController) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeController) EmbedLyrics(ctx context.Context, dir string) error {
	return f.record("lyrics:" + dir)
}

func (f *fakeController) EmbedThumbnails(ctx context.Context, dir string) error {
	return f.record("thumbnails:" + dir)
}

func (f *fakeController) CreatePlaylist(ctx context.Context, name, dir string) (bool, error) {
	err := f.record("playlist:" + name + ":" + dir)
	return err == nil, err
}

func (f *fakeController) CancelAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled++
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs the resulting command once, feeding its message back.
func press(t *testing.T, m *Model, k tea.KeyMsg) tea.Msg {
	t.Helper()

	_, cmd := m.Update(k)
	if cmd == nil {
		return nil
	}
	msg := cmd()
	m.Update(msg)
	return msg
}

func activeSession() models.Session {
	return models.Session{
		ID:             "abc",
		CurrentCommand: `yt-dlp https://youtu.be/x -x --audio-format mp3`,
		Download:       models.ProcessInfo{Status: models.StatusActive, Progress: 42, Message: "Downloading... (42%)"},
		Embed:          models.PendingProcess("Waiting for download to complete"),
		Playlist:       models.PendingProcess("Waiting for download to complete"),
	}
}

func TestModelView(t *testing.T) {
	ctrl := &fakeController{session: activeSession()}
	m := NewModel(context.Background(), ctrl, nil, ModelOpts{Title: "YouTube download"})

	view := m.View()
	for _, want := range []string{"YouTube download", "session abc", "$ yt-dlp", "download", " 42%", "Downloading... (42%)", "embed", "playlist", "Waiting for download to complete"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelUpdates(t *testing.T) {
	t.Run("StageUpdateRefreshesSnapshot", func(t *testing.T) {
		ctrl := &fakeController{session: activeSession()}
		updates := make(chan tasks.Update, 1)
		m := NewModel(context.Background(), ctrl, updates, ModelOpts{})

		ctrl.mu.Lock()
		ctrl.session.Download = models.ProcessInfo{Status: models.StatusComplete, Progress: 100, Message: "Download complete"}
		ctrl.mu.Unlock()

		updates <- tasks.Update{SessionID: "abc", Stage: models.StageDownload}
		msg := m.waitForUpdate()()
		_, cmd := m.Update(msg)

		if m.Session().Download.Status != models.StatusComplete {
			t.Errorf("expected refreshed download status, got %+v", m.Session().Download)
		}
		if cmd == nil {
			t.Error("expected to keep listening for updates")
		}
		if !strings.Contains(m.View(), "Download complete") {
			t.Errorf("view not refreshed:\n%s", m.View())
		}
	})

	t.Run("ClosedChannel", func(t *testing.T) {
		ctrl := &fakeController{session: activeSession()}
		updates := make(chan tasks.Update)
		close(updates)
		m := NewModel(context.Background(), ctrl, updates, ModelOpts{})

		msg := m.waitForUpdate()()
		if got := msg.(Msg).kind; got != MsgUpdatesClosed {
			t.Fatalf("expected MsgUpdatesClosed, got %v", got)
		}
		_, cmd := m.Update(msg)
		if cmd != nil {
			t.Error("expected no further listening after close")
		}
		if m.waitForUpdate() != nil {
			t.Error("expected nil wait command once the channel is gone")
		}
	})

	t.Run("Tick", func(t *testing.T) {
		ctrl := &fakeController{session: activeSession()}
		m := NewModel(context.Background(), ctrl, nil, ModelOpts{})

		ctrl.mu.Lock()
		ctrl.session.Download.Progress = 60
		ctrl.mu.Unlock()

		_, cmd := m.Update(tickMsg(time.Now()))
		if m.Session().Download.Progress != 60 {
			t.Errorf("expected tick to refresh progress, got %d", m.Session().Download.Progress)
		}
		if cmd == nil {
			t.Error("expected next tick to be scheduled")
		}
	})
}

func TestModelKeys(t *testing.T) {
	ctx := context.Background()

	t.Run("EmbedLyrics", func(t *testing.T) {
		ctrl := &fakeController{session: activeSession()}
		m := NewModel(ctx, ctrl, nil, ModelOpts{Embed: EmbedLyrics, Dir: "/audio"})

		press(t, m, runes("e"))

		if len(ctrl.calls) != 1 || ctrl.calls[0] != "lyrics:/audio" {
			t.Errorf("unexpected calls %v", ctrl.calls)
		}
		if !strings.Contains(m.View(), "lyrics embedding started") {
			t.Errorf("expected status in view:\n%s", m.View())
		}
	})

	t.Run("EmbedThumbnails", func(t *testing.T) {
		ctrl := &fakeController{session: activeSession()}
		m := NewModel(ctx, ctrl, nil, ModelOpts{Embed: EmbedThumbnails, Dir: "/youtube"})

		press(t, m, runes("e"))

		if len(ctrl.calls) != 1 || ctrl.calls[0] != "thumbnails:/youtube" {
			t.Errorf("unexpected calls %v", ctrl.calls)
		}
	})

	t.Run("EmbedNone", func(t *testing.T) {
		ctrl := &fakeController{session: activeSession()}
		m := NewModel(ctx, ctrl, nil, ModelOpts{})

		press(t, m, runes("e"))

		if len(ctrl.calls) != 0 {
			t.Errorf("expected no calls, got %v", ctrl.calls)
		}
		if !errors.Is(m.err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", m.err)
		}
	})

	t.Run("EmbedNotReady", func(t *testing.T) {
		ctrl := &fakeController{session: activeSession(), err: shared.ErrStageNotReady}
		m := NewModel(ctx, ctrl, nil, ModelOpts{Embed: EmbedLyrics, Dir: "/audio"})

		press(t, m, runes("e"))

		if !strings.Contains(m.View(), "Error: "+shared.ErrStageNotReady.Error()) {
			t.Errorf("expected error in view:\n%s", m.View())
		}
	})

	t.Run("Playlist", func(t *testing.T) {
		ctrl := &fakeController{session: activeSession()}
		m := NewModel(ctx, ctrl, nil, ModelOpts{PlaylistName: "Road Trip", Dir: "/audio"})

		press(t, m, runes("p"))

		if len(ctrl.calls) != 1 || ctrl.calls[0] != "playlist:Road Trip:/audio" {
			t.Errorf("unexpected calls %v", ctrl.calls)
		}
	})

	t.Run("Cancel", func(t *testing.T) {
		ctrl := &fakeController{session: activeSession()}
		m := NewModel(ctx, ctrl, nil, ModelOpts{})

		press(t, m, runes("c"))

		if ctrl.cancelled != 1 {
			t.Errorf("expected CancelAll once, got %d", ctrl.cancelled)
		}
	})

	t.Run("ThemeToggle", func(t *testing.T) {
		ctrl := &fakeController{session: activeSession()}
		var got []models.Theme
		m := NewModel(ctx, ctrl, nil, ModelOpts{OnThemeChange: func(th models.Theme) { got = append(got, th) }})

		press(t, m, runes("t"))
		press(t, m, runes("t"))

		if len(got) != 2 || got[0] != models.ThemeLight || got[1] != models.ThemeDark {
			t.Errorf("unexpected theme changes %v", got)
		}
		if m.palette != darkPalette {
			t.Error("expected dark palette after two toggles")
		}
	})

	t.Run("Quit", func(t *testing.T) {
		ctrl := &fakeController{session: activeSession()}
		m := NewModel(ctx, ctrl, nil, ModelOpts{})

		_, cmd := m.Update(runes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})

	t.Run("HelpToggle", func(t *testing.T) {
		ctrl := &fakeController{session: activeSession()}
		m := NewModel(ctx, ctrl, nil, ModelOpts{})

		press(t, m, runes("?"))
		if !m.help.ShowAll {
			t.Error("expected full help")
		}
		if !strings.Contains(m.View(), "theme") {
			t.Errorf("expected full help to list theme key:\n%s", m.View())
		}
	})
}

func TestPaletteFor(t *testing.T) {
	if PaletteFor(models.ThemeLight) != lightPalette {
		t.Error("expected light palette")
	}
	if PaletteFor(models.ThemeDark) != darkPalette {
		t.Error("expected dark palette")
	}
	if got := darkPalette.Status(""); !strings.Contains(got, "pending") {
		t.Errorf("expected zero status rendered as pending, got %q", got)
	}
}
