package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/audiovault/internal/command"
	"github.com/desertthunder/audiovault/internal/models"
	"github.com/desertthunder/audiovault/internal/services"
	"github.com/desertthunder/audiovault/internal/shared"
	"github.com/desertthunder/audiovault/internal/tasks"
	tu "github.com/desertthunder/audiovault/internal/testing"
	"github.com/urfave/cli/v3"
)

// fakeExecutor records every argv and answers with a fixed result.
type fakeExecutor struct {
	mu    sync.Mutex
	calls [][]string
	lines []string
	err   error
}

func (f *fakeExecutor) Run(_ context.Context, argv []string, onLine func(string)) (*services.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, argv)
	f.mu.Unlock()

	for _, line := range f.lines {
		if onLine != nil {
			onLine(line)
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &services.Result{Output: strings.Join(f.lines, "\n")}, nil
}

func (f *fakeExecutor) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.calls...)
}

// testRunner builds a runner whose settings store and config path live in a temp dir.
type testRunner struct {
	*Runner
	dir    string
	out    *bytes.Buffer
	logs   *bytes.Buffer
	exec   *fakeExecutor
	config *shared.Config
}

func newTestRunner(t *testing.T, env map[string]string) *testRunner {
	t.Helper()

	dir := t.TempDir()
	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(dir, "audiovault.db")

	tr := &testRunner{dir: dir, out: &bytes.Buffer{}, logs: &bytes.Buffer{}, exec: &fakeExecutor{}, config: config}
	tr.Runner = NewRunner(RunnerOpts{
		Config:   config,
		Executor: tr.exec,
		Logger:   shared.NewLogger(tr.logs),
		Output:   tr.out,
		Getenv:   func(key string) string { return env[key] },
	})
	return tr
}

// run executes the CLI the way main does. The config flag points at dir/config.toml unless args set it.
func (tr *testRunner) run(args ...string) error {
	app := &cli.Command{
		Name:     "audiovault",
		Flags:    globalFlags(),
		Before:   tr.before,
		Commands: append(tr.register(), &cli.Command{Name: "noop", Action: func(context.Context, *cli.Command) error { return nil }}),
	}

	argv := []string{"audiovault"}
	if len(args) == 0 || args[0] != "--config" {
		argv = append(argv, "--config", filepath.Join(tr.dir, "config.toml"))
	}
	return app.Run(context.Background(), append(argv, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			executor := &fakeExecutor{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Executor:   executor,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.executor != executor {
				t.Error("expected executor to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if runner.getenv == nil {
				t.Error("expected getenv to be set")
			}
		})

		t.Run("builds executor and relay client from config", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if _, ok := runner.executor.(*services.Executor); !ok {
				t.Errorf("expected *services.Executor, got %T", runner.executor)
			}
			if _, ok := runner.relay.(*services.RelayClient); !ok {
				t.Errorf("expected *services.RelayClient, got %T", runner.relay)
			}
		})

		t.Run("without relay URL leaves relay unset", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Tracker.RelayURL = ""

			runner := NewRunner(RunnerOpts{Config: config})
			if runner.relay != nil {
				t.Errorf("expected no relay client, got %T", runner.relay)
			}
		})

		t.Run("rewiring keeps injected services", func(t *testing.T) {
			executor := &fakeExecutor{}
			runner := NewRunner(RunnerOpts{Executor: executor})

			runner.wireServices()
			if runner.executor != executor {
				t.Error("expected injected executor to survive rewiring")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("formats output", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("%s=%d\n", "a", 1); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "a=1\n" {
				t.Errorf("got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writePlain("x"); err == nil {
				t.Error("expected error from failing writer")
			}
			if err := runner.writePlainln("x"); err == nil {
				t.Error("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		names := make(map[string]bool)
		for _, c := range runner.register() {
			names[c.Name] = true
		}
		for _, want := range []string{"serve", "spotify", "youtube", "playlist", "metadata", "folder", "settings", "setup"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})
}

func TestBefore(t *testing.T) {
	t.Run("missing config file keeps defaults", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		if err := tr.run("noop"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tr.config.Server.Port != 8080 {
			t.Errorf("expected default port, got %d", tr.config.Server.Port)
		}
	})

	t.Run("loads config file", func(t *testing.T) {
		tr := newTestRunner(t, nil)
		path := filepath.Join(tr.dir, "custom.toml")
		data := "[server]\nport = 9001\n\n[tracker]\nmode = \"simulate\"\n"
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := tr.run("--config", path, "noop"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tr.Runner.config.Server.Port != 9001 {
			t.Errorf("expected port 9001, got %d", tr.Runner.config.Server.Port)
		}
		if tr.Runner.config.Tracker.Mode != shared.ModeSimulate {
			t.Errorf("expected simulate mode, got %s", tr.Runner.config.Tracker.Mode)
		}
		if tr.Runner.config.Tools.SpotDL != "spotdl" {
			t.Errorf("expected unset values to keep defaults, got %q", tr.Runner.config.Tools.SpotDL)
		}
	})

	t.Run("malformed config file fails", func(t *testing.T) {
		tr := newTestRunner(t, nil)
		path := filepath.Join(tr.dir, "bad.toml")
		if err := os.WriteFile(path, []byte("[server\nport ="), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := tr.run("--config", path, "noop"); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("PORT overrides config", func(t *testing.T) {
		tr := newTestRunner(t, map[string]string{"PORT": "9100"})

		if err := tr.run("noop"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tr.config.Server.Port != 9100 {
			t.Errorf("expected port 9100, got %d", tr.config.Server.Port)
		}
	})

	t.Run("invalid PORT fails", func(t *testing.T) {
		tr := newTestRunner(t, map[string]string{"PORT": "eighty"})

		if err := tr.run("noop"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("mode flag overrides config", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		if err := tr.run("--mode", "simulate", "noop"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tr.config.Tracker.Mode != shared.ModeSimulate {
			t.Errorf("expected simulate mode, got %s", tr.config.Tracker.Mode)
		}
	})

	t.Run("unknown mode fails", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		if err := tr.run("--mode", "teleport", "noop"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestDownloadCommands(t *testing.T) {
	t.Run("youtube dry run prints the command only", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		err := tr.run("youtube", "download", "--dry-run", "-o", "/music", "https://youtube.com/watch?v=abc")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := tr.out.String()
		if !strings.Contains(out, "yt-dlp") || !strings.Contains(out, "https://youtube.com/watch?v=abc") {
			t.Errorf("expected yt-dlp preview, got %s", out)
		}
		if !strings.Contains(out, "/music") {
			t.Errorf("expected output dir in preview, got %s", out)
		}
		if calls := tr.exec.Calls(); len(calls) != 0 {
			t.Errorf("expected no executions, got %v", calls)
		}
	})

	t.Run("spotify dry run prints spotdl command", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		err := tr.run("spotify", "download", "--dry-run", "--type", "playlist", "--name", "Mix", "https://open.spotify.com/playlist/xyz")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := tr.out.String()
		if !strings.Contains(out, "spotdl") || !strings.Contains(out, "https://open.spotify.com/playlist/xyz") {
			t.Errorf("expected spotdl preview, got %s", out)
		}
	})

	t.Run("spotify uses saved output directory", func(t *testing.T) {
		tr := newTestRunner(t, nil)
		if err := tr.run("settings", "set", "outputDirectory", "/srv/music"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tr.out.Reset()

		if err := tr.run("spotify", "download", "--dry-run", "https://open.spotify.com/track/1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(tr.out.String(), "/srv/music") {
			t.Errorf("expected saved directory in preview, got %s", tr.out.String())
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
			want error
		}{
			{"bitrate", []string{"spotify", "download", "--dry-run", "-b", "999", "https://open.spotify.com/track/1"}, shared.ErrInvalidArgument},
			{"type", []string{"youtube", "download", "--dry-run", "-t", "album", "https://youtube.com/watch?v=1"}, shared.ErrInvalidArgument},
			{"missing url", []string{"youtube", "download", "--dry-run"}, shared.ErrValidation},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tr := newTestRunner(t, nil)

				if err := tr.run(tt.args...); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("youtube download runs every stage", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		err := tr.run("youtube", "download", "-o", tr.dir, "https://youtube.com/watch?v=abc")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		calls := tr.exec.Calls()
		if len(calls) != 1 || calls[0][0] != "yt-dlp" {
			t.Fatalf("expected one yt-dlp run, got %v", calls)
		}

		out := tr.out.String()
		for _, want := range []string{"Download complete", "Thumbnails embedded successfully", "Session:"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output, got %s", want, out)
			}
		}
	})

	t.Run("failed download is an execution error", func(t *testing.T) {
		tr := newTestRunner(t, nil)
		tr.exec.err = errors.New("exit status 1")

		err := tr.run("youtube", "download", "-o", tr.dir, "https://youtube.com/watch?v=abc")
		if !errors.Is(err, shared.ErrExecution) {
			t.Fatalf("expected ErrExecution, got %v", err)
		}
		if !strings.Contains(tr.out.String(), "exit status 1") {
			t.Errorf("expected failure message in output, got %s", tr.out.String())
		}
	})

	t.Run("writes JSON session and report", func(t *testing.T) {
		tr := newTestRunner(t, nil)
		report := filepath.Join(tr.dir, "reports", "session.md")

		err := tr.run("youtube", "download", "--json", "--report", report, "-o", tr.dir, "https://youtube.com/watch?v=abc")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(tr.out.String(), `"currentCommand"`) {
			t.Errorf("expected JSON session, got %s", tr.out.String())
		}
		tu.AssertFileExists(t, report)
		if content := tu.MustReadFile(t, report); !strings.HasPrefix(content, "# Session") {
			t.Errorf("expected markdown report, got %s", content)
		}
	})
}

func TestPlaylistCreate(t *testing.T) {
	t.Run("writes m3u for tracks in dir", func(t *testing.T) {
		tr := newTestRunner(t, nil)
		tu.TouchFiles(t, tr.dir, "a.mp3", "b.mp3", "notes.txt")

		if err := tr.run("playlist", "create", "--dir", tr.dir, "mix"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		content := tu.MustReadFile(t, filepath.Join(tr.dir, "mix.m3u"))
		if !strings.Contains(content, "a.mp3") || !strings.Contains(content, "b.mp3") {
			t.Errorf("expected both tracks, got %s", content)
		}
		if strings.Contains(content, "notes.txt") {
			t.Errorf("expected only mp3 files, got %s", content)
		}
	})

	t.Run("extended playlist has header", func(t *testing.T) {
		tr := newTestRunner(t, nil)
		tu.TouchFiles(t, tr.dir, "Band - Song.mp3")

		if err := tr.run("playlist", "create", "--extended", "--dir", tr.dir, "mix"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		content := tu.MustReadFile(t, filepath.Join(tr.dir, "mix.m3u"))
		if !strings.HasPrefix(content, "#EXTM3U\n") || !strings.Contains(content, "#EXTINF:-1,Band - Song") {
			t.Errorf("expected extended playlist, got %s", content)
		}
	})

	t.Run("blank name fails validation", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		if err := tr.run("playlist", "create", "--dir", tr.dir, " "); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})
}

func TestMetadataCommands(t *testing.T) {
	t.Run("tag dry run derives tags from file name", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		if err := tr.run("metadata", "tag", "--dry-run", "--year", "2020", "Band - Song.mp3"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := `eyeD3 --title "Song" --artist "Band" --release-year 2020 "Band - Song.mp3"`
		if !strings.Contains(tr.out.String(), want) {
			t.Errorf("expected %s, got %s", want, tr.out.String())
		}
	})

	t.Run("tag flags win over file name", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		if err := tr.run("metadata", "tag", "--dry-run", "--genre", "Rock", "Band - Song.mp3"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := `eyeD3 --genre "Rock" "Band - Song.mp3"`
		if !strings.Contains(tr.out.String(), want) {
			t.Errorf("expected %s, got %s", want, tr.out.String())
		}
	})

	t.Run("tag in simulate mode runs nothing", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		if err := tr.run("--mode", "simulate", "metadata", "tag", "--title", "x", "a.mp3"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if calls := tr.exec.Calls(); len(calls) != 0 {
			t.Errorf("expected no executions, got %v", calls)
		}
	})

	t.Run("cover dry run prints eyeD3 command", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		if err := tr.run("metadata", "cover", "--dry-run", "--dir", "/audio/lp", "https://img.example/c.jpg"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(tr.out.String(), `--add-image="https://img.example/c.jpg":FRONT_COVER`) {
			t.Errorf("expected add-image flag, got %s", tr.out.String())
		}
	})

	t.Run("cover with missing local file fails", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		err := tr.run("metadata", "cover", "--dir", tr.dir, filepath.Join(tr.dir, "missing.jpg"))
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestFolderCreate(t *testing.T) {
	t.Run("creates folder under parent", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		if err := tr.run("folder", "create", "--parent", tr.dir, "new"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertDirExists(t, filepath.Join(tr.dir, "new"))
		if !strings.Contains(tr.out.String(), "mkdir -p") {
			t.Errorf("expected mkdir preview, got %s", tr.out.String())
		}
	})

	t.Run("rejects nested name", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		if err := tr.run("folder", "create", "--parent", tr.dir, "a/b"); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})
}

func TestSettingsCommands(t *testing.T) {
	t.Run("set then show", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		if err := tr.run("settings", "set", "thumbnailsEnabled", "false"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := tr.run("settings", "show", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := tr.out.String()
		if !strings.Contains(out, `"thumbnailsEnabled": false`) {
			t.Errorf("expected saved value, got %s", out)
		}
		if !strings.Contains(out, `"theme": "dark"`) {
			t.Errorf("expected default theme, got %s", out)
		}
	})

	t.Run("unknown key fails", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		if err := tr.run("settings", "set", "volume", "11"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("theme toggle and set", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		if err := tr.run("settings", "theme", "--toggle"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := strings.TrimSpace(tr.out.String()); got != "light" {
			t.Errorf("expected light after toggle, got %q", got)
		}

		tr.out.Reset()
		if err := tr.run("settings", "theme", "dark"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tr.out.Reset()
		if err := tr.run("settings", "theme"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := strings.TrimSpace(tr.out.String()); got != "dark" {
			t.Errorf("expected dark, got %q", got)
		}
	})

	t.Run("invalid theme fails", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		if err := tr.run("settings", "theme", "sepia"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

// setup database writes dir/config.toml, so later runs read a config path that stays missing.
func TestSetupCommands(t *testing.T) {
	t.Run("database creates config and applies migrations", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		if err := tr.run("setup", "database"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(tr.dir, "config.toml"))
		tu.AssertFileExists(t, tr.config.Database.Path)

		if err := tr.run("--config", filepath.Join(tr.dir, "none.toml"), "setup", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(tr.out.String(), "applied") {
			t.Errorf("expected applied migrations, got %s", tr.out.String())
		}
	})

	t.Run("rollback then status shows pending", func(t *testing.T) {
		tr := newTestRunner(t, nil)

		if err := tr.run("setup", "database"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := tr.run("--config", filepath.Join(tr.dir, "none.toml"), "setup", "rollback"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := tr.run("--config", filepath.Join(tr.dir, "none.toml"), "setup", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(tr.out.String(), "pending") {
			t.Errorf("expected pending migration, got %s", tr.out.String())
		}
	})
}

func TestCloseSession(t *testing.T) {
	ctx := context.Background()
	tr := newTestRunner(t, nil)
	tr.Runner.config.Tracker.Mode = shared.ModeExec

	updates := make(chan tasks.Update, updateBuffer)
	tracker, err := tr.newTracker(trackerOpts{updates: updates})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	form := models.NewYouTubeForm("https://www.youtube.com/watch?v=abc&list=PL123")
	form.Type = models.DownloadPlaylist
	if err := tracker.StartDownload(ctx, command.YouTube(form), models.DownloadPlaylist, nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := tracker.Wait(ctx, models.StageDownload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	closeSession(tracker, updates)

	last := make(map[models.Stage]models.ProcessInfo)
	for u := range updates {
		last[u.Stage] = u.Info
	}
	if last[models.StageDownload].Status != models.StatusComplete {
		t.Errorf("expected completed download, got %+v", last[models.StageDownload])
	}
	if got := last[models.StagePlaylist]; got.Status != models.StatusActive || got.Message != "Ready to create playlist" {
		t.Errorf("expected ready playlist stage after close, got %+v", got)
	}
}
