package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./audiovault.db" {
			t.Errorf("expected database path ./audiovault.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Tracker.Mode != ModeExec {
			t.Errorf("expected tracker mode exec, got %s", config.Tracker.Mode)
		}

		if config.Mounts["youtube"] != "/youtube" {
			t.Errorf("expected youtube mount /youtube, got %s", config.Mounts["youtube"])
		}

		if len(config.Mounts) != 4 {
			t.Errorf("expected 4 mounts, got %d", len(config.Mounts))
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[server]
host = "127.0.0.1"
port = 9090
exec_timeout_seconds = 30

[tools]
ytdlp = "/usr/local/bin/yt-dlp"

[tracker]
mode = "simulate"

[mounts]
music = "/srv/music"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Addr() != "127.0.0.1:9090" {
			t.Errorf("expected addr 127.0.0.1:9090, got %s", config.Server.Addr())
		}

		if config.Server.ExecTimeout() != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", config.Server.ExecTimeout())
		}

		if config.Tools.Binaries()["yt-dlp"] != "/usr/local/bin/yt-dlp" {
			t.Errorf("expected yt-dlp override, got %s", config.Tools.Binaries()["yt-dlp"])
		}

		if config.Tools.Binaries()["spotdl"] != "spotdl" {
			t.Errorf("expected spotdl default to survive, got %s", config.Tools.Binaries()["spotdl"])
		}

		if config.Mounts["music"] != "/srv/music" {
			t.Errorf("expected extra mount, got %v", config.Mounts)
		}

		if config.Tracker.Mode != ModeSimulate {
			t.Errorf("expected simulate mode, got %s", config.Tracker.Mode)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		config := DefaultConfig()
		config.Tracker.Mode = "magic"
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}

		config = DefaultConfig()
		config.Server.Port = 0
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for port, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		config := DefaultConfig()
		env := map[string]string{"PORT": "3001"}
		if err := config.ApplyEnv(func(k string) string { return env[k] }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Server.Port != 3001 {
			t.Errorf("expected port 3001, got %d", config.Server.Port)
		}

		env["PORT"] = "eighty"
		if err := config.ApplyEnv(func(k string) string { return env[k] }); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}

		config = DefaultConfig()
		if err := config.ApplyEnv(func(string) string { return "" }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected default port to remain, got %d", config.Server.Port)
		}
	})
}
