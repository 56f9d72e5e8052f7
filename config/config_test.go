package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "motionfm.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MOTIONFM_CONFIG", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}

	if cfg.MusicDir != "/home/pi/music" || cfg.MusicFolder != "lofi" {
		t.Errorf("library = %s/%s, want /home/pi/music/lofi", cfg.MusicDir, cfg.MusicFolder)
	}
	if cfg.SelectionMode != ModeFolder || cfg.Sensor != SensorGPIO || cfg.Player != PlayerVLC {
		t.Errorf("backends = %s/%s/%s", cfg.SelectionMode, cfg.Sensor, cfg.Player)
	}
	if cfg.GPIOPin != "GPIO4" {
		t.Errorf("GPIOPin = %s, want GPIO4", cfg.GPIOPin)
	}
	if cfg.PlayGrace != 2*time.Second || cfg.PlayPoll != 2*time.Second {
		t.Errorf("timings = %v/%v, want 2s/2s", cfg.PlayGrace, cfg.PlayPoll)
	}
	if diff := cmp.Diff([]string{HistoryNone}, cfg.History); diff != "" {
		t.Errorf("History mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	path := writeFile(t, `
MUSIC_DIR = "/srv/music"
MUSIC_FOLDER = "ambient"
SELECTION_MODE = "shuffle"
RANDOM_SEED = 42
PLAY_GRACE = "1500ms"
PLAY_POLL = 3
HISTORY = ["redis", "mysql"]
MINIO_USE_SSL = true
`)
	t.Setenv("MUSIC_FOLDER", "jazz")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MusicDir != "/srv/music" {
		t.Errorf("MusicDir = %s, want the file value", cfg.MusicDir)
	}
	if cfg.MusicFolder != "jazz" {
		t.Errorf("MusicFolder = %s, want the environment to win", cfg.MusicFolder)
	}
	if cfg.SelectionMode != ModeShuffle {
		t.Errorf("SelectionMode = %s", cfg.SelectionMode)
	}
	if cfg.RandomSeed != 42 || cfg.Seed() != 42 {
		t.Errorf("RandomSeed = %d, Seed() = %d, want 42", cfg.RandomSeed, cfg.Seed())
	}
	if cfg.PlayGrace != 1500*time.Millisecond {
		t.Errorf("PlayGrace = %v, want 1.5s", cfg.PlayGrace)
	}
	if cfg.PlayPoll != 3*time.Second {
		t.Errorf("PlayPoll = %v, want 3s from a bare number", cfg.PlayPoll)
	}
	if !cfg.HistoryEnabled(HistoryRedis) || !cfg.HistoryEnabled(HistoryMySQL) || cfg.HistoryEnabled(HistoryNone) {
		t.Errorf("History = %v", cfg.History)
	}
	if !cfg.MinioUseSSL {
		t.Error("MinioUseSSL should be read from the file")
	}
}

func TestLoadConfigFromEnvironmentPath(t *testing.T) {
	path := writeFile(t, `PLAYER = "mpd"`)
	t.Setenv("MOTIONFM_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Player != PlayerMPD {
		t.Errorf("Player = %s, want mpd", cfg.Player)
	}
}

func TestLoadBadFile(t *testing.T) {
	path := writeFile(t, `MUSIC_DIR = `)
	if _, err := Load(path); err == nil {
		t.Error("expected a decode error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MOTIONFM_CONFIG", "")
	t.Setenv("PLAY_GRACE", "soon")
	t.Setenv("REDIS_DB", "two")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PlayGrace != 2*time.Second {
		t.Errorf("PlayGrace = %v, want the default", cfg.PlayGrace)
	}
	if cfg.RedisDB != 0 {
		t.Errorf("RedisDB = %d, want the default", cfg.RedisDB)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			MusicDir:      "/music",
			MusicFolder:   "lofi",
			SelectionMode: ModeFolder,
			Sensor:        SensorGPIO,
			Player:        PlayerVLC,
			History:       []string{HistoryNone},
			SensorPoll:    time.Second,
			PlayGrace:     2 * time.Second,
			PlayPoll:      2 * time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"library mode needs no folder", func(c *Config) { c.SelectionMode = ModeLibrary; c.MusicFolder = "" }, false},
		{"folder mode needs a folder", func(c *Config) { c.MusicFolder = "" }, true},
		{"unknown mode", func(c *Config) { c.SelectionMode = "radio" }, true},
		{"unknown sensor", func(c *Config) { c.Sensor = "camera" }, true},
		{"unknown player", func(c *Config) { c.Player = "winamp" }, true},
		{"unknown history", func(c *Config) { c.History = []string{"redis", "kafka"} }, true},
		{"empty music dir", func(c *Config) { c.MusicDir = "" }, true},
		{"zero grace", func(c *Config) { c.PlayGrace = 0 }, true},
		{"negative poll", func(c *Config) { c.PlayPoll = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSeedFallsBackToClock(t *testing.T) {
	c := &Config{}
	before := time.Now().Unix()
	if got := c.Seed(); got < before || got > time.Now().Unix() {
		t.Errorf("Seed() = %d, want the current unix second", got)
	}
}
