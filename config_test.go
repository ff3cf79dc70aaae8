package midisynth

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Backend != "none" || cfg.Jobs != runtime.NumCPU() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	want := &Config{SoundFont: "/sf/gm.sf2", Backend: "oto", OutputDir: "/tmp/out", Jobs: 3}
	if err := want.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if *got != *want {
		t.Fatalf("LoadConfig = %+v, want %+v", got, want)
	}
	if got.SinkBackend() != SINK_BACKEND_OTO {
		t.Fatalf("SinkBackend() = %d, want SINK_BACKEND_OTO", got.SinkBackend())
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"soundFont": "a.sf2"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SoundFont != "a.sf2" || cfg.Backend != "none" || cfg.Jobs < 1 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"jobs": "many"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		cfg  Config
		want error
	}{
		{Config{Backend: "none", Jobs: 1}, nil},
		{Config{Backend: "", Jobs: 1}, nil},
		{Config{Backend: "EBITEN", Jobs: 4}, nil},
		{Config{Backend: "pulse", Jobs: 1}, ErrUnknownBackend},
		{Config{Backend: "oto", Jobs: 0}, ErrInvalidConfig},
	}
	for _, c := range cases {
		err := c.cfg.Validate()
		if c.want == nil {
			if err != nil {
				t.Fatalf("Validate(%+v) = %v, want nil", c.cfg, err)
			}
			continue
		}
		if !errors.Is(err, c.want) || !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("Validate(%+v) = %v, want %v", c.cfg, err, c.want)
		}
	}
}
