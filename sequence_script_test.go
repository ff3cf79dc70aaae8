package midisynth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSequenceScript(t *testing.T) {
	notes, err := LoadSequenceScript(`
		note{key=60, duration=0.5}
		rest(0.25)
		for i, k in ipairs({"E4", "G4"}) do
			note{key=k, velocity=80 + i, channel=1, preset=4, bank=2, duration=0.125}
		end
	`)
	if err != nil {
		t.Fatalf("LoadSequenceScript: %v", err)
	}
	if len(notes) != 4 {
		t.Fatalf("len(notes) = %d, want 4", len(notes))
	}

	want := []MidiNote{
		{Channel: 0, Preset: 0, Bank: 0, Key: 60, Velocity: 100, Duration: 500 * time.Millisecond},
		{Channel: 0, Preset: 0, Bank: 0, Key: 60, Velocity: 0, Duration: 250 * time.Millisecond},
		{Channel: 1, Preset: 4, Bank: 2, Key: 64, Velocity: 81, Duration: 125 * time.Millisecond},
		{Channel: 1, Preset: 4, Bank: 2, Key: 67, Velocity: 82, Duration: 125 * time.Millisecond},
	}
	for i := range want {
		if notes[i] != want[i] {
			t.Fatalf("notes[%d] = %+v, want %+v", i, notes[i], want[i])
		}
	}
}

func TestLoadSequenceScriptDefaults(t *testing.T) {
	notes, err := LoadSequenceScript(`note{}`)
	if err != nil {
		t.Fatalf("LoadSequenceScript: %v", err)
	}
	if len(notes) != 1 || notes[0] != DefaultMidiNote() {
		t.Fatalf("notes = %+v, want [DefaultMidiNote()]", notes)
	}
}

func TestLoadSequenceScriptErrors(t *testing.T) {
	scripts := map[string]string{
		"syntax":            `note{key=60`,
		"negative duration": `note{duration=-1}`,
		"bad key name":      `note{key="H2"}`,
		"key type":          `note{key=true}`,
		"velocity type":     `note{velocity="loud"}`,
		"no file access":    `dofile("/etc/passwd")`,
		"no os library":     `os.exit(1)`,
		"runtime error":     `error("boom")`,
	}
	for name, src := range scripts {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadSequenceScript(src); !errors.Is(err, ErrSequenceScript) {
				t.Fatalf("err = %v, want ErrSequenceScript", err)
			}
		})
	}
}

func TestLoadSequenceScriptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tune.lua")
	if err := os.WriteFile(path, []byte("note{key='C5', duration=1}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	notes, err := LoadSequenceScriptFile(path)
	if err != nil {
		t.Fatalf("LoadSequenceScriptFile: %v", err)
	}
	if len(notes) != 1 || notes[0].Key != 72 || notes[0].Duration != time.Second {
		t.Fatalf("notes = %+v", notes)
	}

	if _, err := LoadSequenceScriptFile(filepath.Join(t.TempDir(), "missing.lua")); !errors.Is(err, ErrSequenceScript) {
		t.Fatalf("missing file err = %v, want ErrSequenceScript", err)
	}
}

func TestParseNoteName(t *testing.T) {
	cases := map[string]int32{
		"C4":  60,
		"c4":  60,
		"A4":  69,
		"F#3": 54,
		"Bb2": 46,
		"C-1": 0,
		"G9":  127,
	}
	for name, want := range cases {
		got, err := parseNoteName(name)
		if err != nil || got != want {
			t.Fatalf("parseNoteName(%q) = %d, %v, want %d", name, got, err, want)
		}
	}
	for _, name := range []string{"", "H4", "C", "G#9", "Cx4"} {
		if _, err := parseNoteName(name); err == nil {
			t.Fatalf("parseNoteName(%q) succeeded", name)
		}
	}
}
