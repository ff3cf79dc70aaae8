// midi_asset.go - MIDI asset loading and metadata

package midisynth

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sinshu/go-meltysynth/meltysynth"
	"gitlab.com/gomidi/midi/v2/smf"
)

var midiExtensions = []string{"mid", "midi"}

// MidiMetadata describes a MIDI file without rendering it.
type MidiMetadata struct {
	Title           string // first track name meta event, if any
	Format          uint16
	Tracks          int
	TicksPerQuarter int // 0 for SMPTE time division
	Duration        time.Duration
}

// MidiAudio is a loaded MIDI asset, rendered on demand.
type MidiAudio struct {
	Data     []byte
	Metadata MidiMetadata
}

// Decode renders the asset with the renderer's current soundfont.
func (a *MidiAudio) Decode(r *Renderer) (*AudioBuffer, error) {
	return r.RenderFile(a.Data)
}

// MidiAssetLoader reads MIDI assets by name from below a base directory.
type MidiAssetLoader struct {
	baseDir string
}

func NewMidiAssetLoader(baseDir string) *MidiAssetLoader {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		absBase = baseDir
	}
	return &MidiAssetLoader{baseDir: absBase}
}

// Extensions lists the file extensions the loader accepts, without dots.
func (l *MidiAssetLoader) Extensions() []string {
	return slices.Clone(midiExtensions)
}

// IsMidiAsset reports whether path has a MIDI file extension.
func IsMidiAsset(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return slices.Contains(midiExtensions, ext)
}

// Load reads the asset name relative to the base directory.
func (l *MidiAssetLoader) Load(name string) (*MidiAudio, error) {
	fullPath, ok := l.sanitizePath(name)
	if !ok {
		return nil, fmt.Errorf("%w: path outside asset directory: %s", ErrUnsupportedAsset, name)
	}
	if !IsMidiAsset(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, name)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, err
	}
	return loadMidiData(data)
}

// LoadReader reads an asset that does not live below the base directory.
func (l *MidiAssetLoader) LoadReader(r io.Reader) (*MidiAudio, error) {
	return LoadMidiAudio(r)
}

// LoadMidiAudio reads a MIDI asset from any reader.
func LoadMidiAudio(r io.Reader) (*MidiAudio, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return loadMidiData(data)
}

func loadMidiData(data []byte) (*MidiAudio, error) {
	meta, err := ReadMidiMetadata(data)
	if err != nil {
		return nil, err
	}
	return &MidiAudio{Data: data, Metadata: meta}, nil
}

func (l *MidiAssetLoader) sanitizePath(path string) (string, bool) {
	if filepath.IsAbs(path) || strings.Contains(path, "..") {
		return "", false
	}
	fullPath := filepath.Join(l.baseDir, path)
	rel, err := filepath.Rel(l.baseDir, fullPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return fullPath, true
}

// ReadMidiMetadata reads header and track information from SMF bytes.
func ReadMidiMetadata(data []byte) (MidiMetadata, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return MidiMetadata{}, fmt.Errorf("%w: %w", ErrMidiParse, err)
	}
	meta := MidiMetadata{
		Format: s.Format(),
		Tracks: int(s.NumTracks()),
	}
	if ticks, ok := s.TimeFormat.(smf.MetricTicks); ok {
		meta.TicksPerQuarter = int(ticks.Resolution())
	}

findTitle:
	for _, track := range s.Tracks {
		for _, ev := range track {
			var name string
			if ev.Message.GetMetaTrackName(&name) && name != "" {
				meta.Title = name
				break findTitle
			}
		}
	}

	midiFile, err := meltysynth.NewMidiFile(bytes.NewReader(data))
	if err != nil {
		return MidiMetadata{}, fmt.Errorf("%w: %w", ErrMidiParse, err)
	}
	meta.Duration = midiFile.GetLength()
	return meta, nil
}
