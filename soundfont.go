// soundfont.go - Soundfont loading and change requests

package midisynth

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sinshu/go-meltysynth/meltysynth"
)

// LoadSoundFont parses a soundfont from r.
func LoadSoundFont(r io.Reader) (*meltysynth.SoundFont, error) {
	sf, err := meltysynth.NewSoundFont(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSoundFontParse, err)
	}
	return sf, nil
}

// LoadSoundFontFile reads and parses the soundfont at path.
func LoadSoundFontFile(path string) (*meltysynth.SoundFont, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSoundFontSource, path, err)
	}
	return LoadSoundFont(bytes.NewReader(data))
}

// SoundFontChange is a request to swap the active soundfont.
// It is one of SoundFontBytes, SoundFontPath or SoundFontDefault.
type SoundFontChange interface {
	// load returns the soundfont to install. def is the store's default.
	load(def *meltysynth.SoundFont) (*meltysynth.SoundFont, error)
	String() string
}

// SoundFontBytes replaces the soundfont with one parsed from in-memory data.
type SoundFontBytes []byte

// SoundFontPath replaces the soundfont with the file at the given path.
type SoundFontPath string

// SoundFontDefault reverts to the soundfont the store was initialized with.
type SoundFontDefault struct{}

func (b SoundFontBytes) load(*meltysynth.SoundFont) (*meltysynth.SoundFont, error) {
	return LoadSoundFont(bytes.NewReader(b))
}

func (b SoundFontBytes) String() string {
	return fmt.Sprintf("bytes(%d)", len(b))
}

func (p SoundFontPath) load(*meltysynth.SoundFont) (*meltysynth.SoundFont, error) {
	return LoadSoundFontFile(string(p))
}

func (p SoundFontPath) String() string {
	return "path(" + string(p) + ")"
}

func (SoundFontDefault) load(def *meltysynth.SoundFont) (*meltysynth.SoundFont, error) {
	if def == nil {
		return nil, ErrUninitializedSoundFont
	}
	return def, nil
}

func (SoundFontDefault) String() string {
	return "default"
}
