// soundfont_store.go - Holder of the active soundfont

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/midisynth
License: GPLv3 or later
*/

package midisynth

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/sinshu/go-meltysynth/meltysynth"
)

// SoundFontStore holds the soundfont renders start from. Reads are a single
// atomic load; replacement parses outside the lock and only serialises the
// pointer swap, so a render that already took a snapshot keeps it to the end.
type SoundFontStore struct {
	current    atomic.Pointer[meltysynth.SoundFont] // Atomic for lock-free Current()
	def        atomic.Pointer[meltysynth.SoundFont]
	generation atomic.Uint64
	mutex      sync.Mutex // Only for Initialize/Replace
}

func NewSoundFontStore() *SoundFontStore {
	return &SoundFontStore{}
}

// Initialize parses the default soundfont and makes it active.
func (s *SoundFontStore) Initialize(r io.Reader) (*meltysynth.SoundFont, error) {
	sf, err := LoadSoundFont(r)
	if err != nil {
		return nil, err
	}
	if err := s.InitializeWith(sf); err != nil {
		return nil, err
	}
	return sf, nil
}

// InitializeFile initializes the store from a soundfont file.
func (s *SoundFontStore) InitializeFile(path string) (*meltysynth.SoundFont, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSoundFontSource, path, err)
	}
	return s.Initialize(bytes.NewReader(data))
}

// InitializeWith installs an already parsed soundfont as default and active.
func (s *SoundFontStore) InitializeWith(sf *meltysynth.SoundFont) error {
	if sf == nil {
		return fmt.Errorf("%w: nil soundfont", ErrSoundFontParse)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.def.Load() != nil {
		return ErrAlreadyInitialized
	}
	s.def.Store(sf)
	s.current.Store(sf)
	gen := s.generation.Add(1)
	componentLog("soundfont").Info("soundfont initialized", "generation", gen)
	return nil
}

// Replace swaps the active soundfont. On failure the active soundfont is left as is.
func (s *SoundFontStore) Replace(change SoundFontChange) error {
	def := s.def.Load()
	if def == nil {
		return fmt.Errorf("replace soundfont %s: %w", change, ErrUninitializedSoundFont)
	}
	sf, err := change.load(def)
	if err != nil {
		return fmt.Errorf("replace soundfont %s: %w", change, err)
	}

	s.mutex.Lock()
	s.current.Store(sf)
	gen := s.generation.Add(1)
	s.mutex.Unlock()

	componentLog("soundfont").Info("soundfont replaced", "source", change.String(), "generation", gen)
	return nil
}

// Current returns the active soundfont. Calling it before initialization is a
// programming error and panics.
func (s *SoundFontStore) Current() *meltysynth.SoundFont {
	sf := s.current.Load()
	if sf == nil {
		panic(ErrUninitializedSoundFont)
	}
	return sf
}

// Default returns the soundfont the store was initialized with, or nil.
func (s *SoundFontStore) Default() *meltysynth.SoundFont {
	return s.def.Load()
}

func (s *SoundFontStore) Initialized() bool {
	return s.current.Load() != nil
}

// Generation counts successful initializations and replacements.
func (s *SoundFontStore) Generation() uint64 {
	return s.generation.Load()
}
