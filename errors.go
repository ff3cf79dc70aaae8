// errors.go - Error values shared by the store, renderer and loaders

package midisynth

import "errors"

var (
	// ErrSoundFontParse is returned when bytes do not form a valid soundfont.
	ErrSoundFontParse         = errors.New("soundfont parse failed")
	// ErrSoundFontSource is returned when a soundfont source cannot be opened or read.
	ErrSoundFontSource        = errors.New("soundfont source unavailable")
	// ErrUninitializedSoundFont marks use of a store that never received a soundfont.
	ErrUninitializedSoundFont = errors.New("soundfont store not initialized")
	// ErrAlreadyInitialized is returned by a second Initialize call.
	ErrAlreadyInitialized     = errors.New("soundfont store already initialized")
)

var (
	// ErrMidiParse is returned when MIDI bytes are malformed or unsupported.
	ErrMidiParse   = errors.New("midi parse failed")
	ErrInvalidNote = errors.New("invalid note")
	ErrSynthesizer = errors.New("synthesizer construction failed")
)

var (
	ErrUnsupportedAsset = errors.New("unsupported asset")
	ErrSequenceScript   = errors.New("sequence script failed")
	ErrSinkActive       = errors.New("another audio sink is already open")
	ErrUnknownBackend   = errors.New("unknown sink backend")
	ErrInvalidConfig    = errors.New("invalid configuration")
)
