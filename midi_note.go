// midi_note.go - Note events for sequence rendering

package midisynth

import (
	"fmt"
	"time"
)

// MidiNote is a single instruction to play one note for a fixed duration.
type MidiNote struct {
	// Channel to play the note on
	Channel int32
	// Preset (General MIDI program) to select before the note
	Preset int32
	// Bank to select before the note
	Bank int32
	// Key to play (60 is middle C)
	Key int32
	// Velocity to play the note at
	Velocity int32
	// Duration the note sounds before note-off
	Duration time.Duration
}

// DefaultMidiNote returns middle C on channel 0, preset 0, bank 0, velocity 100, one second.
func DefaultMidiNote() MidiNote {
	return MidiNote{
		Channel:  0,
		Preset:   0,
		Bank:     0,
		Key:      60,
		Velocity: 100,
		Duration: time.Second,
	}
}

// Frames returns how many sample frames the note occupies at sampleRate,
// rounded toward zero.
func (n MidiNote) Frames(sampleRate int) int {
	if n.Duration <= 0 {
		return 0
	}
	return int(int64(n.Duration) * int64(sampleRate) / int64(time.Second))
}

func (n MidiNote) validate() error {
	if n.Duration < 0 {
		return fmt.Errorf("%w: negative duration %v", ErrInvalidNote, n.Duration)
	}
	return nil
}
