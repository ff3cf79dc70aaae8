// smf_export.go - Note sequences written as Standard MIDI Files

package midisynth

import (
	"fmt"
	"io"
	"math"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	smfResolution = 960
	smfTempoBPM   = 120
)

// WriteSequenceSMF writes notes as a single-track SMF that plays them back to
// back, sending bank select and program change before every note like the
// sequence renderer does.
func WriteSequenceSMF(w io.Writer, notes []MidiNote) error {
	for i, note := range notes {
		if err := note.validate(); err != nil {
			return fmt.Errorf("note %d: %w", i, err)
		}
		if err := checkSMFRange(note); err != nil {
			return fmt.Errorf("note %d: %w", i, err)
		}
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(smfResolution)

	var track smf.Track
	track.Add(0, smf.MetaTempo(smfTempoBPM))
	for _, note := range notes {
		ch := uint8(note.Channel)
		track.Add(0, midi.ControlChange(ch, midiBankSelectMSB, uint8(note.Bank)))
		track.Add(0, midi.ProgramChange(ch, uint8(note.Preset)))
		track.Add(0, midi.NoteOn(ch, uint8(note.Key), uint8(note.Velocity)))
		track.Add(durationTicks(note.Duration), midi.NoteOff(ch, uint8(note.Key)))
	}
	track.Close(0)

	if err := s.Add(track); err != nil {
		return err
	}
	_, err := s.WriteTo(w)
	return err
}

// durationTicks converts d to ticks at the export tempo and resolution.
func durationTicks(d time.Duration) uint32 {
	ticksPerSecond := float64(smfResolution) * smfTempoBPM / 60
	return uint32(math.Round(d.Seconds() * ticksPerSecond))
}

func checkSMFRange(n MidiNote) error {
	switch {
	case n.Channel < 0 || n.Channel > 15:
		return fmt.Errorf("%w: channel %d out of range", ErrInvalidNote, n.Channel)
	case n.Key < 0 || n.Key > 127:
		return fmt.Errorf("%w: key %d out of range", ErrInvalidNote, n.Key)
	case n.Velocity < 0 || n.Velocity > 127:
		return fmt.Errorf("%w: velocity %d out of range", ErrInvalidNote, n.Velocity)
	case n.Preset < 0 || n.Preset > 127:
		return fmt.Errorf("%w: preset %d out of range", ErrInvalidNote, n.Preset)
	case n.Bank < 0 || n.Bank > 127:
		return fmt.Errorf("%w: bank %d out of range", ErrInvalidNote, n.Bank)
	}
	return nil
}
