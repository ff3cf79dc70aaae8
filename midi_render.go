// midi_render.go - MIDI file and note sequence rendering to interleaved stereo PCM

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/midisynth
License: GPLv3 or later
*/

package midisynth

import (
	"bytes"
	"fmt"
	"time"

	"github.com/sinshu/go-meltysynth/meltysynth"
)

const (
	SAMPLE_RATE   = 44100
	CHANNEL_COUNT = 2

	// Frames handed to the synthesizer per render call (one second).
	RENDER_CHUNK_FRAMES = SAMPLE_RATE
)

// MIDI channel voice commands sent ahead of each sequence note.
const (
	midiControlChange = 0xB0
	midiProgramChange = 0xC0
	midiBankSelectMSB = 0x00
)

// synthesizer is the subset of meltysynth.Synthesizer the sequence path drives.
type synthesizer interface {
	ProcessMidiMessage(channel int32, command int32, data1 int32, data2 int32)
	NoteOn(channel int32, key int32, velocity int32)
	NoteOff(channel int32, key int32)
	Render(left []float32, right []float32)
}

// fileSequencer is the subset of meltysynth.MidiFileSequencer the file path drives.
type fileSequencer interface {
	Play(midiFile *meltysynth.MidiFile, loop bool)
	Render(left []float32, right []float32)
}

// newSynthesizer and newFileSequencer build a fresh synthesizer session per
// render. Tests override them to record the messages sent.
var newSynthesizer = func(sf *meltysynth.SoundFont, sampleRate int32) (synthesizer, error) {
	synth, err := meltysynth.NewSynthesizer(sf, meltysynth.NewSynthesizerSettings(sampleRate))
	if err != nil {
		return nil, err
	}
	return synth, nil
}

var newFileSequencer = func(sf *meltysynth.SoundFont, sampleRate int32) (fileSequencer, error) {
	synth, err := meltysynth.NewSynthesizer(sf, meltysynth.NewSynthesizerSettings(sampleRate))
	if err != nil {
		return nil, err
	}
	return meltysynth.NewMidiFileSequencer(synth), nil
}

// Renderer renders against whatever soundfont the store holds when a render starts.
type Renderer struct {
	store *SoundFontStore
}

func NewRenderer(store *SoundFontStore) *Renderer {
	return &Renderer{store: store}
}

// Store returns the store renders take their soundfont snapshot from.
func (r *Renderer) Store() *SoundFontStore {
	return r.store
}

// RenderFile renders a complete MIDI file. Panics if the store is uninitialized.
func (r *Renderer) RenderFile(data []byte) (*AudioBuffer, error) {
	return RenderMidiFile(data, r.store.Current())
}

// RenderSequence renders notes one after another. Panics if the store is uninitialized.
func (r *Renderer) RenderSequence(notes []MidiNote) (*AudioBuffer, error) {
	return RenderMidiSequence(notes, r.store.Current())
}

// RenderMidiFile plays a MIDI file's own timeline through a fresh synthesizer,
// without looping, one second at a time until every event has been dispatched.
func RenderMidiFile(data []byte, sf *meltysynth.SoundFont) (*AudioBuffer, error) {
	if sf == nil {
		panic(ErrUninitializedSoundFont)
	}

	midiFile, err := meltysynth.NewMidiFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMidiParse, err)
	}

	sequencer, err := newFileSequencer(sf, SAMPLE_RATE)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesizer, err)
	}
	sequencer.Play(midiFile, false)

	chunks := fileChunkCount(midiFile.GetLength())
	buf := newAudioBuffer(chunks * RENDER_CHUNK_FRAMES)
	left := make([]float32, RENDER_CHUNK_FRAMES)
	right := make([]float32, RENDER_CHUNK_FRAMES)
	for range chunks {
		sequencer.Render(left, right)
		buf.appendInterleaved(left, right)
	}

	componentLog("render").Debug("midi file rendered",
		"length", midiFile.GetLength(), "chunks", chunks, "frames", buf.Frames())
	return buf, nil
}

// fileChunkCount returns how many whole chunks it takes until the rendered time
// has passed the last event of a timeline of the given length.
func fileChunkCount(length time.Duration) int {
	if length < 0 {
		length = 0
	}
	chunk := time.Duration(RENDER_CHUNK_FRAMES) * time.Second / SAMPLE_RATE
	return int(length/chunk) + 1
}

// RenderMidiSequence renders notes strictly in order on one synthesizer. Each
// note selects its bank and program, sounds for its duration and is released
// before the next one starts.
func RenderMidiSequence(notes []MidiNote, sf *meltysynth.SoundFont) (*AudioBuffer, error) {
	if sf == nil {
		panic(ErrUninitializedSoundFont)
	}

	totalFrames := 0
	longest := 0
	for i, note := range notes {
		if err := note.validate(); err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		frames := note.Frames(SAMPLE_RATE)
		totalFrames += frames
		longest = max(longest, frames)
	}

	buf := newAudioBuffer(totalFrames)
	if len(notes) == 0 {
		return buf, nil
	}

	synth, err := newSynthesizer(sf, SAMPLE_RATE)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesizer, err)
	}

	size := min(longest, RENDER_CHUNK_FRAMES)
	left := make([]float32, size)
	right := make([]float32, size)
	for _, note := range notes {
		synth.ProcessMidiMessage(note.Channel, midiControlChange, midiBankSelectMSB, note.Bank)
		synth.ProcessMidiMessage(note.Channel, midiProgramChange, note.Preset, 0)
		synth.NoteOn(note.Channel, note.Key, note.Velocity)

		for remaining := note.Frames(SAMPLE_RATE); remaining > 0; {
			n := min(remaining, RENDER_CHUNK_FRAMES)
			synth.Render(left[:n], right[:n])
			buf.appendInterleaved(left[:n], right[:n])
			remaining -= n
		}

		synth.NoteOff(note.Channel, note.Key)
	}

	componentLog("render").Debug("note sequence rendered", "notes", len(notes), "frames", buf.Frames())
	return buf, nil
}
