// midi_player.go - Load, render and play MIDI through a sink

package midisynth

import (
	"bytes"
	"fmt"
	"os"
	"sync"
)

// MidiPlayer renders on load and plays the finished buffer through a sink.
type MidiPlayer struct {
	renderer *Renderer
	sink     Sink

	buffer   *AudioBuffer
	metadata MidiMetadata
	lastErr  error
	mutex    sync.Mutex
}

func NewMidiPlayer(renderer *Renderer, sink Sink) *MidiPlayer {
	return &MidiPlayer{
		renderer: renderer,
		sink:     sink,
	}
}

func (p *MidiPlayer) Load(path string) error {
	if !IsMidiAsset(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedAsset, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return p.LoadData(data)
}

func (p *MidiPlayer) LoadData(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: midi data empty", ErrMidiParse)
	}
	audio, err := LoadMidiAudio(bytes.NewReader(data))
	if err != nil {
		return err
	}
	buf, err := audio.Decode(p.renderer)
	if err != nil {
		return err
	}
	p.setLoaded(buf, audio.Metadata)
	return nil
}

// LoadSequence renders a note sequence for playback.
func (p *MidiPlayer) LoadSequence(notes []MidiNote) error {
	buf, err := p.renderer.RenderSequence(notes)
	if err != nil {
		return err
	}
	p.setLoaded(buf, MidiMetadata{Tracks: 1, Duration: buf.Duration()})
	return nil
}

func (p *MidiPlayer) setLoaded(buf *AudioBuffer, meta MidiMetadata) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.sink.Stop()
	p.buffer = buf
	p.metadata = meta
	p.lastErr = nil
}

// Play starts the loaded buffer. Without a loaded buffer it does nothing;
// a sink failure is kept for Err.
func (p *MidiPlayer) Play() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.buffer == nil {
		return
	}
	if err := p.sink.Play(p.buffer); err != nil {
		p.lastErr = err
		componentLog("player").Error("playback failed", "err", err)
	}
}

func (p *MidiPlayer) Stop() {
	p.sink.Stop()
}

func (p *MidiPlayer) IsPlaying() bool {
	return p.sink.IsPlaying()
}

// Err returns the error from the last Play, if any.
func (p *MidiPlayer) Err() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.lastErr
}

// Buffer returns the rendered buffer of the loaded music, or nil.
func (p *MidiPlayer) Buffer() *AudioBuffer {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.buffer
}

func (p *MidiPlayer) Metadata() MidiMetadata {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.metadata
}

func (p *MidiPlayer) DurationSeconds() float64 {
	buf := p.Buffer()
	if buf == nil {
		return 0
	}
	return buf.Duration().Seconds()
}

func (p *MidiPlayer) DurationText() string {
	dur := p.DurationSeconds()
	if dur <= 0 {
		return ""
	}
	minutes := int(dur) / 60
	seconds := int(dur) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
