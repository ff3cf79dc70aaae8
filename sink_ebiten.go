//go:build !headless

// sink_ebiten.go - Ebitengine audio playback of rendered buffers

package midisynth

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

func init() {
	compiledFeatures = append(compiledFeatures, "sink:ebiten")
}

type EbitenSink struct {
	ctx    *audio.Context
	player *audio.Player
	mutex  sync.Mutex
}

func newEbitenSink() (Sink, error) {
	// Ebitengine allows only one audio context; reuse the host's if it made one.
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(SAMPLE_RATE)
	} else if ctx.SampleRate() != SAMPLE_RATE {
		return nil, fmt.Errorf("ebiten audio context runs at %d Hz, need %d", ctx.SampleRate(), SAMPLE_RATE)
	}
	return &EbitenSink{ctx: ctx}, nil
}

func (s *EbitenSink) Play(buf *AudioBuffer) error {
	if err := checkSinkFormat(buf); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.stopLocked()
	player, err := s.ctx.NewPlayerF32(buf.NewReader())
	if err != nil {
		return err
	}
	s.player = player
	s.player.Play()
	return nil
}

func (s *EbitenSink) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.stopLocked()
}

func (s *EbitenSink) stopLocked() {
	if s.player != nil {
		s.player.Pause()
		_ = s.player.Close()
		s.player = nil
	}
}

func (s *EbitenSink) Close() {
	s.Stop()
}

func (s *EbitenSink) IsPlaying() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.player != nil && s.player.IsPlaying()
}
