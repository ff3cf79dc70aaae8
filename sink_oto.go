//go:build !headless

// sink_oto.go - OTO v3 playback of rendered buffers

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/midisynth
License: GPLv3 or later
*/

package midisynth

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

func init() {
	compiledFeatures = append(compiledFeatures, "sink:oto")
}

// oto allows a single context per process.
var otoContext struct {
	once sync.Once
	ctx  *oto.Context
	err  error
}

func sharedOtoContext() (*oto.Context, error) {
	otoContext.once.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   SAMPLE_RATE,
			ChannelCount: CHANNEL_COUNT,
			Format:       oto.FormatFloat32LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			otoContext.err = err
			return
		}
		<-ready
		otoContext.ctx = ctx
	})
	return otoContext.ctx, otoContext.err
}

type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player
	mutex  sync.Mutex
}

func newOtoSink() (Sink, error) {
	ctx, err := sharedOtoContext()
	if err != nil {
		return nil, err
	}
	return &OtoSink{ctx: ctx}, nil
}

func (s *OtoSink) Play(buf *AudioBuffer) error {
	if err := checkSinkFormat(buf); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.stopLocked()
	s.player = s.ctx.NewPlayer(buf.NewReader())
	s.player.Play()
	return nil
}

func (s *OtoSink) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.stopLocked()
}

func (s *OtoSink) stopLocked() {
	if s.player != nil {
		s.player.Pause()
		_ = s.player.Close()
		s.player = nil
	}
}

func (s *OtoSink) Close() {
	s.Stop()
}

func (s *OtoSink) IsPlaying() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.player != nil && s.player.IsPlaying()
}
