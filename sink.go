// sink.go - Playback sinks for rendered buffers

package midisynth

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// Sink hands a rendered buffer to a host playback abstraction.
type Sink interface {
	// Play starts playing buf, replacing anything already playing.
	Play(buf *AudioBuffer) error
	Stop()
	Close()
	IsPlaying() bool
}

const (
	SINK_BACKEND_NONE = iota
	SINK_BACKEND_OTO
	SINK_BACKEND_EBITEN
)

var sinkBackendNames = map[int]string{
	SINK_BACKEND_NONE:   "none",
	SINK_BACKEND_OTO:    "oto",
	SINK_BACKEND_EBITEN: "ebiten",
}

// ParseSinkBackend maps a backend name ("none", "oto", "ebiten") to its constant.
func ParseSinkBackend(name string) (int, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return SINK_BACKEND_NONE, nil
	}
	for backend, n := range sinkBackendNames {
		if n == name {
			return backend, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}

func SinkBackendName(backend int) string {
	if name, ok := sinkBackendNames[backend]; ok {
		return name
	}
	return fmt.Sprintf("backend(%d)", backend)
}

// Only one device sink may be open at a time; both device backends want the
// process-wide audio context.
var deviceSinkOpen atomic.Bool

// NewSink opens a sink for backend. Device backends fail with ErrSinkActive
// while another device sink is still open.
func NewSink(backend int) (Sink, error) {
	switch backend {
	case SINK_BACKEND_NONE:
		return NewNullSink(), nil
	case SINK_BACKEND_OTO, SINK_BACKEND_EBITEN:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownBackend, backend)
	}

	if !deviceSinkOpen.CompareAndSwap(false, true) {
		return nil, ErrSinkActive
	}
	var (
		sink Sink
		err  error
	)
	if backend == SINK_BACKEND_OTO {
		sink, err = newOtoSink()
	} else {
		sink, err = newEbitenSink()
	}
	if err != nil {
		deviceSinkOpen.Store(false)
		return nil, fmt.Errorf("open %s sink: %w", SinkBackendName(backend), err)
	}
	componentLog("sink").Info("audio sink opened", "backend", SinkBackendName(backend))
	return &exclusiveSink{Sink: sink}, nil
}

// exclusiveSink releases the device slot on Close.
type exclusiveSink struct {
	Sink
	closeOnce sync.Once
}

func (s *exclusiveSink) Close() {
	s.closeOnce.Do(func() {
		s.Sink.Close()
		deviceSinkOpen.Store(false)
	})
}

// NullSink accepts buffers without producing sound. It reports playing from
// Play until Stop.
type NullSink struct {
	last    atomic.Pointer[AudioBuffer]
	played  atomic.Int64
	playing atomic.Bool
}

func NewNullSink() *NullSink {
	return &NullSink{}
}

func (s *NullSink) Play(buf *AudioBuffer) error {
	if err := checkSinkFormat(buf); err != nil {
		return err
	}
	s.last.Store(buf)
	s.played.Add(1)
	s.playing.Store(true)
	return nil
}

func (s *NullSink) Stop() {
	s.playing.Store(false)
}

func (s *NullSink) Close() {
	s.Stop()
}

func (s *NullSink) IsPlaying() bool {
	return s.playing.Load()
}

// Last returns the most recently played buffer.
func (s *NullSink) Last() *AudioBuffer {
	return s.last.Load()
}

// Played counts Play calls.
func (s *NullSink) Played() int {
	return int(s.played.Load())
}

func checkSinkFormat(buf *AudioBuffer) error {
	if buf == nil {
		return fmt.Errorf("sink: nil buffer")
	}
	if buf.SampleRate != SAMPLE_RATE || buf.Channels != CHANNEL_COUNT {
		return fmt.Errorf("sink: unsupported format %d Hz x %d channels", buf.SampleRate, buf.Channels)
	}
	if len(buf.Samples)%buf.Channels != 0 {
		return fmt.Errorf("sink: %d samples is not a whole number of frames", len(buf.Samples))
	}
	return nil
}
