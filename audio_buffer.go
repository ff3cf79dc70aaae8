// audio_buffer.go - Rendered interleaved stereo PCM and its byte views

package midisynth

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"time"
)

// AudioBuffer is a fully rendered stereo float32 buffer, interleaved
// left, right, left, right... Samples are left at the synthesizer's scale.
type AudioBuffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

func newAudioBuffer(frames int) *AudioBuffer {
	return &AudioBuffer{
		Samples:    make([]float32, 0, frames*CHANNEL_COUNT),
		SampleRate: SAMPLE_RATE,
		Channels:   CHANNEL_COUNT,
	}
}

// appendInterleaved writes one left and one right sample per frame.
func (b *AudioBuffer) appendInterleaved(left, right []float32) {
	for i := range left {
		b.Samples = append(b.Samples, left[i], right[i])
	}
}

func (b *AudioBuffer) Frames() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

func (b *AudioBuffer) Duration() time.Duration {
	if b.SampleRate == 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// Frame returns the left and right sample of frame i.
func (b *AudioBuffer) Frame(i int) (left, right float32) {
	return b.Samples[i*2], b.Samples[i*2+1]
}

// StereoFrames returns the buffer as a list of [left, right] pairs.
func (b *AudioBuffer) StereoFrames() [][2]float32 {
	frames := make([][2]float32, b.Frames())
	for i := range frames {
		frames[i][0], frames[i][1] = b.Frame(i)
	}
	return frames
}

// Channel deinterleaves one channel (0 left, 1 right) as float64.
func (b *AudioBuffer) Channel(ch int) []float64 {
	out := make([]float64, b.Frames())
	for i := range out {
		out[i] = float64(b.Samples[i*b.Channels+ch])
	}
	return out
}

// NewReader returns the samples as a float32 little-endian byte stream,
// the layout both oto and ebiten consume.
func (b *AudioBuffer) NewReader() *AudioReader {
	return &AudioReader{samples: b.Samples}
}

// EncodeWAV returns the buffer as a 32-bit IEEE float WAV file.
func (b *AudioBuffer) EncodeWAV() []byte {
	dataSize := len(b.Samples) * 4
	byteRate := b.SampleRate * b.Channels * 4
	blockAlign := b.Channels * 4
	out := make([]byte, 44+dataSize)
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3) // WAVE_FORMAT_IEEE_FLOAT
	binary.LittleEndian.PutUint16(out[22:], uint16(b.Channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(b.SampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range b.Samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}

// AudioReader streams an AudioBuffer as float32 little-endian bytes.
type AudioReader struct {
	samples []float32
	pos     int64
}

func (r *AudioReader) Read(p []byte) (int, error) {
	size := int64(len(r.samples)) * 4
	if r.pos >= size {
		return 0, io.EOF
	}
	n := 0
	var word [4]byte
	for n < len(p) && r.pos < size {
		binary.LittleEndian.PutUint32(word[:], math.Float32bits(r.samples[r.pos/4]))
		c := copy(p[n:], word[r.pos%4:])
		n += c
		r.pos += int64(c)
	}
	return n, nil
}

func (r *AudioReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.pos + offset
	case io.SeekEnd:
		abs = int64(len(r.samples))*4 + offset
	default:
		return 0, errors.New("audio reader: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("audio reader: negative position")
	}
	r.pos = abs
	return abs, nil
}

// Len returns the number of unread bytes.
func (r *AudioReader) Len() int {
	rest := int64(len(r.samples))*4 - r.pos
	if rest < 0 {
		return 0
	}
	return int(rest)
}
