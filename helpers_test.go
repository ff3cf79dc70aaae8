package midisynth

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/sinshu/go-meltysynth/meltysynth"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	testSampleLength = 4410
	testSamplePeriod = 100 // 441 Hz at 44100
	testLoopEnd      = 4400
	testSamplePad    = 64

	sfGenInstrument  = 41
	sfGenSampleID    = 53
	sfGenSampleModes = 54
)

// riffChunk appends id, little-endian size and body, padded to an even length.
func riffChunk(dst *bytes.Buffer, id string, body []byte) {
	dst.WriteString(id)
	binary.Write(dst, binary.LittleEndian, uint32(len(body)))
	dst.Write(body)
	if len(body)%2 == 1 {
		dst.WriteByte(0)
	}
}

func riffList(dst *bytes.Buffer, listType string, chunks func(*bytes.Buffer)) {
	var body bytes.Buffer
	body.WriteString(listType)
	chunks(&body)
	riffChunk(dst, "LIST", body.Bytes())
}

func fixedName(name string, n int) []byte {
	b := make([]byte, n)
	copy(b, name)
	return b
}

func le(values ...any) []byte {
	var b bytes.Buffer
	for _, v := range values {
		binary.Write(&b, binary.LittleEndian, v)
	}
	return b.Bytes()
}

// buildTestSoundFont returns a minimal SF2 with one preset (bank 0, program 0)
// playing a looped sine, or a square when square is set, at the given peak.
func buildTestSoundFont(amplitude int16, square bool) []byte {
	samples := make([]int16, testSampleLength+testSamplePad)
	for i := 0; i < testSampleLength; i++ {
		phase := 2 * math.Pi * float64(i%testSamplePeriod) / testSamplePeriod
		v := math.Sin(phase)
		if square {
			v = 1
			if phase >= math.Pi {
				v = -1
			}
		}
		samples[i] = int16(v * float64(amplitude))
	}

	var root bytes.Buffer
	root.WriteString("sfbk")
	riffList(&root, "INFO", func(b *bytes.Buffer) {
		riffChunk(b, "ifil", le(uint16(2), uint16(1)))
		riffChunk(b, "isng", []byte("EMU8000\x00"))
		riffChunk(b, "INAM", []byte("Test Bank\x00"))
	})
	riffList(&root, "sdta", func(b *bytes.Buffer) {
		riffChunk(b, "smpl", le(samples))
	})
	riffList(&root, "pdta", func(b *bytes.Buffer) {
		var phdr bytes.Buffer
		phdr.Write(fixedName("Test Tone", 20))
		phdr.Write(le(uint16(0), uint16(0), uint16(0), uint32(0), uint32(0), uint32(0)))
		phdr.Write(fixedName("EOP", 20))
		phdr.Write(le(uint16(0), uint16(0), uint16(1), uint32(0), uint32(0), uint32(0)))
		riffChunk(b, "phdr", phdr.Bytes())
		riffChunk(b, "pbag", le(uint16(0), uint16(0), uint16(1), uint16(0)))
		riffChunk(b, "pmod", make([]byte, 10))
		riffChunk(b, "pgen", le(uint16(sfGenInstrument), uint16(0), uint16(0), uint16(0)))

		var inst bytes.Buffer
		inst.Write(fixedName("Test Instrument", 20))
		inst.Write(le(uint16(0)))
		inst.Write(fixedName("EOI", 20))
		inst.Write(le(uint16(1)))
		riffChunk(b, "inst", inst.Bytes())
		riffChunk(b, "ibag", le(uint16(0), uint16(0), uint16(2), uint16(0)))
		riffChunk(b, "imod", make([]byte, 10))
		riffChunk(b, "igen", le(
			uint16(sfGenSampleModes), uint16(1),
			uint16(sfGenSampleID), uint16(0),
			uint16(0), uint16(0),
		))

		var shdr bytes.Buffer
		shdr.Write(fixedName("Test Sample", 20))
		shdr.Write(le(uint32(0), uint32(testSampleLength), uint32(0), uint32(testLoopEnd), uint32(SAMPLE_RATE)))
		shdr.Write(le(uint8(60), int8(0), uint16(0), uint16(1)))
		shdr.Write(fixedName("EOS", 20))
		shdr.Write(make([]byte, 26))
		riffChunk(b, "shdr", shdr.Bytes())
	})

	var out bytes.Buffer
	riffChunk(&out, "RIFF", root.Bytes())
	return out.Bytes()
}

var (
	testSoundFontData = buildTestSoundFont(12000, false)
	altSoundFontData  = buildTestSoundFont(6000, true)
)

func mustSoundFont(t testing.TB, data []byte) *meltysynth.SoundFont {
	t.Helper()
	sf, err := LoadSoundFont(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadSoundFont: %v", err)
	}
	return sf
}

func newTestStore(t testing.TB) *SoundFontStore {
	t.Helper()
	store := NewSoundFontStore()
	if _, err := store.Initialize(bytes.NewReader(testSoundFontData)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return store
}

type testMidiNote struct {
	key   uint8
	ticks uint32 // 960 ticks per quarter at 120 bpm, so 960 = 0.5 s
}

// buildTestMidi writes a format 0 SMF that plays notes back to back on channel 0.
func buildTestMidi(t testing.TB, title string, notes ...testMidiNote) []byte {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(960)

	var tr smf.Track
	if title != "" {
		tr.Add(0, smf.MetaTrackSequenceName(title))
	}
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, midi.ProgramChange(0, 0))
	for _, n := range notes {
		tr.Add(0, midi.NoteOn(0, n.key, 100))
		tr.Add(n.ticks, midi.NoteOff(0, n.key))
	}
	tr.Close(0)
	if err := s.Add(tr); err != nil {
		t.Fatalf("smf Add: %v", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("smf WriteTo: %v", err)
	}
	return buf.Bytes()
}

func note(key int32, d float64) MidiNote {
	n := DefaultMidiNote()
	n.Key = key
	n.Duration = time.Duration(d * float64(time.Second))
	return n
}

func peakOf(samples []float32) float64 {
	var peak float64
	for _, s := range samples {
		peak = max(peak, math.Abs(float64(s)))
	}
	return peak
}
