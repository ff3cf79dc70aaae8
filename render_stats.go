// render_stats.go - Level and loudness summary of a rendered buffer

package midisynth

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/measure/loudness"
	timestats "github.com/cwbudde/algo-dsp/stats/time"
)

// silenceFloor is the peak below which a buffer counts as silent (about -120 dBFS).
const silenceFloor = 1e-6

type ChannelStats struct {
	Peak   float64
	PeakDB float64
	RMS    float64
	RMSDB  float64
}

// BufferStats summarises a rendered buffer per channel plus its
// integrated loudness. Empty or silent buffers report -Inf dB values
// and an integrated loudness of -Inf.
type BufferStats struct {
	Frames     int
	Left       ChannelStats
	Right      ChannelStats
	Integrated float64 // LUFS
}

func AnalyzeBuffer(buf *AudioBuffer) BufferStats {
	stats := BufferStats{
		Frames:     buf.Frames(),
		Integrated: math.Inf(-1),
	}
	stats.Left = channelStats(buf.Channel(0))
	stats.Right = channelStats(buf.Channel(1))
	if stats.Frames == 0 {
		return stats
	}

	meter := loudness.NewMeter(
		loudness.WithSampleRate(float64(buf.SampleRate)),
		loudness.WithChannels(buf.Channels),
	)
	meter.StartIntegration()
	block := make([]float64, 0, RENDER_CHUNK_FRAMES*buf.Channels)
	for start := 0; start < len(buf.Samples); start += cap(block) {
		end := min(start+cap(block), len(buf.Samples))
		block = block[:0]
		for _, s := range buf.Samples[start:end] {
			block = append(block, float64(s))
		}
		meter.ProcessBlock(block)
	}
	stats.Integrated = meter.Integrated()
	return stats
}

func channelStats(signal []float64) ChannelStats {
	s := timestats.Calculate(signal)
	return ChannelStats{Peak: s.Peak, PeakDB: s.Peak_dB, RMS: s.RMS, RMSDB: s.RMS_dB}
}

// IsSilent reports whether both channels stay under the silence floor.
func (s BufferStats) IsSilent() bool {
	return s.Left.Peak < silenceFloor && s.Right.Peak < silenceFloor
}

func (s BufferStats) String() string {
	return fmt.Sprintf("peak L %.1f dB R %.1f dB, rms L %.1f dB R %.1f dB, %.1f LUFS",
		s.Left.PeakDB, s.Right.PeakDB, s.Left.RMSDB, s.Right.RMSDB, s.Integrated)
}
