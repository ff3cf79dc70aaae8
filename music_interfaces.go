// music_interfaces.go - Common interface for playback controllers

package midisynth

// MusicPlayer is implemented by playback controllers built on a Sink.
type MusicPlayer interface {
	// Load loads a music file from the given path
	Load(path string) error
	// LoadData loads music data from a byte slice
	LoadData(data []byte) error
	// Play starts playback
	Play()
	// Stop stops playback
	Stop()
	// IsPlaying returns true if currently playing
	IsPlaying() bool
	// DurationSeconds returns the duration in seconds (0 if nothing is loaded)
	DurationSeconds() float64
	// DurationText returns a formatted duration string (e.g., "3:45")
	DurationText() string
}

var _ MusicPlayer = (*MidiPlayer)(nil)
