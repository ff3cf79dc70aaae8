//go:build headless

package midisynth

func init() {
	compiledFeatures = append(compiledFeatures, "sink:headless")
}

// Headless builds have no audio device; device backends accept buffers silently.
func newOtoSink() (Sink, error) {
	return NewNullSink(), nil
}

func newEbitenSink() (Sink, error) {
	return NewNullSink(), nil
}
