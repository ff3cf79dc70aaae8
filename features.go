package midisynth

import (
	"fmt"
	"io"
	"runtime"
	"slices"
	"sort"
)

// Version of the midisynth module, reported by PrintFeatures.
const Version = "0.3.0"

// compiledFeatures tracks build-time feature flags via init() registration.
var compiledFeatures []string

// CompiledFeatures returns the sorted list of build-time features.
func CompiledFeatures() []string {
	features := slices.Clone(compiledFeatures)
	sort.Strings(features)
	return features
}

func HasFeature(name string) bool {
	return slices.Contains(compiledFeatures, name)
}

// PrintFeatures writes the version, platform and compiled features to w.
func PrintFeatures(w io.Writer) {
	fmt.Fprintf(w, "midisynth %s\n", Version)
	fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
	fmt.Fprintf(w, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "  Format:     %d Hz, %d channels, float32\n", SAMPLE_RATE, CHANNEL_COUNT)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Compiled features:")

	features := CompiledFeatures()
	for _, f := range features {
		fmt.Fprintf(w, "  %s\n", f)
	}
	if len(features) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
}
