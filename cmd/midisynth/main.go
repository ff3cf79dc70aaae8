package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/intuitionamiga/midisynth"
)

type options struct {
	soundFont  string
	configPath string
	outFile    string
	outDir     string
	seqScript  string
	backend    string
	jobs       int
	play       bool
	features   bool
	inputs     []string
}

func parseOptions(args []string) (*options, error) {
	opts := &options{}
	flagSet := flag.NewFlagSet("midisynth", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&opts.soundFont, "soundfont", "", "Default soundfont (.sf2)")
	flagSet.StringVar(&opts.configPath, "config", "", "Config file (default ~/.config/midisynth/config.json)")
	flagSet.StringVar(&opts.outFile, "o", "", "Output WAV file (single input only)")
	flagSet.StringVar(&opts.outDir, "outdir", "", "Output directory for rendered WAV files")
	flagSet.StringVar(&opts.seqScript, "seq", "", "Render the note sequence produced by a Lua script")
	flagSet.StringVar(&opts.backend, "backend", "", "Playback backend: none, oto or ebiten")
	flagSet.IntVar(&opts.jobs, "j", 0, "Parallel render jobs")
	flagSet.BoolVar(&opts.play, "play", false, "Play the first rendered result")
	flagSet.BoolVar(&opts.features, "features", false, "Print compiled features and exit")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: midisynth -soundfont FILE [-o out.wav | -outdir DIR] [-seq script.lua] [-play] [-backend oto] [-j N] file.mid...")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			flagSet.Usage()
		}
		return nil, err
	}
	opts.inputs = flagSet.Args()
	return opts, nil
}

// resolveConfig layers the flags over the config file.
func resolveConfig(opts *options) (*midisynth.Config, error) {
	path := opts.configPath
	if path == "" {
		var err error
		if path, err = midisynth.DefaultConfigPath(); err != nil {
			return nil, err
		}
	}
	cfg, err := midisynth.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if opts.soundFont != "" {
		cfg.SoundFont = opts.soundFont
	}
	if opts.backend != "" {
		cfg.Backend = opts.backend
	}
	if opts.outDir != "" {
		cfg.OutputDir = opts.outDir
	}
	if opts.jobs != 0 {
		cfg.Jobs = opts.jobs
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.SoundFont == "" {
		return nil, fmt.Errorf("%w: no soundfont given", midisynth.ErrInvalidConfig)
	}
	return cfg, nil
}

// outputPath picks where the WAV for input goes: -o for a single job,
// otherwise next to the input or inside outDir.
func outputPath(input, outFile, outDir string, jobCount int) string {
	if outFile != "" && jobCount == 1 {
		return outFile
	}
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".wav"
	if outDir != "" {
		return filepath.Join(outDir, name)
	}
	return filepath.Join(filepath.Dir(input), name)
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if opts.features {
		midisynth.PrintFeatures(os.Stdout)
		return
	}
	if len(opts.inputs) == 0 && opts.seqScript == "" {
		fmt.Println("Error: give at least one MIDI file or -seq script")
		os.Exit(1)
	}
	if opts.outFile != "" && len(opts.inputs)+boolCount(opts.seqScript != "") > 1 {
		fmt.Println("Error: -o needs exactly one input")
		os.Exit(1)
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}

	store := midisynth.NewSoundFontStore()
	if _, err := store.InitializeFile(cfg.SoundFont); err != nil {
		fmt.Printf("Error loading soundfont: %v\n", err)
		os.Exit(1)
	}

	jobs := buildJobs(opts, cfg)
	results, err := renderJobs(store, jobs, cfg.Jobs)
	printSummary(os.Stdout, results)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if opts.play && len(results) > 0 {
		if err := playBuffer(cfg.SinkBackend(), results[0].buffer); err != nil {
			fmt.Printf("Error playing %s: %v\n", results[0].job.input, err)
			os.Exit(1)
		}
	}
}

func boolCount(b bool) int {
	if b {
		return 1
	}
	return 0
}

func playBuffer(backend int, buf *midisynth.AudioBuffer) error {
	sink, err := midisynth.NewSink(backend)
	if err != nil {
		return err
	}
	defer sink.Close()

	if err := sink.Play(buf); err != nil {
		return err
	}
	if backend == midisynth.SINK_BACKEND_NONE {
		return nil
	}
	deadline := time.Now().Add(buf.Duration() + time.Second)
	for sink.IsPlaying() && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	return nil
}
