package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/intuitionamiga/midisynth"
	"github.com/sinshu/go-meltysynth/meltysynth"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

type renderJob struct {
	input    string
	output   string
	sequence bool
}

type renderResult struct {
	job     renderJob
	buffer  *midisynth.AudioBuffer
	stats   midisynth.BufferStats
	elapsed time.Duration
	err     error
}

func buildJobs(opts *options, cfg *midisynth.Config) []renderJob {
	count := len(opts.inputs)
	if opts.seqScript != "" {
		count++
	}
	jobs := make([]renderJob, 0, count)
	if opts.seqScript != "" {
		jobs = append(jobs, renderJob{
			input:    opts.seqScript,
			output:   outputPath(opts.seqScript, opts.outFile, cfg.OutputDir, count),
			sequence: true,
		})
	}
	for _, in := range opts.inputs {
		jobs = append(jobs, renderJob{
			input:  in,
			output: outputPath(in, opts.outFile, cfg.OutputDir, count),
		})
	}
	return jobs
}

// renderJobs renders every job against one soundfont snapshot, at most limit
// at a time. A failing job does not stop the others; all failures are joined.
func renderJobs(store *midisynth.SoundFontStore, jobs []renderJob, limit int) ([]renderResult, error) {
	sf := store.Current()
	results := make([]renderResult, len(jobs))

	var g errgroup.Group
	g.SetLimit(max(limit, 1))
	for i, job := range jobs {
		g.Go(func() error {
			start := time.Now()
			res := renderResult{job: job}
			res.buffer, res.err = renderOne(job, sf)
			if res.err == nil {
				res.err = os.WriteFile(job.output, res.buffer.EncodeWAV(), 0o644)
				res.stats = midisynth.AnalyzeBuffer(res.buffer)
			}
			res.elapsed = time.Since(start)
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	rendered := results[:0:0]
	for _, res := range results {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.job.input, res.err))
			continue
		}
		rendered = append(rendered, res)
	}
	return rendered, errors.Join(errs...)
}

func renderOne(job renderJob, sf *meltysynth.SoundFont) (*midisynth.AudioBuffer, error) {
	if job.sequence {
		notes, err := midisynth.LoadSequenceScriptFile(job.input)
		if err != nil {
			return nil, err
		}
		return midisynth.RenderMidiSequence(notes, sf)
	}
	if !midisynth.IsMidiAsset(job.input) {
		return nil, fmt.Errorf("%w: %s", midisynth.ErrUnsupportedAsset, filepath.Ext(job.input))
	}
	data, err := os.ReadFile(job.input)
	if err != nil {
		return nil, err
	}
	return midisynth.RenderMidiFile(data, sf)
}

var (
	nameStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	quietStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

func printSummary(w io.Writer, results []renderResult) {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = term.IsTerminal(int(f.Fd()))
	}
	for _, res := range results {
		fmt.Fprintln(w, summaryLine(res, styled))
	}
}

func summaryLine(res renderResult, styled bool) string {
	dur := res.buffer.Duration().Round(10 * time.Millisecond)
	name := res.job.output
	detail := fmt.Sprintf("%v, %s (%v)", dur, res.stats, res.elapsed.Round(time.Millisecond))
	silent := res.stats.IsSilent()
	if !styled {
		if silent {
			return name + ": " + detail + " [silent]"
		}
		return name + ": " + detail
	}
	line := nameStyle.Render(name) + " " + dimStyle.Render(detail)
	if silent {
		line += " " + quietStyle.Render("silent")
	}
	return line
}
