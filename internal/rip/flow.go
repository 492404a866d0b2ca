package rip

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/xowap/bureaudesrip/internal/handbrake"
	"github.com/xowap/bureaudesrip/internal/ui"
)

// HandBrake is the part of the HandBrake client the flow drives.
type HandBrake interface {
	Scan(ctx context.Context, device string, progress func(float64)) (*handbrake.TitleSet, error)
	Transcode(ctx context.Context, job handbrake.TranscodeJob, progress func(handbrake.Progress)) error
	Eject(device string) error
}

// Options configures one rip run.
type Options struct {
	Device    string
	OutputDir string
	NoEject   bool
	OutWriter io.Writer
	ErrWriter io.Writer
}

func (o Options) withDefaults() Options {
	if o.OutWriter == nil {
		o.OutWriter = os.Stdout
	}
	if o.ErrWriter == nil {
		o.ErrWriter = os.Stderr
	}
	return o
}

// Flow orchestrates a full rip: scan, consistency check, one transcode
// per mapped title, then eject.
type Flow struct {
	hb   HandBrake
	plan *Plan
	opts Options
}

// NewFlow creates a rip flow for the given plan.
func NewFlow(hb HandBrake, plan *Plan, opts Options) *Flow {
	return &Flow{hb: hb, plan: plan, opts: opts.withDefaults()}
}

// Run executes the flow. The first failing step aborts the run; an
// eject failure only warns since the rip itself is already complete.
func (f *Flow) Run(ctx context.Context) error {
	titles, err := f.scan(ctx)
	if err != nil {
		return err
	}

	outputs, err := f.plan.Outputs(f.opts.OutputDir, titles)
	if err != nil {
		return err
	}

	for _, output := range outputs {
		if err := f.transcode(ctx, output); err != nil {
			return err
		}
	}

	if !f.opts.NoEject {
		fmt.Fprintln(f.opts.OutWriter, "Ejecting")
		if err := f.hb.Eject(f.opts.Device); err != nil {
			fmt.Fprintln(f.opts.ErrWriter, "Warning: could not eject DVD:", err)
		}
	}

	return nil
}

func (f *Flow) scan(ctx context.Context) (*handbrake.TitleSet, error) {
	fmt.Fprintln(f.opts.OutWriter, "Analyzing DVD")

	sp := ui.NewSpinner("Scanning")
	sp.Start()
	defer sp.Stop()

	titles, err := f.hb.Scan(ctx, f.opts.Device, func(fraction float64) {
		sp.UpdateMessage(fmt.Sprintf("Scanning %3.0f%%", fraction*100))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", f.opts.Device, err)
	}
	return titles, nil
}

func (f *Flow) transcode(ctx context.Context, output Output) error {
	fmt.Fprintf(f.opts.OutWriter, "Ripping title %d into %s\n", output.Title, output.FilePath)

	if err := os.MkdirAll(output.DirPath, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	line := ui.NewProgressLine(output.FileName)
	defer line.Done()

	job := handbrake.TranscodeJob{
		Device:            f.opts.Device,
		Output:            output.FilePath,
		Title:             output.Title,
		SubtitleLanguages: output.SubtitleLanguages,
	}

	err := f.hb.Transcode(ctx, job, func(p handbrake.Progress) {
		// The encode phase starts with its own quick scan pass.
		switch p.State {
		case handbrake.StateScanning:
			line.Update("scanning", p.Fraction)
		case handbrake.StateWorking:
			line.Update("transcoding", p.Fraction)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to rip title %d: %w", output.Title, err)
	}
	return nil
}
