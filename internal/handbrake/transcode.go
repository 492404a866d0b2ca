package handbrake

import (
	"context"
	"strconv"
	"strings"
)

// Transcode phase states as HandBrake reports them.
const (
	StateScanning = "SCANNING"
	StateWorking  = "WORKING"
	StateMuxing   = "MUXING"
)

// Progress is one progress update from a transcode run.
type Progress struct {
	// State is the phase HandBrake is in, e.g. SCANNING or WORKING.
	State string

	// Fraction is the phase completion in 0..1.
	Fraction float64
}

// TranscodeJob describes one title to rip into one output file.
type TranscodeJob struct {
	Device            string
	Output            string
	Title             int
	SubtitleLanguages []string
}

// Transcode rips a single title into a file, reporting progress events
// as the run advances. The encoder settings are fixed apart from the
// client's Encoding overrides; HandBrake only copies subtitles for
// languages it is given explicitly, so the job carries the language
// list collected from the scan.
func (c *Client) Transcode(ctx context.Context, job TranscodeJob, progress func(Progress)) error {
	return c.run(ctx, transcodeArgs(job, c.Encoding), func(ev Event) error {
		if ev.Name != "Progress" || progress == nil {
			return nil
		}

		state := ev.Data.Get("State").String()
		update := Progress{State: state}

		switch state {
		case StateScanning:
			update.Fraction = ev.Data.Get("Scanning.Progress").Float()
		case StateWorking:
			update.Fraction = ev.Data.Get("Working.Progress").Float()
		default:
			return nil
		}

		progress(update)
		return nil
	})
}

func transcodeArgs(job TranscodeJob, enc Encoding) []string {
	enc = enc.withDefaults()

	return []string{
		"--title", strconv.Itoa(job.Title),
		"--format", "av_mkv",
		"--optimize",
		"--encoder", "x264",
		"--encoder-preset", enc.Preset,
		"--encoder-tune", enc.Tune,
		"--quality", enc.Quality,
		"--two-pass",
		"--turbo",
		"--all-audio",
		"--aencoder", "copy:ac3",
		"--subtitle-lang-list", strings.Join(job.SubtitleLanguages, ","),
		"--all-subtitles",
		"-i", job.Device,
		"-o", job.Output,
	}
}
