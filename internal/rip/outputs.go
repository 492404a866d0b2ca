package rip

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/xowap/bureaudesrip/internal/handbrake"
)

// ErrTitlesNotFound means the title map references titles that the disc
// scan did not report.
var ErrTitlesNotFound = errors.New("titles not found on disc")

// Output is the full spec for one expected output file.
type Output struct {
	DirPath           string
	FilePath          string
	FileName          string
	Title             int
	SubtitleLanguages []string
}

// CheckConsistency verifies that every title the plan wants to extract
// actually exists in the scan, so the rip can fail before any transcode
// starts.
func (p *Plan) CheckConsistency(titles *handbrake.TitleSet) error {
	var missing []int
	for _, entry := range p.TitleMap {
		if _, ok := titles.Lookup(entry.Title); !ok {
			missing = append(missing, entry.Title)
		}
	}

	if len(missing) > 0 {
		sort.Ints(missing)
		return fmt.Errorf("%w: %v", ErrTitlesNotFound, missing)
	}
	return nil
}

// Outputs computes the expected output files from the plan and the scan,
// in title map order. The subtitle languages come from the scan because
// HandBrake needs them listed explicitly to copy the subtitle tracks.
func (p *Plan) Outputs(outputDir string, titles *handbrake.TitleSet) ([]Output, error) {
	if err := p.CheckConsistency(titles); err != nil {
		return nil, err
	}

	outputs := make([]Output, 0, len(p.TitleMap))
	for _, entry := range p.TitleMap {
		title, _ := titles.Lookup(entry.Title)
		fileName := p.EpisodeFileName(entry.Name)

		outputs = append(outputs, Output{
			DirPath:           outputDir,
			FilePath:          filepath.Join(outputDir, fileName),
			FileName:          fileName,
			Title:             entry.Title,
			SubtitleLanguages: title.SubtitleLanguages,
		})
	}
	return outputs, nil
}
