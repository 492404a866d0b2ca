// Package rip turns a title map and a scanned disc into transcode jobs
// and drives them through the HandBrake wrapper.
package rip

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultEpisodeNameFormat is the file name template; {name} is
// replaced by the series name and {episode} by the episode name.
const DefaultEpisodeNameFormat = "{name} — DVDRip — {episode}"

// TitleMapEntry maps one DVD title ID to an episode name.
type TitleMapEntry struct {
	Title int    `yaml:"title"`
	Name  string `yaml:"name"`
}

// ParseTitleMapEntry parses a CLI title map value of the form
// "{title_id}={title_name}", for example "1=S02E04".
func ParseTitleMapEntry(val string) (TitleMapEntry, error) {
	id, name, found := strings.Cut(val, "=")

	title, err := strconv.Atoi(strings.TrimSpace(id))
	if !found || err != nil || name == "" {
		return TitleMapEntry{}, fmt.Errorf(
			"title map should be of format '{title_id}={title_name}', by example '1=S02E04': got %q", val)
	}

	return TitleMapEntry{Title: title, Name: name}, nil
}

// Plan is everything needed to rip one disc.
type Plan struct {
	SeriesName        string          `yaml:"series_name"`
	EpisodeNameFormat string          `yaml:"episode_name_format"`
	TitleMap          []TitleMapEntry `yaml:"titles"`
}

// LoadPlan reads a YAML plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan file %s: %w", path, err)
	}
	return &plan, nil
}

// Validate checks that the plan is complete enough to rip.
func (p *Plan) Validate() error {
	if p.SeriesName == "" {
		return fmt.Errorf("plan is missing a series name")
	}
	if len(p.TitleMap) == 0 {
		return fmt.Errorf("plan has no title map entries")
	}

	seen := make(map[int]bool)
	for _, entry := range p.TitleMap {
		if entry.Name == "" {
			return fmt.Errorf("title %d has no episode name", entry.Title)
		}
		if seen[entry.Title] {
			return fmt.Errorf("title %d is mapped twice", entry.Title)
		}
		seen[entry.Title] = true
	}
	return nil
}

// EpisodeFileName renders the file name for one episode, without the
// directory but with the container extension.
func (p *Plan) EpisodeFileName(episode string) string {
	format := p.EpisodeNameFormat
	if format == "" {
		format = DefaultEpisodeNameFormat
	}

	name := strings.ReplaceAll(format, "{name}", p.SeriesName)
	name = strings.ReplaceAll(name, "{episode}", episode)
	return name + ".mkv"
}
