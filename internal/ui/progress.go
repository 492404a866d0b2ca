// Package ui provides TTY-aware progress feedback. Everything here is
// a no-op when stderr is not a terminal, so piped output stays clean.
package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

func stderrIsTerminal() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

// Spinner wraps briandowns/spinner with TTY awareness.
type Spinner struct {
	s       *spinner.Spinner
	enabled bool
}

// NewSpinner creates a new spinner that only displays on TTY.
func NewSpinner(message string) *Spinner {
	if !stderrIsTerminal() {
		return &Spinner{enabled: false}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	return &Spinner{s: s, enabled: true}
}

// Start begins the spinner animation.
func (sp *Spinner) Start() {
	if sp.enabled && sp.s != nil {
		sp.s.Start()
	}
}

// Stop ends the spinner animation.
func (sp *Spinner) Stop() {
	if sp.enabled && sp.s != nil {
		sp.s.Stop()
	}
}

// UpdateMessage changes the spinner message.
func (sp *Spinner) UpdateMessage(message string) {
	if sp.enabled && sp.s != nil {
		sp.s.Suffix = " " + message
	}
}

// ProgressLine renders a single in-place progress bar for a long
// transcode, labeled with the file being written.
type ProgressLine struct {
	label   string
	enabled bool
	width   int
}

// NewProgressLine creates a progress line for the given label. Like the
// spinner it only renders on a TTY.
func NewProgressLine(label string) *ProgressLine {
	if !stderrIsTerminal() {
		return &ProgressLine{label: label}
	}

	width, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	return &ProgressLine{label: label, enabled: true, width: width}
}

// Update redraws the line with the current phase and fraction (0..1).
func (p *ProgressLine) Update(phase string, fraction float64) {
	if !p.enabled {
		return
	}
	fmt.Fprint(os.Stderr, "\r"+p.render(phase, fraction))
}

// Done clears the line.
func (p *ProgressLine) Done() {
	if !p.enabled {
		return
	}
	fmt.Fprint(os.Stderr, "\r"+strings.Repeat(" ", p.width-1)+"\r")
}

func (p *ProgressLine) render(phase string, fraction float64) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	prefix := fmt.Sprintf("%s [%s] ", p.label, phase)
	percent := fmt.Sprintf(" %3.0f%%", fraction*100)

	barWidth := p.width - len([]rune(prefix)) - len(percent) - 3
	if barWidth < 10 {
		// Not enough room for a bar, fall back to text only.
		line := []rune(prefix + percent)
		if len(line) >= p.width {
			line = line[:p.width-1]
		}
		return string(line)
	}

	filled := int(fraction * float64(barWidth))
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled)
	return prefix + "|" + bar + "|" + percent
}
