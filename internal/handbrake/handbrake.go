// Package handbrake wraps the HandBrakeCLI utility. It runs the tool
// with --json and surfaces the named JSON blocks HandBrake interleaves
// on stdout as events, while the process is still running. Requires
// HandBrakeCLI to be installed, of course.
package handbrake

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrDecode means HandBrake emitted a JSON block that did not parse.
	ErrDecode = errors.New("cannot decode HandBrake JSON output")

	// ErrNoScanOutput means a scan finished without a title set block.
	ErrNoScanOutput = errors.New("could not find scan output")
)

// Event is one named JSON block emitted by HandBrakeCLI, such as
// "Progress" or "JSON Title Set".
type Event struct {
	Name string
	Data gjson.Result
}

// EventFunc receives events as they are parsed. Returning an error
// aborts the run.
type EventFunc func(Event) error

// Encoding holds the tunable part of the transcode settings. The rest
// is fixed to defaults that produce a rip of identical quality with
// good player compatibility.
type Encoding struct {
	Quality string
	Preset  string
	Tune    string
}

func (e Encoding) withDefaults() Encoding {
	if e.Quality == "" {
		e.Quality = "18"
	}
	if e.Preset == "" {
		e.Preset = "medium"
	}
	if e.Tune == "" {
		e.Tune = "film"
	}
	return e
}

// Client invokes HandBrakeCLI and the eject helper.
type Client struct {
	Bin      string
	EjectBin string
	Encoding Encoding
	Verbose  bool
	Logger   io.Writer
}

// NewClient returns a client with the default binary names.
func NewClient() *Client {
	return &Client{Bin: "HandBrakeCLI", EjectBin: "eject"}
}

func (c *Client) bin() string {
	if c.Bin == "" {
		return "HandBrakeCLI"
	}
	return c.Bin
}

func (c *Client) logger() io.Writer {
	if c.Logger == nil {
		return os.Stderr
	}
	return c.Logger
}

// makeArgs builds the full argv with the right binary and the JSON flag.
func (c *Client) makeArgs(args ...string) []string {
	return append([]string{c.bin(), "--json"}, args...)
}

// Eject ejects the disc to kindly signify that the rip is complete.
// Nothing is sure here (is the command installed? is it even a drive
// and not an ISO image?), so the caller should treat a failure as a
// warning, never as fatal.
func (c *Client) Eject(device string) error {
	bin := c.EjectBin
	if bin == "" {
		bin = "eject"
	}
	cmd := exec.Command(bin, device)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("eject %s: %w", device, err)
	}
	return nil
}

// wrapToolError builds an error that prefers the tool's stderr tail
// when present.
func wrapToolError(action string, stderr string, err error) error {
	tail := stderrTail(stderr, 5)
	if tail != "" {
		return fmt.Errorf("%s: %s: %w", action, tail, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// stderrTail returns the last n non-empty lines of captured stderr.
func stderrTail(stderr string, n int) string {
	var lines []string
	for _, line := range strings.Split(stderr, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// kill is a best-effort cleanup for an aborted run.
func kill(cmd *exec.Cmd) {
	if cmd.Process != nil && (cmd.ProcessState == nil || !cmd.ProcessState.Exited()) {
		_ = cmd.Process.Kill()
	}
}
