package handbrake

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// HandBrakeCLI prints named JSON blocks on stdout, e.g.
//
//	Progress: {
//	    "Scanning": { ... }
//	}
//
// The body is indented with a single leading space per line and closed
// by a brace in column zero.
var eventPattern = regexp.MustCompile(`(?m)^([\w ]+): (\{\n(?: .*\n)+\})\n?`)

// run executes HandBrakeCLI with the given arguments and parses stdout
// as it goes, handing each complete JSON block to fn. It returns once
// the process exits; a non-zero exit becomes an error carrying the tail
// of stderr.
func (c *Client) run(ctx context.Context, args []string, fn EventFunc) error {
	argv := c.makeArgs(args...)

	if c.Verbose {
		fmt.Fprintf(c.logger(), "Running: %s\n", strings.Join(argv, " "))
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", c.bin(), err)
	}

	var pending []byte
	buf := make([]byte, 32*1024)
	var parseErr error

	for {
		n, readErr := stdout.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)

			events, rest, err := extractEvents(pending)
			if err != nil {
				parseErr = err
				kill(cmd)
				break
			}
			pending = rest

			for _, ev := range events {
				if fn == nil {
					continue
				}
				if err := fn(ev); err != nil {
					parseErr = err
					kill(cmd)
					break
				}
			}
			if parseErr != nil {
				break
			}
		}
		if readErr != nil {
			break
		}
	}

	waitErr := cmd.Wait()

	if parseErr != nil {
		return parseErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if waitErr != nil {
		return wrapToolError(c.bin()+" failed", stderrBuf.String(), waitErr)
	}
	return nil
}

// extractEvents pulls every complete JSON block out of buf, returning
// the parsed events and the remaining unconsumed bytes. An unparseable
// block is a hard error.
func extractEvents(buf []byte) ([]Event, []byte, error) {
	matches := eventPattern.FindAllSubmatchIndex(buf, -1)
	if len(matches) == 0 {
		return nil, buf, nil
	}

	events := make([]Event, 0, len(matches))
	for _, m := range matches {
		name := string(buf[m[2]:m[3]])
		raw := buf[m[4]:m[5]]

		if !gjson.ValidBytes(raw) {
			return nil, nil, ErrDecode
		}
		// Parse from a copy: buf is reused as more output arrives.
		events = append(events, Event{
			Name: strings.TrimSpace(name),
			Data: gjson.Parse(string(raw)),
		})
	}

	rest := buf[matches[len(matches)-1][1]:]
	return events, rest, nil
}
