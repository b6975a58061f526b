// Package speech reads summaries aloud through an external text-to-speech program.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Adda-Baaj/khobor-desk/internal/logger"
)

// DefaultCommand is the TTS program used when none is configured.
const DefaultCommand = "espeak"

// Command speaks by running a program with the text as its final argument,
// placed after "--" so the program never reads it as an option.
type Command struct {
	name string
	args []string
	log  logger.Logger
}

// NewCommand builds a Command speaker. The program must be on PATH.
func NewCommand(name string, args []string, log logger.Logger) (*Command, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultCommand
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("tts program %q: %w", name, err)
	}
	return &Command{name: path, args: append([]string(nil), args...), log: logger.Ensure(log)}, nil
}

// Speak runs the program and waits for it to exit. Cancelling ctx kills it.
func (c *Command) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("nothing to speak")
	}

	args := append(append([]string(nil), c.args...), "--", text)
	cmd := exec.CommandContext(ctx, c.name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.log.DebugObj("speaking", "tts_start", map[string]any{"program": c.name, "chars": len(text)})
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %s", err, msg)
		}
		return err
	}
	return nil
}

// Discard accepts every utterance and returns immediately, or when ctx ends
// if Block is set.
type Discard struct {
	Block bool
}

// Speak implements feed.Speaker.
func (d Discard) Speak(ctx context.Context, _ string) error {
	if d.Block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}
