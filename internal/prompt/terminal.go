// Package prompt reads answers to scheduling questions from a terminal.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

// CancelWord abandons a cancellable question.
const CancelWord = "cancel"

// Terminal asks questions on out and reads one line per answer from in.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Ask prints prompt and returns the trimmed answer. On a cancellable
// question, typing CancelWord or closing the input returns
// schedule.ErrCancelled.
func (t *Terminal) Ask(ctx context.Context, prompt string, cancellable bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	suffix := ": "
	if cancellable {
		suffix = fmt.Sprintf(" (or %q): ", CancelWord)
	}
	if _, err := fmt.Fprint(t.out, prompt+suffix); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}

	line, err := t.in.ReadString('\n')
	switch {
	case err == nil:
	case errors.Is(err, io.EOF) && line != "":
		// final line without a newline
	case errors.Is(err, io.EOF) && cancellable:
		return "", schedule.ErrCancelled
	default:
		return "", fmt.Errorf("read answer: %w", err)
	}

	answer := strings.TrimSpace(line)
	if cancellable && strings.EqualFold(answer, CancelWord) {
		return "", schedule.ErrCancelled
	}
	return answer, nil
}
