package adb

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/tas33n/DroidWright/internal/model"
	"github.com/tas33n/DroidWright/internal/platform"
)

// Tap implements platform.Gesturer.
func (c *Client) Tap(ctx context.Context, p model.Point) error {
	_, err := c.shell(ctx, "input", "tap", itoa(p.X), itoa(p.Y))
	return err
}

// LongTap implements platform.Gesturer as a swipe that does not move.
func (c *Client) LongTap(ctx context.Context, p model.Point, d time.Duration) error {
	return c.Swipe(ctx, p, p, d)
}

// Swipe implements platform.Gesturer.
func (c *Client) Swipe(ctx context.Context, from, to model.Point, d time.Duration) error {
	_, err := c.shell(ctx, "input", "swipe",
		itoa(from.X), itoa(from.Y), itoa(to.X), itoa(to.Y), itoa(int(d.Milliseconds())))
	return err
}

// InputText implements platform.Gesturer by typing into the focused field.
// "input text" cannot type a newline, so each one is sent as an Enter key
// press between the lines.
func (c *Client) InputText(ctx context.Context, text string) error {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			if err := c.PressKey(ctx, platform.KeyEnter); err != nil {
				return err
			}
		}
		for _, part := range TextChunks(line) {
			if _, err := c.shell(ctx, "input", "text", EscapeText(part)); err != nil {
				return err
			}
		}
	}
	return nil
}

// TextChunks splits a line so that no chunk contains a literal "%s", which
// "input text" would type as a space. The '%' ends one chunk and the 's'
// starts the next.
func TextChunks(line string) []string {
	var out []string
	for {
		i := strings.Index(line, "%s")
		if i < 0 {
			break
		}
		out = append(out, line[:i+1])
		line = line[i+1:]
	}
	if line != "" {
		out = append(out, line)
	}
	return out
}

// PressKey implements platform.Device.
func (c *Client) PressKey(ctx context.Context, key platform.Key) error {
	_, err := c.shell(ctx, "input", "keyevent", itoa(int(key)))
	return err
}

// EscapeText prepares one chunk for "input text", which runs through the
// device shell and treats %s as a space. The chunk must not contain a
// newline or a literal "%s"; see TextChunks.
func EscapeText(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r == ' ':
			b.WriteString("%s")
		case strings.ContainsRune(`\'"()<>|;&*?~$!#[]{}`+"`", r):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func itoa(n int) string { return strconv.Itoa(n) }
