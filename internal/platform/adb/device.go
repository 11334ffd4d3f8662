package adb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tas33n/DroidWright/internal/model"
)

var (
	sizeRe  = regexp.MustCompile(`(Physical|Override) size:\s*(\d+)x(\d+)`)
	focusRe = regexp.MustCompile(`(?:mCurrentFocus|mFocusedApp)=.*?\s([A-Za-z0-9_.]+)/`)
)

// ErrNoScreenSize is returned when "wm size" output cannot be parsed.
var ErrNoScreenSize = errors.New("could not determine screen size")

// ScreenSize implements platform.Device. An override size, when set, wins
// over the physical size because input coordinates follow it.
func (c *Client) ScreenSize(ctx context.Context) (model.Size, error) {
	out, err := c.shell(ctx, "wm", "size")
	if err != nil {
		return model.Size{}, err
	}
	return ParseScreenSize(string(out))
}

// ParseScreenSize parses "wm size" output.
func ParseScreenSize(out string) (model.Size, error) {
	var size model.Size
	found := false
	for _, m := range sizeRe.FindAllStringSubmatch(out, -1) {
		w, _ := strconv.Atoi(m[2])
		h, _ := strconv.Atoi(m[3])
		if m[1] == "Override" || !found {
			size = model.Size{Width: w, Height: h}
			found = true
		}
	}
	if !found || size.Width <= 0 || size.Height <= 0 {
		return model.Size{}, fmt.Errorf("%w: %q", ErrNoScreenSize, strings.TrimSpace(out))
	}
	return size, nil
}

// Screenshot implements platform.Device.
func (c *Client) Screenshot(ctx context.Context) ([]byte, error) {
	out, err := c.adb(ctx, "exec-out", "screencap", "-p")
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(out, []byte("\x89PNG")) {
		return nil, errors.New("screencap did not return a PNG")
	}
	return out, nil
}

// Launch implements platform.AppManager using monkey to fire the package's
// launcher intent.
func (c *Client) Launch(ctx context.Context, pkg string) (bool, error) {
	if pkg == "" {
		return false, errors.New("empty package name")
	}
	out, err := c.shell(ctx, "monkey", "-p", pkg, "-c", "android.intent.category.LAUNCHER", "1")
	text := string(out)
	if strings.Contains(text, "No activities found") || strings.Contains(text, "monkey aborted") {
		c.log.Debug().Str("package", pkg).Msg("launch failed: no launcher activity")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CurrentPackage implements platform.AppManager.
func (c *Client) CurrentPackage(ctx context.Context) (string, error) {
	out, err := c.shell(ctx, "dumpsys", "window")
	if err != nil {
		return "", err
	}
	return ParseFocusedPackage(string(out)), nil
}

// ParseFocusedPackage extracts the focused window's package from
// "dumpsys window" output. It returns "" when nothing is focused.
func ParseFocusedPackage(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "mCurrentFocus=") && !strings.HasPrefix(line, "mFocusedApp=") {
			continue
		}
		if m := focusRe.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}
