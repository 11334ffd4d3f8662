package adb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/cenkalti/backoff/v4"

	"github.com/tas33n/DroidWright/internal/model"
	"github.com/tas33n/DroidWright/internal/platform"
)

const dumpPath = "/data/local/tmp/droidwright_view.xml"

// ErrNoHierarchy is returned when a dump does not contain a UI hierarchy.
var ErrNoHierarchy = errors.New("no UI hierarchy in dump")

// Snapshot implements platform.Snapshotter with uiautomator dump. Dumps are
// flaky while the UI animates, so a failed dump is retried twice after
// killing any stuck uiautomator process.
func (c *Client) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	var roots []model.Element
	attempt := 0
	op := func() error {
		attempt++
		if attempt > 1 {
			_, _ = c.shell(ctx, "pkill", "uiautomator")
		}
		out, err := c.shell(ctx, "uiautomator", "dump", dumpPath, "&&", "cat", dumpPath)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			c.log.Debug().Err(err).Int("attempt", attempt).Msg("ui dump failed")
			return err
		}
		roots, err = ParseHierarchy(out)
		if err != nil {
			c.log.Debug().Err(err).Int("attempt", attempt).Msg("ui dump unparseable")
		}
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(c.dumpRetryDelay), 2), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, fmt.Errorf("dump UI after %d attempts: %w", attempt, err)
	}
	snap := model.NewSnapshot(roots, time.Now())
	c.log.Debug().Int("elements", snap.Len()).Int("attempts", attempt).Msg("ui dumped")
	return snap, nil
}

// ParseHierarchy converts uiautomator dump output into element trees. Any
// text surrounding the XML document (adb banners, "UI hierchary dumped to"
// notices) is ignored.
func ParseHierarchy(out []byte) ([]model.Element, error) {
	start := bytes.Index(out, []byte("<?xml"))
	if start < 0 {
		start = bytes.Index(out, []byte("<hierarchy"))
	}
	if start < 0 {
		return nil, ErrNoHierarchy
	}
	out = out[start:]
	if end := bytes.LastIndexByte(out, '>'); end >= 0 {
		out = out[:end+1]
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(out); err != nil {
		return nil, fmt.Errorf("parse UI XML: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "hierarchy" {
		return nil, ErrNoHierarchy
	}
	var roots []model.Element
	for _, n := range root.SelectElements("node") {
		roots = append(roots, convertNode(n))
	}
	return roots, nil
}

func convertNode(n *etree.Element) model.Element {
	el := model.Element{
		Text:          n.SelectAttrValue("text", ""),
		Description:   n.SelectAttrValue("content-desc", ""),
		ResourceID:    n.SelectAttrValue("resource-id", ""),
		Class:         n.SelectAttrValue("class", ""),
		Package:       n.SelectAttrValue("package", ""),
		Clickable:     boolAttr(n, "clickable"),
		LongClickable: boolAttr(n, "long-clickable"),
		Scrollable:    boolAttr(n, "scrollable"),
		Enabled:       boolAttr(n, "enabled"),
		Checkable:     boolAttr(n, "checkable"),
		Checked:       boolAttr(n, "checked"),
		Focusable:     boolAttr(n, "focusable"),
		Focused:       boolAttr(n, "focused"),
		Selected:      boolAttr(n, "selected"),
		Password:      boolAttr(n, "password"),
	}
	if b, err := platform.ParseBounds(n.SelectAttrValue("bounds", "")); err == nil {
		el.Bounds = b
	}
	for _, child := range n.SelectElements("node") {
		el.Children = append(el.Children, convertNode(child))
	}
	return el
}

func boolAttr(n *etree.Element, key string) bool {
	return n.SelectAttrValue(key, "false") == "true"
}
