package server

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tas33n/DroidWright/internal/action"
)

const selectorHelp = "Selector object, e.g. {\"text\":\"Login\"} or {\"id\":\"submit\",\"clickable\":true}. " +
	"Attributes: text, desc, id, class, package, clickable, longClickable, scrollable, enabled, " +
	"checkable, checked, focusable, focused, selected, password"

func (s *Server) registerTools() {
	// dump
	s.mcp.AddTool(
		mcp.NewTool("dump",
			mcp.WithDescription("Capture the on-screen UI hierarchy of the device"),
			mcp.WithBoolean("flat", mcp.Description("Return a flat list with path breadcrumbs instead of a tree")),
			mcp.WithBoolean("prune", mcp.Description("Drop layout-only wrappers with no text, id or interaction")),
		),
		s.handleDump,
	)

	// find
	s.mcp.AddTool(
		mcp.NewTool("find",
			mcp.WithDescription("Find elements matching a selector in the current screen"),
			mcp.WithObject("selector", mcp.Description(selectorHelp), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Max matches to return (0 = all)")),
		),
		s.handleFind,
	)

	// tap
	s.mcp.AddTool(
		mcp.NewTool("tap",
			mcp.WithDescription("Tap the centre of the first element matching a selector, or a screen point"),
			mcp.WithObject("selector", mcp.Description(selectorHelp)),
			mcp.WithNumber("x", mcp.Description("Tap at X coordinate")),
			mcp.WithNumber("y", mcp.Description("Tap at Y coordinate")),
		),
		s.actionHandler(action.KindTap),
	)

	// long_tap
	s.mcp.AddTool(
		mcp.NewTool("long_tap",
			mcp.WithDescription("Press and hold an element or a screen point"),
			mcp.WithObject("selector", mcp.Description(selectorHelp)),
			mcp.WithNumber("x", mcp.Description("X coordinate")),
			mcp.WithNumber("y", mcp.Description("Y coordinate")),
			mcp.WithNumber("duration", mcp.Description("Hold time in ms")),
		),
		s.actionHandler(action.KindLongTap),
	)

	// set_text
	s.mcp.AddTool(
		mcp.NewTool("set_text",
			mcp.WithDescription("Focus an input field and type text into it"),
			mcp.WithObject("selector", mcp.Description(selectorHelp), mcp.Required()),
			mcp.WithString("text", mcp.Description("Text to type"), mcp.Required()),
		),
		s.actionHandler(action.KindSetText),
	)

	// swipe
	s.mcp.AddTool(
		mcp.NewTool("swipe",
			mcp.WithDescription("Swipe between two screen points"),
			mcp.WithNumber("x1", mcp.Description("Start X"), mcp.Required()),
			mcp.WithNumber("y1", mcp.Description("Start Y"), mcp.Required()),
			mcp.WithNumber("x2", mcp.Description("End X"), mcp.Required()),
			mcp.WithNumber("y2", mcp.Description("End Y"), mcp.Required()),
			mcp.WithNumber("duration", mcp.Description("Gesture time in ms")),
		),
		s.actionHandler(action.KindSwipe),
	)

	// scroll
	s.mcp.AddTool(
		mcp.NewTool("scroll",
			mcp.WithDescription("Scroll a container, or the whole screen, by one page"),
			mcp.WithObject("selector", mcp.Description("Container to scroll (default: full screen)")),
			mcp.WithString("direction", mcp.Description("down (default) or up"), mcp.Enum("down", "up")),
		),
		s.actionHandler(action.KindScroll),
	)

	// wait_for
	s.mcp.AddTool(
		mcp.NewTool("wait_for",
			mcp.WithDescription("Wait for an element to appear, optionally scrolling a container to reveal it"),
			mcp.WithObject("selector", mcp.Description(selectorHelp), mcp.Required()),
			mcp.WithNumber("timeout", mcp.Description("Max time to wait in ms (0 = check once)")),
			mcp.WithNumber("maxScrolls", mcp.Description("Scroll up to this many times instead of polling")),
			mcp.WithObject("container", mcp.Description("Container to scroll (default: full screen)")),
		),
		s.actionHandler(action.KindWaitFor),
	)

	// press
	s.mcp.AddTool(
		mcp.NewTool("press",
			mcp.WithDescription("Press a hardware or navigation key"),
			mcp.WithString("key", mcp.Description("back, home, enter, menu, recent, tab, delete, power, volume_up, volume_down, search, or a keycode"), mcp.Required()),
		),
		s.actionHandler(action.KindPressKey),
	)

	// launch
	s.mcp.AddTool(
		mcp.NewTool("launch",
			mcp.WithDescription("Start an app by package name"),
			mcp.WithString("package", mcp.Description("Package name, e.g. com.android.settings"), mcp.Required()),
		),
		s.handleLaunch,
	)

	// screenshot
	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Capture the device screen"),
			mcp.WithString("format", mcp.Description("Image format: png, jpg (default: png)")),
			mcp.WithNumber("quality", mcp.Description("JPEG quality 1-100 (default: 80)")),
			mcp.WithNumber("scale", mcp.Description("Scale factor 0.1-1.0 (default: 0.5)")),
			mcp.WithBoolean("annotate", mcp.Description("Draw element boxes with tap-point labels")),
			mcp.WithString("labels", mcp.Description("Annotation labels: coords (default) or index"), mcp.Enum("coords", "index")),
		),
		s.handleScreenshot,
	)

	// do (batch)
	s.mcp.AddTool(
		mcp.NewTool("do",
			mcp.WithDescription("Execute a list of actions in order. Each step is an object with an \"action\" tag: "+
				"ui.tap, ui.longTap, ui.setText, ui.swipe, ui.scroll, ui.waitFor, device.press, device.sleep, log"),
			mcp.WithArray("steps", mcp.Description("Array of step objects"), mcp.Required()),
			mcp.WithBoolean("stop_on_error", mcp.Description("Stop on first error (default: true)")),
		),
		s.handleDo,
	)

	// plan
	s.mcp.AddTool(
		mcp.NewTool("plan",
			mcp.WithDescription("Ask the configured planner for actions that accomplish a task, then run them"),
			mcp.WithString("task", mcp.Description("What to accomplish, in plain language"), mcp.Required()),
			mcp.WithBoolean("dry_run", mcp.Description("Return the planned actions without running them")),
			mcp.WithBoolean("stop_on_error", mcp.Description("Stop on first error (default: true)")),
		),
		s.handlePlan,
	)

	// scripts
	s.mcp.AddTool(
		mcp.NewTool("scripts",
			mcp.WithDescription("List the built-in automation scripts and their parameters"),
		),
		s.handleScripts,
	)

	// run_script
	s.mcp.AddTool(
		mcp.NewTool("run_script",
			mcp.WithDescription("Run a built-in automation script to completion"),
			mcp.WithString("name", mcp.Description("Script name, see the scripts tool"), mcp.Required()),
			mcp.WithObject("params", mcp.Description("Script parameters as string values")),
		),
		s.handleRunScript,
	)
}
