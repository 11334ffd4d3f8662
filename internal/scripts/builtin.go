package scripts

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tas33n/DroidWright/internal/action"
	"github.com/tas33n/DroidWright/internal/script"
)

func init() {
	register("like-posts", "Launch a feed app and like a number of posts, scrolling between them",
		[]Param{{"package", feedPackage}, {"count", "5"}}, likePosts)
	register("form-fill", "Fill a name and email form, submit it and check for a success message",
		[]Param{{"package", examplePackage}, {"name", "John Doe"}, {"email", "john@example.com"}}, formFill)
	register("scroll-find", "Scroll a list until an item appears, then tap it",
		[]Param{{"package", examplePackage}, {"target", "Target Item"}, {"container", "list_container"}, {"max_scrolls", "10"}}, scrollFind)
	register("storage", "Track the time between runs in persistent storage",
		[]Param{{"package", examplePackage}}, trackRuns)
	register("error-handling", "Launch an app and verify each step, reporting the first failure",
		[]Param{{"package", examplePackage}}, checkedLaunch)
	register("ai-automation", "Ask the configured planner for actions and run them",
		[]Param{{"package", feedPackage}, {"task", "Find and like the first post in the feed"}}, agentTask)
	register("dynamic-selectors", "Tap the first available button among several candidates",
		[]Param{{"package", examplePackage}}, dynamicSelectors)
	register("retry-loop", "Swipe through a list until a target appears, with a bounded number of attempts",
		[]Param{{"package", examplePackage}, {"target", "Target"}, {"attempts", "10"}}, retryLoop)
}

const (
	feedPackage    = "com.instagram.android"
	examplePackage = "com.example.app"
)

// launch starts the script's package and waits for it to settle.
func launch(c *script.Context, defPkg string, settle time.Duration) (bool, error) {
	ok, err := c.App.Launch(c.Param("package", defPkg))
	if err != nil {
		return false, err
	}
	return ok, c.Device.Sleep(settle)
}

func intParam(c *script.Context, key, def string) (int, error) {
	v := c.Param(key, def)
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("parameter %s: %q is not a non-negative integer", key, v)
	}
	return n, nil
}

// swipeUp moves the content up by most of a screen, revealing what is below.
func swipeUp(c *script.Context) error {
	size, err := c.Device.ScreenSize()
	if err != nil {
		return err
	}
	x := size.Width / 2
	return c.UI.Swipe(x, size.Height*8/10, x, size.Height*2/10, 500*time.Millisecond)
}

func likePosts(c *script.Context) script.Result {
	count, err := intParam(c, "count", "5")
	if err != nil {
		return script.Fail(err)
	}
	c.Log("Starting like automation")
	if _, err := launch(c, feedPackage, 3*time.Second); err != nil {
		return script.Fail(err)
	}
	loaded, err := c.UI.WaitFor(script.S{"text": "Home"}, 5*time.Second)
	if err != nil {
		return script.Fail(err)
	}
	if !loaded {
		return script.Notef("Feed not loaded")
	}

	liked := 0
	for i := 0; i < count; i++ {
		c.Logf("Liking post %d", i+1)
		for _, sel := range []script.S{{"desc": "Like"}, {"id": "row_feed_button_like"}} {
			ok, err := c.UI.Tap(sel)
			if err != nil {
				return script.Fail(err)
			}
			if ok {
				liked++
				break
			}
		}
		if err := c.Device.Sleep(2 * time.Second); err != nil {
			return script.Fail(err)
		}
		if err := swipeUp(c); err != nil {
			return script.Fail(err)
		}
		if err := c.Device.Sleep(3 * time.Second); err != nil {
			return script.Fail(err)
		}
	}
	c.Log("Automation completed")
	return script.OK(fmt.Sprintf("Liked %d posts", liked))
}

func formFill(c *script.Context) script.Result {
	c.Log("Filling form")
	if _, err := launch(c, examplePackage, 2*time.Second); err != nil {
		return script.Fail(err)
	}
	fields := []struct{ id, value string }{
		{"name_input", c.Param("name", "John Doe")},
		{"email_input", c.Param("email", "john@example.com")},
	}
	for _, f := range fields {
		ok, err := c.UI.SetText(script.S{"id": f.id}, f.value)
		if err != nil {
			return script.Fail(err)
		}
		if !ok {
			return script.Notef("Field %s not found", f.id)
		}
		if err := c.Device.Sleep(500 * time.Millisecond); err != nil {
			return script.Fail(err)
		}
	}
	if _, err := c.UI.Tap(script.S{"text": "Submit"}); err != nil {
		return script.Fail(err)
	}
	if err := c.Device.Sleep(2 * time.Second); err != nil {
		return script.Fail(err)
	}
	ok, err := c.UI.Exists(script.S{"text": "Success"})
	if err != nil {
		return script.Fail(err)
	}
	if !ok {
		return script.Notef("Submission failed")
	}
	return script.OK("Form submitted successfully")
}

func scrollFind(c *script.Context) script.Result {
	maxScrolls, err := intParam(c, "max_scrolls", "10")
	if err != nil {
		return script.Fail(err)
	}
	target := script.S{"text": c.Param("target", "Target Item")}
	c.Log("Searching for item")
	if _, err := launch(c, examplePackage, 2*time.Second); err != nil {
		return script.Fail(err)
	}
	found, err := c.UI.WaitFor(target, 10*time.Second,
		script.WithScrolls(maxScrolls), script.InContainer(script.S{"id": c.Param("container", "list_container")}))
	if err != nil {
		return script.Fail(err)
	}
	if !found {
		return script.Notef("Item not found")
	}
	if _, err := c.UI.Tap(target); err != nil {
		return script.Fail(err)
	}
	if err := c.Device.Sleep(time.Second); err != nil {
		return script.Fail(err)
	}
	return script.OK("Item found and tapped")
}

func trackRuns(c *script.Context) script.Result {
	const key = "lastRunTime"
	now := c.Now()
	last, ok, err := c.Storage.Get(key)
	if err != nil {
		return script.Fail(err)
	}
	if ok {
		if ms, err := strconv.ParseInt(last, 10, 64); err == nil {
			c.Logf("Time since last run: %dms", now.UnixMilli()-ms)
		} else {
			c.Logf("Ignoring unreadable %s %q", key, last)
		}
	}
	if _, err := launch(c, examplePackage, 2*time.Second); err != nil {
		return script.Fail(err)
	}
	if err := c.Storage.Put(key, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		return script.Fail(err)
	}
	return script.OK()
}

func checkedLaunch(c *script.Context) script.Result {
	res, err := checkedLaunchSteps(c)
	if err != nil {
		c.Logf("Error: %v", err)
		return script.Fail(err)
	}
	return res
}

func checkedLaunchSteps(c *script.Context) (script.Result, error) {
	pkg := c.Param("package", examplePackage)
	c.Log("Starting automation")
	started, err := launch(c, pkg, 3*time.Second)
	if err != nil {
		return script.Result{}, err
	}
	if !started {
		return script.Notef("Failed to launch app"), nil
	}
	current, err := c.App.PackageName()
	if err != nil {
		return script.Result{}, err
	}
	if current != pkg {
		return script.Notef("App did not launch correctly"), nil
	}
	ok, err := c.UI.WaitFor(script.S{"text": "Main"}, 5*time.Second)
	if err != nil {
		return script.Result{}, err
	}
	if !ok {
		return script.Notef("Main screen not found"), nil
	}
	if _, err := c.UI.Tap(script.S{"text": "Button"}); err != nil {
		return script.Result{}, err
	}
	if err := c.Device.Sleep(time.Second); err != nil {
		return script.Result{}, err
	}
	return script.OK("Automation completed"), nil
}

func agentTask(c *script.Context) script.Result {
	c.Log("Starting AI-powered automation")
	if _, err := launch(c, feedPackage, 3*time.Second); err != nil {
		return script.Fail(err)
	}
	rep, err := c.Agent.Do(c.Param("task", "Find and like the first post in the feed"), action.Policy{})
	switch {
	case errors.Is(err, script.ErrNoPlanner):
		c.Log("No planner configured; set planner.api_key or GEMINI_API_KEY")
		return script.Notef("Missing API key")
	case err != nil:
		c.Logf("AI agent failed: %v", err)
		return script.Notef("AI agent failed: %v", err)
	}
	c.Logf("AI responded with %d actions", rep.Steps)
	if !rep.OK {
		return script.Notef("%d of %d actions failed", rep.Steps-rep.Completed-rep.Skipped, rep.Steps)
	}
	return script.OK("AI automation completed")
}

func dynamicSelectors(c *script.Context) script.Result {
	c.Log("Using dynamic selectors")
	if _, err := launch(c, examplePackage, 2*time.Second); err != nil {
		return script.Fail(err)
	}

	safeTap := func(sel script.S) (bool, error) {
		ok, err := c.UI.Tap(sel)
		if err != nil || !ok {
			return false, err
		}
		return true, c.Device.Sleep(time.Second)
	}

	if _, found, err := c.UI.Find(script.S{"text": "Login", "clickable": "true"}); err != nil {
		return script.Fail(err)
	} else if found {
		if _, err := safeTap(script.S{"text": "Login"}); err != nil {
			return script.Fail(err)
		}
	}

	for _, label := range []string{"Submit", "Continue", "Next"} {
		ok, err := safeTap(script.S{"text": label})
		if err != nil {
			return script.Fail(err)
		}
		if ok {
			c.Logf("Tapped %s button", label)
			break
		}
	}
	return script.OK()
}

func retryLoop(c *script.Context) script.Result {
	maxAttempts, err := intParam(c, "attempts", "10")
	if err != nil {
		return script.Fail(err)
	}
	target := script.S{"text": c.Param("target", "Target")}
	c.Log("Searching with retry logic")
	if _, err := launch(c, examplePackage, 2*time.Second); err != nil {
		return script.Fail(err)
	}

	for attempts := 0; attempts < maxAttempts; {
		ok, err := c.UI.Tap(target)
		if err != nil {
			return script.Fail(err)
		}
		if ok {
			if err := c.Device.Sleep(time.Second); err != nil {
				return script.Fail(err)
			}
			c.Logf("Found target after %d attempts", attempts)
			return script.OK("Target found")
		}
		if err := swipeUp(c); err != nil {
			return script.Fail(err)
		}
		if err := c.Device.Sleep(2 * time.Second); err != nil {
			return script.Fail(err)
		}
		attempts++
		c.Logf("Attempt %d/%d", attempts, maxAttempts)
	}
	return script.Notef("Target not found after max attempts")
}
