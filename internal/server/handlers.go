package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/tas33n/DroidWright/internal/action"
	"github.com/tas33n/DroidWright/internal/imaging"
	"github.com/tas33n/DroidWright/internal/model"
	"github.com/tas33n/DroidWright/internal/output"
	"github.com/tas33n/DroidWright/internal/script"
	"github.com/tas33n/DroidWright/internal/scripts"
	"github.com/tas33n/DroidWright/internal/selector"
)

// resultToText serializes a tool result to YAML for the MCP response.
func resultToText(v any) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

// FindResult is the output of the find tool.
type FindResult struct {
	Found   bool    `yaml:"found"             json:"found"`
	Count   int     `yaml:"count"             json:"count"`
	Matches []Match `yaml:"matches,omitempty" json:"matches,omitempty"`
}

// Match describes one element matched by a selector.
type Match struct {
	Index       int         `yaml:"i"               json:"i"`
	Depth       int         `yaml:"depth"           json:"depth"` // Nesting level, 0 for a root
	Text        string      `yaml:"text,omitempty"  json:"text,omitempty"`
	Description string      `yaml:"desc,omitempty"  json:"desc,omitempty"`
	ResourceID  string      `yaml:"id,omitempty"    json:"id,omitempty"`
	Class       string      `yaml:"class,omitempty" json:"class,omitempty"`
	Bounds      model.Rect  `yaml:"b"               json:"b"`
	Tap         model.Point `yaml:"tap"             json:"tap"`
}

// NewMatch describes h.
func NewMatch(h model.Handle) Match {
	el := h.Element()
	return Match{
		Index:       h.Index(),
		Depth:       h.Depth(),
		Text:        el.Text,
		Description: el.Description,
		ResourceID:  el.ResourceID,
		Class:       el.Class,
		Bounds:      el.Bounds,
		Tap:         h.TapPoint(),
	}
}

// PlanResult is the output of the plan tool.
type PlanResult struct {
	Task    string           `yaml:"task"             json:"task"`
	Actions []map[string]any `yaml:"actions"          json:"actions"`
	Report  *action.Report   `yaml:"report,omitempty" json:"report,omitempty"`
}

// ScriptInfo describes a built-in script.
type ScriptInfo struct {
	Name    string          `yaml:"name"             json:"name"`
	Summary string          `yaml:"summary"          json:"summary"`
	Params  []scripts.Param `yaml:"params,omitempty" json:"params,omitempty"`
}

func (s *Server) handleDump(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	flat := boolParam(params, "flat", false)
	prune := boolParam(params, "prune", false)

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	elements := snap.Roots
	if prune {
		elements = model.PruneLayout(elements)
	}
	pkg := s.currentPackage(ctx)

	if flat {
		return mcp.NewToolResultText(resultToText(output.DumpFlatResult{
			Device:   s.deps.Device,
			Package:  pkg,
			TS:       snap.TakenAt.UnixMilli(),
			Hash:     snap.Hash(),
			Elements: model.FlattenElements(elements),
		})), nil
	}
	return mcp.NewToolResultText(resultToText(output.DumpResult{
		Device:   s.deps.Device,
		Package:  pkg,
		TS:       snap.TakenAt.UnixMilli(),
		Hash:     snap.Hash(),
		Elements: elements,
	})), nil
}

func (s *Server) handleFind(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	sel, err := selectorParam(params, "selector")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := intParam(params, "limit", 0)

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	handles, err := selector.FindAll(sel, snap)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := FindResult{Found: len(handles) > 0, Count: len(handles)}
	for i, h := range handles {
		if limit > 0 && i >= limit {
			break
		}
		res.Matches = append(res.Matches, NewMatch(h))
	}
	return mcp.NewToolResultText(resultToText(res)), nil
}

// actionHandler returns a handler that decodes the tool arguments as the
// wire shape of kind and executes the action.
func (s *Server) actionHandler(kind action.Kind) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := request.GetArguments()
		raw := make(map[string]any, len(params)+1)
		for k, v := range params {
			raw[k] = v
		}
		raw["action"] = string(kind)
		for _, key := range []string{"selector", "container"} {
			if err := decodeSelectorString(raw, key); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}
		return s.execute(ctx, action.Decode(raw))
	}
}

// execute runs one action under the provider lock and reports it as a step.
func (s *Server) execute(ctx context.Context, a action.Action) (*mcp.CallToolResult, error) {
	s.providerMu.Lock()
	defer s.providerMu.Unlock()
	defer s.cache.Invalidate()

	start := s.now()
	out, err := s.dispatcher.Execute(ctx, a)
	res := action.StepResult{
		Action:  string(a.Kind()),
		Point:   out.Point,
		Found:   out.Found,
		Elapsed: s.now().Sub(start).Round(time.Millisecond).String(),
	}
	switch {
	case err != nil:
		res.Status = action.StatusError
		res.Error = err.Error()
		return mcp.NewToolResultError(resultToText(res)), nil
	case out.Skipped:
		res.Status = action.StatusSkipped
	default:
		res.Status = action.StatusOK
	}
	return mcp.NewToolResultText(resultToText(res)), nil
}

func (s *Server) handleLaunch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pkg := stringParam(request.GetArguments(), "package", "")
	if pkg == "" {
		return mcp.NewToolResultError("package is required"), nil
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()
	defer s.cache.Invalidate()

	if s.deps.Provider.Apps == nil {
		return mcp.NewToolResultError("app control not available on this device"), nil
	}
	ok, err := s.deps.Provider.Apps.Launch(ctx, pkg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := struct {
		Package  string `yaml:"package"`
		Launched bool   `yaml:"launched"`
	}{pkg, ok}
	if !ok {
		return mcp.NewToolResultError(resultToText(res)), nil
	}
	return mcp.NewToolResultText(resultToText(res)), nil
}

func (s *Server) handleScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	opts := imaging.Options{
		Format:  stringParam(params, "format", "png"),
		Quality: intParam(params, "quality", 80),
		Scale:   floatParam(params, "scale", 0.5),
	}
	if stringParam(params, "labels", "coords") == "index" {
		opts.Labels = imaging.LabelIndex
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	if s.deps.Provider.Device == nil {
		return mcp.NewToolResultError("screenshot not supported on this device"), nil
	}
	data, err := s.deps.Provider.Device.Screenshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if boolParam(params, "annotate", false) {
		snap, err := s.cache.Snapshot(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		opts.Annotate = snap.Roots
	}
	img, mimeType, err := imaging.Process(data, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.ImageContent{
				Type:     "image",
				Data:     base64.StdEncoding.EncodeToString(img),
				MIMEType: mimeType,
			},
		},
	}, nil
}

func (s *Server) handleDo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	stopOnError := boolParam(params, "stop_on_error", true)

	stepsRaw, ok := params["steps"]
	if !ok {
		return mcp.NewToolResultError("steps parameter is required"), nil
	}
	if _, ok := stepsRaw.([]any); !ok {
		return mcp.NewToolResultError("steps must be an array"), nil
	}
	data, err := json.Marshal(stepsRaw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	actions, err := action.ParseSequence(data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()
	defer s.cache.Invalidate()

	rep := s.dispatcher.Run(ctx, actions, action.Policy{StopOnError: stopOnError})
	if !rep.OK {
		return mcp.NewToolResultError(resultToText(rep)), nil
	}
	return mcp.NewToolResultText(resultToText(rep)), nil
}

func (s *Server) handlePlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	task := strings.TrimSpace(stringParam(params, "task", ""))
	if task == "" {
		return mcp.NewToolResultError("task is required"), nil
	}
	if s.deps.Planner == nil {
		return mcp.NewToolResultError(script.ErrNoPlanner.Error()), nil
	}

	actions, err := s.deps.Planner.Plan(ctx, task)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("plan: %v", err)), nil
	}
	res := PlanResult{Task: task, Actions: make([]map[string]any, 0, len(actions))}
	for _, a := range actions {
		res.Actions = append(res.Actions, action.Encode(a))
	}
	s.log.Info().Str("task", task).Int("actions", len(actions)).Msg("planned")
	if boolParam(params, "dry_run", false) {
		return mcp.NewToolResultText(resultToText(res)), nil
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()
	defer s.cache.Invalidate()

	rep := s.dispatcher.Run(ctx, actions, action.Policy{StopOnError: boolParam(params, "stop_on_error", true)})
	res.Report = &rep
	if !rep.OK {
		return mcp.NewToolResultError(resultToText(res)), nil
	}
	return mcp.NewToolResultText(resultToText(res)), nil
}

func (s *Server) handleScripts(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var infos []ScriptInfo
	for _, sc := range scripts.All() {
		infos = append(infos, ScriptInfo{Name: sc.Name(), Summary: sc.Summary(), Params: sc.Params()})
	}
	return mcp.NewToolResultText(resultToText(infos)), nil
}

func (s *Server) handleRunScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	name := stringParam(params, "name", "")
	sc, ok := scripts.Lookup(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown script %q (available: %s)", name, strings.Join(scriptNames(), ", "))), nil
	}
	scriptParams, err := stringMapParam(params, "params")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	deps := script.Deps{
		Provider: s.deps.Provider,
		Fetcher:  s.deps.Fetcher,
		Planner:  s.deps.Planner,
		Device:   s.deps.Device,
		Params:   scriptParams,
	}
	if s.deps.Storage != nil {
		deps.Store = s.deps.Storage(name)
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()
	defer s.cache.Invalidate()

	r := script.NewRunner(deps, s.cfg.Run, s.log, script.WithClock(s.now, s.sleep))
	rec := r.Run(ctx, sc)
	if rec.Failed() {
		return mcp.NewToolResultError(resultToText(rec)), nil
	}
	return mcp.NewToolResultText(resultToText(rec)), nil
}

// currentPackage returns the foreground package, or "" when unknown.
func (s *Server) currentPackage(ctx context.Context) string {
	if s.deps.Provider.Apps == nil {
		return ""
	}
	pkg, err := s.deps.Provider.Apps.CurrentPackage(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("current package unavailable")
		return ""
	}
	return pkg
}

func scriptNames() []string {
	var names []string
	for _, sc := range scripts.All() {
		names = append(names, sc.Name())
	}
	return names
}

// Parameter extraction helpers for tool arguments

func stringParam(params map[string]any, key, defaultVal string) string {
	if v, ok := params[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func intParam(params map[string]any, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		}
	}
	return defaultVal
}

func floatParam(params map[string]any, key string, defaultVal float64) float64 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return defaultVal
}

func boolParam(params map[string]any, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// selectorParam reads a selector given as an object or as a JSON string.
func selectorParam(params map[string]any, key string) (selector.Selector, error) {
	if err := decodeSelectorString(params, key); err != nil {
		return selector.Selector{}, err
	}
	v, ok := params[key]
	if !ok || v == nil {
		return selector.Selector{}, fmt.Errorf("%s is required", key)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return selector.Selector{}, fmt.Errorf("%s must be an object, got %T", key, v)
	}
	sel, err := selector.Parse(m)
	if err != nil {
		return selector.Selector{}, fmt.Errorf("%s: %w", key, err)
	}
	return sel, nil
}

// decodeSelectorString replaces a JSON-encoded selector string with the
// object it encodes. Some clients send nested objects as strings.
func decodeSelectorString(params map[string]any, key string) error {
	str, ok := params[key].(string)
	if !ok {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(str), &m); err != nil {
		return fmt.Errorf("%s: expected a selector object", key)
	}
	params[key] = m
	return nil
}

// stringMapParam reads an object of scalar values as strings.
func stringMapParam(params map[string]any, key string) (map[string]string, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an object, got %T", key, v)
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			out[k] = val
		case bool, float64, int:
			out[k] = fmt.Sprintf("%v", val)
		default:
			return nil, fmt.Errorf("%s.%s: unsupported value type %T", key, k, val)
		}
	}
	return out, nil
}
