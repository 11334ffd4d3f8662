package planner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tas33n/DroidWright/internal/action"
	"github.com/tas33n/DroidWright/internal/netfetch"
)

// HTTPSource asks a plan server for actions: it POSTs {"task": ...} to URL
// and expects an action list (possibly wrapped in text) in the reply.
type HTTPSource struct {
	fetcher netfetch.Fetcher
	url     string
	headers map[string]string
	log     zerolog.Logger
}

// NewHTTP creates an HTTP plan source.
func NewHTTP(fetcher netfetch.Fetcher, url string, headers map[string]string, log zerolog.Logger) *HTTPSource {
	return &HTTPSource{fetcher: fetcher, url: url, headers: headers, log: log}
}

// Plan implements Source.
func (h *HTTPSource) Plan(ctx context.Context, task string) ([]action.Action, error) {
	body, err := json.Marshal(map[string]string{"task": task, "prompt": Prompt(task)})
	if err != nil {
		return nil, err
	}
	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range h.headers {
		headers[k] = v
	}
	resp, err := h.fetcher.Fetch(ctx, h.url, netfetch.Options{Method: "POST", Headers: headers, Body: string(body)})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("plan server returned status %d", resp.Status)
	}
	h.log.Debug().Str("url", h.url).Int("bytes", len(resp.Body)).Msg("plan received")
	return ParsePlan(resp.Text())
}
