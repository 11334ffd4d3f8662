// Package netfetch performs the HTTP requests scripts make, retrying
// transient failures.
package netfetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Options describes a request. An empty Method means GET.
type Options struct {
	Method  string
	Headers map[string]string
	Body    string
}

// Response is a completed HTTP exchange. Non-2xx statuses are responses,
// not errors; the caller decides what they mean.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Text returns the body as a string.
func (r *Response) Text() string { return string(r.Body) }

// OK reports whether the status is 2xx.
func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Fetcher performs HTTP requests.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts Options) (*Response, error)
}

// Config controls timeouts and retries.
type Config struct {
	Timeout    time.Duration `mapstructure:"timeout"`     // Per attempt
	MaxElapsed time.Duration `mapstructure:"max_elapsed"` // Total retry budget; 0 disables retries
	MaxBody    int64         `mapstructure:"max_body"`    // Response size limit in bytes
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Timeout:    30 * time.Second,
		MaxElapsed: time.Minute,
		MaxBody:    10 << 20,
	}
}

// HTTP is a Fetcher over net/http.
type HTTP struct {
	client *http.Client
	cfg    Config
	log    zerolog.Logger
}

// New creates an HTTP fetcher.
func New(cfg Config, log zerolog.Logger) *HTTP {
	return &HTTP{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		log:    log,
	}
}

// transientStatusError carries a response whose status is worth retrying.
type transientStatusError struct {
	resp *Response
}

func (e *transientStatusError) Error() string {
	return fmt.Sprintf("transient HTTP status %d", e.resp.Status)
}

// Fetch implements Fetcher. Network errors and 429/5xx statuses are retried
// with exponential backoff; when the budget runs out on a bad status, that
// last response is returned.
func (h *HTTP) Fetch(ctx context.Context, url string, opts Options) (*Response, error) {
	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}

	var result *Response
	attempt := 0
	operation := func() error {
		attempt++
		var body io.Reader
		if opts.Body != "" {
			body = strings.NewReader(opts.Body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		for k, v := range opts.Headers {
			req.Header.Set(k, v)
		}

		start := time.Now()
		resp, err := h.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			h.log.Warn().Err(err).Int("attempt", attempt).Msg("network error, retrying")
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBody()+1))
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if int64(len(data)) > h.maxBody() {
			return backoff.Permanent(fmt.Errorf("response exceeds %d bytes", h.maxBody()))
		}
		result = &Response{Status: resp.StatusCode, Header: resp.Header, Body: bytes.Clone(data)}
		h.log.Debug().Str("method", method).Str("url", url).Int("status", resp.StatusCode).
			Dur("duration", time.Since(start)).Msg("fetch")

		if isTransient(resp.StatusCode) {
			return &transientStatusError{resp: result}
		}
		return nil
	}

	var b backoff.BackOff = &backoff.StopBackOff{}
	if h.cfg.MaxElapsed > 0 {
		eb := backoff.NewExponentialBackOff()
		eb.MaxElapsedTime = h.cfg.MaxElapsed
		b = eb
	}
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		var te *transientStatusError
		if errors.As(err, &te) {
			return te.resp, nil
		}
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return result, nil
}

func (h *HTTP) maxBody() int64 {
	if h.cfg.MaxBody <= 0 {
		return DefaultConfig().MaxBody
	}
	return h.cfg.MaxBody
}

func isTransient(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
