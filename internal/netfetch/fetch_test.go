package netfetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{Timeout: 5 * time.Second, MaxElapsed: 5 * time.Second, MaxBody: 1 << 20}
}

func TestFetch_PostsBodyAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"task":"like"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := New(fastConfig(), zerolog.Nop()).Fetch(context.Background(), srv.URL, Options{
		Method:  "post",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    `{"task":"like"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.True(t, resp.OK())
	assert.Equal(t, `{"ok":true}`, resp.Text())
}

func TestFetch_RetriesTransientStatus(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ready"))
	}))
	defer srv.Close()

	resp, err := New(fastConfig(), zerolog.Nop()).Fetch(context.Background(), srv.URL, Options{})
	require.NoError(t, err)
	assert.Equal(t, "ready", resp.Text())
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetch_ClientErrorIsAResponse(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	resp, err := New(fastConfig(), zerolog.Nop()).Fetch(context.Background(), srv.URL, Options{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.False(t, resp.OK())
	assert.Equal(t, int32(1), hits.Load(), "4xx is not retried")
}

func TestFetch_NoRetriesReturnsLastTransientResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := fastConfig()
	cfg.MaxElapsed = 0
	resp, err := New(cfg, zerolog.Nop()).Fetch(context.Background(), srv.URL, Options{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.Status)
}

func TestFetch_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	cfg := fastConfig()
	cfg.MaxBody = 1024
	_, err := New(cfg, zerolog.Nop()).Fetch(context.Background(), srv.URL, Options{})
	require.ErrorContains(t, err, "exceeds 1024 bytes")
}

func TestFetch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(fastConfig(), zerolog.Nop()).Fetch(ctx, "http://127.0.0.1:1", Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFetch_BadURL(t *testing.T) {
	_, err := New(fastConfig(), zerolog.Nop()).Fetch(context.Background(), "://bad", Options{})
	require.ErrorContains(t, err, "build request")
}
