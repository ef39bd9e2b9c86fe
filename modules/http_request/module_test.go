package http_request

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/task"
)

func newContext() *task.Context {
	return &task.Context{Name: "fetch", Logger: ctxlog.Discard(), Payload: task.NewPayload()}
}

func TestOnRunHttpRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/echo":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "yes", r.Header.Get("X-Test"))
			_, _ = w.Write(b)
		default:
			http.Error(w, "missing", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	m := &Module{Client: srv.Client()}
	ctx := context.Background()

	t.Run("stores response", func(t *testing.T) {
		tc := newContext()
		err := m.OnRunHttpRequest(ctx, tc, map[string]any{
			"url":     srv.URL + "/echo",
			"method":  "post",
			"body":    "ping",
			"headers": map[string]any{"X-Test": "yes"},
		})
		require.NoError(t, err)

		got, ok := tc.Payload.Get("fetch")
		require.True(t, ok)
		assert.Equal(t, map[string]any{"status_code": 200, "body": "ping"}, got)
	})

	t.Run("error status fails", func(t *testing.T) {
		tc := newContext()
		err := m.OnRunHttpRequest(ctx, tc, map[string]any{"url": srv.URL + "/nope"})
		assert.ErrorContains(t, err, "404 Not Found")
		_, ok := tc.Payload.Get("fetch")
		assert.True(t, ok, "response is stored before failing")
	})

	t.Run("allow failure", func(t *testing.T) {
		tc := newContext()
		err := m.OnRunHttpRequest(ctx, tc, map[string]any{
			"url": srv.URL + "/nope", "key": "res", "allow_failure": true,
		})
		require.NoError(t, err)
		_, ok := tc.Payload.Get("res")
		assert.True(t, ok)
	})

	t.Run("missing url", func(t *testing.T) {
		err := m.OnRunHttpRequest(ctx, newContext(), nil)
		assert.ErrorContains(t, err, "missing required argument 'url'")
	})
}
