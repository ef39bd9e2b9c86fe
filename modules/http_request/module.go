package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/internal/task"
)

// Module implements the handlers.Module interface for this package.
type Module struct {
	// Client performs the requests. Nil means http.DefaultClient.
	Client *http.Client
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("http_request", m.OnRunHttpRequest)
}

// OnRunHttpRequest performs the request described by the `url`, `method`
// and `body` arguments and stores the status code and body in the payload
// under `key` (default: the task name). A status of 400 or above fails the
// task unless `allow_failure` is true.
func (m *Module) OnRunHttpRequest(ctx context.Context, tc *task.Context, args map[string]any) error {
	url, ok := handlers.StringArg(args, "url")
	if !ok || url == "" {
		return fmt.Errorf("http_request: missing required argument 'url'")
	}
	method, _ := handlers.StringArg(args, "method")
	if method == "" {
		method = http.MethodGet
	}
	key, _ := handlers.StringArg(args, "key")
	if key == "" {
		key = tc.Name
	}

	var body io.Reader
	if s, ok := handlers.StringArg(args, "body"); ok {
		body = strings.NewReader(s)
	}

	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}

	tc.Logger.Info("Making HTTP request", "method", method, "url", url)
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range handlers.StringMapArg(args, "headers") {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	tc.Logger.Info("Received HTTP response", "status", resp.Status)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	tc.Payload.Set(key, map[string]any{
		"status_code": resp.StatusCode,
		"body":        string(bodyBytes),
	})

	allowFailure, _ := args["allow_failure"].(bool)
	if resp.StatusCode >= http.StatusBadRequest && !allowFailure {
		return fmt.Errorf("http_request: %s %s returned %s", method, url, resp.Status)
	}
	return nil
}
