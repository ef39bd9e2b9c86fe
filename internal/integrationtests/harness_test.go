package integrationtests

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/app"
	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/internal/hcl"
	"github.com/vk/taskgrid/internal/task"
	"github.com/vk/taskgrid/internal/testutil"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// runIntegrationTest writes files under a temporary root, builds an app
// over it with the given modules and runs the configured targets.
func runIntegrationTest(t *testing.T, files map[string]string, cfg app.Config, modules ...handlers.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	cfg.TaskfilePath = tmpDir
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"

	logBuffer := &testutil.SafeBuffer{}
	testApp, err := app.NewApp(logBuffer, &cfg, hcl.NewLoader(), modules...)
	if err == nil {
		err = testApp.Run(context.Background())
	}

	if os.Getenv("TASKGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}
	return &HarnessResult{LogOutput: logBuffer.String(), Err: err, App: testApp}
}

// simpleModule registers a single handler under a fixed name.
type simpleModule struct {
	name string
	fn   handlers.Func
}

func (m *simpleModule) Register(h *handlers.Handlers) {
	h.Register(m.name, m.fn)
}

// recorder backs a "record" handler noting the `label` argument, or the
// task name when absent, of every run.
type recorder struct {
	mu     sync.Mutex
	labels []string
}

func (r *recorder) module() *simpleModule {
	return &simpleModule{name: "record", fn: func(_ context.Context, tc *task.Context, args map[string]any) error {
		label, ok := handlers.StringArg(args, "label")
		if !ok {
			label = tc.Name
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		r.labels = append(r.labels, label)
		return nil
	}}
}

func (r *recorder) Labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.labels...)
}
