package app

import (
	"os"
	"testing"

	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/internal/testutil"
)

// SetupAppTest creates a new app instance with debug logging captured in a
// buffer. Set TASKGRID_TEST_LOGS=true to dump the logs after the test.
func SetupAppTest(t *testing.T, cfg *Config, loader config.Loader, modules ...handlers.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	testApp, err := NewApp(logBuffer, cfg, loader, modules...)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}

	t.Cleanup(func() {
		if os.Getenv("TASKGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
