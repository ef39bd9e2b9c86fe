package integrationtests

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/app"
	"github.com/vk/taskgrid/internal/task"
	"github.com/vk/taskgrid/modules/lua"
)

func TestDependencies_GlobPatterns(t *testing.T) {
	rec := &recorder{}
	hcl := `
task "default" {
  depends_on = ["test-*"]
  handler    = "record"
}

task "test-unit" { handler = "record" }
task "build" { handler = "record" }
task "test-e2e" { handler = "record" }
`
	result := runIntegrationTest(t, map[string]string{"main.hcl": hcl}, app.Config{}, rec.module())

	require.NoError(t, result.Err)
	assert.Equal(t, []string{"test-unit", "test-e2e", "default"}, rec.Labels())
}

func TestDependencies_CycleFailsBeforeDispatch(t *testing.T) {
	rec := &recorder{}
	hcl := `
task "default" { depends_on = ["a"] }
task "a" {
  depends_on = ["b"]
  handler    = "record"
}
task "b" {
  depends_on = ["a"]
  handler    = "record"
}
`
	result := runIntegrationTest(t, map[string]string{"main.hcl": hcl}, app.Config{}, rec.module())

	require.Error(t, result.Err)
	assert.True(t, errors.Is(result.Err, task.ErrCycle))
	assert.Contains(t, result.Err.Error(), "cycle detected")
	assert.Empty(t, rec.Labels())
}

func TestDependencies_MissingDependency(t *testing.T) {
	rec := &recorder{}
	hcl := `
task "default" {
  depends_on = ["ghost"]
  handler    = "record"
}
`
	result := runIntegrationTest(t, map[string]string{"main.hcl": hcl}, app.Config{}, rec.module())

	require.Error(t, result.Err)
	assert.True(t, errors.Is(result.Err, task.ErrNotRegistered))
	assert.Empty(t, rec.Labels())
}

func TestDependencies_ParallelFlowWithLimit(t *testing.T) {
	rec := &recorder{}
	hcl := `
task "default" {
  depends_on = ["a", "b", "c"]
  flow       = "parallel"
}
task "a" { handler = "record" }
task "b" { handler = "record" }
task "c" { handler = "record" }
`
	result := runIntegrationTest(t, map[string]string{"main.hcl": hcl}, app.Config{Concurrency: 1}, rec.module())

	require.NoError(t, result.Err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, rec.Labels())
}

func TestDependencies_PayloadFlowsBetweenTasks(t *testing.T) {
	hcl := `
task "default" {
  depends_on = ["produce"]
  handler    = "lua"
  args = {
    script = "payload_set('doubled', payload_get('n') * 2)"
  }
}

task "produce" {
  handler = "lua"
  args = {
    script = "payload_set('n', args.start)"
    start  = 21
  }
}
`
	result := runIntegrationTest(t, map[string]string{"main.hcl": hcl}, app.Config{}, &lua.Module{})

	require.NoError(t, result.Err)
	got, ok := result.App.Root().Registry().Payload().Get("doubled")
	require.True(t, ok)
	assert.Equal(t, int64(42), got)
}

func TestDependencies_RetriesFromTaskfile(t *testing.T) {
	attempts := 0
	flaky := &simpleModule{name: "flaky", fn: func(context.Context, *task.Context, map[string]any) error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	}}
	hcl := `
task "default" {
  handler     = "flaky"
  retries     = 2
  retry_delay = "1ms"
}
`
	result := runIntegrationTest(t, map[string]string{"main.hcl": hcl}, app.Config{}, flaky)

	require.NoError(t, result.Err)
	assert.Equal(t, 3, attempts)
}

func TestDependencies_FailureBubblesFromNestedScope(t *testing.T) {
	boom := &simpleModule{name: "fail", fn: func(context.Context, *task.Context, map[string]any) error {
		return errors.New("boom")
	}}
	hcl := `
generator "deep" {
  generator "deeper" {
    task "default" { handler = "fail" }
  }
}
`
	result := runIntegrationTest(t, map[string]string{"main.hcl": hcl},
		app.Config{Targets: []string{"deep.deeper"}}, boom)

	require.Error(t, result.Err)
	var execErr *task.ExecutionError
	require.True(t, errors.As(result.Err, &execErr))
	assert.Equal(t, "default", execErr.Task)
	assert.Equal(t, app.Summary{Failed: 1}, result.App.Summary())
}

func TestDependencies_EnvironmentInArguments(t *testing.T) {
	t.Setenv("TASKGRID_IT_WHO", "ada")
	rec := &recorder{}
	hcl := `
task "default" {
  handler = "record"
  args = { label = "hello ${env.TASKGRID_IT_WHO}" }
}
`
	result := runIntegrationTest(t, map[string]string{"main.hcl": hcl}, app.Config{}, rec.module())

	require.NoError(t, result.Err)
	assert.Equal(t, []string{"hello ada"}, rec.Labels())
}

func TestDependencies_SkipList(t *testing.T) {
	rec := &recorder{}
	hcl := `
task "default" { depends_on = ["a", "b"] }
task "a" { handler = "record" }
task "b" {
  handler = "record"
  run     = false
}
`
	result := runIntegrationTest(t, map[string]string{"main.hcl": hcl}, app.Config{Skip: []string{"a"}}, rec.module())

	require.NoError(t, result.Err)
	assert.Empty(t, rec.Labels())
	assert.Equal(t, app.Summary{Finished: 3}, result.App.Summary())
}
