package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/event"
	"github.com/vk/taskgrid/internal/task"
	"github.com/vk/taskgrid/internal/testutil"
)

func TestRegister(t *testing.T) {
	t.Run("empty name is rejected", func(t *testing.T) {
		r := New("test", nil)
		_, err := r.Register("")
		require.Error(t, err)
		assert.True(t, errors.Is(err, task.ErrInvalidArgument))
	})

	t.Run("trailing function is the work, earlier ones are inline dependencies", func(t *testing.T) {
		r := New("test", nil)
		rec := &testutil.Recorder{}

		tk, err := r.Register("default", "foo", func() {}, []string{"bar"}, task.Options{"flow": "parallel"}, rec.Record())
		require.NoError(t, err)
		assert.Equal(t, []string{"foo", "task-0", "bar"}, tk.Dependencies())
		assert.Equal(t, task.FlowParallel, tk.Options().Flow())
		assert.True(t, r.Has("task-0"))
		assert.Equal(t, []string{"task-0", "default"}, r.Names())
	})

	t.Run("task without work is a no-op", func(t *testing.T) {
		r := New("test", nil)
		ctx, _ := testutil.Context(t)
		_, err := r.Register("empty")
		require.NoError(t, err)
		_, err = r.Build(ctx, "empty")
		require.NoError(t, err)
		tk, _ := r.Get("empty")
		assert.Equal(t, task.StatusFinished, tk.Status())
	})

	t.Run("more than one options object is rejected", func(t *testing.T) {
		r := New("test", nil)
		_, err := r.Register("foo", task.Options{}, task.Options{})
		assert.True(t, errors.Is(err, task.ErrInvalidArgument))
	})

	t.Run("unsupported dependency type is rejected", func(t *testing.T) {
		r := New("test", nil)
		_, err := r.Register("foo", 42)
		assert.True(t, errors.Is(err, task.ErrInvalidArgument))
	})

	t.Run("re-registering replaces the task but keeps its position", func(t *testing.T) {
		r := New("test", nil)
		_, err := r.Register("a")
		require.NoError(t, err)
		_, err = r.Register("b")
		require.NoError(t, err)
		_, err = r.Register("a", "b")
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "b"}, r.Names())
		tk, _ := r.Get("a")
		assert.Equal(t, []string{"b"}, tk.Dependencies())
	})

	t.Run("a running task cannot be replaced", func(t *testing.T) {
		r := New("test", nil)
		ctx, _ := testutil.Context(t)
		var replaceErr error
		_, err := r.Register("foo", func(*task.Context) error {
			_, replaceErr = r.Register("foo")
			return nil
		})
		require.NoError(t, err)

		_, err = r.Build(ctx, "foo")
		require.NoError(t, err)
		require.Error(t, replaceErr)
		assert.True(t, errors.Is(replaceErr, task.ErrInvalidArgument))
	})

	t.Run("registration emits a registered event", func(t *testing.T) {
		bus := event.NewBus(ctxlog.Discard())
		var got []task.Status
		bus.Subscribe(event.KindTask, func(e event.Event) { got = append(got, e.Task.Status) })

		r := New("test", bus)
		_, err := r.Register("foo")
		require.NoError(t, err)
		assert.Equal(t, []task.Status{task.StatusRegistered}, got)
	})
}

func TestExpand(t *testing.T) {
	newRegistry := func(t *testing.T) *Registry {
		r := New("test", nil)
		for _, name := range []string{"foo", "bar", "baz", "qux"} {
			_, err := r.Register(name)
			require.NoError(t, err)
		}
		return r
	}

	t.Run("plain names pass through", func(t *testing.T) {
		names, err := newRegistry(t).Expand("foo", []string{"qux", "missing"})
		require.NoError(t, err)
		assert.Equal(t, []string{"foo", "qux", "missing"}, names)
	})

	t.Run("globs expand in registration order", func(t *testing.T) {
		names, err := newRegistry(t).Expand("b*", "*x")
		require.NoError(t, err)
		assert.Equal(t, []string{"bar", "baz", "qux"}, names)
	})

	t.Run("glob matching is case sensitive", func(t *testing.T) {
		_, err := newRegistry(t).Expand("B*")
		assert.True(t, errors.Is(err, task.ErrNoGlobMatch))
	})

	t.Run("zero matches fail loudly", func(t *testing.T) {
		_, err := newRegistry(t).Expand("zzz*")
		require.Error(t, err)
		assert.EqualError(t, err, "glob pattern `zzz*` did not match any registered tasks")
	})

	t.Run("functions become default first, then anonymous", func(t *testing.T) {
		r := newRegistry(t)
		names, err := r.Expand(func() {}, func() {})
		require.NoError(t, err)
		assert.Equal(t, []string{"default", "task-0"}, names)
	})

	t.Run("options and callbacks are ignored", func(t *testing.T) {
		names, err := newRegistry(t).Expand(task.Options{"parallel": true}, "foo", task.Callback(func(error, map[string]any) {}))
		require.NoError(t, err)
		assert.Equal(t, []string{"foo"}, names)
	})
}

func TestPlan(t *testing.T) {
	t.Run("missing dependency", func(t *testing.T) {
		r := New("test", nil)
		_, err := r.Register("default", "foo", "bar")
		require.NoError(t, err)

		_, err = r.Plan("default")
		require.Error(t, err)
		assert.True(t, errors.Is(err, task.ErrNotRegistered))
		assert.ErrorContains(t, err, "task foo is not registered")
	})

	t.Run("cycle is reported before dispatch", func(t *testing.T) {
		r := New("test", nil)
		_, err := r.Register("a", "b")
		require.NoError(t, err)
		_, err = r.Register("b", "c")
		require.NoError(t, err)
		_, err = r.Register("c", "a")
		require.NoError(t, err)

		_, err = r.Plan("a")
		require.Error(t, err)
		assert.True(t, errors.Is(err, task.ErrCycle))
		assert.ErrorContains(t, err, "a -> b -> c -> a")
	})

	t.Run("graph holds the dependency closure", func(t *testing.T) {
		r := New("test", nil)
		for _, name := range []string{"foo", "bar", "baz"} {
			_, err := r.Register(name)
			require.NoError(t, err)
		}
		_, err := r.Register("default", "b*", "foo")
		require.NoError(t, err)

		g, err := r.Plan("default")
		require.NoError(t, err)
		order, err := g.TopologicalOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"bar", "baz", "foo", "default"}, order)
	})
}
