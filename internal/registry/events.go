package registry

import (
	"time"

	"github.com/vk/taskgrid/internal/event"
	"github.com/vk/taskgrid/internal/task"
)

// notifier turns task transitions into events on the registry's sink.
type notifier struct{ r *Registry }

func (n notifier) TaskStatus(s task.Snapshot) {
	n.r.publish(event.Event{Kind: event.KindTask, Task: &s})
}

func (n notifier) TaskError(s task.Snapshot, err error) {
	n.r.publish(event.Event{Kind: event.KindError, Task: &s, Err: err})
}

func (r *Registry) publishBuild(status string, started time.Time, err error) {
	info := &event.BuildInfo{Status: status, Started: started}
	if status == event.BuildFinished {
		info.Duration = time.Since(started)
	}
	r.publish(event.Event{Kind: event.KindBuild, Build: info, Err: err})
}

func (r *Registry) publish(e event.Event) {
	if r.sink == nil {
		return
	}
	e.Scope = r.Scope()
	r.sink.Publish(e)
}
