package event

import (
	"time"

	"github.com/vk/taskgrid/internal/task"
)

// Kind names a class of event.
type Kind string

const (
	KindTask      Kind = "task"
	KindBuild     Kind = "build"
	KindError     Kind = "error"
	KindGenerator Kind = "generator"
)

// Build statuses.
const (
	BuildStarting = "starting"
	BuildFinished = "finished"
)

// Event is a single notification.
type Event struct {
	Kind Kind
	// Scope is the namespace of the scope that produced the event.
	Scope string

	// Task is set for task and error events.
	Task *task.Snapshot
	// Err is set for error events and for failed builds.
	Err error
	// Build is set for build events.
	Build *BuildInfo
	// Generator is set for generator events.
	Generator *GeneratorInfo
}

// BuildInfo describes one side of a build.
type BuildInfo struct {
	Status   string
	Started  time.Time
	Duration time.Duration
}

// GeneratorInfo identifies a freshly instantiated child scope.
type GeneratorInfo struct {
	Name        string
	Alias       string
	Namespace   string
	Invocations int
}

// Handler handles an event.
type Handler func(Event)

// Sink is the capability to publish events.
type Sink interface {
	Publish(Event)
}
