package task

// Status is the lifecycle state of a task.
type Status int

const (
	// StatusRegistered is the state of a task that has never been run.
	StatusRegistered Status = iota
	// StatusPreparing is set right before the task's dependencies are resolved.
	StatusPreparing
	// StatusStarting is set right before the task's work is invoked.
	StatusStarting
	// StatusFinished is set when the work completed successfully or was skipped.
	StatusFinished
	// StatusErrored is set when the work signalled a failure.
	StatusErrored
)

var statusNames = [...]string{
	StatusRegistered: "registered",
	StatusPreparing:  "preparing",
	StatusStarting:   "starting",
	StatusFinished:   "finished",
	StatusErrored:    "errored",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// Settled reports whether the status is terminal for the current run.
func (s Status) Settled() bool {
	return s == StatusFinished || s == StatusErrored
}
