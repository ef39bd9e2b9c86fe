package task

import (
	"strconv"
	"strings"
	"time"
)

// Option keys recognised by the engine.
const (
	KeyRun         = "run"
	KeyFlow        = "flow"
	KeyParallel    = "parallel"
	KeyOnce        = "once"
	KeyToAlias     = "toAlias"
	KeySkip        = "skip"
	KeyRetries     = "retries"
	KeyRetryDelay  = "retryDelay"
	KeyConcurrency = "concurrency"
)

// Flow selects how a list of tasks is composed.
type Flow string

const (
	FlowSeries   Flow = "series"
	FlowParallel Flow = "parallel"
)

// Options is an arbitrary set of configuration values. It is the only map
// type the expression parsers treat as an options object rather than a task
// expression.
type Options map[string]any

// Merge returns a new Options holding o overlaid by each of others in order.
// The receiver is never mutated.
func (o Options) Merge(others ...Options) Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	for _, other := range others {
		for k, v := range other {
			out[k] = v
		}
	}
	return out
}

// Clone returns a shallow copy.
func (o Options) Clone() Options {
	return o.Merge()
}

// Bool returns the boolean value stored under key, or def.
func (o Options) Bool(key string, def bool) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Int returns the integer value stored under key, or def. Numbers decoded
// from configuration files arrive as float64 and are truncated.
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// String returns the string value stored under key, or "".
func (o Options) String(key string) string {
	s, _ := o[key].(string)
	return s
}

// Run reports whether the task should execute. Defaults to true.
func (o Options) Run() bool {
	return o.Bool(KeyRun, true)
}

// Flow returns the composition used for a task's own dependencies.
func (o Options) Flow() Flow {
	if Flow(strings.ToLower(o.String(KeyFlow))) == FlowParallel {
		return FlowParallel
	}
	return FlowSeries
}

// Parallel reports whether a top-level build runs its roots concurrently.
func (o Options) Parallel() bool {
	return o.Bool(KeyParallel, false)
}

// Once reports whether a generator factory is memoised. Defaults to true.
func (o Options) Once() bool {
	return o.Bool(KeyOnce, true)
}

// ToAlias returns the custom alias function, if one is configured.
func (o Options) ToAlias() (func(string) string, bool) {
	fn, ok := o[KeyToAlias].(func(string) string)
	return fn, ok && fn != nil
}

// Skip returns the names of tasks that must be treated as run=false.
func (o Options) Skip() []string {
	switch v := o[KeySkip].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
	}
	return nil
}

// Skips reports whether name is listed in the skip option.
func (o Options) Skips(name string) bool {
	for _, s := range o.Skip() {
		if s == name {
			return true
		}
	}
	return false
}

// Retries returns how many times failing work is retried.
func (o Options) Retries() int {
	if n := o.Int(KeyRetries, 0); n > 0 {
		return n
	}
	return 0
}

// RetryDelay returns the pause between retries. Accepts a time.Duration, a
// duration string such as "250ms", or a number of milliseconds. Values that
// cannot be read as a duration yield zero; loaders reject them up front.
func (o Options) RetryDelay() time.Duration {
	switch v := o[KeyRetryDelay].(type) {
	case time.Duration:
		return v
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	case int:
		return time.Duration(v) * time.Millisecond
	case int64:
		return time.Duration(v) * time.Millisecond
	case float64:
		return time.Duration(v * float64(time.Millisecond))
	}
	return 0
}

// Concurrency caps the goroutines of a parallel batch. Zero means unbounded.
func (o Options) Concurrency() int {
	if n := o.Int(KeyConcurrency, 0); n > 0 {
		return n
	}
	return 0
}
