package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes all top-level blocks of a taskfile.
type fileRoot struct {
	Tasks      []*Task      `hcl:"task,block"`
	Generators []*Generator `hcl:"generator,block"`
}

// Task is the HCL schema of a `task` block.
type Task struct {
	Name       string         `hcl:"name,label"`
	DependsOn  []string       `hcl:"depends_on,optional"`
	Handler    string         `hcl:"handler,optional"`
	Flow       string         `hcl:"flow,optional"`
	Run        *bool          `hcl:"run,optional"`
	Retries    int            `hcl:"retries,optional"`
	RetryDelay string         `hcl:"retry_delay,optional"`
	Args       hcl.Expression `hcl:"args,optional"`
}

// Generator is the HCL schema of a `generator` block.
type Generator struct {
	Name       string       `hcl:"name,label"`
	Once       *bool        `hcl:"once,optional"`
	Tasks      []*Task      `hcl:"task,block"`
	Generators []*Generator `hcl:"generator,block"`
}
