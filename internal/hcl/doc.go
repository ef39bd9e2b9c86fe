// Package hcl provides the concrete HCL implementation for the taskfile
// loading and argument evaluation interfaces defined in the `config`
// package. It is responsible for all file parsing, HCL-to-model translation,
// and CTY-to-Go conversion.
package hcl
