// Package config defines the format-agnostic taskfile model, along with the
// interfaces (Loader, Converter) for loading it and evaluating task
// arguments.
//
// The `config.Model` is the single source of truth the app uses to build the
// scope tree. Concrete implementations of the interfaces, such as for HCL,
// are provided in separate packages.
package config
