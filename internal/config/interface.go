package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Loader is the interface for a format-specific taskfile loader.
type Loader interface {
	// Load reads the taskfiles found at paths, translates them into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter evaluates task arguments. It acts as the bridge between the raw
// configuration and the plain Go values handlers receive.
type Converter interface {
	// Arguments evaluates an `args` expression into a map. A nil or absent
	// expression yields an empty map.
	Arguments(ctx context.Context, expr hcl.Expression) (map[string]any, error)
}
