package namespace

import "strings"

const (
	// DefaultPrefix is stripped from generator names to form their alias.
	DefaultPrefix = "generate-"
	// DefaultRoot is the alias of an unnamed root scope.
	DefaultRoot = "generate"
)

// AliasFunc derives a short alias from a generator name.
type AliasFunc func(name string) string

// Alias derives the alias for name. The first non-nil function wins, so
// callers pass them in precedence order; with none, DefaultPrefix is
// stripped.
func Alias(name string, fns ...AliasFunc) string {
	for _, fn := range fns {
		if fn != nil {
			return fn(name)
		}
	}
	return StripPrefix(name, DefaultPrefix)
}

// StripPrefix removes prefix from name unless that would leave it empty.
func StripPrefix(name, prefix string) string {
	if alias := strings.TrimPrefix(name, prefix); alias != "" {
		return alias
	}
	return name
}
