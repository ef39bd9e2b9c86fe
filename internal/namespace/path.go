package namespace

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// segmentRegex matches a single alias, e.g. `docs` or `generate-api_v2`.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Path is the structured representation of a dotted scope path.
type Path []string

// isValidSegmentName checks for undesirable but technically valid names.
func isValidSegmentName(name string) bool {
	return name != "-" && name != "_"
}

// Parse creates a Path from its dotted string representation.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return nil, fmt.Errorf("scope path cannot be empty")
	}

	var p Path
	for _, segment := range strings.Split(raw, ".") {
		if segment == "" {
			return nil, fmt.Errorf("scope path %q contains empty segment", raw)
		}
		if !segmentRegex.MatchString(segment) || !isValidSegmentName(segment) {
			return nil, fmt.Errorf("invalid scope path segment: %q", segment)
		}
		p = append(p, segment)
	}
	return p, nil
}

// String serializes the path into its dotted form.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Equal reports whether two paths have the same segments.
func (p Path) Equal(other Path) bool {
	return slices.Equal(p, other)
}

// Last returns the final segment, or "" for an empty path.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// HasPrefix reports whether p starts with all segments of prefix.
func (p Path) HasPrefix(prefix Path) bool {
	return len(p) >= len(prefix) && slices.Equal(p[:len(prefix)], prefix)
}

// Join concatenates non-empty dotted parts.
func Join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ".")
}
