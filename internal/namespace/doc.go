// Package namespace parses dotted scope paths and derives the alias and
// namespace of a generator.
//
// A generator registered as "generate-docs" under a root aliased "generate"
// gets the alias "docs" and the namespace "generate.docs". Paths such as
// "docs.api" address nested scopes relative to a starting scope.
package namespace
