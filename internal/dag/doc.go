// Package dag holds a small directed graph of task names used to validate a
// dependency closure before any task is dispatched.
package dag
