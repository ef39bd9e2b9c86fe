// Package event provides the per-scope publish/subscribe bus used for task
// lifecycle, build, error and generator notifications.
//
// Publishing is synchronous: handlers run on the publisher's goroutine in
// subscription order, which lets a parent scope forward a child's events and
// guarantees leaf-to-root delivery order along a forwarding chain.
package event
