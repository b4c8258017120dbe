// Package rc implements the single-goroutine flavor of the shared-value
// handles: an explicit strong/weak reference pair with drop semantics,
// and the wobbly group membership built on top of it.
//
// Handles are plain pointers over plain counters. Nothing in this
// package locks or synchronizes, so a value and all of its handles must
// stay confined to one goroutine. Package arc provides the same surface
// with atomic counters for values shared across goroutines.
package rc
