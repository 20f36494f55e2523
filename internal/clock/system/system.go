// Package system provides a real clock implementation.
package system

import "time"

// Clock implements trends.Clock using the local wall clock.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current local time. Records are stamped in local time.
func (Clock) Now() time.Time {
	return time.Now()
}
