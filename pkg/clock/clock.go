// Package clock provides an injectable time source so deferred work
// (delayed dispatch, chord spacing) can be driven deterministically in
// tests. Production code uses Real(); tests use Fake() and Advance.
package clock

import "time"

// Clock abstracts the time operations waydo needs.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc waits for d, then calls f. If d <= 0, f runs immediately
	// (in a new goroutine for the real clock, synchronously for the fake).
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop prevents the call from running. Returns false if it already
	// ran or was stopped.
	Stop() bool
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
