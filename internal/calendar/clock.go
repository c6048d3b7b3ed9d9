package calendar

import "time"

// Clock abstracts time.Now so streak and reminder logic is testable with a
// fixed or stepped clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
