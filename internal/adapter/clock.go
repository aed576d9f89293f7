package adapter

import "time"

// Clock supplies the current time to the renderer, standing in for the
// original's readclock.drv round-trip in put_time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, backed by time.Now in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
