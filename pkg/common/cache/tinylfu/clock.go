package tinylfu

import "time"

// Clock supplies the current time for expiration checks.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
