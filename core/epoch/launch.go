package epoch

import "time"

// StaticLaunch reports a launch time fixed at construction, typically read
// from configuration.
type StaticLaunch struct {
	At time.Time
}

// LaunchTime returns the one-time program launch instant.
func (s StaticLaunch) LaunchTime() time.Time {
	return s.At
}
