package testutil

import "time"

// Interval is the time span one unit of work was active.
type Interval struct {
	Start time.Time
	End   time.Time
}
