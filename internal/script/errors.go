package script

import "fmt"

// StepError is a structural failure: an element was missing or an action
// was rejected. The session that hit it is Failed.
type StepError struct {
	Index int
	Step  Step
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d %s failed: %v", e.Index, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// AssertionTimeout means the marker never appeared in time. The session that
// hit it is TimedOut: the application was slow, not broken.
type AssertionTimeout struct {
	Index int
	Step  Step
	Err   error
}

func (e *AssertionTimeout) Error() string {
	return fmt.Sprintf("step %d %s timed out: %v", e.Index, e.Step, e.Err)
}

func (e *AssertionTimeout) Unwrap() error { return e.Err }
