package session

import "fmt"

// ProvisioningError means a session handle could not be opened, so the
// requested concurrency level cannot be honoured and the batch is abandoned.
type ProvisioningError struct {
	Index     int
	Requested int
	Err       error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("failed to provision session %d of %d: %v", e.Index, e.Requested, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}
